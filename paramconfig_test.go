package paramconfig_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	paramconfig "github.com/goliatone/go-paramconfig"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/testsupport"
)

func TestQueryRoundTrip(t *testing.T) {
	doc := control.NewDocument(testsupport.RootID)
	root, err := doc.Container(testsupport.RootID)
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	cfg, err := paramconfig.New(root, testsupport.ExampleFields(),
		paramconfig.WithQuery("exampleNumber=10"),
		paramconfig.WithLogger(testsupport.DiscardLogger()),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if got := cfg.SerialiseToURLParams(); got != "exampleNumber=10" {
		t.Fatalf("serialise = %q", got)
	}

	var seen [][]string
	remove := cfg.AddListener(func(_ paramconfig.Snapshot, updates []string) {
		seen = append(seen, updates)
	}, paramconfig.Subscribe("exampleCheckbox"))
	defer remove()

	checkbox, ok := doc.Element("exampleCheckbox")
	if !ok {
		t.Fatalf("checkbox not mounted")
	}
	checkbox.Input(false)

	want := [][]string{{}, {"exampleCheckbox"}}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("listener calls mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.SerialiseToURLParams(); got != "exampleCheckbox=false&exampleNumber=10" {
		t.Fatalf("serialise after edit = %q", got)
	}
}

func TestNewRequiresContainer(t *testing.T) {
	if _, err := paramconfig.New(nil, testsupport.ExampleFields()); err != paramconfig.ErrMissingContainer {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadFields(t *testing.T) {
	form, err := paramconfig.LoadFields(context.Background(), "pkg/loader/testdata/sketch.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(form.Fields) == 0 {
		t.Fatalf("expected fields")
	}
}
