package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/render"
	"github.com/goliatone/go-paramconfig/pkg/store"
	"github.com/goliatone/go-paramconfig/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	selects      []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestEditorRun_EditsFlowThroughStore(t *testing.T) {
	s, doc := testsupport.NewStore(t, testsupport.ExampleFields(), "")

	var updates [][]string
	s.AddListener(func(_ store.Snapshot, ids []string) {
		updates = append(updates, ids)
	})

	driver := &stubDriver{
		// menu: 0 exampleCheckbox, 1 exampleNumber, 2 Done
		selectIdx: []int{1, 0, 2},
		inputs:    []string{"abc", "10"},
		confirm:   []bool{false},
	}
	editor, err := New(doc, WithPromptDriver(driver), WithStatus(func() string { return s.SerialiseToURLParams() }))
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	if err := editor.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := s.SerialiseToURLParams(); got != "exampleCheckbox=false&exampleNumber=10" {
		t.Fatalf("unexpected query %q", got)
	}
	want := [][]string{{}, {"exampleNumber"}, {"exampleCheckbox"}}
	if diff := cmp.Diff(want, updates); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}
	wantInfo := []string{
		"✗ \"abc\" is not a number",
		"› exampleNumber=10",
		"› exampleCheckbox=false&exampleNumber=10",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if got := driver.selects[0].Options; !cmp.Equal(got, []string{"Example checkbox [x]", "Example number [5]", DoneLabel}) {
		t.Fatalf("unexpected menu %q", got)
	}
}

func TestEditorRun_CollectionRows(t *testing.T) {
	fields := []model.Field{{
		ID:         "points",
		Kind:       model.KindCollection,
		Expandable: true,
		Fields:     []model.Field{{ID: "x", Kind: model.KindNumber, Default: 0.0}},
		Default:    [][]any{{1.0}},
	}}
	s, doc := testsupport.NewStore(t, fields, "")

	// menu: 0 select row, 1 x, 2 add, 3 delete, 4 Done; after the add the
	// new row's x sits at 3 and Done moves to 6.
	driver := &stubDriver{
		selectIdx: []int{2, 3, 6},
		inputs:    []string{"7"},
	}
	editor, err := New(doc, WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	if err := editor.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := s.MustValue("points")
	want := [][]any{{1.0}, {7.0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestEditor_TooManyAttempts(t *testing.T) {
	fields := []model.Field{{ID: "size", Kind: model.KindRange, Attrs: &model.Attrs{Min: model.Float(0), Max: model.Float(1), Step: model.Float(0.1)}}}
	_, doc := testsupport.NewStore(t, fields, "")
	driver := &stubDriver{selectIdx: []int{0}, inputs: []string{"2", "-1"}}

	editor, err := New(doc, WithPromptDriver(driver), WithMaxAttempts(2))
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	if err := editor.Run(context.Background()); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	want := []string{"✗ must be at most 1", "✗ must be at least 0"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestEditor_FileInput(t *testing.T) {
	fields := []model.Field{{ID: "texture", Kind: model.KindFile}}
	s, doc := testsupport.NewStore(t, fields, "")

	done := make(chan struct{})
	var once sync.Once
	s.AddListener(func(_ store.Snapshot, ids []string) {
		if len(ids) > 0 {
			once.Do(func() { close(done) })
		}
	})

	driver := &stubDriver{selectIdx: []int{0, 1}, inputs: []string{"tile.png"}}
	editor, err := New(doc,
		WithPromptDriver(driver),
		WithFileReader(func(string) ([]byte, error) { return []byte("hi"), nil }),
	)
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	if err := editor.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	<-done
	if got := s.MustValue("texture"); got != "data:image/png;base64,aGk=" {
		t.Fatalf("unexpected data url %q", got)
	}
}

func TestSummary(t *testing.T) {
	s, doc := testsupport.NewStore(t, testsupport.ExampleFields(), "?exampleNumber=10")
	out, err := Summary{}.Render(context.Background(), doc, render.RenderOptions{Title: "Example", Query: s.SerialiseToURLParams()})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := strings.Join([]string{
		"Example",
		"Example checkbox: true",
		"Example number: 10",
		"?exampleNumber=10",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRequiresDocument(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilDocument) {
		t.Fatalf("expected ErrNilDocument, got %v", err)
	}
}
