package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

func TestLoadYAMLFile(t *testing.T) {
	form, err := New().Load(context.Background(), SourceFromFile("testdata/sketch.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := model.Form{
		Title: "Sketch",
		Fields: []model.Field{
			{ID: "wireframe", Kind: model.KindCheckbox, Default: true},
			{ID: "strokeWidth", Kind: model.KindRange, Default: float64(2), Attrs: &model.Attrs{Min: model.Float(0), Max: model.Float(10), Step: model.Float(0.5)}},
			{ID: "palette", Kind: model.KindSelect, Options: []string{"warm", "cool"}},
			{
				ID:         "points",
				Kind:       model.KindCollection,
				Expandable: true,
				Default:    [][]any{{float64(1), float64(2)}},
				Fields: []model.Field{
					{ID: "x", Kind: model.KindNumber},
					{ID: "y", Kind: model.KindNumber},
				},
			},
		},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	form, err := New().Load(context.Background(), SourceFromFile("testdata/sketch.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(form.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(form.Fields))
	}
	if got := form.Fields[1].Default; got != float64(2) {
		t.Fatalf("expected integer default normalised to float64, got %#v", got)
	}
	if !form.Fields[1].Attrs.Complete() {
		t.Fatalf("expected complete attrs, got %+v", form.Fields[1].Attrs)
	}
}

func TestLoadFromFSBareList(t *testing.T) {
	files := fstest.MapFS{
		"fields.json": {Data: []byte(`[{"id":"seed","kind":"number","default":7}]`)},
	}
	form, err := New(WithFileSystem(files)).Load(context.Background(), SourceFromFS("fields.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []model.Field{{ID: "seed", Kind: model.KindNumber, Default: float64(7)}}
	if diff := cmp.Diff(want, form.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOpenAPI(t *testing.T) {
	doc := []byte(`{"openapi":"3.0.3","info":{"title":"t","version":"1"},"paths":{"/s":{"post":{"operationId":"draw","requestBody":{"content":{"application/json":{"schema":{"type":"object","properties":{"grid":{"type":"boolean","default":false}}}}}},"responses":{"200":{"description":"ok"}}}}}}`)
	files := fstest.MapFS{"api.json": {Data: doc}}

	form, err := New(WithFileSystem(files), WithOperation("draw")).Load(context.Background(), SourceFromFS("api.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []model.Field{{ID: "grid", Kind: model.KindCheckbox, Default: false}}
	if diff := cmp.Diff(want, form.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fields.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("- id: label\n  kind: text\n  default: hi\n"))
	}))
	defer server.Close()

	if _, err := New().Load(context.Background(), SourceFromURL(server.URL+"/fields.yaml")); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	form, err := New(WithHTTPClient(server.Client())).Load(context.Background(), SourceFromURL(server.URL+"/fields.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(form.Fields) != 1 || form.Fields[0].Default != "hi" {
		t.Fatalf("unexpected fields %+v", form.Fields)
	}

	if _, err := New(WithHTTPClient(server.Client())).Load(context.Background(), SourceFromURL(server.URL+"/missing")); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoadRejectsInvalidFields(t *testing.T) {
	files := fstest.MapFS{
		"dup.yaml": {Data: []byte("- id: a\n  kind: text\n- id: a\n  kind: text\n")},
	}
	_, err := New(WithFileSystem(files)).Load(context.Background(), SourceFromFS("dup.yaml"))
	if !errors.Is(err, model.ErrDuplicateFieldID) {
		t.Fatalf("expected ErrDuplicateFieldID, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := New().Load(ctx, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := New().Load(ctx, SourceFromFS("x.json")); !errors.Is(err, ErrNoFileSystem) {
		t.Fatalf("expected ErrNoFileSystem, got %v", err)
	}
	if _, err := Decode(ctx, []byte("{}"), Format("ini"), ""); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		location string
		data     string
		want     Format
	}{
		{"a.json", `[]`, FormatJSON},
		{"a.yml", `- id: a`, FormatYAML},
		{"a.toml", `title = "x"`, FormatTOML},
		{"stdin", `{"fields":[]}`, FormatJSON},
		{"api.yaml", "openapi: 3.0.0\n", FormatOpenAPI},
	}
	for _, tc := range cases {
		if got := DetectFormat(tc.location, []byte(tc.data)); got != tc.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tc.location, got, tc.want)
		}
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("https://example.com/fields.json")
	if err != nil || src.Kind() != SourceKindURL {
		t.Fatalf("expected URL source, got %v %v", src, err)
	}
	src, err = ParseSource("fields.yaml")
	if err != nil || src.Kind() != SourceKindFile {
		t.Fatalf("expected file source, got %v %v", src, err)
	}
}
