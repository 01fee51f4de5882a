// Package testsupport holds helpers shared by package tests: golden files,
// canonical field fixtures and store construction.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/loader"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/store"
)

// RootID is the container id used by NewStore.
const RootID = "params"

// ExampleFields returns the checkbox and number pair used across the docs.
func ExampleFields() []model.Field {
	return []model.Field{
		{ID: "exampleCheckbox", Kind: model.KindCheckbox, Default: true},
		{ID: "exampleNumber", Kind: model.KindNumber, Default: 5.0},
	}
}

// SketchFields returns one field of every serialisable kind plus a button
// and a collection.
func SketchFields() []model.Field {
	return []model.Field{
		{ID: "wireframe", Kind: model.KindCheckbox, Default: false},
		{ID: "seed", Kind: model.KindNumber, Default: 42.0},
		{ID: "strokeWidth", Kind: model.KindRange, Attrs: &model.Attrs{Min: model.Float(0), Max: model.Float(10), Step: model.Float(0.5)}, Default: 2.0},
		{ID: "background", Kind: model.KindColor, Default: "FFFFFF"},
		{ID: "caption", Kind: model.KindText, Default: "untitled", Tooltip: "Shown under the canvas"},
		{ID: "palette", Kind: model.KindSelect, Options: []string{"warm", "cool", "mono"}, Default: "warm"},
		{ID: "regenerate", Kind: model.KindButton},
		{
			ID:         "points",
			Kind:       model.KindCollection,
			Expandable: true,
			Fields: []model.Field{
				{ID: "x", Kind: model.KindNumber, Default: 0.0},
				{ID: "y", Kind: model.KindNumber, Default: 0.0},
			},
			Default: [][]any{{1.0, 2.0}},
		},
	}
}

// MustLoadFields reads a field document through the loader.
func MustLoadFields(t *testing.T, path string) []model.Field {
	t.Helper()
	form, err := loader.New().Load(context.Background(), loader.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load fields: %v", err)
	}
	return form.Fields
}

// NewStore mounts fields on a fresh document and returns both.
func NewStore(t *testing.T, fields []model.Field, query string, opts ...store.Option) (*store.Store, *control.Document) {
	t.Helper()
	doc := control.NewDocument(RootID)
	container, err := doc.Container(RootID)
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	opts = append([]store.Option{store.WithQuery(query), store.WithLogger(DiscardLogger())}, opts...)
	s, err := store.New(container, fields, opts...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, doc
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGoldenString reads a golden file as a string.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// AssertGolden compares got with the golden file at path, rewriting the
// file instead when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()
	if WriteMaybeGolden(t, path, []byte(got)) {
		return
	}
	if diff := cmp.Diff(MustReadGoldenString(t, path), got); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
