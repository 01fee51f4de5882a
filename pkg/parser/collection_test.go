package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
)

func pointsField(expandable bool) model.Field {
	return model.Field{
		ID:         "points",
		Kind:       model.KindCollection,
		Expandable: expandable,
		Fields: []model.Field{
			{ID: "name", Kind: model.KindText},
			{ID: "size", Kind: model.KindNumber},
		},
		Default: [][]any{{"a", 1.0}, {"b", 2.0}, {"c", 3.0}},
	}
}

func nodesMatching(doc *control.Document, match func(*control.Node) bool) []*control.Node {
	var out []*control.Node
	doc.Walk(func(n *control.Node, _ int) error {
		if !n.IsGroup() && match(n) {
			out = append(out, n)
		}
		return nil
	})
	return out
}

func byRole(role control.Role) func(*control.Node) bool {
	return func(n *control.Node) bool { return n.Descriptor().Role == role }
}

func bySuffix(suffix string) func(*control.Node) bool {
	return func(n *control.Node) bool { return strings.HasSuffix(n.ID(), suffix) }
}

func TestCollectionDeleteThenAdd(t *testing.T) {
	doc := control.NewDocument("root")
	p := newParser(t, pointsField(true))

	var changes []any
	if err := p.Materialize(doc.Root(), "points", nil, func(v any) { changes = append(changes, v) }); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	selectors := nodesMatching(doc, byRole(control.RoleRowSelect))
	if len(selectors) != 3 {
		t.Fatalf("expected 3 row selectors, got %d", len(selectors))
	}
	selectors[1].Input(true)
	element(t, doc, "points-delete").Click()

	want := [][]any{{"a", 1.0}, {"c", 3.0}}
	if diff := cmp.Diff(want, p.Value()); diff != "" {
		t.Fatalf("after delete (-want +got):\n%s", diff)
	}

	element(t, doc, "points-add").Click()
	want = [][]any{{"a", 1.0}, {"c", 3.0}, {"", 0.0}}
	if diff := cmp.Diff(want, p.Value()); diff != "" {
		t.Fatalf("after add (-want +got):\n%s", diff)
	}

	// The old third row now sits at index 1; editing it must land there.
	names := nodesMatching(doc, bySuffix("-name"))
	if len(names) != 3 {
		t.Fatalf("expected 3 name cells, got %d", len(names))
	}
	names[1].Input("C")
	want = [][]any{{"a", 1.0}, {"C", 3.0}, {"", 0.0}}
	if diff := cmp.Diff(want, p.Value()); diff != "" {
		t.Fatalf("after edit (-want +got):\n%s", diff)
	}

	if len(changes) != 3 {
		t.Fatalf("expected 3 change notifications, got %d", len(changes))
	}
	if diff := cmp.Diff(want, changes[2]); diff != "" {
		t.Fatalf("last notification (-want +got):\n%s", diff)
	}
}

func TestCollectionDeleteAllIsEmptyNotDefault(t *testing.T) {
	doc := control.NewDocument("root")
	p := newParser(t, pointsField(true))
	p.Materialize(doc.Root(), "points", nil, nil)

	for _, selector := range nodesMatching(doc, byRole(control.RoleRowSelect)) {
		selector.Input(true)
	}
	element(t, doc, "points-delete").Click()

	if got := p.Value().([][]any); len(got) != 0 {
		t.Fatalf("expected no rows, got %v", got)
	}
	encoded, ok := p.Serialise(codec.Verbose)
	if !ok || encoded != "" {
		t.Fatalf("empty collection should serialise as present and empty, got %q %v", encoded, ok)
	}
}

func TestCollectionInitialRows(t *testing.T) {
	cases := []struct {
		name       string
		expandable bool
		raw        string
		want       [][]any
	}{
		{"matching count", false, "x,1,y,2,z,3", [][]any{{"x", 1.0}, {"y", 2.0}, {"z", 3.0}}},
		{"count differs on fixed collection", false, "x,1", [][]any{{"a", 1.0}, {"b", 2.0}, {"c", 3.0}}},
		{"count differs on expandable collection", true, "x,1", [][]any{{"x", 1.0}}},
		{"empty raw on expandable collection", true, "", [][]any{}},
		{"malformed", true, "x,1,y", [][]any{{"a", 1.0}, {"b", 2.0}, {"c", 3.0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := control.NewDocument("root")
			p := newParser(t, pointsField(tc.expandable))
			initial, err := p.Decode(tc.raw, codec.Verbose)
			if err != nil {
				initial = nil
			}
			if err := p.Materialize(doc.Root(), "points", initial, nil); err != nil {
				t.Fatalf("Materialize: %v", err)
			}
			if diff := cmp.Diff(tc.want, p.Value()); diff != "" {
				t.Fatalf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollectionSerialiseEscapesCells(t *testing.T) {
	doc := control.NewDocument("root")
	p := newParser(t, model.Field{ID: "labels", Kind: model.KindCollection, Fields: []model.Field{
		{ID: "text", Kind: model.KindText},
	}, Default: [][]any{{"x"}}})
	p.Materialize(doc.Root(), "labels", [][]any{{`Foo, Bar, Baz\`}}, nil)

	got, ok := p.Serialise(codec.Compact)
	if !ok || got != `Foo\, Bar\, Baz\\` {
		t.Fatalf("Serialise = %q, %v", got, ok)
	}
	if err := p.SetValue([][]any{{"x"}}); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if _, ok := p.Serialise(codec.Compact); ok {
		t.Fatalf("default rows should not serialise")
	}
	if _, ok := doc.Element("labels-add"); ok {
		t.Fatalf("fixed collections have no add button")
	}
}
