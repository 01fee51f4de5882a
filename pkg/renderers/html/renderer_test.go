package html_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/render"
	"github.com/goliatone/go-paramconfig/pkg/renderers/html"
	"github.com/goliatone/go-paramconfig/pkg/testsupport"
)

func TestRendererPage(t *testing.T) {
	s, doc := testsupport.NewStore(t, testsupport.SketchFields(), "?seed=7&palette=cool")
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(context.Background(), doc, render.RenderOptions{
		Title:      "Sketch",
		Query:      s.SerialiseToURLParams(),
		ShareURL:   "https://example.com/?seed=7&palette=cool",
		RuntimeURL: "/runtime/paramconfig.js",
		SocketURL:  "/ws",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Sketch</title>",
		`<input type="checkbox" id="wireframe" data-param-id="wireframe" data-kind="checkbox">`,
		`<input type="number" id="seed" data-param-id="seed" data-kind="number" value="7">`,
		`<input type="range" id="strokeWidth" data-param-id="strokeWidth" data-kind="range" value="2" min="0" max="10" step="0.5">`,
		`<input type="color" id="background" data-param-id="background" data-kind="color" value="#FFFFFF">`,
		`<option value="cool" selected>cool</option>`,
		`<label for="strokeWidth">Stroke width</label>`,
		`title="Shown under the canvas"`,
		`data-kind="button" data-role="field">Regenerate</button>`,
		`data-role="add-row">Add Row</button>`,
		`data-role="delete-rows">Delete Selected</button>`,
		`data-socket="/ws"`,
		`<script src="/runtime/paramconfig.js" defer></script>`,
		`href="https://example.com/?seed=7&amp;palette=cool"`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if renderer.ContentType() != "text/html; charset=utf-8" || renderer.Name() != html.Name {
		t.Fatalf("unexpected renderer metadata")
	}
}

func TestRendererSanitisesLabels(t *testing.T) {
	fields := []model.Field{{
		ID:      "title",
		Kind:    model.KindText,
		Label:   `<em>Big</em> <script>alert(1)</script>title`,
		Tooltip: `<b>bold</b> tip`,
	}}
	_, doc := testsupport.NewStore(t, fields, "")
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(context.Background(), doc, render.RenderOptions{Fragment: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	fragment := string(out)
	if strings.Contains(fragment, "<script>") || strings.Contains(fragment, "<!DOCTYPE") {
		t.Fatalf("unexpected markup in fragment:\n%s", fragment)
	}
	if !strings.Contains(fragment, "<em>Big</em>") {
		t.Fatalf("expected emphasis to survive:\n%s", fragment)
	}
	if !strings.Contains(fragment, `title="bold tip"`) {
		t.Fatalf("expected tooltip stripped to text:\n%s", fragment)
	}
}

func TestRendererTheme(t *testing.T) {
	_, doc := testsupport.NewStore(t, testsupport.ExampleFields(), "")
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	cfg := &theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		Tokens:  map[string]string{"brand": "#123456"},
		AssetURL: func(key string) string {
			if key == html.ThemeAssetStylesheet {
				return "/themes/acme/paramconfig.css"
			}
			return ""
		},
	}
	out, err := renderer.Render(context.Background(), doc, render.RenderOptions{Theme: cfg})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	for _, want := range []string{
		`data-theme="acme"`,
		`data-theme-variant="dark"`,
		"--brand: #123456;",
		`<link rel="stylesheet" href="/themes/acme/paramconfig.css">`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRendererNilDocument(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := renderer.Render(context.Background(), nil, render.RenderOptions{}); !errors.Is(err, html.ErrNilDocument) {
		t.Fatalf("expected ErrNilDocument, got %v", err)
	}
}

func TestConfigFromSelection(t *testing.T) {
	selection := &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{"brand": "#123456", "text": "#111"},
			Assets: theme.Assets{
				Prefix: "/assets/themes/acme",
				Files:  map[string]string{html.ThemeAssetStylesheet: "theme.css"},
			},
			Variants: map[string]theme.Variant{
				"dark": {Tokens: map[string]string{"brand": "#654321"}},
			},
		},
	}

	cfg := html.ConfigFromSelection(selection)
	want := map[string]string{"--brand": "#654321", "--text": "#111"}
	if diff := cmp.Diff(want, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.AssetURL(html.ThemeAssetStylesheet); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
	if html.ConfigFromSelection(nil) != nil {
		t.Fatalf("expected nil config for nil selection")
	}
}
