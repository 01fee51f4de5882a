// Package html renders a control document as an HTML page or fragment using
// pongo2 templates. Labels are sanitised with bluemonday and go-theme tokens
// become CSS custom properties.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/render"
	rendertemplate "github.com/goliatone/go-paramconfig/pkg/render/template"
	"github.com/goliatone/go-paramconfig/pkg/render/template/pongo"
)

// Name is the registry name of the renderer.
const Name = "html"

// Theme asset keys resolved through RendererConfig.AssetURL.
const (
	ThemeAssetStylesheet = "paramconfig.stylesheet"
)

var ErrNilDocument = errors.New("html renderer: document is nil")

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	labelPolicy      *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle. It must provide
// templates/page.tmpl and templates/control.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithLabelPolicy replaces the policy applied to labels.
func WithLabelPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.labelPolicy = policy
		}
	}
}

// LabelPolicy allows inline emphasis markup in labels and strips the rest.
func LabelPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("b", "i", "em", "strong", "code", "sub", "sup", "small")
	return policy
}

// Renderer implements render.Renderer.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	labels     *bluemonday.Policy
	tooltips   *bluemonday.Policy
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.labelPolicy == nil {
		cfg.labelPolicy = LabelPolicy()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:  templates,
		labels:     cfg.labelPolicy,
		tooltips:   bluemonday.StrictPolicy(),
		stylesheet: defaultStylesheet(),
	}, nil
}

func (r *Renderer) Name() string { return Name }

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render draws doc. With options.Fragment only the controls are returned.
func (r *Renderer) Render(ctx context.Context, doc *control.Document, options render.RenderOptions) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	controls, err := r.renderControls(ctx, render.BuildView(doc))
	if err != nil {
		return nil, err
	}
	if options.Fragment {
		return []byte(controls), nil
	}

	themeCtx := buildThemeContext(options.Theme)
	stylesheetURL := ""
	if options.Theme != nil && options.Theme.AssetURL != nil {
		stylesheetURL = options.Theme.AssetURL(ThemeAssetStylesheet)
	}

	page, err := r.templates.RenderTemplate("templates/page", map[string]any{
		"title":          options.Title,
		"query":          options.Query,
		"share_url":      options.ShareURL,
		"runtime_url":    options.RuntimeURL,
		"socket_url":     options.SocketURL,
		"stylesheet":     r.stylesheet,
		"stylesheet_url": stylesheetURL,
		"theme":          themeCtx.asMap(),
		"controls_html":  controls,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render page: %w", err)
	}
	return []byte(page), nil
}

func (r *Renderer) renderControls(ctx context.Context, controls []render.Control) (string, error) {
	var b strings.Builder
	for _, c := range controls {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := r.renderControl(ctx, c)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

func (r *Renderer) renderControl(ctx context.Context, c render.Control) (string, error) {
	children := ""
	if c.Group {
		var err error
		if children, err = r.renderControls(ctx, c.Children); err != nil {
			return "", err
		}
	}
	out, err := r.templates.RenderTemplate("templates/control", map[string]any{
		"control":       c,
		"label_html":    r.labels.Sanitize(c.Label),
		"tooltip":       r.tooltips.Sanitize(c.Tooltip),
		"input_type":    inputType(c.Kind),
		"children_html": children,
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: render control %q: %w", c.ID, err)
	}
	return out, nil
}

func inputType(kind string) string {
	switch kind {
	case "datetime":
		return "datetime-local"
	case "number", "range", "color", "text":
		return kind
	}
	return "text"
}
