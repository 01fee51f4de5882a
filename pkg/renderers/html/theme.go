package html

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

type rendererTheme struct {
	Name         string
	Variant      string
	Tokens       map[string]string
	CSSVars      map[string]string
	CSSVarsStyle string
}

func buildThemeContext(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	ctx := rendererTheme{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  copyStringMap(cfg.Tokens),
		CSSVars: copyStringMap(cfg.CSSVars),
	}
	if len(ctx.CSSVars) == 0 {
		ctx.CSSVars = CSSVarsFromTokens(ctx.Tokens)
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	return ctx
}

func (t rendererTheme) asMap() map[string]any {
	return map[string]any{
		"Name":         t.Name,
		"Variant":      t.Variant,
		"CSSVarsStyle": t.CSSVarsStyle,
	}
}

// ConfigFromSelection flattens a theme selection into renderer settings:
// variant tokens override manifest tokens, every token becomes a "--name"
// CSS variable and asset keys resolve against the manifest asset prefix.
func ConfigFromSelection(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   map[string]string{},
		Partials: map[string]string{},
	}

	assets := map[string]string{}
	prefix := ""
	if manifest := selection.Manifest; manifest != nil {
		if cfg.Theme == "" {
			cfg.Theme = manifest.Name
		}
		mergeInto(cfg.Tokens, manifest.Tokens)
		mergeInto(cfg.Partials, manifest.Templates)
		mergeInto(assets, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			mergeInto(cfg.Tokens, variant.Tokens)
			mergeInto(cfg.Partials, variant.Templates)
			mergeInto(assets, variant.Assets.Files)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
		}
	}
	cfg.CSSVars = CSSVarsFromTokens(cfg.Tokens)
	cfg.AssetURL = func(key string) string {
		file, ok := assets[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

// CSSVarsFromTokens maps "brand" to "--brand". Keys already starting with
// "--" are kept.
func CSSVarsFromTokens(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		if !strings.HasPrefix(key, "--") {
			key = "--" + key
		}
		out[key] = value
	}
	return out
}

func mergeInto(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	mergeInto(out, in)
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
