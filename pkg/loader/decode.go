package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/openapi"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatOpenAPI Format = "openapi"
)

var ErrUnknownFormat = errors.New("loader: unknown document format")

// DetectFormat guesses the format from the file extension, then from the
// content. Documents carrying a top-level openapi key are OpenAPI.
func DetectFormat(location string, data []byte) Format {
	if looksLikeOpenAPI(data) {
		return FormatOpenAPI
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

func looksLikeOpenAPI(data []byte) bool {
	var probe struct {
		OpenAPI string `json:"openapi" yaml:"openapi"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.OpenAPI != "" {
		return true
	}
	if err := yaml.Unmarshal(data, &probe); err == nil && probe.OpenAPI != "" {
		return true
	}
	return false
}

// Decode turns data into a form. A bare field list is accepted as well as a
// {title, fields} document.
func Decode(ctx context.Context, data []byte, format Format, operation string) (model.Form, error) {
	switch format {
	case FormatOpenAPI:
		return openapi.NewParser().Form(ctx, data, operation)
	case FormatJSON:
		return decodeWith(data, json.Unmarshal, "JSON")
	case FormatYAML:
		return decodeWith(data, yaml.Unmarshal, "YAML")
	case FormatTOML:
		var form model.Form
		if _, err := toml.Decode(string(data), &form); err != nil {
			return model.Form{}, fmt.Errorf("parse TOML: %w", err)
		}
		return normalise(form), nil
	}
	return model.Form{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func decodeWith(data []byte, unmarshal func([]byte, any) error, name string) (model.Form, error) {
	var form model.Form
	if err := unmarshal(data, &form); err == nil && (len(form.Fields) > 0 || form.Title != "") {
		return normalise(form), nil
	}
	var fields []model.Field
	if err := unmarshal(data, &fields); err != nil {
		return model.Form{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return normalise(model.Form{Fields: fields}), nil
}

// normalise converts decoder-specific default shapes into the runtime shapes
// the codecs expect.
func normalise(form model.Form) model.Form {
	for i := range form.Fields {
		form.Fields[i] = normaliseField(form.Fields[i])
	}
	return form
}

func normaliseField(field model.Field) model.Field {
	field.Default = normaliseValue(field.Default)
	if field.Kind == model.KindCollection {
		for i := range field.Fields {
			field.Fields[i] = normaliseField(field.Fields[i])
		}
		if rows, ok := field.Default.([]any); ok {
			converted := make([][]any, 0, len(rows))
			for _, row := range rows {
				cells, ok := row.([]any)
				if !ok {
					converted = nil
					break
				}
				converted = append(converted, cells)
			}
			if converted != nil {
				field.Default = converted
			}
		}
	}
	return field
}

func normaliseValue(value any) any {
	switch v := value.(type) {
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = normaliseValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normaliseValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normaliseValue(item)
		}
		return out
	}
	return value
}
