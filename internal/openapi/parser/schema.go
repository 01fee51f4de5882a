package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-paramconfig/internal/model"
)

// ExtensionKey names the vendor extension read from property schemas:
//
//	x-paramconfig:
//	  kind: range
//	  label: Stroke width
//	  order: 2
//	  step: 0.5
//	  expandable: false
//	  skip: true
const ExtensionKey = "x-paramconfig"

type property struct {
	order float64
	field model.Field
}

func fieldsFromProperties(schema *openapi3.Schema, depth int) ([]model.Field, error) {
	props := make([]property, 0, len(schema.Properties))
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		ext := extension(ref.Value.Extensions)
		if skip, _ := ext["skip"].(bool); skip {
			continue
		}
		field, ok, err := fieldFromSchema(name, ref.Value, ext, depth)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		order, hasOrder := number(ext["order"])
		if !hasOrder {
			order = float64(len(schema.Properties))
		}
		props = append(props, property{order: order, field: field})
	}
	sort.SliceStable(props, func(i, j int) bool {
		if props[i].order != props[j].order {
			return props[i].order < props[j].order
		}
		return props[i].field.ID < props[j].field.ID
	})

	fields := make([]model.Field, len(props))
	for i, prop := range props {
		fields[i] = prop.field
	}
	return fields, nil
}

func fieldFromSchema(name string, schema *openapi3.Schema, ext map[string]any, depth int) (model.Field, bool, error) {
	field := model.Field{
		ID:      name,
		Label:   firstNonEmpty(stringValue(ext["label"]), schema.Title),
		Tooltip: strings.TrimSpace(schema.Description),
		Default: schema.Default,
	}

	kind := model.Kind(stringValue(ext["kind"]))
	if kind == "" {
		kind = inferKind(schema)
	}
	if kind == "" {
		return model.Field{}, false, nil
	}
	field.Kind = kind

	switch kind {
	case model.KindNumber, model.KindRange:
		field.Attrs = numericAttrs(schema, ext)
	case model.KindSelect:
		for _, option := range schema.Enum {
			field.Options = append(field.Options, fmt.Sprint(option))
		}
		if len(field.Options) == 0 {
			return model.Field{}, false, fmt.Errorf("property %q: select needs an enum", name)
		}
	case model.KindColor:
		if s, ok := field.Default.(string); ok {
			field.Default = strings.TrimPrefix(s, "#")
		}
	case model.KindButton, model.KindFile:
		field.Default = nil
	case model.KindCollection:
		if depth > 0 {
			return model.Field{}, false, fmt.Errorf("property %q: %w", name, model.ErrNestedCollection)
		}
		if schema.Items == nil || schema.Items.Value == nil {
			return model.Field{}, false, fmt.Errorf("property %q: collection needs object items", name)
		}
		children, err := fieldsFromProperties(schema.Items.Value, depth+1)
		if err != nil {
			return model.Field{}, false, fmt.Errorf("property %q: %w", name, err)
		}
		field.Fields = children
		field.Expandable = true
		if expandable, ok := ext["expandable"].(bool); ok {
			field.Expandable = expandable
		}
	}
	return field, true, nil
}

func inferKind(schema *openapi3.Schema) model.Kind {
	types := schemaTypes(schema.Type)
	switch {
	case types["boolean"]:
		return model.KindCheckbox
	case types["integer"], types["number"]:
		if schema.Min != nil && schema.Max != nil {
			return model.KindRange
		}
		return model.KindNumber
	case types["array"]:
		if schema.Items != nil && schema.Items.Value != nil && len(schema.Items.Value.Properties) > 0 {
			return model.KindCollection
		}
		return ""
	case types["string"]:
		switch {
		case len(schema.Enum) > 0:
			return model.KindSelect
		case schema.Format == "date-time", schema.Format == "date":
			return model.KindDatetime
		case schema.Format == "color", schema.Pattern == "^[0-9a-fA-F]{6}$":
			return model.KindColor
		case schema.Format == "binary", schema.Format == "byte", schema.Format == "data-url":
			return model.KindFile
		}
		return model.KindText
	}
	return ""
}

func schemaTypes(types *openapi3.Types) map[string]bool {
	out := make(map[string]bool)
	if types == nil {
		return out
	}
	for _, value := range types.Slice() {
		out[value] = true
	}
	return out
}

func numericAttrs(schema *openapi3.Schema, ext map[string]any) *model.Attrs {
	attrs := &model.Attrs{}
	if schema.Min != nil {
		value := *schema.Min
		attrs.Min = &value
	}
	if schema.Max != nil {
		value := *schema.Max
		attrs.Max = &value
	}
	if step, ok := number(ext["step"]); ok && step > 0 {
		attrs.Step = &step
	} else if schema.MultipleOf != nil && *schema.MultipleOf > 0 {
		value := *schema.MultipleOf
		attrs.Step = &value
	} else if schemaTypes(schema.Type)["integer"] {
		one := 1.0
		attrs.Step = &one
	}
	if attrs.Min == nil && attrs.Max == nil && attrs.Step == nil {
		return nil
	}
	return attrs
}

func extension(raw map[string]any) map[string]any {
	value, ok := raw[ExtensionKey]
	if !ok {
		return nil
	}
	mapped, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	cloned := make(map[string]any, len(mapped))
	for k, v := range mapped {
		cloned[k] = v
	}
	return cloned
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func stringValue(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
