package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFieldIDMissing     = errors.New("model: field id is required")
	ErrDuplicateFieldID   = errors.New("model: duplicate field id")
	ErrUnknownKind        = errors.New("model: unknown field kind")
	ErrSelectOptions      = errors.New("model: select field requires options")
	ErrCollectionFields   = errors.New("model: collection field requires child fields")
	ErrNestedCollection   = errors.New("model: collections cannot nest collections")
	ErrInvalidStep        = errors.New("model: step must be positive")
	ErrCollectionDefaults = errors.New("model: collection default rows must match field count")
)

// Validate checks a field list before it is materialised. Kinds outside the
// built-in set are accepted when known reports them as registered.
func Validate(fields []Field, known func(Kind) bool) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		id := strings.TrimSpace(field.ID)
		if id == "" {
			return ErrFieldIDMissing
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateFieldID, id)
		}
		seen[id] = struct{}{}
		if err := validateField(field, known); err != nil {
			return fmt.Errorf("field %q: %w", id, err)
		}
	}
	return nil
}

func validateField(field Field, known func(Kind) bool) error {
	if !isBuiltin(field.Kind) && (known == nil || !known(field.Kind)) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, field.Kind)
	}
	if field.Attrs != nil && field.Attrs.Step != nil && *field.Attrs.Step <= 0 {
		return ErrInvalidStep
	}

	switch field.Kind {
	case KindSelect:
		if len(field.Options) == 0 {
			return ErrSelectOptions
		}
	case KindCollection:
		if len(field.Fields) == 0 {
			return ErrCollectionFields
		}
		seen := make(map[string]struct{}, len(field.Fields))
		for _, child := range field.Fields {
			if child.Kind == KindCollection {
				return ErrNestedCollection
			}
			id := strings.TrimSpace(child.ID)
			if id == "" {
				return ErrFieldIDMissing
			}
			if _, exists := seen[id]; exists {
				return fmt.Errorf("%w: %q", ErrDuplicateFieldID, id)
			}
			seen[id] = struct{}{}
			if err := validateField(child, known); err != nil {
				return fmt.Errorf("child %q: %w", id, err)
			}
		}
		if rows, ok := field.Default.([][]any); ok {
			for _, row := range rows {
				if len(row) != len(field.Fields) {
					return ErrCollectionDefaults
				}
			}
		}
	}
	return nil
}

func isBuiltin(kind Kind) bool {
	for _, candidate := range Kinds() {
		if candidate == kind {
			return true
		}
	}
	return false
}
