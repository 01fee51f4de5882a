// Package parser maps OpenAPI request bodies onto field configurations
// using kin-openapi. Each property of an operation's request schema becomes
// one field; an x-paramconfig extension object may refine the mapping.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-paramconfig/internal/model"
)

var (
	ErrEmptyDocument     = errors.New("openapi parser: document payload is empty")
	ErrOperationNotFound = errors.New("openapi parser: operation not found")
	ErrNoRequestSchema   = errors.New("openapi parser: operation has no request body schema")
)

// Options tunes document loading.
type Options struct {
	// ResolveReferences allows external $ref targets and validates the
	// document after loading.
	ResolveReferences bool
}

// Parser extracts field configurations from OpenAPI documents.
type Parser struct {
	options Options
}

// New constructs a Parser.
func New(options Options) *Parser {
	return &Parser{options: options}
}

func (p *Parser) load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: p.options.ResolveReferences,
	}
	document, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.ResolveReferences {
		if err := document.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	return document, nil
}

type operationEntry struct {
	id        string
	operation *openapi3.Operation
}

func collectOperations(document *openapi3.T) map[string]operationEntry {
	operations := make(map[string]operationEntry)
	if document.Paths == nil {
		return operations
	}
	for path, item := range document.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation == nil {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			operations[id] = operationEntry{id: id, operation: operation}
		}
	}
	return operations
}

// Operations lists the operation ids that carry a request body, sorted.
func (p *Parser) Operations(ctx context.Context, raw []byte) ([]string, error) {
	document, err := p.load(ctx, raw)
	if err != nil {
		return nil, err
	}
	var ids []string
	for id, entry := range collectOperations(document) {
		if requestSchema(entry.operation.RequestBody) != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Form builds the field list for operationID. An empty operationID selects
// the only operation with a request body, failing when there are several.
func (p *Parser) Form(ctx context.Context, raw []byte, operationID string) (model.Form, error) {
	document, err := p.load(ctx, raw)
	if err != nil {
		return model.Form{}, err
	}
	operations := collectOperations(document)

	if operationID == "" {
		var candidates []string
		for id, entry := range operations {
			if requestSchema(entry.operation.RequestBody) != nil {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) != 1 {
			sort.Strings(candidates)
			return model.Form{}, fmt.Errorf("%w: choose one of %v", ErrOperationNotFound, candidates)
		}
		operationID = candidates[0]
	}

	entry, ok := operations[operationID]
	if !ok {
		return model.Form{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	schema := requestSchema(entry.operation.RequestBody)
	if schema == nil {
		return model.Form{}, fmt.Errorf("%w: %q", ErrNoRequestSchema, operationID)
	}

	fields, err := fieldsFromProperties(schema, 0)
	if err != nil {
		return model.Form{}, fmt.Errorf("openapi parser: operation %q: %w", operationID, err)
	}
	title := entry.operation.Summary
	if title == "" {
		title = operationID
	}
	return model.Form{Title: title, Fields: fields}, nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}
