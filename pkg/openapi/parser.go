package openapi

import (
	"context"

	internalparser "github.com/goliatone/go-paramconfig/internal/openapi/parser"
	"github.com/goliatone/go-paramconfig/pkg/model"
)

// ExtensionKey is the schema extension that carries per-property overrides
// (kind, label, order, step, expandable, skip).
const ExtensionKey = internalparser.ExtensionKey

var (
	ErrEmptyDocument     = internalparser.ErrEmptyDocument
	ErrOperationNotFound = internalparser.ErrOperationNotFound
	ErrNoRequestSchema   = internalparser.ErrNoRequestSchema
)

// Parser turns an OpenAPI document into field lists.
type Parser interface {
	// Operations lists the operation ids whose request body has a schema.
	Operations(ctx context.Context, raw []byte) ([]string, error)
	// Form builds the fields for operationID. An empty id selects the only
	// candidate operation.
	Form(ctx context.Context, raw []byte, operationID string) (model.Form, error)
}

// ParserOptions configures NewParser.
type ParserOptions struct {
	// ResolveReferences validates the document and resolves $ref pointers
	// before fields are built.
	ResolveReferences bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithReferenceResolution toggles eager reference resolution.
func WithReferenceResolution(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.ResolveReferences = enabled
	}
}

// NewParser returns the kin-openapi backed parser.
func NewParser(options ...ParserOption) Parser {
	var cfg ParserOptions
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return internalparser.New(internalparser.Options{ResolveReferences: cfg.ResolveReferences})
}
