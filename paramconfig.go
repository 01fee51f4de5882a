// Package paramconfig materialises a declarative list of sketch parameters
// into controls, keeps their state in sync with a URL query string and fans
// changes out to listeners.
//
//	doc := control.NewDocument("params")
//	root, _ := doc.Container("params")
//	cfg, err := paramconfig.New(root, fields, paramconfig.WithQuery(rawQuery))
//	cfg.AddListener(func(state paramconfig.Snapshot, updates []string) { ... })
//
// The heavy lifting lives in pkg/store; this package re-exports the common
// entry points.
package paramconfig

import (
	"context"

	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/loader"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/store"
)

// ParamConfig is the state store for one field list.
type ParamConfig = store.Store

type (
	Field           = model.Field
	Kind            = model.Kind
	Attrs           = model.Attrs
	Snapshot        = store.Snapshot
	Listener        = store.Listener
	Option          = store.Option
	SerialiseOption = store.SerialiseOption
	ListenerOption  = store.ListenerOption
)

var (
	WithQuery     = store.WithQuery
	WithShortURL  = store.WithShortURL
	WithRegistry  = store.WithRegistry
	WithLogger    = store.WithLogger
	WithProfiler  = store.WithProfiler
	WithExtra     = store.WithExtra
	WithExtraFunc = store.WithExtraFunc
	InMode        = store.InMode
	Subscribe     = store.Subscribe
)

var (
	ErrMissingContainer = store.ErrMissingContainer
	ErrUnknownField     = store.ErrUnknownField
)

// New validates fields and mounts one control per field on container.
func New(container control.Container, fields []Field, options ...Option) (*ParamConfig, error) {
	return store.New(container, fields, options...)
}

// LoadFields reads a field configuration from a file path or an http(s)
// URL. Options configure the loader.
func LoadFields(ctx context.Context, location string, options ...loader.Option) (model.Form, error) {
	src, err := loader.ParseSource(location)
	if err != nil {
		return model.Form{}, err
	}
	return loader.New(options...).Load(ctx, src)
}
