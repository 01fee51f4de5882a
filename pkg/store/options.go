package store

import (
	"log/slog"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/parser"
	"github.com/goliatone/go-paramconfig/pkg/profiler"
)

type config struct {
	query    string
	short    bool
	registry *parser.Registry
	logger   *slog.Logger
	profiler *profiler.Registry
}

// Option customises a Store.
type Option func(*config)

// WithQuery supplies the current URL query string, with or without the
// leading '?'.
func WithQuery(query string) Option {
	return func(c *config) {
		c.query = query
	}
}

// WithShortURL selects the compact encoding for both reading and writing.
func WithShortURL(short bool) Option {
	return func(c *config) {
		c.short = short
	}
}

// WithRegistry replaces the default parser registry, typically to add
// custom kinds.
func WithRegistry(registry *parser.Registry) Option {
	return func(c *config) {
		c.registry = registry
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProfiler times construction, dispatch and serialisation.
func WithProfiler(registry *profiler.Registry) Option {
	return func(c *config) {
		c.profiler = registry
	}
}

type serialiseConfig struct {
	mode      *codec.Mode
	extra     *string
	extraFunc func(Snapshot) string
}

// SerialiseOption customises SerialiseToURLParams and ShareURL.
type SerialiseOption func(*serialiseConfig)

// WithExtra appends the reserved extra pseudo-field. An empty string is
// still written.
func WithExtra(extra string) SerialiseOption {
	return func(c *serialiseConfig) {
		c.extra = &extra
	}
}

// WithExtraFunc derives the extra pseudo-field from the current state.
func WithExtraFunc(fn func(Snapshot) string) SerialiseOption {
	return func(c *serialiseConfig) {
		c.extraFunc = fn
	}
}

// InMode overrides the store's encoding for one call.
func InMode(mode codec.Mode) SerialiseOption {
	return func(c *serialiseConfig) {
		c.mode = &mode
	}
}

type listenerConfig struct {
	filter map[string]struct{}
}

// ListenerOption customises AddListener.
type ListenerOption func(*listenerConfig)

// Subscribe limits a listener to batches touching one of ids. Subscribing
// to nothing produces a listener that only fires on forced dispatch.
func Subscribe(ids ...string) ListenerOption {
	return func(c *listenerConfig) {
		c.filter = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			c.filter[id] = struct{}{}
		}
	}
}
