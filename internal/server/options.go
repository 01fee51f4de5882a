package server

import (
	"io/fs"
	"log/slog"
	"net/url"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-paramconfig/pkg/parser"
	"github.com/goliatone/go-paramconfig/pkg/profiler"
)

// Option configures the server.
type Option func(*Server)

// WithTitle sets the page heading.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// WithBaseURL fixes the origin used for share links. Without it the
// request host is used.
func WithBaseURL(base *url.URL) Option {
	return func(s *Server) {
		s.baseURL = base
	}
}

// WithShortURL switches sessions to the compact encoding.
func WithShortURL(short bool) Option {
	return func(s *Server) {
		s.short = short
	}
}

// WithExtra appends the extra pseudo-field to every serialised query.
func WithExtra(extra string) Option {
	return func(s *Server) {
		s.extra = &extra
	}
}

// WithRegistry supplies the parser registry used for every session.
func WithRegistry(registry *parser.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithProfiler records store timings and serves them on /metrics.
func WithProfiler(registry *profiler.Registry) Option {
	return func(s *Server) {
		s.profiler = registry
	}
}

// WithTheme passes go-theme settings to the HTML renderer.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithRuntimeFS serves the browser runtime under /runtime/.
func WithRuntimeFS(files fs.FS, script string) Option {
	return func(s *Server) {
		s.runtimeFS = files
		s.runtimeScript = script
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}
