// Package loader reads field documents from files, fs.FS entries or HTTP and
// decodes them into a model.Form. JSON, YAML, TOML and OpenAPI documents are
// accepted.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-paramconfig/pkg/model"
)

var (
	ErrNilSource       = errors.New("loader: source is nil")
	ErrHTTPDisabled    = errors.New("loader: http support disabled")
	ErrNoFileSystem    = errors.New("loader: filesystem is not configured")
	ErrUnsupportedKind = errors.New("loader: unsupported source kind")
)

// Options configures source resolution and decoding.
type Options struct {
	// FileSystem backs SourceFromFS lookups.
	FileSystem fs.FS

	// HTTPClient is used for URL sources. Nil disables HTTP unless
	// AllowHTTPFallback is set.
	HTTPClient *http.Client

	// AllowHTTPFallback enables a default client for URL sources.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration

	// Operation selects the OpenAPI operation whose request body is imported.
	Operation string

	// Format overrides extension and content sniffing.
	Format Format
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithFileSystem injects an fs.FS for SourceFromFS lookups.
func WithFileSystem(files fs.FS) Option {
	return func(opts *Options) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithOperation selects the OpenAPI operation to import.
func WithOperation(id string) Option {
	return func(opts *Options) {
		opts.Operation = id
	}
}

// WithFormat forces the document format.
func WithFormat(format Format) Option {
	return func(opts *Options) {
		opts.Format = format
	}
}

// Loader resolves sources and decodes field documents.
type Loader struct {
	options Options
	http    *http.Client
}

// New constructs a Loader.
func New(options ...Option) *Loader {
	cfg := Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var client *http.Client
	switch {
	case cfg.HTTPClient != nil:
		clone := *cfg.HTTPClient
		if cfg.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = cfg.RequestTimeout
		}
		client = &clone
	case cfg.AllowHTTPFallback:
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Loader{options: cfg, http: client}
}

// Read fetches the raw bytes behind src.
func (l *Loader) Read(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	switch src.Kind() {
	case SourceKindFile:
		return loadFile(ctx, src.Location())
	case SourceKindFS:
		return loadFromFS(ctx, l.options.FileSystem, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.http, src.Location(), l.options.RequestTimeout)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, src.Kind())
}

// Load reads src and decodes it into a validated form.
func (l *Loader) Load(ctx context.Context, src Source) (model.Form, error) {
	data, err := l.Read(ctx, src)
	if err != nil {
		return model.Form{}, err
	}
	format := l.options.Format
	if format == "" {
		format = DetectFormat(src.Location(), data)
	}
	form, err := Decode(ctx, data, format, l.options.Operation)
	if err != nil {
		return model.Form{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}
	if err := model.Validate(form.Fields, nil); err != nil {
		return model.Form{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}
	return form, nil
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %q: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %q: %w", path, err)
	}
	return data, nil
}

func loadFromFS(ctx context.Context, filesystem fs.FS, name string) ([]byte, error) {
	if filesystem == nil {
		return nil, ErrNoFileSystem
	}
	if name == "" {
		return nil, errors.New("loader: fs path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(filesystem, name)
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %q: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("loader: fetch %q: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
