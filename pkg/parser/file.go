package parser

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vincent-petithory/dataurl"

	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
)

// file turns a control.File selection into a data URL. Reads run on their
// own goroutine; reads of the same field are serialised.
type file struct {
	field  model.Field
	codec  codec.Codec
	logger *slog.Logger

	reading sync.Mutex

	mu      sync.Mutex
	element control.Element
	value   string
}

// NewFile builds the parser for file fields.
func NewFile(field model.Field, registry *Registry) (Parser, error) {
	c, err := codec.ForField(field)
	if err != nil {
		return nil, err
	}
	return &file{
		field:  field,
		codec:  c,
		logger: registry.Logger().With("field", field.ID),
		value:  c.Default().(string),
	}, nil
}

func (p *file) Field() model.Field { return p.field }
func (p *file) Default() any       { return p.codec.Default() }

func (p *file) Decode(raw string, mode codec.Mode) (any, error) {
	return p.codec.Decode(raw, mode)
}

func (p *file) Materialize(c control.Container, id string, initial any, onChange func(any)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element != nil {
		return ErrMaterialized
	}
	if s, ok := initial.(string); ok {
		p.value = s
	}
	element, err := c.Mount(descriptorFor(p.field, id, p.value))
	if err != nil {
		return err
	}
	p.element = element

	element.Listen(func(raw any) {
		switch v := raw.(type) {
		case control.File:
			go p.read(v, onChange)
		case *control.File:
			if v != nil {
				go p.read(*v, onChange)
			}
		case string:
			p.store(v)
			if onChange != nil {
				onChange(v)
			}
		default:
			p.logger.Debug("ignoring file input", "type", fmt.Sprintf("%T", raw))
			p.store(p.current())
		}
	})
	return nil
}

func (p *file) read(f control.File, onChange func(any)) {
	p.reading.Lock()
	defer p.reading.Unlock()

	url, err := DataURL(f)
	if err != nil {
		p.logger.Warn("file read failed", "name", f.Name, "error", err)
		p.store(p.current())
		return
	}
	p.store(url)
	if onChange != nil {
		onChange(url)
	}
}

// DataURL reads f fully and returns it as a base64 data URL. The media type
// comes from f.Type, then the file extension, then content sniffing.
func DataURL(f control.File) (string, error) {
	if f.Reader == nil {
		return "", fmt.Errorf("parser: file %q has no reader", f.Name)
	}
	data, err := io.ReadAll(f.Reader)
	if err != nil {
		return "", fmt.Errorf("parser: read %q: %w", f.Name, err)
	}
	declared := strings.TrimSpace(f.Type)
	if declared == "" {
		declared = mime.TypeByExtension(filepath.Ext(f.Name))
	}
	if declared == "" {
		declared = http.DetectContentType(data)
	}
	mediaType, params, err := mime.ParseMediaType(declared)
	if err != nil || strings.Count(mediaType, "/") != 1 {
		mediaType, params = "application/octet-stream", nil
	}
	pairs := make([]string, 0, 2*len(params))
	for key, value := range params {
		pairs = append(pairs, key, value)
	}
	return dataurl.New(data, mediaType, pairs...).String(), nil
}

func (p *file) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

func (p *file) store(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
	if p.element != nil {
		p.element.SetValue(v)
	}
}

// Value is the data URL of the last completed read. A selection still being
// read does not count.
func (p *file) Value() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.element != nil {
		if s, ok := p.element.Value().(string); ok {
			return s
		}
	}
	return p.value
}

func (p *file) SetValue(v any) error {
	s, err := p.codec.Coerce(v)
	if err != nil {
		return err
	}
	p.store(s.(string))
	return nil
}

func (p *file) Changed() bool {
	return !p.codec.Equal(p.Value(), p.codec.Default())
}

func (p *file) Serialise(mode codec.Mode) (string, bool) {
	return serialise(p.codec, p.Value(), p.Changed(), mode, p.logger)
}
