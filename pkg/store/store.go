// Package store coordinates the parsers of a field list: it resolves
// initial values from the URL query, fans change notifications out to
// listeners and serialises the live state back into a query string.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/goliatone/go-paramconfig/pkg/clipboard"
	"github.com/goliatone/go-paramconfig/pkg/codec"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/parser"
	"github.com/goliatone/go-paramconfig/pkg/profiler"
)

var (
	ErrMissingContainer = errors.New("store: container is required")
	ErrUnknownField     = errors.New("store: unknown field")
	ErrNotButton        = errors.New("store: field is not a button")
	ErrMissingButton    = errors.New("store: clipboard button is required")
	ErrMissingClipboard = errors.New("store: clipboard writer is required")
)

// Snapshot maps field ids to their current values.
type Snapshot map[string]any

// Clone deep-copies s so collection rows can be modified freely.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, value := range s {
		if rows, ok := value.([][]any); ok {
			value = codec.CloneRows(rows)
		}
		out[id] = value
	}
	return out
}

// Listener receives the full state and the ids updated since the previous
// dispatch that the listener subscribed to.
type Listener func(state Snapshot, updates []string)

// item is the per-field state. The control stays authoritative for the
// value; only the button edge flag lives here.
type item struct {
	field   model.Field
	parser  parser.Parser
	clicked bool
}

type listener struct {
	fn     Listener
	filter map[string]struct{}
}

// Store holds one parser per field. It is ready once New returns and is
// never torn down; its controls live as long as their container.
type Store struct {
	logger   *slog.Logger
	profiler *profiler.Registry
	mode     codec.Mode
	query    codec.Query

	items []*item
	index map[string]*item

	mu          sync.Mutex
	listeners   map[int]*listener
	order       []int
	nextID      int
	pending     []string
	forced      bool
	dispatching bool
}

// New materialises every field under container in declared order. Fields
// are validated and all parsers are built before anything is mounted.
func New(container control.Container, fields []model.Field, options ...Option) (*Store, error) {
	if isNil(container) {
		return nil, ErrMissingContainer
	}

	cfg := config{logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.registry == nil {
		cfg.registry = parser.NewDefaultRegistry(parser.WithLogger(cfg.logger))
	}
	defer cfg.profiler.Track("store.new")()

	if err := model.Validate(fields, cfg.registry.Has); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	s := &Store{
		logger:    cfg.logger.With("component", "store"),
		profiler:  cfg.profiler,
		mode:      codec.ModeFor(cfg.short),
		query:     codec.ParseQuery(cfg.query, codec.ModeFor(cfg.short)),
		index:     make(map[string]*item, len(fields)),
		listeners: make(map[int]*listener),
	}

	for _, field := range fields {
		p, err := cfg.registry.New(field)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		it := &item{field: field, parser: p}
		s.items = append(s.items, it)
		s.index[field.ID] = it
	}

	for _, it := range s.items {
		initial := s.initialValue(it)
		stop := s.profiler.Track("parser.materialize")
		err := it.parser.Materialize(container, it.field.ID, initial, s.changeHandler(it))
		stop()
		if err != nil {
			return nil, fmt.Errorf("store: materialize %q: %w", it.field.ID, err)
		}
	}
	return s, nil
}

func isNil(c control.Container) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (s *Store) initialValue(it *item) any {
	if !it.field.IsSerialisable() {
		return nil
	}
	raw, ok := s.query.Get(codec.QueryKey(it.field.ID, s.mode))
	if !ok {
		return nil
	}
	value, err := it.parser.Decode(raw, s.mode)
	if err != nil {
		s.logger.Debug("query value rejected, using default", "field", it.field.ID, "raw", raw, "error", err)
		return nil
	}
	return value
}

func (s *Store) changeHandler(it *item) func(any) {
	id := it.field.ID
	isButton := it.field.Kind == model.KindButton
	return func(any) {
		s.mu.Lock()
		if isButton {
			it.clicked = true
		}
		s.pending = append(s.pending, id)
		s.mu.Unlock()
		s.TellListeners(false)
	}
}

// Mode reports the encoding used for query keys and values.
func (s *Store) Mode() codec.Mode { return s.mode }

// Fields returns the configured fields in declared order.
func (s *Store) Fields() []model.Field {
	out := make([]model.Field, len(s.items))
	for i, it := range s.items {
		out[i] = it.field
	}
	return out
}

// Extra returns the extra pseudo-field of the query the store was built
// from.
func (s *Store) Extra() (string, bool) {
	return s.query.Extra()
}

func (s *Store) lookup(id string) (*item, error) {
	it, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	return it, nil
}

// Value reads the live value of a field from its control.
func (s *Store) Value(id string) (any, error) {
	it, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return it.parser.Value(), nil
}

// MustValue is Value for ids known to exist; it panics otherwise.
func (s *Store) MustValue(id string) any {
	value, err := s.Value(id)
	if err != nil {
		panic(err)
	}
	return value
}

// SetValue writes v into the field's control. Listeners are not notified.
func (s *Store) SetValue(id string, v any) error {
	it, err := s.lookup(id)
	if err != nil {
		return err
	}
	if err := it.parser.SetValue(v); err != nil {
		return fmt.Errorf("store: set %q: %w", id, err)
	}
	return nil
}

// Clicked reports whether a button was pressed since the previous call and
// clears the flag.
func (s *Store) Clicked(id string) (bool, error) {
	it, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	if it.field.Kind != model.KindButton {
		return false, fmt.Errorf("%w: %q", ErrNotButton, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clicked := it.clicked
	it.clicked = false
	return clicked, nil
}

// Snapshot reads every field. Buttons map to nil.
func (s *Store) Snapshot() Snapshot {
	out := make(Snapshot, len(s.items))
	for _, it := range s.items {
		value := it.parser.Value()
		if rows, ok := value.([][]any); ok {
			value = codec.CloneRows(rows)
		}
		out[it.field.ID] = value
	}
	return out
}

// AddListener registers fn and calls it once straight away with the
// current state and no updates. The returned function unregisters it.
func (s *Store) AddListener(fn Listener, options ...ListenerOption) (remove func()) {
	if fn == nil {
		return func() {}
	}
	var cfg listenerConfig
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = &listener{fn: fn, filter: cfg.filter}
	s.order = append(s.order, id)
	s.mu.Unlock()

	s.invoke(id, fn, s.Snapshot(), []string{})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, candidate := range s.order {
				if candidate == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// TellListeners delivers the pending batch. With force every listener is
// called, even when nothing changed. Calls made while another dispatch is
// running are folded into that dispatch's next round.
func (s *Store) TellListeners(force bool) {
	s.mu.Lock()
	if force {
		s.forced = true
	}
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.pending) > 0 || s.forced {
		batch := dedupe(s.pending)
		forced := s.forced
		s.pending = nil
		s.forced = false
		targets := make([]int, len(s.order))
		copy(targets, s.order)
		s.mu.Unlock()

		s.dispatch(batch, forced, targets)

		s.mu.Lock()
	}
	s.dispatching = false
	s.mu.Unlock()
}

func (s *Store) dispatch(batch []string, forced bool, targets []int) {
	defer s.profiler.Track("store.dispatch")()
	state := s.Snapshot()
	for _, id := range targets {
		s.mu.Lock()
		l, ok := s.listeners[id]
		s.mu.Unlock()
		if !ok {
			continue
		}
		updates := relevant(batch, l.filter)
		if !forced && len(updates) == 0 {
			continue
		}
		s.invoke(id, l.fn, state.Clone(), updates)
	}
}

func (s *Store) invoke(id int, fn Listener, state Snapshot, updates []string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("listener panicked", "listener", id, "updates", updates, "panic", r)
		}
	}()
	fn(state, updates)
}

func relevant(batch []string, filter map[string]struct{}) []string {
	if filter == nil {
		return append([]string{}, batch...)
	}
	out := []string{}
	for _, id := range batch {
		if _, ok := filter[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SerialiseToURLParams encodes every serialisable field whose value differs
// from its default, in declared order, joined by '&'. No leading '?'.
func (s *Store) SerialiseToURLParams(options ...SerialiseOption) string {
	defer s.profiler.Track("store.serialise")()

	var cfg serialiseConfig
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	mode := s.mode
	if cfg.mode != nil {
		mode = *cfg.mode
	}

	parts := make([]string, 0, len(s.items)+1)
	for _, it := range s.items {
		if !it.field.IsSerialisable() {
			continue
		}
		encoded, ok := it.parser.Serialise(mode)
		if !ok {
			continue
		}
		parts = append(parts, codec.Pair(codec.QueryKey(it.field.ID, mode), encoded, mode))
	}

	switch {
	case cfg.extraFunc != nil:
		parts = append(parts, codec.ExtraPair(cfg.extraFunc(s.Snapshot()), mode))
	case cfg.extra != nil:
		parts = append(parts, codec.ExtraPair(*cfg.extra, mode))
	}
	return strings.Join(parts, "&")
}

// ShareURL returns scheme://host/path with the serialised state as query.
// User info and fragment of base are dropped.
func (s *Store) ShareURL(base *url.URL, options ...SerialiseOption) string {
	params := s.SerialiseToURLParams(options...)
	var b strings.Builder
	if base != nil {
		if base.Scheme != "" {
			b.WriteString(base.Scheme)
			b.WriteString("://")
		}
		b.WriteString(base.Host)
		b.WriteString(base.EscapedPath())
	}
	if params != "" {
		b.WriteByte('?')
		b.WriteString(params)
	}
	return b.String()
}

// AddCopyToClipboardHandler copies ShareURL to w whenever button is
// activated. Copy failures are logged.
func (s *Store) AddCopyToClipboardHandler(button control.Element, w clipboard.Writer, base *url.URL, options ...SerialiseOption) error {
	if button == nil {
		return ErrMissingButton
	}
	if w == nil {
		return ErrMissingClipboard
	}
	button.Listen(func(any) {
		link := s.ShareURL(base, options...)
		if err := w.Copy(link); err != nil {
			s.logger.Warn("copy to clipboard failed", "error", err)
			return
		}
		s.logger.Debug("share link copied", "length", len(link))
	})
	return nil
}
