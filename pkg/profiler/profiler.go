// Package profiler times named calls. A Registry is created explicitly and
// handed to the components it should observe; there is no process-wide
// table. Every Registry also exports its measurements as Prometheus
// metrics.
package profiler

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type config struct {
	namespace string
	registry  *prometheus.Registry
	buckets   []float64
	now       func() time.Time
}

// Option customises a Registry.
type Option func(*config)

// WithNamespace prefixes the exported metric names (default "paramconfig").
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithPrometheus registers the metrics on an existing Prometheus registry.
func WithPrometheus(registry *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = registry
	}
}

// WithBuckets overrides the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *config) {
		c.buckets = buckets
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// Stat aggregates the calls recorded under one name.
type Stat struct {
	Name  string
	Calls uint64
	Total time.Duration
	Max   time.Duration
}

// Mean is the average call duration.
func (s Stat) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Registry records call statistics. A nil *Registry is valid and records
// nothing, so components can hold one unconditionally.
type Registry struct {
	mu       sync.Mutex
	stats    map[string]*Stat
	enabled  atomic.Bool
	now      func() time.Time
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates an enabled Registry.
func New(options ...Option) *Registry {
	cfg := config{
		namespace: "paramconfig",
		buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.registry)
	r := &Registry{
		stats:    make(map[string]*Stat),
		now:      cfg.now,
		registry: cfg.registry,
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "calls_total",
			Help:      "Number of profiled calls by name",
		}, []string{"name"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of profiled calls by name",
			Buckets:   cfg.buckets,
		}, []string{"name"}),
	}
	r.enabled.Store(true)
	return r
}

// SetEnabled switches recording on or off.
func (r *Registry) SetEnabled(enabled bool) {
	if r != nil {
		r.enabled.Store(enabled)
	}
}

// Track starts timing name and returns the function that stops it:
//
//	defer reg.Track("store.dispatch")()
func (r *Registry) Track(name string) func() {
	if r == nil || !r.enabled.Load() {
		return func() {}
	}
	start := r.now()
	return func() {
		r.Record(name, r.now().Sub(start))
	}
}

// Record adds one call of the given duration.
func (r *Registry) Record(name string, elapsed time.Duration) {
	if r == nil || !r.enabled.Load() {
		return
	}
	r.mu.Lock()
	stat, ok := r.stats[name]
	if !ok {
		stat = &Stat{Name: name}
		r.stats[name] = stat
	}
	stat.Calls++
	stat.Total += elapsed
	if elapsed > stat.Max {
		stat.Max = elapsed
	}
	r.mu.Unlock()

	r.calls.WithLabelValues(name).Inc()
	r.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// Stats returns a copy of the aggregates sorted by name.
func (r *Registry) Stats() []Stat {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stat, 0, len(r.stats))
	for _, stat := range r.stats {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset drops the aggregates. Exported Prometheus counters keep counting.
func (r *Registry) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats = make(map[string]*Stat)
	r.mu.Unlock()
}

// Report writes an aligned table of the aggregates.
func (r *Registry) Report(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCALLS\tTOTAL\tMEAN\tMAX")
	for _, stat := range r.Stats() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", stat.Name, stat.Calls, stat.Total, stat.Mean(), stat.Max)
	}
	return tw.Flush()
}

// Gatherer exposes the Prometheus registry backing r.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
