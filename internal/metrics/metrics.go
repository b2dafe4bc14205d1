package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace prefixes every metric name (default "lute").
	Namespace string
	// Registry receives the collectors (default prometheus.DefaultRegisterer).
	Registry prometheus.Registerer
	// DurationBuckets bounds the render duration histogram, in seconds.
	DurationBuckets []float64
}

// Option mutates Config.
type Option func(*Config)

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithRegistry registers the collectors on registry instead of the default
// registerer.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

// WithDurationBuckets overrides the duration histogram buckets.
func WithDurationBuckets(buckets []float64) Option {
	return func(c *Config) { c.DurationBuckets = buckets }
}

// Metrics records render activity. A nil *Metrics ignores every call.
type Metrics struct {
	renders        *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	outputBytes    *prometheus.HistogramVec
	parseFallbacks prometheus.Counter
	archiveReuse   prometheus.Counter
}

// New registers the collectors and returns the recorder.
func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace:       "lute",
		Registry:        prometheus.DefaultRegisterer,
		DurationBuckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	factory := promauto.With(cfg.Registry)

	return &Metrics{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "renders_total",
			Help:      "Render calls by output format and outcome.",
		}, []string{"format", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent parsing and rendering one document.",
			Buckets:   cfg.DurationBuckets,
		}, []string{"format"}),
		outputBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "render_output_bytes",
			Help:      "Size of the assembled output.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8), // 64B to 1MiB
		}, []string{"format"}),
		parseFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "parse_fallbacks_total",
			Help:      "Documents that could not be parsed and were rendered as a single paragraph.",
		}),
		archiveReuse: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "archive_reuse_total",
			Help:      "Document renders answered from the render archive.",
		}),
	}
}

// ObserveRender records one finished render.
func (m *Metrics) ObserveRender(format, outcome string, elapsed time.Duration, outputBytes int) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(format, outcome).Inc()
	m.duration.WithLabelValues(format).Observe(elapsed.Seconds())
	m.outputBytes.WithLabelValues(format).Observe(float64(outputBytes))
}

// ParseFallback counts a parser failure.
func (m *Metrics) ParseFallback() {
	if m == nil {
		return
	}
	m.parseFallbacks.Inc()
}

// ArchiveReused counts a render served from the archive.
func (m *Metrics) ArchiveReused() {
	if m == nil {
		return
	}
	m.archiveReuse.Inc()
}
