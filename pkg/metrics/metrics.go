// Package metrics provides Prometheus instrumentation for flowchan components.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for flowchan components.
type Registry struct {
	// Channel Metrics
	ChannelSent      *prometheus.CounterVec
	ChannelReceived  *prometheus.CounterVec
	ChannelSenders   *prometheus.GaugeVec
	ChannelPending   *prometheus.GaugeVec
	ChannelBuffered  *prometheus.GaugeVec
	ChannelBatchSize *prometheus.HistogramVec
	ChannelWaits     *prometheus.CounterVec
	ChannelClosures  *prometheus.CounterVec

	// Writer Metrics
	WriterFlushes      *prometheus.CounterVec
	WriterBytesWritten *prometheus.CounterVec
	WriterErrors       *prometheus.CounterVec

	// Bridge Metrics
	BridgeItems  *prometheus.CounterVec
	BridgeErrors *prometheus.CounterVec

	// Reporter Metrics
	ReporterRuns *prometheus.CounterVec
}

// DefaultRegistry is the registry used when a component enables metrics
// without naming a Prometheus registerer.
var DefaultRegistry *Registry

type cacheKey struct {
	reg       prometheus.Registerer
	namespace string
}

var (
	cacheMu sync.Mutex
	cache   = map[cacheKey]*Registry{}
)

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
	cache[cacheKey{prometheus.DefaultRegisterer, DefaultNamespace}] = DefaultRegistry
}

// Resolve returns the Registry for config, or nil when metrics are disabled.
// Registries are cached per (registerer, namespace) so any number of
// components can share one Prometheus registry; constant labels of the first
// config seen for a key win.
func Resolve(config Config) *Registry {
	if !config.Enabled {
		return nil
	}

	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	key := cacheKey{reg, ns}
	if r, ok := cache[key]; ok {
		return r
	}
	r := NewRegistryWithConfig(Config{
		Enabled:   true,
		Registry:  reg,
		Namespace: ns,
		Labels:    config.Labels,
	})
	cache[key] = r
	return r
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
// Registering twice on the same registerer panics; use Resolve to share.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Enabled: true, Registry: reg})
}

// NewRegistryWithConfig creates a registry honoring the namespace and
// constant labels of config.
func NewRegistryWithConfig(config Config) *Registry {
	factory := promauto.With(config.Registry)

	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	labels := config.Labels

	return &Registry{
		ChannelSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "sent_total",
				Help:        "Total number of items sent into the channel",
				ConstLabels: labels,
			},
			[]string{"channel"},
		),

		ChannelReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "received_total",
				Help:        "Total number of items delivered to the receiver",
				ConstLabels: labels,
			},
			[]string{"channel"},
		),

		ChannelSenders: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "senders",
				Help:        "Number of live sender handles",
				ConstLabels: labels,
			},
			[]string{"channel"},
		),

		ChannelPending: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "pending",
				Help:        "Items waiting in the shared queue",
				ConstLabels: labels,
			},
			[]string{"channel"},
		),

		ChannelBuffered: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "buffered",
				Help:        "Items held in the receiver's local buffer at the last report",
				ConstLabels: labels,
			},
			[]string{"channel"},
		),

		ChannelBatchSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "batch_size",
				Help:        "Number of items moved per queue swap",
				Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
				ConstLabels: labels,
			},
			[]string{"channel"},
		),

		ChannelWaits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "waits_total",
				Help:        "Number of times the receiver blocked waiting for data",
				ConstLabels: labels,
			},
			[]string{"channel"},
		),

		ChannelClosures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "channel",
				Name:        "closures_total",
				Help:        "Channel close events by side (senders, receiver)",
				ConstLabels: labels,
			},
			[]string{"channel", "side"},
		),

		WriterFlushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "flushes_total",
				Help:        "Total number of writer flushes",
				ConstLabels: labels,
			},
			[]string{"writer"},
		),

		WriterBytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "bytes_written_total",
				Help:        "Total bytes written to the underlying writer",
				ConstLabels: labels,
			},
			[]string{"writer"},
		),

		WriterErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "writer",
				Name:        "errors_total",
				Help:        "Total number of failed flushes",
				ConstLabels: labels,
			},
			[]string{"writer"},
		),

		BridgeItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "bridge",
				Name:        "items_total",
				Help:        "Items moved between a channel and an external list",
				ConstLabels: labels,
			},
			[]string{"bridge", "direction"},
		),

		BridgeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "bridge",
				Name:        "errors_total",
				Help:        "Bridge failures including skipped payloads",
				ConstLabels: labels,
			},
			[]string{"bridge", "direction"},
		),

		ReporterRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "reporter",
				Name:        "runs_total",
				Help:        "Number of completed stats reports",
				ConstLabels: labels,
			},
			[]string{"reporter"},
		),
	}
}
