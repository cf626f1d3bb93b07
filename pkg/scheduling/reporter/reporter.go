package reporter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/vnykmshr/flowchan/internal/logging"
	gferrors "github.com/vnykmshr/flowchan/pkg/common/errors"
	"github.com/vnykmshr/flowchan/pkg/common/validation"
	"github.com/vnykmshr/flowchan/pkg/metrics"
	"github.com/vnykmshr/flowchan/pkg/streaming/mpsc"
)

// Source is anything that can describe a channel's state.
// *mpsc.Receiver[T] satisfies it for every T.
type Source interface {
	Stats() mpsc.Stats
}

// Snapshot is one source's statistics at the time of a report.
type Snapshot struct {
	Name  string
	At    time.Time
	Stats mpsc.Stats
}

// Config holds reporter configuration.
type Config struct {
	// Name labels log entries and the runs counter. Default: "reporter".
	Name string

	// Schedule is a cron expression. A leading seconds field is optional and
	// descriptors such as "@every 30s" or "@hourly" are accepted.
	// Default: "@every 10s"
	Schedule string

	// Logger receives one entry per source on every report.
	Logger logrus.FieldLogger

	// Metrics enables the runs counter and per-channel gauges.
	Metrics metrics.Config

	// OnReport is called after every report with the snapshots it produced.
	OnReport func([]Snapshot)
}

// DefaultConfig returns the default reporter configuration.
func DefaultConfig() Config {
	return Config{
		Name:     "reporter",
		Schedule: "@every 10s",
	}
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Reporter periodically snapshots registered channels, logs their state and
// publishes it as Prometheus gauges.
type Reporter struct {
	config Config
	log    logrus.FieldLogger
	reg    *metrics.Registry
	runs   prometheus.Counter

	cron  *cron.Cron
	entry cron.EntryID

	mu      sync.Mutex
	sources map[string]Source
}

// New creates a Reporter. It does not run until Start is called.
func New(config Config) (*Reporter, error) {
	defaults := DefaultConfig()
	if config.Name == "" {
		config.Name = defaults.Name
	}
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}

	schedule, err := parser.Parse(config.Schedule)
	if err != nil {
		return nil, gferrors.NewValidationError("reporter", "Schedule", config.Schedule, err.Error()).
			WithHint("use a cron expression or a descriptor like @every 10s")
	}

	log := logging.OrDiscard(config.Logger).WithField("reporter", config.Name)
	r := &Reporter{
		config:  config,
		log:     log,
		reg:     metrics.Resolve(config.Metrics),
		sources: make(map[string]Source),
	}
	if r.reg != nil {
		r.runs = r.reg.ReporterRuns.WithLabelValues(config.Name)
	}

	r.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cron.PrintfLogger(log)),
		cron.WithChain(cron.Recover(cron.PrintfLogger(log)), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	r.entry = r.cron.Schedule(schedule, cron.FuncJob(func() { r.Report() }))
	return r, nil
}

// Register adds a source under name.
func (r *Reporter) Register(name string, src Source) error {
	if err := validation.ValidateNotBlank("reporter", "name", name); err != nil {
		return err
	}
	if err := validation.ValidateNotNil("reporter", "source", src); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[name]; exists {
		return gferrors.NewValidationError("reporter", "name", name, "already registered").
			WithHint("Unregister the existing source first or pick another name")
	}
	r.sources[name] = src
	return nil
}

// Unregister removes a source and reports whether it was registered.
func (r *Reporter) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.sources[name]
	delete(r.sources, name)
	return exists
}

// Report takes a snapshot of every registered source, sorted by name.
// Scheduled runs call it; it can also be called directly.
func (r *Reporter) Report() []Snapshot {
	r.mu.Lock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sources := make(map[string]Source, len(r.sources))
	for name, src := range r.sources {
		sources[name] = src
	}
	r.mu.Unlock()

	sort.Strings(names)
	now := time.Now()
	snapshots := make([]Snapshot, 0, len(names))
	for _, name := range names {
		st := sources[name].Stats()
		snapshots = append(snapshots, Snapshot{Name: name, At: now, Stats: st})

		r.log.WithFields(logrus.Fields{
			"channel":  name,
			"sent":     st.Sent,
			"received": st.Received,
			"pending":  st.Pending,
			"buffered": st.Buffered,
			"senders":  st.Senders,
			"swaps":    st.Swaps,
			"waits":    st.Waits,
		}).Info("channel stats")

		if r.reg != nil {
			r.reg.ChannelBuffered.WithLabelValues(name).Set(float64(st.Buffered))
			r.reg.ChannelPending.WithLabelValues(name).Set(float64(st.Pending))
			r.reg.ChannelSenders.WithLabelValues(name).Set(float64(st.Senders))
		}
	}

	if r.runs != nil {
		r.runs.Inc()
	}
	if r.config.OnReport != nil {
		r.config.OnReport(snapshots)
	}
	return snapshots
}

// Start begins scheduled reporting in its own goroutine.
func (r *Reporter) Start() {
	r.cron.Start()
	r.log.WithFields(logrus.Fields{
		"schedule": r.config.Schedule,
		"next":     r.Next(),
	}).Debug("reporter started")
}

// Stop halts scheduling. The returned context is done once a report that is
// already running has finished.
func (r *Reporter) Stop() context.Context {
	ctx := r.cron.Stop()
	r.log.Debug("reporter stopped")
	return ctx
}

// Next returns the time of the next scheduled report, or the zero time if
// the reporter has not been started.
func (r *Reporter) Next() time.Time {
	return r.cron.Entry(r.entry).Next
}
