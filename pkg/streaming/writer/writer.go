package writer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/vnykmshr/flowchan/internal/logging"
	gferrors "github.com/vnykmshr/flowchan/pkg/common/errors"
	"github.com/vnykmshr/flowchan/pkg/common/validation"
	"github.com/vnykmshr/flowchan/pkg/metrics"
	"github.com/vnykmshr/flowchan/pkg/streaming/mpsc"
)

// ErrWriterClosed is returned when attempting to write to a closed writer.
var ErrWriterClosed = fmt.Errorf("writer: %w", gferrors.ErrClosed)

// AsyncWriter provides asynchronous, buffered writing. Write copies the data
// and hands it to a background goroutine without blocking; that goroutine
// batches writes and flushes them to the underlying io.Writer.
type AsyncWriter interface {
	io.Writer
	io.StringWriter
	metrics.Instrumentable

	// Flush blocks until everything written before the call has been handed
	// to the underlying writer, or ctx is done.
	Flush(ctx context.Context) error

	// Close stops accepting writes, flushes everything already written and
	// returns the error of that final flush. Later calls return nil.
	Close() error

	// Stats returns statistics about the writer's performance.
	Stats() Stats

	// IsClosed returns true if the writer is closed.
	IsClosed() bool
}

// Stats holds statistics about async writer performance.
type Stats struct {
	// BytesWritten is the total number of bytes handed to the underlying writer.
	BytesWritten int64

	// WriteCount is the total number of accepted Write calls.
	WriteCount int64

	// FlushCount is the total number of flushes that wrote data.
	FlushCount int64

	// ErrorCount is the total number of failed flushes.
	ErrorCount int64

	// Buffered is the number of bytes accumulated but not yet flushed.
	Buffered int

	// LastFlushTime is the timestamp of the last flush that wrote data.
	LastFlushTime time.Time

	// Channel reports the queue between writers and the background goroutine.
	Channel mpsc.Stats
}

// Config holds configuration options for AsyncWriter.
type Config struct {
	// Name labels logs and metrics. Default: "writer".
	Name string

	// BufferSize is the number of bytes accumulated before a flush.
	// Default: 64KB
	BufferSize int

	// FlushInterval is how often to flush automatically. 0 disables it.
	// Default: 1 second
	FlushInterval time.Duration

	// MaxRetries is the number of times to retry a failed or short write.
	// Default: 3
	MaxRetries int

	// RetryDelay is the delay between retries.
	// Default: 100ms
	RetryDelay time.Duration

	// OnError is called when a flush fails.
	OnError func(error)

	// OnFlush is called after each flush that wrote data.
	OnFlush func(bytesWritten int, duration time.Duration)

	// Logger receives flush failures and lifecycle events.
	Logger logrus.FieldLogger

	// Metrics enables Prometheus instrumentation for the writer and its queue.
	Metrics metrics.Config
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name:          "writer",
		BufferSize:    64 * 1024, // 64KB
		FlushInterval: time.Second,
		MaxRetries:    3,
		RetryDelay:    100 * time.Millisecond,
	}
}

// op is one unit of work for the background goroutine: either data to
// buffer, or a flush marker.
type op struct {
	data  []byte
	flush bool
	done  chan error
}

type writerInstruments struct {
	flushes prometheus.Counter
	bytes   prometheus.Counter
	errors  prometheus.Counter
}

// asyncWriter implements AsyncWriter.
type asyncWriter struct {
	underlying io.Writer
	config     Config
	log        logrus.FieldLogger

	// mu serializes Close against in-flight Write/Flush calls so no Send
	// happens on a closed Sender.
	mu     sync.RWMutex
	closed bool
	tx     *mpsc.Sender[op]
	rx     *mpsc.Receiver[op]

	stop     chan struct{}
	wg       sync.WaitGroup
	closeErr error

	// buffer is owned by the background goroutine.
	buffer   []byte
	buffered atomic.Int64

	inst atomic.Pointer[writerInstruments]

	stats   Stats
	statsMu sync.RWMutex
}

// New creates a new AsyncWriter with default configuration.
// It panics if w is nil.
func New(w io.Writer) AsyncWriter {
	aw, err := NewWithConfig(w, DefaultConfig())
	if err != nil {
		panic(err)
	}
	return aw
}

// NewWithConfig creates a new AsyncWriter with the specified configuration.
// Zero values take their defaults; negative values are rejected.
func NewWithConfig(w io.Writer, config Config) (AsyncWriter, error) {
	if err := validation.ValidateNotNil("writer", "Writer", w); err != nil {
		return nil, err
	}
	config, err := normalize(config)
	if err != nil {
		return nil, err
	}

	tx, rx, err := mpsc.NewWithConfig[op](mpsc.Config{
		Name:    config.Name,
		Logger:  config.Logger,
		Metrics: config.Metrics,
	})
	if err != nil {
		return nil, err
	}

	aw := &asyncWriter{
		underlying: w,
		config:     config,
		log:        logging.OrDiscard(config.Logger).WithField("writer", config.Name),
		tx:         tx,
		rx:         rx,
		stop:       make(chan struct{}),
		buffer:     make([]byte, 0, config.BufferSize),
	}
	if config.Metrics.Enabled {
		if err := aw.EnableMetrics(config.Metrics); err != nil {
			return nil, err
		}
	}

	aw.wg.Add(1)
	go aw.writerLoop()

	if config.FlushInterval > 0 {
		aw.wg.Add(1)
		go aw.flushLoop(tx.Clone())
	}

	return aw, nil
}

func normalize(config Config) (Config, error) {
	defaults := DefaultConfig()
	if config.Name == "" {
		config.Name = defaults.Name
	}
	if config.BufferSize == 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaults.RetryDelay
	}

	checks := []error{
		validation.ValidateNotBlank("writer", "Name", config.Name),
		validation.ValidatePositive("writer", "BufferSize", config.BufferSize),
		validation.ValidateNonNegative("writer", "MaxRetries", config.MaxRetries),
		validation.ValidateNonNegativeDuration("writer", "FlushInterval", config.FlushInterval),
		validation.ValidateNonNegativeDuration("writer", "RetryDelay", config.RetryDelay),
	}
	for _, err := range checks {
		if err != nil {
			return config, err
		}
	}
	return config, nil
}

// Write implements io.Writer. The data is copied, so p may be reused as soon
// as Write returns. Errors from the underlying writer are reported by Flush,
// Close, OnError and Stats, not by Write.
func (aw *asyncWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		if aw.IsClosed() {
			return 0, ErrWriterClosed
		}
		return 0, nil
	}

	data := make([]byte, len(p))
	copy(data, p)

	aw.mu.RLock()
	if aw.closed {
		aw.mu.RUnlock()
		return 0, ErrWriterClosed
	}
	aw.tx.Send(op{data: data})
	aw.mu.RUnlock()

	aw.updateStats(func(s *Stats) {
		s.WriteCount++
	})
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (aw *asyncWriter) WriteString(s string) (int, error) {
	return aw.Write([]byte(s))
}

// Flush implements AsyncWriter.Flush.
func (aw *asyncWriter) Flush(ctx context.Context) error {
	done := make(chan error, 1)

	aw.mu.RLock()
	if aw.closed {
		aw.mu.RUnlock()
		return ErrWriterClosed
	}
	aw.tx.Send(op{flush: true, done: done})
	aw.mu.RUnlock()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements AsyncWriter.Close.
func (aw *asyncWriter) Close() error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return nil
	}
	aw.closed = true
	_ = aw.tx.Close()
	aw.mu.Unlock()

	close(aw.stop)
	aw.wg.Wait()

	aw.log.WithField("bytes_written", aw.Stats().BytesWritten).Debug("writer closed")
	return aw.closeErr
}

// Stats implements AsyncWriter.Stats.
func (aw *asyncWriter) Stats() Stats {
	aw.statsMu.RLock()
	stats := aw.stats
	aw.statsMu.RUnlock()

	stats.Buffered = int(aw.buffered.Load())
	stats.Channel = aw.rx.Stats()
	return stats
}

// IsClosed implements AsyncWriter.IsClosed.
func (aw *asyncWriter) IsClosed() bool {
	aw.mu.RLock()
	defer aw.mu.RUnlock()
	return aw.closed
}

// EnableMetrics implements metrics.Instrumentable.
func (aw *asyncWriter) EnableMetrics(config metrics.Config) error {
	reg := metrics.Resolve(config)
	if reg == nil {
		return gferrors.NewValidationError("writer", "Metrics.Enabled", false, "metrics config is disabled").
			WithHint("set Enabled to true or call DisableMetrics")
	}
	aw.inst.Store(&writerInstruments{
		flushes: reg.WriterFlushes.WithLabelValues(aw.config.Name),
		bytes:   reg.WriterBytesWritten.WithLabelValues(aw.config.Name),
		errors:  reg.WriterErrors.WithLabelValues(aw.config.Name),
	})
	return nil
}

// DisableMetrics implements metrics.Instrumentable.
func (aw *asyncWriter) DisableMetrics() {
	aw.inst.Store(nil)
}

// MetricsEnabled implements metrics.Instrumentable.
func (aw *asyncWriter) MetricsEnabled() bool {
	return aw.inst.Load() != nil
}

// writerLoop owns the Receiver and the buffer. It exits once every Sender is
// closed and the queue is drained.
func (aw *asyncWriter) writerLoop() {
	defer aw.wg.Done()
	defer aw.rx.Close()

	for o := range aw.rx.All() {
		if o.flush {
			err := aw.flushBuffer()
			if o.done != nil {
				o.done <- err
			}
			continue
		}

		if len(aw.buffer) > 0 && len(aw.buffer)+len(o.data) > aw.config.BufferSize {
			_ = aw.flushBuffer()
		}
		aw.buffer = append(aw.buffer, o.data...)
		aw.buffered.Store(int64(len(aw.buffer)))

		if len(aw.buffer) >= aw.config.BufferSize {
			_ = aw.flushBuffer()
		}
	}

	aw.closeErr = aw.flushBuffer()
}

// flushLoop enqueues a flush marker every FlushInterval. It owns its own
// Sender so the writer loop cannot finish before it stops.
func (aw *asyncWriter) flushLoop(tx *mpsc.Sender[op]) {
	defer aw.wg.Done()
	defer tx.Close()

	ticker := time.NewTicker(aw.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tx.Send(op{flush: true})
		case <-aw.stop:
			return
		}
	}
}

// flushBuffer writes all buffered data to the underlying writer. The buffer
// is reset even on failure; the lost bytes are counted in ErrorCount.
func (aw *asyncWriter) flushBuffer() error {
	if len(aw.buffer) == 0 {
		return nil
	}

	startTime := time.Now()
	bytesWritten, err := aw.writeWithRetries(aw.buffer)
	duration := time.Since(startTime)

	aw.buffer = aw.buffer[:0]
	aw.buffered.Store(0)

	aw.updateStats(func(s *Stats) {
		s.FlushCount++
		s.BytesWritten += int64(bytesWritten)
		s.LastFlushTime = time.Now()
		if err != nil {
			s.ErrorCount++
		}
	})

	if inst := aw.inst.Load(); inst != nil {
		inst.flushes.Inc()
		inst.bytes.Add(float64(bytesWritten))
		if err != nil {
			inst.errors.Inc()
		}
	}

	if aw.config.OnFlush != nil {
		aw.config.OnFlush(bytesWritten, duration)
	}

	if err != nil {
		err = gferrors.NewOperationError("writer", "Flush", err).
			WithContext(fmt.Sprintf("wrote %d bytes", bytesWritten))
		aw.log.WithError(err).Warn("flush failed")
		if aw.config.OnError != nil {
			aw.config.OnError(err)
		}
	}

	return err
}

// writeWithRetries writes data with retry logic.
func (aw *asyncWriter) writeWithRetries(data []byte) (int, error) {
	var totalWritten int
	var lastErr error

	for attempt := 0; attempt <= aw.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(aw.config.RetryDelay)
		}

		written, err := aw.underlying.Write(data[totalWritten:])
		totalWritten += written

		if totalWritten >= len(data) {
			return totalWritten, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = io.ErrShortWrite
		}
	}

	return totalWritten, lastErr
}

// updateStats safely updates statistics.
func (aw *asyncWriter) updateStats(updater func(*Stats)) {
	aw.statsMu.Lock()
	defer aw.statsMu.Unlock()
	updater(&aw.stats)
}
