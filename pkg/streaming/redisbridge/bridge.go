package redisbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vnykmshr/flowchan/internal/logging"
	gferrors "github.com/vnykmshr/flowchan/pkg/common/errors"
	"github.com/vnykmshr/flowchan/pkg/common/validation"
	"github.com/vnykmshr/flowchan/pkg/metrics"
	"github.com/vnykmshr/flowchan/pkg/streaming/mpsc"
)

// ListClient is the subset of the go-redis client used by the bridge.
// redis.Client, redis.ClusterClient and redis.UniversalClient satisfy it.
type ListClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

var _ ListClient = (redis.UniversalClient)(nil)

// Config holds configuration for Forward and Pump.
type Config struct {
	// Name labels logs and metrics. Default: "redisbridge".
	Name string

	// Key is the Redis list. Required.
	Key string

	// BatchSize caps how many values Forward pushes with one RPUSH.
	// Default: 64
	BatchSize int

	// PollTimeout is the BLPOP timeout used by Pump between context checks.
	// Default: 1 second
	PollTimeout time.Duration

	// Logger receives progress and skipped-payload events.
	Logger logrus.FieldLogger

	// Metrics enables Prometheus instrumentation.
	Metrics metrics.Config
}

// DefaultConfig returns a default configuration. Key must still be set.
func DefaultConfig() Config {
	return Config{
		Name:        "redisbridge",
		BatchSize:   64,
		PollTimeout: time.Second,
	}
}

const (
	directionForward = "forward"
	directionPump    = "pump"
)

func (c Config) normalize() (Config, error) {
	defaults := DefaultConfig()
	if c.Name == "" {
		c.Name = defaults.Name
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = defaults.PollTimeout
	}

	checks := []error{
		validation.ValidateNotBlank("redisbridge", "Key", c.Key),
		validation.ValidatePositive("redisbridge", "BatchSize", c.BatchSize),
		validation.ValidateNonNegativeDuration("redisbridge", "PollTimeout", c.PollTimeout),
	}
	for _, err := range checks {
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

type counters struct {
	items  prometheus.Counter
	errors prometheus.Counter
}

func newCounters(config Config, direction string) *counters {
	reg := metrics.Resolve(config.Metrics)
	if reg == nil {
		return nil
	}
	return &counters{
		items:  reg.BridgeItems.WithLabelValues(config.Name, direction),
		errors: reg.BridgeErrors.WithLabelValues(config.Name, direction),
	}
}

func (c *counters) add(n int) {
	if c != nil {
		c.items.Add(float64(n))
	}
}

func (c *counters) fail() {
	if c != nil {
		c.errors.Inc()
	}
}

// Forward drains rx into the Redis list config.Key until every Sender of
// the channel is closed, and returns how many values were pushed.
//
// Each batch is one blocking Receive plus whatever is already sitting in the
// Receiver's local buffer, up to BatchSize, sent with a single RPUSH. Forward
// owns rx for its whole run and closes it before returning.
//
// ctx is checked before each batch is taken off the channel and bounds the
// Redis calls; it does not interrupt a Receive blocked on an idle channel.
// When Forward returns early, by cancellation or an error, the batch that
// failed to push and everything left in the channel are dropped.
func Forward[T any](ctx context.Context, client ListClient, rx *mpsc.Receiver[T], codec Codec[T], config Config) (int64, error) {
	defer rx.Close()

	config, err := config.normalize()
	if err != nil {
		return 0, err
	}

	log := logging.OrDiscard(config.Logger).WithFields(logrus.Fields{
		"bridge":    config.Name,
		"key":       config.Key,
		"direction": directionForward,
	})
	stats := newCounters(config, directionForward)

	var forwarded int64
	batch := make([]interface{}, 0, config.BatchSize)
	for {
		if err := ctx.Err(); err != nil {
			log.WithField("forwarded", forwarded).Debug("forward stopped")
			return forwarded, err
		}

		v, ok := rx.Receive()
		if !ok {
			log.WithField("forwarded", forwarded).Debug("channel drained")
			return forwarded, nil
		}

		batch = batch[:0]
		for {
			payload, err := codec.Encode(v)
			if err != nil {
				stats.fail()
				return forwarded, gferrors.NewOperationError("redisbridge", "Forward", err).
					WithContext("encode failed")
			}
			batch = append(batch, payload)
			if len(batch) == config.BatchSize || rx.Buffered() == 0 {
				break
			}
			v, _ = rx.Receive()
		}

		if err := client.RPush(ctx, config.Key, batch...).Err(); err != nil {
			stats.fail()
			return forwarded, gferrors.NewOperationError("redisbridge", "Forward", err).
				WithContext(fmt.Sprintf("RPUSH %s with %d values", config.Key, len(batch)))
		}

		forwarded += int64(len(batch))
		stats.add(len(batch))
	}
}

// Pump pops payloads from the Redis list config.Key, decodes them and sends
// them on tx until ctx is done. Pump owns tx and closes it before returning,
// so the channel's Receiver sees end-of-stream once every other Sender is
// closed too. Payloads that fail to decode are logged and skipped.
//
// It returns the number of values sent and ctx.Err() on cancellation, or the
// first Redis error.
func Pump[T any](ctx context.Context, client ListClient, tx *mpsc.Sender[T], codec Codec[T], config Config) (int64, error) {
	defer tx.Close()

	config, err := config.normalize()
	if err != nil {
		return 0, err
	}

	log := logging.OrDiscard(config.Logger).WithFields(logrus.Fields{
		"bridge":    config.Name,
		"key":       config.Key,
		"direction": directionPump,
	})
	stats := newCounters(config, directionPump)

	var pumped int64
	for {
		if err := ctx.Err(); err != nil {
			log.WithField("pumped", pumped).Debug("pump stopped")
			return pumped, err
		}

		res, err := client.BLPop(ctx, config.PollTimeout, config.Key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return pumped, ctxErr
			}
			stats.fail()
			return pumped, gferrors.NewOperationError("redisbridge", "Pump", err).
				WithContext("BLPOP " + config.Key)
		}

		// BLPOP replies with [key, value].
		if len(res) != 2 {
			stats.fail()
			log.WithField("reply", res).Warn("unexpected BLPOP reply")
			continue
		}

		v, err := codec.Decode(res[1])
		if err != nil {
			stats.fail()
			log.WithError(err).Warn("skipping undecodable payload")
			continue
		}

		tx.Send(v)
		pumped++
		stats.add(1)
	}
}
