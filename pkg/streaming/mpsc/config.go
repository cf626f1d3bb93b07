package mpsc

import (
	"github.com/sirupsen/logrus"
	"github.com/vnykmshr/flowchan/pkg/common/validation"
	"github.com/vnykmshr/flowchan/pkg/metrics"
)

// Config holds optional settings for a channel. None of them change delivery
// semantics; they only name the channel and attach logging and metrics.
type Config struct {
	// Name labels log entries and metrics. Default: "mpsc".
	Name string

	// Logger receives lifecycle events (creation, closure). Nil disables logging.
	Logger logrus.FieldLogger

	// Metrics enables Prometheus instrumentation.
	Metrics metrics.Config
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Name: "mpsc",
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	return validation.ValidateNotBlank("mpsc", "Name", c.Name)
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultConfig().Name
	}
	return c
}
