// Package logging builds the logrus loggers used by flowchan components.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	gferrors "github.com/vnykmshr/flowchan/pkg/common/errors"
)

// Options controls how New builds a logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string

	// Format is "text" or "json". Empty means text.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a configured *logrus.Logger.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, gferrors.NewValidationError("logging", "Level", opts.Level, "unknown level").
				WithHint("use trace, debug, info, warn or error")
		}
		level = parsed
	}
	l.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, gferrors.NewValidationError("logging", "Format", opts.Format, "unknown format").
			WithHint("use text or json")
	}

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stderr)
	}
	return l, nil
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()

// Discard returns a logger that drops everything.
func Discard() logrus.FieldLogger {
	return discard
}

// OrDiscard returns l, or the discarding logger when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return discard
	}
	return l
}
