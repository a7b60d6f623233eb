// Package report provides the logging/reporting interface injected into
// pipeline components, so console output and structured logging share one
// code path.
package report

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Reporter is the narrow logging surface pipeline components depend on.
type Reporter interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type zerologReporter struct {
	log zerolog.Logger
}

// New creates a Reporter writing human-readable output to w.
func New(w io.Writer, debug bool) Reporter {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return &zerologReporter{
		log: zerolog.New(cw).Level(level).With().Timestamp().Logger(),
	}
}

// NewStderr creates a Reporter writing to standard error.
func NewStderr(debug bool) Reporter {
	return New(os.Stderr, debug)
}

// Discard returns a Reporter that drops everything. Intended for tests.
func Discard() Reporter {
	return &zerologReporter{log: zerolog.Nop()}
}

func (r *zerologReporter) Debugf(format string, args ...any) {
	r.log.Debug().Msgf(format, args...)
}

func (r *zerologReporter) Infof(format string, args ...any) {
	r.log.Info().Msgf(format, args...)
}

func (r *zerologReporter) Warnf(format string, args ...any) {
	r.log.Warn().Msgf(format, args...)
}

func (r *zerologReporter) Errorf(format string, args ...any) {
	r.log.Error().Msgf(format, args...)
}
