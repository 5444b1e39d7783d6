// Package cli implements the deblend command-line interface.
//
// The render command builds a scene from a YAML configuration, renders every
// source into the model frame on a pool of workers and reports fluxes,
// footprints and, when observed data is supplied, residual metrics. The
// init-config command writes the default configuration. All commands accept
// --verbose (-v) for debug-level logging; the logger travels through the
// command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one stage of a command. The stage is logged at info level
// with the fields given at creation, the results passed to done and the
// elapsed time, e.g.
//
//	Rendered scene sources=2 workers=8 flux=41.7 elapsed=12ms
type progress struct {
	logger *log.Logger
	stage  string
	fields []any
	start  time.Time
}

func newProgress(l *log.Logger, stage string, keyvals ...any) *progress {
	return &progress{logger: l, stage: stage, fields: keyvals, start: time.Now()}
}

// done logs the stage with its fields followed by results.
func (p *progress) done(results ...any) {
	kv := make([]any, 0, len(p.fields)+len(results)+2)
	kv = append(kv, p.fields...)
	kv = append(kv, results...)
	kv = append(kv, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(p.stage, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
