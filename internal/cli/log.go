// Package cli implements the ziptree command-line interface.
//
// The commands index workload files (a snarl decomposition plus seeds) into
// seed trees and query them: bounded lookbacks, distance clusters, statistics,
// renderings and an interactive browser. The same runner backs the HTTP API
// started by serve. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Index workloads and print their bracket notation
//   - lookback: List the seeds reachable backwards from one seed
//   - clusters: Group seeds that lie within a distance limit
//   - stats: Summarize tree shape and lookback distances
//   - render: Draw a tree as DOT or SVG
//   - browse: Explore lookbacks interactively
//   - serve: Run the HTTP API
//   - cache: Manage the tree cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces the encoder's scope decisions. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created,
// e.g. "Indexed 3 workloads (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
