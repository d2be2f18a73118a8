package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("built") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("open chain") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("open chain") }, true},
		{"tracer at debug level", log.DebugLevel, func(l *log.Logger) { l.Debugf("close %s at depth %d", "chain", 1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Indexed 3 workloads")

	out := buf.String()
	if !strings.Contains(out, "Indexed 3 workloads (") {
		t.Errorf("progress output %q lacks message and duration", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected the default logger without one in the context")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	loggerFromContext(ctx).Info("lookback")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}
}
