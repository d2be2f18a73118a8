package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestSpinnerWritesFrames(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Indexing...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	// Stop waits for the animation goroutine, so buf is safe to read.
	if !strings.Contains(buf.String(), "Indexing...") {
		t.Errorf("spinner output %q does not contain its message", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, io.Discard, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, io.Discard, "Testing with timeout...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context timeout")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(io.Discard, "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopMessages(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Working...")
	s.Start()
	s.StopWithSuccess("Done!")
	if !strings.Contains(buf.String(), "Done!") {
		t.Errorf("missing success message in %q", buf.String())
	}

	buf.Reset()
	s = newSpinner(&buf, "Working...")
	s.Start()
	s.StopWithError("Failed!")
	if !strings.Contains(buf.String(), "Failed!") {
		t.Errorf("missing error message in %q", buf.String())
	}
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner(io.Discard, "never started")
	s.Stop()
	if !s.Cancelled() {
		t.Error("Stop should cancel the spinner")
	}
}
