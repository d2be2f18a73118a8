package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	NoopBuildHooks{}.OnBuildStart(ctx, "demo", 3)
	NoopBuildHooks{}.OnBuildComplete(ctx, "demo", 12, time.Second, nil)
	NoopTraversalHooks{}.OnLookback(ctx, 1, 150, 2, time.Millisecond, nil)
	NoopCacheHooks{}.OnCacheHit(ctx, "tree")
	NoopCacheHooks{}.OnCacheMiss(ctx, "tree")
	NoopCacheHooks{}.OnCacheSet(ctx, "tree", 1024)
	NoopServerHooks{}.OnRequest(ctx, "GET", "/healthz")
	NoopServerHooks{}.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Traversal().(NoopTraversalHooks); !ok {
		t.Error("Traversal() should return NoopTraversalHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	b := &recordingHooks{}
	SetBuildHooks(b)
	SetBuildHooks(nil)
	if Build() != b {
		t.Error("SetBuildHooks(nil) should keep the registered hooks")
	}

	Build().OnBuildStart(context.Background(), "demo", 4)
	if b.builds != 1 {
		t.Errorf("builds = %d, want 1", b.builds)
	}

	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset should restore NoopBuildHooks")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	h.Register()

	ctx := context.Background()
	Build().OnBuildComplete(ctx, "demo", 12, time.Millisecond, nil)
	Build().OnBuildComplete(ctx, "broken", 0, 0, errors.New("boom"))
	Traversal().OnLookback(ctx, 3, 150, 2, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "tree")
	Server().OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"build done", "build failed", "boom", "lookback", "cache miss", "/healthz"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type recordingHooks struct {
	NoopBuildHooks
	builds int
}

func (r *recordingHooks) OnBuildStart(context.Context, string, int) { r.builds++ }
