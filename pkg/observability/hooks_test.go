package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	b := NoopBuildHooks{}
	b.OnBuildStart(ctx, "closure", 12)
	b.OnBuildComplete(ctx, "closure", 7, time.Millisecond, nil)
	b.OnImportComplete(ctx, 7, time.Millisecond, errors.New("orphan"))
	b.OnRenderComplete(ctx, "svg", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "build")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "build", 1024)

	s := NoopStoreHooks{}
	s.OnStoreOp(ctx, "mongo", "save", 7, time.Millisecond, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testBuildHooks{}
	SetBuildHooks(custom)
	SetBuildHooks(nil)

	if Build() != custom {
		t.Error("SetBuildHooks(nil) should be ignored")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testBuildHooks{}
	SetBuildHooks(h)
	Build().OnBuildStart(context.Background(), "direct", 6)

	if h.started != "direct" || h.pairs != 6 {
		t.Errorf("hook not called: %+v", h)
	}
}

type testBuildHooks struct {
	NoopBuildHooks
	started string
	pairs   int
}

func (h *testBuildHooks) OnBuildStart(_ context.Context, strategy string, n int) {
	h.started, h.pairs = strategy, n
}

type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
