package pipeline

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/pairtree/pkg/cache"
	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/observability"
	"github.com/matzehuels/pairtree/pkg/pairs"
)

func referenceEdges() []pairs.Pair[string] {
	return []pairs.Pair[string]{
		pairs.Of("A", "B"), pairs.Of("A", "C"),
		pairs.Of("C", "D"), pairs.Of("C", "E"),
		pairs.Of("D", "F"), pairs.Of("D", "G"),
	}
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil)
}

func TestValidateIDs(t *testing.T) {
	tests := []struct {
		ids     string
		wantErr bool
	}{
		{"value", false},
		{"uuid", false},
		{"UUID", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateIDs(tt.ids)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateIDs(%q) error = %v, wantErr %v", tt.ids, err, tt.wantErr)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"png", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.Strategy != "closure" || o.IDs != "value" || o.Logger == nil {
		t.Errorf("defaults not applied: %+v", o)
	}

	bad := Options{Strategy: "fixpoint"}
	if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unknown strategy err = %v", err)
	}
}

func TestBuild(t *testing.T) {
	r := newRunner(t)
	res, err := r.Build(context.Background(), referenceEdges(), Options{Strategy: "direct"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.CacheHit {
		t.Error("first build should miss the cache")
	}
	if !slices.Equal(res.Leaves, []string{"B", "F", "G", "E"}) {
		t.Errorf("Leaves = %v", res.Leaves)
	}
	if res.Stats.NodeCount != 7 || res.Stats.PairCount != 6 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.Elements) != 7 || !res.Elements[0].IsRoot() {
		t.Errorf("Elements = %v", res.Elements)
	}
	if res.IDs != IDsValue {
		t.Errorf("IDs = %q, want %q", res.IDs, IDsValue)
	}
}

func TestBuildCaches(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	opts := Options{Strategy: "direct", IDs: "uuid"}

	first, err := r.Build(ctx, referenceEdges(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Build(ctx, referenceEdges(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second build should hit the cache")
	}
	if !slices.Equal(first.Tree.AllElements(), second.Tree.AllElements()) {
		t.Errorf("cached tree differs: %v vs %v", first.Tree.AllElements(), second.Tree.AllElements())
	}
	if !slices.Equal(first.Elements, second.Elements) {
		t.Error("cached elements differ")
	}

	opts.Refresh = true
	third, err := r.Build(ctx, referenceEdges(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("refresh should skip the cache")
	}

	// A different strategy is a different key.
	_, err = r.Build(ctx, referenceEdges(), Options{Strategy: "closure", IDs: "uuid"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestBuildErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	in := referenceEdges()
	slices.Reverse(in)

	for i := 0; i < 2; i++ {
		_, err := r.Build(ctx, in, Options{Strategy: "closure"})
		if !errs.Is(err, errs.ErrCodeParentNotFound) {
			t.Fatalf("attempt %d: err = %v, want PARENT_NOT_FOUND", i, err)
		}
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil)

	built, err := r.Build(ctx, referenceEdges(), Options{Strategy: "direct"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Import(ctx, built.Elements, Options{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !slices.Equal(res.Tree.AllElements(), built.Tree.AllElements()) {
		t.Errorf("Import tree = %v", res.Tree.AllElements())
	}

	_, err = r.Import(ctx, built.Elements[1:], Options{})
	if !errs.Is(err, errs.ErrCodeRootNotFound) {
		t.Errorf("Import without root err = %v", err)
	}
}

func TestImportUUIDRecords(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil)

	built, err := r.Build(ctx, referenceEdges(), Options{Strategy: "direct", IDs: IDsUUID})
	if err != nil {
		t.Fatal(err)
	}
	if built.IDs != IDsUUID {
		t.Errorf("built IDs = %q", built.IDs)
	}

	res, err := r.Import(ctx, built.Elements, Options{IDs: built.IDs})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !slices.Equal(res.Tree.AllElements(), built.Tree.AllElements()) || res.IDs != IDsUUID {
		t.Errorf("Import tree = %v, IDs = %q", res.Tree.AllElements(), res.IDs)
	}

	_, err = r.Import(ctx, built.Elements, Options{})
	if !errs.Is(err, errs.ErrCodeOrphanElement) {
		t.Errorf("Import with value ids err = %v, want ORPHAN_ELEMENT", err)
	}
}

type countingHooks struct {
	observability.NoopBuildHooks
	observability.NoopCacheHooks
	mu       sync.Mutex
	builds   int
	failures int
	hits     int
	misses   int
}

func (h *countingHooks) OnBuildComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builds++
	if err != nil {
		h.failures++
	}
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func TestBuildEmitsHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetBuildHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	ctx := context.Background()
	r := newRunner(t)
	_, _ = r.Build(ctx, referenceEdges(), Options{Strategy: "direct"})
	_, _ = r.Build(ctx, referenceEdges(), Options{Strategy: "direct"})
	_, _ = r.Build(ctx, nil, Options{Strategy: "direct"})

	if h.builds != 2 || h.failures != 1 {
		t.Errorf("builds=%d failures=%d, want 2 and 1", h.builds, h.failures)
	}
	if h.hits != 1 || h.misses != 2 {
		t.Errorf("hits=%d misses=%d, want 1 and 2", h.hits, h.misses)
	}
}

func TestRenderDOT(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	res, err := r.Build(ctx, referenceEdges(), Options{Strategy: "direct"})
	if err != nil {
		t.Fatal(err)
	}

	data, hit, err := r.Render(ctx, res.Tree, RenderOptions{Format: "dot"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}
	if !bytes.HasPrefix(data, []byte("digraph G {")) {
		t.Errorf("unexpected DOT:\n%s", data)
	}

	again, hit, err := r.Render(ctx, res.Tree, RenderOptions{Format: "dot"})
	if err != nil || !hit || !bytes.Equal(again, data) {
		t.Errorf("second render: hit=%v err=%v", hit, err)
	}

	detailed, _, err := r.Render(ctx, res.Tree, RenderOptions{Format: "dot", Detailed: true})
	if err != nil || bytes.Equal(detailed, data) {
		t.Errorf("detailed render should differ: err=%v", err)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in short mode")
	}
	res, err := NewRunner(nil, nil).Build(context.Background(), referenceEdges(), Options{Strategy: "direct"})
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderTree(context.Background(), res.Tree, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderTree: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output is not SVG")
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	res, err := NewRunner(nil, nil).Build(context.Background(), referenceEdges(), Options{Strategy: "direct"})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewRunner(nil, nil).Render(context.Background(), res.Tree, RenderOptions{Format: "png"}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}
