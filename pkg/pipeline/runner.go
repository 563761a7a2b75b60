package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pairtree/pkg/cache"
	"github.com/matzehuels/pairtree/pkg/observability"
	"github.com/matzehuels/pairtree/pkg/pairs"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

// Runner executes pipeline stages with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// discards log output.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Build reconstructs a tree from ps and exports it. Results are cached by
// strategy, id function and pair input. Structural errors from the build are
// returned unchanged so callers can inspect their codes.
func (r *Runner) Build(ctx context.Context, ps []pairs.Pair[string], opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	id := IDFunc(opts.IDs)

	var input bytes.Buffer
	if err := pairs.WriteJSON(&input, ps); err != nil {
		return nil, err
	}
	key := cache.BuildKey(opts.Strategy, opts.IDs, input.Bytes())

	if !opts.Refresh {
		if res, ok := r.cachedBuild(ctx, key, id); ok {
			res.IDs = opts.IDs
			res.Stats.PairCount = len(ps)
			res.Stats.Duration = time.Since(start)
			opts.Logger.Debug("build cache hit", "strategy", opts.Strategy, "nodes", res.Stats.NodeCount)
			return res, nil
		}
	}

	observability.Build().OnBuildStart(ctx, opts.Strategy, len(ps))
	root, err := pairs.Build(pairs.Strategy(opts.Strategy), ps)
	nodes := 0
	if root != nil {
		nodes = root.Len()
	}
	observability.Build().OnBuildComplete(ctx, opts.Strategy, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	elements := treeio.Export(root, id)
	var data bytes.Buffer
	if err := treeio.WriteJSON(elements, &data); err == nil {
		if err := r.Cache.Set(ctx, key, data.Bytes(), cache.TTLBuild); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "build", data.Len())
		}
	}

	res := &Result{
		Tree:     root,
		Elements: elements,
		Leaves:   root.AllBottomLevelSuccessors(),
		IDs:      opts.IDs,
		Stats: Stats{
			PairCount: len(ps),
			NodeCount: nodes,
			Duration:  time.Since(start),
		},
	}
	opts.Logger.Info("built tree",
		"strategy", opts.Strategy,
		"pairs", len(ps),
		"nodes", nodes,
		"leaves", len(res.Leaves),
		"duration", res.Stats.Duration)
	return res, nil
}

// cachedBuild returns the cached build for key, if any. Entries that no
// longer decode or import are treated as misses.
func (r *Runner) cachedBuild(ctx context.Context, key string, id func(string) string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "build")
		return nil, false
	}
	elements, err := treeio.ReadJSON[string, string](bytes.NewReader(data))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "build")
		return nil, false
	}
	root, err := treeio.Import(elements, id)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "build")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "build")
	return &Result{
		Tree:     root,
		Elements: elements,
		Leaves:   root.AllBottomLevelSuccessors(),
		CacheHit: true,
		Stats:    Stats{NodeCount: root.Len()},
	}, true
}

// Import rebuilds a tree from element records.
func (r *Runner) Import(ctx context.Context, elements []treeio.Element[string, string], opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	root, err := treeio.Import(elements, IDFunc(opts.IDs))
	observability.Build().OnImportComplete(ctx, len(elements), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Tree:     root,
		Elements: elements,
		Leaves:   root.AllBottomLevelSuccessors(),
		IDs:      opts.IDs,
		Stats:    Stats{NodeCount: root.Len(), Duration: time.Since(start)},
	}
	opts.Logger.Debug("imported tree", "elements", len(elements), "duration", res.Stats.Duration)
	return res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
