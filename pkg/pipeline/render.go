package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/pairtree/pkg/cache"
	"github.com/matzehuels/pairtree/pkg/observability"
	"github.com/matzehuels/pairtree/pkg/render/dot"
	"github.com/matzehuels/pairtree/pkg/tree"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

// Render draws the tree rooted at root in the requested format. The result
// is cached by the tree's exported records and the render options. The
// returned bool reports a cache hit.
func (r *Runner) Render(ctx context.Context, root *tree.Node[string], opts RenderOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	start := time.Now()

	var records bytes.Buffer
	if err := treeio.WriteJSON(treeio.Export(root, treeio.Identity[string]()), &records); err != nil {
		return nil, false, err
	}
	key := cache.RenderKey(cache.Hash(records.Bytes()), opts.Format, opts.Detailed)

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	data, err := RenderTree(ctx, root, opts)
	observability.Build().OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	r.Logger.Debug("rendered tree", "format", opts.Format, "bytes", len(data), "duration", time.Since(start))
	return data, false, nil
}

// RenderTree draws the tree without caching.
func RenderTree(ctx context.Context, root *tree.Node[string], opts RenderOptions) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	src := dot.ToDOT(root, dot.Options{Detailed: opts.Detailed})
	if opts.Format == FormatDOT {
		return []byte(src), nil
	}
	return dot.RenderSVG(ctx, src)
}
