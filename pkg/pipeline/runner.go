package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/canopy-tools/canopy/pkg/cache"
	"github.com/canopy-tools/canopy/pkg/doc"
	"github.com/canopy-tools/canopy/pkg/layout"
	"github.com/canopy-tools/canopy/pkg/observability"
	"github.com/canopy-tools/canopy/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// LayoutWithCacheInfo computes coordinates for every node in the document
// and returns a positioned copy, plus whether the result came from cache.
//
// Roots are stacked vertically around the configured center, each laid out
// independently and offset by its subtree height, so a multi-root document
// reads as one column of trees.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d doc.Document, opts Options) (doc.Document, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return doc.Document{}, false, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	// Compute cache key from the document content hash
	data, err := doc.MarshalDocument(d)
	if err != nil {
		return doc.Document{}, false, fmt.Errorf("serialize document for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	// Try cache first
	if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		out, err := doc.UnmarshalDocument(cached)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return out, true, nil // Cache hit
		}
		// If deserialization fails, drop the entry and recompute
		_ = r.Cache.Delete(ctx, cacheKey)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	roots, err := d.ToTree()
	if err != nil {
		observability.Layout().OnLayoutComplete(ctx, 0, 0, err)
		return doc.Document{}, false, fmt.Errorf("decode document: %w", err)
	}

	n := countNodes(roots)
	observability.Layout().OnLayoutStart(ctx, n)
	start := time.Now()

	positioned := layoutForest(roots, opts.Config())

	elapsed := time.Since(start)
	observability.Layout().OnLayoutComplete(ctx, n, elapsed, nil)
	opts.Logger.Debug("computed layout", "nodes", n, "duration", elapsed)

	out := doc.FromTree(positioned)

	// Cache the result
	if outData, err := doc.MarshalDocument(out); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, outData, cache.DefaultLayoutTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(outData))
		}
	}

	return out, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, d doc.Document, opts Options) (doc.Document, error) {
	out, _, err := r.LayoutWithCacheInfo(ctx, d, opts)
	return out, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// layoutForest positions each root independently and stacks the results
// vertically, centered as a group on the configured center point. Root
// order is preserved top to bottom.
func layoutForest(roots []*tree.Node, cfg layout.Config) []*tree.Node {
	if len(roots) == 0 {
		return nil
	}

	heights := make([]float64, len(roots))
	total := 0.0
	for i, root := range roots {
		heights[i] = layout.Height(root, cfg)
		total += heights[i]
	}
	total += float64(len(roots)-1) * cfg.SiblingSpacing

	out := make([]*tree.Node, len(roots))
	cursor := cfg.CenterY - total/2
	for i, root := range roots {
		rootCfg := cfg
		rootCfg.CenterY = cursor + heights[i]/2
		out[i] = layout.Layout(root, rootCfg)
		cursor += heights[i] + cfg.SiblingSpacing
	}
	return out
}

func countNodes(roots []*tree.Node) int {
	n := 0
	for _, root := range roots {
		n += 1 + countNodes(root.Children)
	}
	return n
}
