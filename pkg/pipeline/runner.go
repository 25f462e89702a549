package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/network"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/project"
	"github.com/matzehuels/critpath/pkg/render"
)

// Runner executes the pipeline with caching.
//
// The Runner is stateless except for the cache and logger. Callers must
// serialize access to the network they pass in; the session package does
// this for the HTTP API.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. If c is nil caching is disabled; if logger is
// nil the default logger is used.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the pipeline over n. With Options.Calculate set, n's
// schedules and highlights are updated; a failed calculation aborts the run
// and leaves n unchanged.
func (r *Runner) Execute(ctx context.Context, n *network.Network, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	result := &Result{
		Artifacts: make(map[string][]byte),
		Stats:     Stats{Activities: n.Len(), Edges: n.EdgeCount()},
	}

	// Stage 1: Calculate
	var paths [][]network.ID
	if opts.Calculate {
		start := time.Now()
		res, err := cpm.Calculate(n)
		result.Stats.CalculateTime = time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("calculate: %w", err)
		}
		result.Calculation = res
		paths = res.CriticalPaths
		logger.Debug("calculated schedule",
			"activities", n.Len(),
			"duration", res.ProjectDuration,
			"critical_paths", len(res.CriticalPaths),
			"took", result.Stats.CalculateTime)
	}
	result.View = project.NewView(opts.Title, n, paths)

	// Stage 2: Draw
	result.DOT = render.ToDOT(n, render.Options{Detailed: opts.Detailed, Title: opts.Title})

	// Stage 3: Render
	start := time.Now()
	for _, format := range opts.Formats {
		data, err := r.artifact(ctx, result, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(start)

	logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cache_hits", len(result.CacheInfo.Hits),
		"took", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) artifact(ctx context.Context, result *Result, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(result.DOT), nil
	case FormatJSON:
		return marshalView(result.View)
	}

	key := cache.DiagramKey(result.DOT, format)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "diagram")
			result.CacheInfo.Hits = append(result.CacheInfo.Hits, format)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "diagram")
	}
	result.CacheInfo.Misses = append(result.CacheInfo.Misses, format)

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, format, result.Stats.Activities)
	start := time.Now()
	data, err := render.Render(ctx, result.DOT, render.Format(format))
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		opts.Logger.Warn("cache write failed", "format", format, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "diagram", len(data))
	}
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
