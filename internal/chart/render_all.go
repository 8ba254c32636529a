package chart

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/ciricc/copybench/pkg/benchreport"
	"golang.org/x/sync/errgroup"
)

type renderJob struct {
	id     string
	render func(ctx context.Context, path string) (benchreport.Artifact, error)
}

// RenderAll renders the full chart set for ds into dir and returns the manifest
// describing it. Renders run concurrently within the load monitor's limit and
// only block when no slot is free; the first failure cancels the rest and is returned.
func (r *Renderer) RenderAll(ctx context.Context, ds *benchreport.Dataset, dir string) (*benchreport.Manifest, error) {
	throughput, err := ThroughputGrid(ds)
	if err != nil {
		return nil, fmt.Errorf("throughput grid: %w", err)
	}
	latency, err := LatencyGrid(ds)
	if err != nil {
		return nil, fmt.Errorf("latency grid: %w", err)
	}
	efficiency, degenerate, err := EfficiencyGrid(ds)
	if err != nil {
		return nil, fmt.Errorf("efficiency grid: %w", err)
	}
	for _, c := range degenerate {
		r.logger.WarnContext(ctx, "zero throughput, cycles per byte plotted as 0", "cell", c.String())
	}
	scaling, err := ScalingGrid(ds)
	if err != nil {
		return nil, fmt.Errorf("scaling grid: %w", err)
	}
	misses, err := CacheMissBar(ds)
	if err != nil {
		return nil, fmt.Errorf("cache miss chart: %w", err)
	}

	grid := func(spec GridSpec) func(context.Context, string) (benchreport.Artifact, error) {
		return func(ctx context.Context, path string) (benchreport.Artifact, error) {
			return r.RenderLineGrid(ctx, spec, path)
		}
	}
	jobs := []renderJob{
		{id: throughput.ID, render: grid(throughput)},
		{id: latency.ID, render: grid(latency)},
		{id: misses.ID, render: func(ctx context.Context, path string) (benchreport.Artifact, error) {
			return r.RenderGroupedBar(ctx, misses, path)
		}},
		{id: efficiency.ID, render: grid(efficiency)},
		{id: scaling.ID, render: grid(scaling)},
	}

	results := make([]benchreport.Artifact, len(jobs))
	var waited atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			if !r.load.TryAcquire() {
				waited.Add(1)
				r.logger.DebugContext(gctx, "render waiting for a slot", "id", job.id)
				if err := r.load.Acquire(gctx); err != nil {
					return err
				}
			}
			defer r.load.Release()
			a, err := job.render(gctx, filepath.Join(dir, job.id+".png"))
			if err != nil {
				return fmt.Errorf("render %s: %w", job.id, err)
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := benchreport.NewManifest(ds)
	for _, a := range results {
		m.Add(a)
	}
	metrics := r.load.GetMetrics()
	r.logger.InfoContext(ctx, "charts rendered",
		"count", len(results),
		"dir", dir,
		"peak_concurrency", metrics.PeakTasks,
		"max_concurrency", metrics.MaxTasks,
		"waited", waited.Load(),
	)
	return m, nil
}
