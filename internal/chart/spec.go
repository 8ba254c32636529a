package chart

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ciricc/copybench/pkg/benchreport"
	"github.com/samber/lo"
)

var ErrBadSpec = errors.New("invalid chart spec")

// Axis is the grouping axis of a line chart.
type Axis int

const (
	// BySize plots against message size on a log scale.
	BySize Axis = iota
	// ByThreads plots against thread count on a linear scale.
	ByThreads
)

type Series struct {
	Strategy benchreport.Strategy
	Values   []float64
}

type PanelSpec struct {
	Title  string
	Series []Series
}

// GridSpec describes a set of line panels sharing one super-title, axis and y label.
type GridSpec struct {
	ID      string
	Title   string
	YLabel  string
	Axis    Axis
	XValues []float64
	XLabels []string
	Panels  []PanelSpec
}

type BarSpec struct {
	ID     string
	Title  string
	YLabel string
	Groups []string
	Series []Series
}

// validateSeries enforces one series per strategy, in chart order, each n long.
func validateSeries(series []Series, n int) error {
	if len(series) != len(benchreport.Strategies) {
		return fmt.Errorf("%w: %d series, want %d", ErrBadSpec, len(series), len(benchreport.Strategies))
	}
	for i, s := range series {
		if s.Strategy != benchreport.Strategies[i] {
			return fmt.Errorf("%w: series %d is %s, want %s", ErrBadSpec, i, s.Strategy, benchreport.Strategies[i])
		}
		if len(s.Values) != n {
			return fmt.Errorf("%w: %s has %d values, axis has %d", ErrBadSpec, s.Strategy, len(s.Values), n)
		}
	}
	return nil
}

func (g GridSpec) validate() error {
	if len(g.Panels) == 0 {
		return fmt.Errorf("%w: %s has no panels", ErrBadSpec, g.ID)
	}
	if len(g.XLabels) != len(g.XValues) {
		return fmt.Errorf("%w: %s has %d labels for %d x values", ErrBadSpec, g.ID, len(g.XLabels), len(g.XValues))
	}
	for _, p := range g.Panels {
		if err := validateSeries(p.Series, len(g.XValues)); err != nil {
			return fmt.Errorf("%s/%s: %w", g.ID, p.Title, err)
		}
	}
	return nil
}

func (b BarSpec) validate() error {
	if err := validateSeries(b.Series, len(b.Groups)); err != nil {
		return fmt.Errorf("%s: %w", b.ID, err)
	}
	return nil
}

func sizeAxis(ds *benchreport.Dataset) ([]float64, []string) {
	sizes := ds.Sizes()
	return lo.Map(sizes, func(s benchreport.MessageSize, _ int) float64 { return s.KiB() }),
		lo.Map(sizes, func(s benchreport.MessageSize, _ int) string { return s.Label })
}

func threadAxis(ds *benchreport.Dataset) ([]float64, []string) {
	threads := ds.Threads()
	return lo.Map(threads, func(t int, _ int) float64 { return float64(t) }),
		lo.Map(threads, func(t int, _ int) string { return strconv.Itoa(t) })
}

func collect(get func(benchreport.Strategy) ([]float64, error)) ([]Series, error) {
	out := make([]Series, 0, len(benchreport.Strategies))
	for _, s := range benchreport.Strategies {
		v, err := get(s)
		if err != nil {
			return nil, err
		}
		out = append(out, Series{Strategy: s, Values: v})
	}
	return out, nil
}

// ThroughputGrid plots throughput against message size, one panel per thread count.
func ThroughputGrid(ds *benchreport.Dataset) (GridSpec, error) {
	xs, labels := sizeAxis(ds)
	g := GridSpec{
		ID:      benchreport.ChartThroughput,
		Title:   "Throughput vs Message Size (Across Thread Counts)",
		YLabel:  "Throughput (Gbps)",
		Axis:    BySize,
		XValues: xs,
		XLabels: labels,
	}
	for _, t := range ds.Threads() {
		series, err := collect(func(s benchreport.Strategy) ([]float64, error) {
			return ds.BySize(s, benchreport.Throughput, t)
		})
		if err != nil {
			return GridSpec{}, err
		}
		g.Panels = append(g.Panels, PanelSpec{Title: fmt.Sprintf("Threads = %d", t), Series: series})
	}
	return g, nil
}

// ScalingGrid plots throughput against thread count, one panel per message size.
func ScalingGrid(ds *benchreport.Dataset) (GridSpec, error) {
	xs, labels := threadAxis(ds)
	g := GridSpec{
		ID:      benchreport.ChartScaling,
		Title:   "Throughput Scaling vs Thread Count",
		YLabel:  "Throughput (Gbps)",
		Axis:    ByThreads,
		XValues: xs,
		XLabels: labels,
	}
	for _, size := range ds.Sizes() {
		series, err := collect(func(s benchreport.Strategy) ([]float64, error) {
			return ds.ByThreads(s, benchreport.Throughput, size.Label)
		})
		if err != nil {
			return GridSpec{}, err
		}
		g.Panels = append(g.Panels, PanelSpec{Title: "Msg Size = " + size.Label, Series: series})
	}
	return g, nil
}

func LatencyGrid(ds *benchreport.Dataset) (GridSpec, error) {
	xs, labels := threadAxis(ds)
	g := GridSpec{
		ID:      benchreport.ChartLatency,
		Title:   "Latency vs Thread Count",
		YLabel:  "Latency (us)",
		Axis:    ByThreads,
		XValues: xs,
		XLabels: labels,
	}
	for _, size := range ds.Sizes() {
		series, err := collect(func(s benchreport.Strategy) ([]float64, error) {
			return ds.ByThreads(s, benchreport.Latency, size.Label)
		})
		if err != nil {
			return GridSpec{}, err
		}
		g.Panels = append(g.Panels, PanelSpec{Title: "Msg Size = " + size.Label, Series: series})
	}
	return g, nil
}

// EfficiencyGrid plots cycles per byte against message size, one panel per
// thread count. Cells with zero throughput are plotted as 0 and returned.
func EfficiencyGrid(ds *benchreport.Dataset) (GridSpec, []benchreport.DegenerateCell, error) {
	xs, labels := sizeAxis(ds)
	g := GridSpec{
		ID:      benchreport.ChartEfficiency,
		Title:   "CPU Cycles Per Byte (Efficiency) vs Msg Size",
		YLabel:  "Cycles/Byte",
		Axis:    BySize,
		XValues: xs,
		XLabels: labels,
	}
	var degenerate []benchreport.DegenerateCell
	for _, t := range ds.Threads() {
		series, err := collect(func(s benchreport.Strategy) ([]float64, error) {
			cpb, bad, err := ds.EfficiencyBySize(s, t)
			degenerate = append(degenerate, bad...)
			return cpb, err
		})
		if err != nil {
			return GridSpec{}, nil, err
		}
		g.Panels = append(g.Panels, PanelSpec{Title: fmt.Sprintf("Threads = %d", t), Series: series})
	}
	return g, degenerate, nil
}

// CacheMissBar compares L1 misses per message size at the lowest thread count.
func CacheMissBar(ds *benchreport.Dataset) (BarSpec, error) {
	threads := lo.Min(ds.Threads())
	_, labels := sizeAxis(ds)
	series, err := collect(func(s benchreport.Strategy) ([]float64, error) {
		return ds.BySize(s, benchreport.CacheMisses, threads)
	})
	if err != nil {
		return BarSpec{}, err
	}
	return BarSpec{
		ID:     benchreport.ChartCacheMisses,
		Title:  fmt.Sprintf("L1 Cache Misses (Threads=%d)", threads),
		YLabel: "L1 Cache Misses (Millions)",
		Groups: labels,
		Series: series,
	}, nil
}
