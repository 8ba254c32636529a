package chart

import (
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ciricc/copybench/internal/monitor"
	"github.com/ciricc/copybench/pkg/benchreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

func testRenderer(max int64) *Renderer {
	opts := Options{
		GridWidth: 6 * vg.Inch, GridHeight: 4 * vg.Inch,
		PanelWidth: 5 * vg.Inch, PanelHeight: 3 * vg.Inch,
		BarWidth: 4 * vg.Inch, BarHeight: 3 * vg.Inch,
		DPI: 50,
	}
	return NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)), monitor.NewSemaphoreLoadMonitor(max), opts)
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	m, err := testRenderer(3).RenderAll(context.Background(), benchreport.Default(), dir)
	require.NoError(t, err)

	t.Run("ProducesEveryChart", func(t *testing.T) {
		require.Len(t, m.Artifacts, 5)
		assert.Empty(t, m.Missing(benchreport.ChartIDs...))
		for _, a := range m.Artifacts {
			st, err := os.Stat(a.Path)
			require.NoError(t, err, a.ID)
			assert.Greater(t, st.Size(), int64(0), a.ID)
			assert.Equal(t, st.Size(), a.Bytes)
			assert.Equal(t, filepath.Join(dir, a.ID+".png"), a.Path)
		}
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 5)
	})

	t.Run("FilesArePNG", func(t *testing.T) {
		a, err := m.Lookup(benchreport.ChartThroughput)
		require.NoError(t, err)
		f, err := os.Open(a.Path)
		require.NoError(t, err)
		defer f.Close()
		cfg, err := png.DecodeConfig(f)
		require.NoError(t, err)
		assert.Equal(t, 300, cfg.Width)
		assert.Equal(t, 200, cfg.Height)

		bar, err := m.Lookup(benchreport.ChartCacheMisses)
		require.NoError(t, err)
		bf, err := os.Open(bar.Path)
		require.NoError(t, err)
		defer bf.Close()
		bcfg, err := png.DecodeConfig(bf)
		require.NoError(t, err)
		assert.Equal(t, 200, bcfg.Width)
		assert.Equal(t, 150, bcfg.Height)
	})

	t.Run("SameEncodingOnEveryChart", func(t *testing.T) {
		want := m.Artifacts[0].Encodings
		require.Len(t, want, 3)
		for _, a := range m.Artifacts[1:] {
			assert.Equal(t, want, a.Encodings, a.ID)
		}
		assert.Equal(t, benchreport.Encoding{Strategy: benchreport.TwoCopy, Label: "TwoCopy", Color: "#1f77b4", Glyph: "circle"}, want[0])
		assert.Equal(t, "square", want[1].Glyph)
		assert.Equal(t, "triangle", want[2].Glyph)
	})

	t.Run("PanelCounts", func(t *testing.T) {
		for _, id := range []string{benchreport.ChartThroughput, benchreport.ChartLatency, benchreport.ChartEfficiency, benchreport.ChartScaling} {
			a, err := m.Lookup(id)
			require.NoError(t, err)
			assert.Equal(t, 4, a.Panels, id)
		}
		a, err := m.Lookup(benchreport.ChartCacheMisses)
		require.NoError(t, err)
		assert.Equal(t, 1, a.Panels)
	})
}

func TestRenderAll_StorageFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := testRenderer(1).RenderAll(context.Background(), benchreport.Default(), filepath.Join(blocker, "charts"))
	assert.Error(t, err)
}

func TestRenderAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testRenderer(1).RenderAll(ctx, benchreport.Default(), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

// countingMonitor grants slots according to free and counts how they were taken.
type countingMonitor struct {
	free     bool
	tries    atomic.Int64
	blocking atomic.Int64
	released atomic.Int64
}

func (m *countingMonitor) GetMetrics() monitor.LoadMetrics { return monitor.LoadMetrics{MaxTasks: 1} }

func (m *countingMonitor) Acquire(ctx context.Context) error {
	m.blocking.Add(1)
	return ctx.Err()
}

func (m *countingMonitor) TryAcquire() bool {
	m.tries.Add(1)
	return m.free
}

func (m *countingMonitor) Release() { m.released.Add(1) }

func TestRenderAll_SlotAcquisition(t *testing.T) {
	opts := Options{DPI: 30}
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("FreeSlotDoesNotBlock", func(t *testing.T) {
		mon := &countingMonitor{free: true}
		_, err := NewRenderer(discard, mon, opts).RenderAll(context.Background(), benchreport.Default(), t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, int64(5), mon.tries.Load())
		assert.Zero(t, mon.blocking.Load())
		assert.Equal(t, int64(5), mon.released.Load())
	})

	t.Run("BusyFallsBackToBlocking", func(t *testing.T) {
		mon := &countingMonitor{free: false}
		_, err := NewRenderer(discard, mon, opts).RenderAll(context.Background(), benchreport.Default(), t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, int64(5), mon.tries.Load())
		assert.Equal(t, int64(5), mon.blocking.Load())
		assert.Equal(t, int64(5), mon.released.Load())
	})
}

func TestRenderLinePanel(t *testing.T) {
	spec, err := LatencyGrid(benchreport.Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "latency_1k.png")
	a, err := testRenderer(1).RenderLinePanel(context.Background(), spec, 0, path)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Panels)
	assert.Equal(t, "Latency vs Thread Count / Msg Size = 1K", a.Title)

	f, err := os.Open(path)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	// panel size, not the bar chart size
	assert.Equal(t, 250, cfg.Width)
	assert.Equal(t, 150, cfg.Height)

	_, err = testRenderer(1).RenderLinePanel(context.Background(), spec, 4, path)
	assert.ErrorIs(t, err, ErrBadSpec)
}

func TestLinePanelScale(t *testing.T) {
	ds := benchreport.Default()

	bySize, err := ThroughputGrid(ds)
	require.NoError(t, err)
	p, err := linePanel(bySize, bySize.Panels[0])
	require.NoError(t, err)
	_, isLog := p.X.Scale.(plot.LogScale)
	assert.True(t, isLog)
	ticks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	labels := make([]string, 0, len(ticks))
	for _, tk := range ticks {
		labels = append(labels, tk.Label)
	}
	assert.Equal(t, []string{"1K", "32K", "128K", "1MB"}, labels)

	byThreads, err := LatencyGrid(ds)
	require.NoError(t, err)
	p, err = linePanel(byThreads, byThreads.Panels[0])
	require.NoError(t, err)
	_, isLog = p.X.Scale.(plot.LogScale)
	assert.False(t, isLog)
	assert.Equal(t, []float64{1, 2, 4, 8}, byThreads.XValues)
}

func TestSpecValidation(t *testing.T) {
	good := []Series{
		{Strategy: benchreport.TwoCopy, Values: []float64{1, 2}},
		{Strategy: benchreport.OneCopy, Values: []float64{1, 2}},
		{Strategy: benchreport.ZeroCopy, Values: []float64{1, 2}},
	}

	t.Run("MismatchedLength", func(t *testing.T) {
		bad := append([]Series(nil), good...)
		bad[2] = Series{Strategy: benchreport.ZeroCopy, Values: []float64{1}}
		err := BarSpec{ID: "x", Groups: []string{"a", "b"}, Series: bad}.validate()
		assert.ErrorIs(t, err, ErrBadSpec)
	})

	t.Run("WrongOrder", func(t *testing.T) {
		bad := []Series{good[1], good[0], good[2]}
		err := BarSpec{ID: "x", Groups: []string{"a", "b"}, Series: bad}.validate()
		assert.ErrorIs(t, err, ErrBadSpec)
	})

	t.Run("MissingStrategy", func(t *testing.T) {
		err := GridSpec{
			ID: "x", XValues: []float64{1, 2}, XLabels: []string{"1", "2"},
			Panels: []PanelSpec{{Title: "p", Series: good[:2]}},
		}.validate()
		assert.ErrorIs(t, err, ErrBadSpec)
	})

	t.Run("Valid", func(t *testing.T) {
		err := GridSpec{
			ID: "x", XValues: []float64{1, 2}, XLabels: []string{"1", "2"},
			Panels: []PanelSpec{{Title: "p", Series: good}},
		}.validate()
		assert.NoError(t, err)
	})
}

func TestCacheMissBar(t *testing.T) {
	spec, err := CacheMissBar(benchreport.Default())
	require.NoError(t, err)
	assert.Equal(t, "L1 Cache Misses (Threads=1)", spec.Title)
	assert.Equal(t, []string{"1K", "32K", "128K", "1MB"}, spec.Groups)
	assert.Equal(t, []float64{186.8, 704.5, 1147.3, 1081.1}, spec.Series[2].Values)
}
