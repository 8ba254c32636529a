package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ciricc/copybench/internal/config"
	"github.com/ciricc/copybench/internal/report"
	"github.com/ciricc/copybench/pkg/benchreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.Dir = dir
	cfg.Output.ChartsDir = filepath.Join(dir, "charts")
	cfg.Output.Manifest = filepath.Join(dir, "manifest.json")
	cfg.Output.Document = filepath.Join(dir, "report.pdf")
	cfg.Render.GridWidthIn, cfg.Render.GridHeightIn = 5, 4
	cfg.Render.BarWidthIn, cfg.Render.BarHeightIn = 4, 3
	cfg.Render.DPI = 40
	for i := range cfg.Evidence {
		cfg.Evidence[i].Path = filepath.Join(dir, cfg.Evidence[i].Path)
	}
	return cfg
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(io.Discard, "loud", "text")
	assert.Error(t, err)
	_, err = NewLogger(io.Discard, "info", "xml")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	var logs bytes.Buffer
	cfg := testConfig(t)
	a, err := New(cfg, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	assert.Equal(t, "builtin", a.Dataset.Name())

	s, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, cfg.Output.Manifest)
	assert.FileExists(t, cfg.Output.Document)
	assert.GreaterOrEqual(t, s.Pages, 5)
	// the screenshots are not in the temp dir
	assert.Len(t, s.Markers, 2)
	assert.Contains(t, logs.String(), "image missing from report")

	m, err := benchreport.ReadManifest(cfg.Output.Manifest)
	require.NoError(t, err)
	assert.Empty(t, m.Missing(benchreport.ChartIDs...))
	assert.Equal(t, s.RunID, m.RunID)
	assert.Equal(t, int64(5), a.LoadMetrics().Completed)
}

func TestComposeReport_FromDisk(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	t.Run("NoManifest", func(t *testing.T) {
		_, err := a.ComposeReport(context.Background(), nil)
		assert.ErrorIs(t, err, report.ErrNoManifest)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("AfterRender", func(t *testing.T) {
		_, err := a.RenderCharts(context.Background())
		require.NoError(t, err)
		s, err := a.ComposeReport(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, cfg.Output.Document, s.Path)
	})
}

func TestNew_DatasetFromFile(t *testing.T) {
	cfg := testConfig(t)

	t.Run("Missing", func(t *testing.T) {
		cfg := cfg
		cfg.Dataset.Path = filepath.Join(t.TempDir(), "absent.yaml")
		_, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		assert.Error(t, err)
	})

	t.Run("Loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiny.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
name: tiny
duration_seconds: 5
threads: [1]
sizes: [{label: 1K, bytes: 1024}]
series: []
`), 0o644))
		cfg := cfg
		cfg.Dataset.Path = path
		a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, err)
		assert.Equal(t, "tiny", a.Dataset.Name())
	})
}
