package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ciricc/copybench/internal/chart"
	"github.com/ciricc/copybench/internal/config"
	"github.com/ciricc/copybench/internal/monitor"
	"github.com/ciricc/copybench/internal/report"
	"github.com/ciricc/copybench/pkg/benchreport"
	"gonum.org/v1/plot/vg"
)

type Application struct {
	Config      config.Config
	Logger      *slog.Logger
	Dataset     *benchreport.Dataset
	Renderer    *chart.Renderer
	Assembler   *report.Assembler
	loadMonitor monitor.LoadMonitor
}

// NewLogger builds the process logger from the log section of the config.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func New(cfg config.Config, log *slog.Logger) (*Application, error) {
	ds := benchreport.Default()
	if cfg.Dataset.Path != "" {
		loaded, err := benchreport.Load(cfg.Dataset.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		ds = loaded
	}

	loadMonitor := monitor.NewSemaphoreLoadMonitor(int64(cfg.Render.MaxConcurrency))

	renderer := chart.NewRenderer(log, loadMonitor, chart.Options{
		GridWidth:   vg.Length(cfg.Render.GridWidthIn) * vg.Inch,
		GridHeight:  vg.Length(cfg.Render.GridHeightIn) * vg.Inch,
		PanelWidth:  vg.Length(cfg.Render.PanelWidthIn) * vg.Inch,
		PanelHeight: vg.Length(cfg.Render.PanelHeightIn) * vg.Inch,
		BarWidth:    vg.Length(cfg.Render.BarWidthIn) * vg.Inch,
		BarHeight:   vg.Length(cfg.Render.BarHeightIn) * vg.Inch,
		DPI:         cfg.Render.DPI,
	})

	assembler := report.NewAssembler(
		log,
		report.ContentFromConfig(cfg).Sections(),
		report.Meta{Title: cfg.Document.Title, Subtitle: cfg.Document.Subtitle, Author: cfg.Document.Author},
		cfg.Output.Document,
	)

	return &Application{
		Config:      cfg,
		Logger:      log,
		Dataset:     ds,
		Renderer:    renderer,
		Assembler:   assembler,
		loadMonitor: loadMonitor,
	}, nil
}

// RenderCharts renders every chart and writes the manifest next to them.
func (a *Application) RenderCharts(ctx context.Context) (*benchreport.Manifest, error) {
	a.Logger.InfoContext(ctx, "rendering charts", "dataset", a.Dataset.Name(), "dir", a.Config.Output.ChartsDir)
	m, err := a.Renderer.RenderAll(ctx, a.Dataset, a.Config.Output.ChartsDir)
	if err != nil {
		return nil, err
	}
	if err := m.WriteFile(a.Config.Output.Manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	a.Logger.InfoContext(ctx, "manifest written", "path", a.Config.Output.Manifest, "run_id", m.RunID)
	return m, nil
}

// ComposeReport assembles the document from m, or from the manifest on disk when m is nil.
func (a *Application) ComposeReport(ctx context.Context, m *benchreport.Manifest) (report.Summary, error) {
	if m == nil {
		var err error
		m, err = benchreport.ReadManifest(a.Config.Output.Manifest)
		if err != nil {
			return report.Summary{}, fmt.Errorf("%w: %w (run render-charts first)", report.ErrNoManifest, err)
		}
	}
	if missing := m.Missing(benchreport.ChartIDs...); len(missing) > 0 {
		a.Logger.WarnContext(ctx, "manifest is incomplete", "missing", missing)
	}
	return a.Assembler.Assemble(ctx, m)
}

// Run renders the charts and then composes the report from them.
func (a *Application) Run(ctx context.Context) (report.Summary, error) {
	m, err := a.RenderCharts(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	return a.ComposeReport(ctx, m)
}

func (a *Application) LoadMetrics() monitor.LoadMetrics {
	return a.loadMonitor.GetMetrics()
}
