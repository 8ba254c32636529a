package chart

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ciricc/copybench/internal/monitor"
	"github.com/ciricc/copybench/pkg/benchreport"
	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

type Options struct {
	GridWidth   vg.Length
	GridHeight  vg.Length
	// PanelWidth and PanelHeight size a single panel drawn by RenderLinePanel.
	PanelWidth  vg.Length
	PanelHeight vg.Length
	BarWidth    vg.Length
	BarHeight   vg.Length
	DPI         int
}

func DefaultOptions() Options {
	return Options{
		GridWidth:   14 * vg.Inch,
		GridHeight:  10 * vg.Inch,
		PanelWidth:  7 * vg.Inch,
		PanelHeight: 5 * vg.Inch,
		BarWidth:    8 * vg.Inch,
		BarHeight:   6 * vg.Inch,
		DPI:         100,
	}
}

// Renderer draws comparison charts and writes each one as a PNG file.
type Renderer struct {
	logger *slog.Logger
	load   monitor.LoadMonitor
	opts   Options
}

func NewRenderer(logger *slog.Logger, load monitor.LoadMonitor, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.GridWidth <= 0 || opts.GridHeight <= 0 {
		opts.GridWidth, opts.GridHeight = def.GridWidth, def.GridHeight
	}
	if opts.PanelWidth <= 0 || opts.PanelHeight <= 0 {
		opts.PanelWidth, opts.PanelHeight = def.PanelWidth, def.PanelHeight
	}
	if opts.BarWidth <= 0 || opts.BarHeight <= 0 {
		opts.BarWidth, opts.BarHeight = def.BarWidth, def.BarHeight
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	if load == nil {
		load = monitor.NewSemaphoreLoadMonitor(1)
	}
	return &Renderer{logger: logger, load: load, opts: opts}
}

// RenderLineGrid draws every panel of spec in a two-column grid under one title
// and writes the combined image to path.
func (r *Renderer) RenderLineGrid(ctx context.Context, spec GridSpec, path string) (benchreport.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return benchreport.Artifact{}, err
	}
	if err := spec.validate(); err != nil {
		return benchreport.Artifact{}, err
	}

	cols := 2
	if len(spec.Panels)%2 != 0 {
		cols = 1
	}
	rows := len(spec.Panels) / cols

	plots := make([][]*plot.Plot, rows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, cols)
		for i := range plots[j] {
			p, err := linePanel(spec, spec.Panels[j*cols+i])
			if err != nil {
				return benchreport.Artifact{}, err
			}
			plots[j][i] = p
		}
	}

	img := vgimg.NewWith(vgimg.UseWH(r.opts.GridWidth, r.opts.GridHeight), vgimg.UseDPI(r.opts.DPI))
	dc := draw.New(img)

	titleStyle := plots[0][0].Title.TextStyle
	titleStyle.Font.Size = vg.Points(16)
	titleStyle.XAlign = text.XCenter
	titleStyle.YAlign = text.YTop
	dc.FillText(titleStyle, vg.Point{X: dc.Min.X + dc.Size().X/2, Y: dc.Max.Y - vg.Points(10)}, spec.Title)

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadTop:    vg.Points(40),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
		PadX:      vg.Points(30),
		PadY:      vg.Points(30),
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	if err := writePNG(img, path); err != nil {
		return benchreport.Artifact{}, err
	}
	r.logger.DebugContext(ctx, "rendered chart grid", "id", spec.ID, "panels", len(spec.Panels), "path", path)
	return artifact(spec.ID, spec.Title, path, len(spec.Panels), strategiesOf(spec.Panels[0].Series))
}

// RenderLinePanel renders a single panel of spec as its own image.
func (r *Renderer) RenderLinePanel(ctx context.Context, spec GridSpec, panel int, path string) (benchreport.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return benchreport.Artifact{}, err
	}
	if err := spec.validate(); err != nil {
		return benchreport.Artifact{}, err
	}
	if panel < 0 || panel >= len(spec.Panels) {
		return benchreport.Artifact{}, fmt.Errorf("%w: panel %d out of range", ErrBadSpec, panel)
	}
	p, err := linePanel(spec, spec.Panels[panel])
	if err != nil {
		return benchreport.Artifact{}, err
	}
	img := vgimg.NewWith(vgimg.UseWH(r.opts.PanelWidth, r.opts.PanelHeight), vgimg.UseDPI(r.opts.DPI))
	p.Draw(draw.New(img))
	if err := writePNG(img, path); err != nil {
		return benchreport.Artifact{}, err
	}
	title := spec.Title + " / " + spec.Panels[panel].Title
	return artifact(spec.ID, title, path, 1, strategiesOf(spec.Panels[panel].Series))
}

// RenderGroupedBar draws one bar per strategy inside each group and writes the image to path.
func (r *Renderer) RenderGroupedBar(ctx context.Context, spec BarSpec, path string) (benchreport.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return benchreport.Artifact{}, err
	}
	if err := spec.validate(); err != nil {
		return benchreport.Artifact{}, err
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.Y.Label.Text = spec.YLabel
	p.Y.Min = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	width := vg.Points(22)
	for i, s := range spec.Series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return benchreport.Artifact{}, fmt.Errorf("%s: %w", spec.ID, err)
		}
		st := StyleFor(s.Strategy)
		bars.Color = st.Color
		bars.LineStyle.Width = 0
		bars.Offset = width * vg.Length(i-len(spec.Series)/2)
		p.Add(bars)
		p.Legend.Add(s.Strategy.String(), bars)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.NominalX(spec.Groups...)

	img := vgimg.NewWith(vgimg.UseWH(r.opts.BarWidth, r.opts.BarHeight), vgimg.UseDPI(r.opts.DPI))
	p.Draw(draw.New(img))
	if err := writePNG(img, path); err != nil {
		return benchreport.Artifact{}, err
	}
	r.logger.DebugContext(ctx, "rendered bar chart", "id", spec.ID, "groups", len(spec.Groups), "path", path)
	return artifact(spec.ID, spec.Title, path, 1, strategiesOf(spec.Series))
}

func linePanel(spec GridSpec, panel PanelSpec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.Y.Label.Text = spec.YLabel
	p.Add(plotter.NewGrid())

	ticks := make([]plot.Tick, len(spec.XValues))
	for i, x := range spec.XValues {
		ticks[i] = plot.Tick{Value: x, Label: spec.XLabels[i]}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	for _, s := range panel.Series {
		pts := make(plotter.XYs, len(s.Values))
		for i, v := range s.Values {
			pts[i].X = spec.XValues[i]
			pts[i].Y = v
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("%s/%s %s: %w", spec.ID, panel.Title, s.Strategy, err)
		}
		st := StyleFor(s.Strategy)
		line.Color = st.Color
		line.Width = vg.Points(1.5)
		points.GlyphStyle.Color = st.Color
		points.GlyphStyle.Shape = st.Glyph
		points.GlyphStyle.Radius = vg.Points(3.5)
		p.Add(line, points)
		p.Legend.Add(s.Strategy.String(), line, points)
	}
	p.Legend.Top = true

	minX, maxX := spec.XValues[0], spec.XValues[len(spec.XValues)-1]
	if spec.Axis == BySize {
		p.X.Scale = plot.LogScale{}
		p.X.Min, p.X.Max = minX*0.7, maxX*1.4
	} else {
		pad := (maxX - minX) * 0.05
		p.X.Min, p.X.Max = minX-pad, maxX+pad
	}
	return p, nil
}

func strategiesOf(series []Series) []benchreport.Strategy {
	return lo.Map(series, func(s Series, _ int) benchreport.Strategy { return s.Strategy })
}

func artifact(id, title, path string, panels int, strategies []benchreport.Strategy) (benchreport.Artifact, error) {
	st, err := os.Stat(path)
	if err != nil {
		return benchreport.Artifact{}, err
	}
	return benchreport.Artifact{
		ID:        id,
		Path:      path,
		Title:     title,
		Panels:    panels,
		Bytes:     st.Size(),
		Encodings: lo.Map(strategies, func(s benchreport.Strategy, _ int) benchreport.Encoding { return encoding(s) }),
	}, nil
}

// writePNG encodes img to path. Any failure here is a storage error and is returned as is.
func writePNG(img *vgimg.Canvas, path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
