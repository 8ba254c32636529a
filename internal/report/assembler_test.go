package report

import (
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ciricc/copybench/internal/chart"
	"github.com/ciricc/copybench/internal/config"
	"github.com/ciricc/copybench/internal/document"
	"github.com/ciricc/copybench/internal/monitor"
	"github.com/ciricc/copybench/pkg/benchreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func renderCharts(t *testing.T, dir string) *benchreport.Manifest {
	t.Helper()
	opts := chart.Options{GridWidth: 6 * vg.Inch, GridHeight: 4 * vg.Inch, BarWidth: 4 * vg.Inch, BarHeight: 3 * vg.Inch, DPI: 40}
	r := chart.NewRenderer(discard, monitor.NewSemaphoreLoadMonitor(2), opts)
	m, err := r.RenderAll(context.Background(), benchreport.Default(), filepath.Join(dir, "charts"))
	require.NoError(t, err)
	return m
}

func evidenceContent(t *testing.T, dir string) Content {
	t.Helper()
	c := DefaultContent()
	for i := range c.Evidence {
		path := filepath.Join(dir, filepath.Base(c.Evidence[i].Path))
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 160, 90))))
		require.NoError(t, f.Close())
		c.Evidence[i].Path = path
	}
	return c
}

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	m := renderCharts(t, dir)
	out := filepath.Join(dir, "report.pdf")

	a := NewAssembler(discard, evidenceContent(t, dir).Sections(), Meta{Title: "PA02", Subtitle: "test"}, out)
	s, err := a.Assemble(context.Background(), m)
	require.NoError(t, err)

	assert.True(t, s.Succeeded())
	assert.Empty(t, s.Markers)
	assert.Equal(t, out, s.Path)
	assert.Equal(t, m.RunID, s.RunID)
	// evidence, two chart pages, analysis, closing
	assert.GreaterOrEqual(t, s.Pages, 5)

	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(0))
}

func TestAssemble_MissingChartFile(t *testing.T) {
	dir := t.TempDir()
	m := renderCharts(t, dir)
	art, err := m.Lookup(benchreport.ChartLatency)
	require.NoError(t, err)
	require.NoError(t, os.Remove(art.Path))

	out := filepath.Join(dir, "report.pdf")
	s, err := NewAssembler(discard, evidenceContent(t, dir).Sections(), Meta{Title: "PA02"}, out).Assemble(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{art.Path}, s.Markers)
	assert.False(t, s.Succeeded())
	assert.FileExists(t, out)
}

func TestAssemble_ChartAbsentFromManifest(t *testing.T) {
	dir := t.TempDir()
	m := renderCharts(t, dir)
	m.Artifacts = m.Artifacts[:len(m.Artifacts)-1]

	s, err := NewAssembler(discard, evidenceContent(t, dir).Sections(), Meta{}, filepath.Join(dir, "r.pdf")).Assemble(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{benchreport.ChartScaling}, s.Markers)
}

func TestAssemble_MissingEvidence(t *testing.T) {
	dir := t.TempDir()
	m := renderCharts(t, dir)
	c := DefaultContent()
	c.Evidence[0].Path = filepath.Join(dir, "absent_server.png")
	c.Evidence[1].Path = filepath.Join(dir, "absent_client.png")

	s, err := NewAssembler(discard, c.Sections(), Meta{}, filepath.Join(dir, "r.pdf")).Assemble(context.Background(), m)
	require.NoError(t, err)
	assert.Len(t, s.Markers, 2)
}

func TestAssemble_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("NilManifest", func(t *testing.T) {
		_, err := NewAssembler(discard, DefaultContent().Sections(), Meta{}, filepath.Join(dir, "r.pdf")).Assemble(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoManifest)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewAssembler(discard, DefaultContent().Sections(), Meta{}, filepath.Join(dir, "r.pdf")).Assemble(ctx, &benchreport.Manifest{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("UnwritableOutput", func(t *testing.T) {
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
		_, err := NewAssembler(discard, DefaultContent().Sections(), Meta{}, filepath.Join(blocker, "r.pdf")).Assemble(context.Background(), &benchreport.Manifest{})
		assert.Error(t, err)
	})
}

func TestContentFromConfig(t *testing.T) {
	t.Run("DefaultsKept", func(t *testing.T) {
		var cfg config.Config
		c := ContentFromConfig(cfg)
		assert.Equal(t, DefaultContent(), c)
		assert.Len(t, c.Questions, 6)
		assert.Len(t, chartIDs(c.Charts), 5)
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg := config.Default()
		cfg.Report.Questions = []config.QA{{Question: "Q?", Answer: "A."}}
		cfg.Report.RepoURL = "https://example.com/x"
		cfg.Evidence = cfg.Evidence[:1]
		c := ContentFromConfig(cfg)
		assert.Equal(t, []QA{{Question: "Q?", Answer: "A."}}, c.Questions)
		assert.Equal(t, "https://example.com/x", c.RepoURL)
		assert.Len(t, c.Evidence, 1)
		assert.Equal(t, DefaultContent().Declaration, c.Declaration)
	})

	t.Run("EmptyEvidenceDropsSection", func(t *testing.T) {
		cfg := config.Default()
		cfg.Evidence = []config.Evidence{}
		c := ContentFromConfig(cfg)
		assert.Empty(t, c.Evidence)

		sections := c.Sections()
		require.Len(t, sections, 4)
		assert.Equal(t, "Performance Plots", sections[0].Title)
	})
}

func chartIDs(blocks []Block) []string {
	ids := make([]string, 0)
	for _, b := range blocks {
		if b.Kind == BlockChart {
			ids = append(ids, b.ArtifactID)
		}
	}
	return ids
}

func TestDefaultContentChartsCoverManifest(t *testing.T) {
	assert.ElementsMatch(t, benchreport.ChartIDs, chartIDs(DefaultContent().Charts))
}

func TestDefaultSections(t *testing.T) {
	sections := DefaultContent().Sections()
	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{
		"Execution Screenshots",
		"Performance Plots",
		"Analysis & Reasoning",
		"AI Usage Declaration",
		"GitHub Repository",
	}, titles)
	// the cache miss chart opens the second plots page
	charts := sections[1].Blocks
	i := slices.IndexFunc(charts, func(b Block) bool { return b.ArtifactID == benchreport.ChartCacheMisses })
	require.GreaterOrEqual(t, i, 2)
	assert.Equal(t, BlockSubheading, charts[i-1].Kind)
	assert.Equal(t, BlockPageBreak, charts[i-2].Kind)
	assert.Equal(t, BlockPageBreak, charts[len(charts)-1].Kind)
}

func TestLayout_FollowsBlockOrder(t *testing.T) {
	dir := t.TempDir()
	m := renderCharts(t, dir)
	missing := filepath.Join(dir, "absent.png")

	sections := []Section{
		{Title: "First", Blocks: []Block{
			Paragraph("intro"),
			Subheading("Chart"),
			Chart(benchreport.ChartThroughput, 120, "cap"),
			Chart("not_rendered", 120, ""),
			Label("shot"),
			Image(missing, 60, ""),
			Space(4),
			QAPair("Q?", "A."),
			PageBreak(),
		}},
		{Blocks: []Block{
			Heading("Plain heading"),
			Subheading("Unnumbered"),
			Link("repo", "https://example.com"),
		}},
		{Title: "Second", Blocks: []Block{Subheading("Again")}},
	}
	a := NewAssembler(discard, sections, Meta{}, filepath.Join(dir, "r.pdf"))
	c := document.New(document.WithLogger(discard))
	require.NoError(t, a.layout(context.Background(), c, m))

	ps := c.Placements()
	kinds := make([]document.Kind, 0, len(ps))
	for _, p := range ps {
		kinds = append(kinds, p.Kind)
	}
	assert.Equal(t, []document.Kind{
		document.KindHeading,
		document.KindParagraph,
		document.KindSubheading,
		document.KindImage,
		document.KindMarker,
		document.KindLabel,
		document.KindMarker,
		document.KindQA,
		document.KindPageBreak,
		document.KindHeading,
		document.KindSubheading,
		document.KindLink,
		document.KindHeading,
		document.KindSubheading,
	}, kinds)

	assert.Equal(t, "1. First", ps[0].Ref)
	assert.Equal(t, "1.1 Chart", ps[2].Ref)
	assert.Equal(t, "Plain heading", ps[9].Ref)
	assert.Equal(t, "Unnumbered", ps[10].Ref)
	assert.Equal(t, "2. Second", ps[12].Ref)
	assert.Equal(t, "2.1 Again", ps[13].Ref)
	assert.Equal(t, []string{"not_rendered", missing}, c.Markers())
}

func TestLayout_UnknownBlock(t *testing.T) {
	a := NewAssembler(discard, []Section{{Blocks: []Block{{Kind: "table"}}}}, Meta{}, "")
	err := a.layout(context.Background(), document.New(document.WithLogger(discard)), &benchreport.Manifest{})
	assert.ErrorIs(t, err, ErrUnknownBlock)
}
