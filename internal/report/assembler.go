package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ciricc/copybench/internal/document"
	"github.com/ciricc/copybench/pkg/benchreport"
)

var ErrNoManifest = errors.New("no chart manifest")

// Summary is the outcome of one assembled document.
type Summary struct {
	Path    string
	Pages   int
	Markers []string
	RunID   string
}

// Succeeded reports whether every image made it into the document.
func (s Summary) Succeeded() bool { return len(s.Markers) == 0 }

type Meta struct {
	Title    string
	Subtitle string
	Author   string
}

// Assembler lays the report sections out in order and saves the PDF.
type Assembler struct {
	logger   *slog.Logger
	sections []Section
	meta     Meta
	output   string
}

func NewAssembler(logger *slog.Logger, sections []Section, meta Meta, output string) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger, sections: sections, meta: meta, output: output}
}

// Assemble builds the document from the artifacts in m. An artifact that is
// absent from m or from disk becomes a marker in the document and in the
// returned Summary; only a missing manifest or a write failure is an error.
func (a *Assembler) Assemble(ctx context.Context, m *benchreport.Manifest) (Summary, error) {
	if m == nil {
		return Summary{}, ErrNoManifest
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	subject := fmt.Sprintf("run %s, dataset %s", m.RunID, m.Dataset)
	c := document.New(
		document.WithHeader(document.TitleHeader{Title: a.meta.Title, Subtitle: a.meta.Subtitle}),
		document.WithFooter(document.PageNumberFooter{}),
		document.WithLogger(a.logger),
		document.WithMetadata(a.meta.Title, a.meta.Author, subject),
	)
	if err := a.layout(ctx, c, m); err != nil {
		return Summary{}, err
	}

	if err := c.Save(a.output); err != nil {
		return Summary{}, err
	}
	s := Summary{Path: a.output, Pages: c.PageCount(), Markers: c.Markers(), RunID: m.RunID}
	a.logger.InfoContext(ctx, "report written", "path", s.Path, "pages", s.Pages, "markers", len(s.Markers))
	return s, nil
}
