package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciricc/copybench/internal/document"
	"github.com/ciricc/copybench/pkg/benchreport"
)

var ErrUnknownBlock = errors.New("unknown block kind")

type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockSubheading BlockKind = "subheading"
	BlockParagraph  BlockKind = "paragraph"
	BlockLabel      BlockKind = "label"
	BlockImage      BlockKind = "image"
	// BlockChart is an image resolved through the manifest by artifact ID.
	BlockChart     BlockKind = "chart"
	BlockQA        BlockKind = "qa"
	BlockLink      BlockKind = "link"
	BlockSpace     BlockKind = "space"
	BlockPageBreak BlockKind = "page_break"
)

// Block is one unit of report content. Which fields are meaningful depends on Kind.
type Block struct {
	Kind BlockKind
	// Text is the heading, paragraph or label text, the question of a QA pair
	// or the visible text of a link.
	Text string
	// Detail is the answer of a QA pair or the target of a link.
	Detail     string
	Path       string
	ArtifactID string
	Width      float64
	Caption    string
	Height     float64
}

func Heading(text string) Block    { return Block{Kind: BlockHeading, Text: text} }
func Subheading(text string) Block { return Block{Kind: BlockSubheading, Text: text} }
func Paragraph(text string) Block  { return Block{Kind: BlockParagraph, Text: text} }
func Label(text string) Block      { return Block{Kind: BlockLabel, Text: text} }

func Image(path string, width float64, caption string) Block {
	return Block{Kind: BlockImage, Path: path, Width: width, Caption: caption}
}

func Chart(artifactID string, width float64, caption string) Block {
	return Block{Kind: BlockChart, ArtifactID: artifactID, Width: width, Caption: caption}
}

func QAPair(question, answer string) Block {
	return Block{Kind: BlockQA, Text: question, Detail: answer}
}

func Link(text, url string) Block { return Block{Kind: BlockLink, Text: text, Detail: url} }

// Space adds h mm of vertical space.
func Space(h float64) Block { return Block{Kind: BlockSpace, Height: h} }

func PageBreak() Block { return Block{Kind: BlockPageBreak} }

// Section is an ordered list of blocks. A section with a title opens with a
// numbered heading and numbers its subheadings below it.
type Section struct {
	Title  string
	Blocks []Block
}

// layout places every section of a on c in order.
func (a *Assembler) layout(ctx context.Context, c *document.Composer, m *benchreport.Manifest) error {
	n := 0
	for _, s := range a.sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		sub := 0
		if s.Title != "" {
			n++
			c.AddHeading(fmt.Sprintf("%d. %s", n, s.Title))
		}
		for _, b := range s.Blocks {
			if b.Kind == BlockSubheading && s.Title != "" {
				sub++
				b.Text = fmt.Sprintf("%d.%d %s", n, sub, b.Text)
			}
			if err := a.place(ctx, c, m, b); err != nil {
				return err
			}
		}
		a.logger.DebugContext(ctx, "section laid out", "title", s.Title, "blocks", len(s.Blocks), "pages", c.PageCount())
	}
	return ctx.Err()
}

func (a *Assembler) place(ctx context.Context, c *document.Composer, m *benchreport.Manifest, b Block) error {
	switch b.Kind {
	case BlockHeading:
		c.AddHeading(b.Text)
	case BlockSubheading:
		c.AddSubheading(b.Text)
	case BlockParagraph:
		c.AddParagraph(b.Text)
	case BlockLabel:
		c.AddLabel(b.Text)
	case BlockImage:
		c.AddImage(b.Path, b.Width, b.Caption)
	case BlockChart:
		art, err := m.Lookup(b.ArtifactID)
		if err != nil {
			a.logger.WarnContext(ctx, "chart not in manifest", "id", b.ArtifactID)
			c.AddMarker(b.ArtifactID, fmt.Sprintf("Error: Chart '%s' not found.", b.ArtifactID))
			return nil
		}
		c.AddImage(art.Path, b.Width, b.Caption)
	case BlockQA:
		c.AddQA(b.Text, b.Detail)
	case BlockLink:
		c.AddLink(b.Text, b.Detail)
	case BlockSpace:
		c.AddSpace(b.Height)
	case BlockPageBreak:
		c.AddPageBreak()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBlock, b.Kind)
	}
	return nil
}
