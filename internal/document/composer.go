package document

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

var ErrAlreadySaved = errors.New("document already saved")

type Kind string

const (
	KindHeading    Kind = "heading"
	KindSubheading Kind = "subheading"
	KindLabel      Kind = "label"
	KindParagraph  Kind = "paragraph"
	KindQA         Kind = "qa"
	KindImage      Kind = "image"
	KindMarker     Kind = "marker"
	KindLink       Kind = "link"
	KindPageBreak  Kind = "page_break"
)

// Line heights and spacing, mm.
const (
	headingHeight    = 8.0
	headingGap       = 4.0
	subheadingHeight = 8.0
	bodyLineHeight   = 6.0
	imageGap         = 2.0
	captionHeight    = 5.0
	imageTrailingGap = 5.0
	markerHeight     = 10.0
	linkHeight       = 10.0
	qaGap            = 3.0
)

// PageCursor is the current page and vertical offset of the next block.
type PageCursor struct {
	Page int
	Y    float64
}

// Placement records one block as laid out.
type Placement struct {
	Kind        Kind
	Page        int
	Y           float64
	Height      float64
	BrokeBefore bool
	Ref         string
}

type options struct {
	geometry Geometry
	header   HeaderRenderer
	footer   FooterRenderer
	logger   *slog.Logger
	title    string
	author   string
	subject  string
}

type Option func(*options)

func WithHeader(h HeaderRenderer) Option { return func(o *options) { o.header = h } }

func WithFooter(f FooterRenderer) Option { return func(o *options) { o.footer = f } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithMetadata sets the PDF document information dictionary.
func WithMetadata(title, author, subject string) Option {
	return func(o *options) {
		o.title, o.author, o.subject = title, author, subject
	}
}

// Composer lays blocks out top to bottom on fixed-size pages. Pages only move
// forward: every placement either fits below the cursor or is preceded by
// exactly one page break.
type Composer struct {
	pdf        *fpdf.Fpdf
	geo        Geometry
	logger     *slog.Logger
	cursor     PageCursor
	top        float64
	placements []Placement
	markers    []string
	saved      bool
}

func New(opts ...Option) *Composer {
	o := options{geometry: A4, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(o.geometry.MarginLeft, o.geometry.MarginTop, o.geometry.MarginRight)
	// layout is decided here, never by the writer
	pdf.SetAutoPageBreak(false, o.geometry.MarginBottom)
	if o.header != nil {
		pdf.SetHeaderFunc(func() { o.header.RenderHeader(pdf) })
	}
	if o.footer != nil {
		pdf.SetFooterFunc(func() { o.footer.RenderFooter(pdf) })
	}
	pdf.SetCreator("copybench", false)
	if o.title != "" {
		pdf.SetTitle(latin1(o.title), false)
	}
	if o.author != "" {
		pdf.SetAuthor(latin1(o.author), false)
	}
	if o.subject != "" {
		pdf.SetSubject(latin1(o.subject), false)
	}

	c := &Composer{pdf: pdf, geo: o.geometry, logger: o.logger}
	c.newPage()
	return c
}

func (c *Composer) Cursor() PageCursor { return c.cursor }

// ContentTop is the y at which blocks start on the current page.
func (c *Composer) ContentTop() float64 { return c.top }

func (c *Composer) Geometry() Geometry { return c.geo }

func (c *Composer) PageCount() int { return c.pdf.PageCount() }

// Markers lists the image paths replaced by an error line, in order.
func (c *Composer) Markers() []string { return append([]string(nil), c.markers...) }

func (c *Composer) Placements() []Placement { return append([]Placement(nil), c.placements...) }

func (c *Composer) newPage() {
	c.pdf.AddPage()
	c.top = max(c.geo.MarginTop, c.pdf.GetY())
	c.cursor = PageCursor{Page: c.pdf.PageNo(), Y: c.top}
}

// contentHeight is the usable height of an empty page.
func (c *Composer) contentHeight() float64 { return c.geo.ContentBound() - c.top }

// place breaks the page when h does not fit below the cursor, runs draw at the
// cursor and advances past the block.
func (c *Composer) place(kind Kind, h float64, ref string, draw func(y float64)) {
	broke := false
	if c.cursor.Y+h > c.geo.ContentBound() {
		c.newPage()
		broke = true
	}
	y := c.cursor.Y
	c.pdf.SetXY(c.geo.MarginLeft, y)
	draw(y)
	c.cursor.Y = y + h
	c.placements = append(c.placements, Placement{Kind: kind, Page: c.cursor.Page, Y: y, Height: h, BrokeBefore: broke, Ref: ref})
}

// gap adds vertical space without ever moving past the content bound.
func (c *Composer) gap(h float64) {
	c.cursor.Y = min(c.cursor.Y+h, c.geo.ContentBound())
}

func (c *Composer) AddHeading(text string) {
	text = latin1(text)
	c.place(KindHeading, headingHeight, text, func(float64) {
		c.pdf.SetFont("Arial", "B", 12)
		c.pdf.SetFillColor(220, 220, 220)
		c.pdf.CellFormat(0, headingHeight, text, "", 1, "L", true, 0, "")
	})
	c.gap(headingGap)
}

func (c *Composer) AddSubheading(text string) {
	text = latin1(text)
	c.place(KindSubheading, subheadingHeight, text, func(float64) {
		c.pdf.SetFont("Arial", "B", 11)
		c.pdf.CellFormat(0, subheadingHeight, text, "", 1, "L", false, 0, "")
	})
}

// AddLabel writes a single plain line, such as the caption above a screenshot.
func (c *Composer) AddLabel(text string) {
	text = latin1(text)
	c.place(KindLabel, subheadingHeight, text, func(float64) {
		c.pdf.SetFont("Arial", "", 11)
		c.pdf.CellFormat(0, subheadingHeight, text, "", 1, "L", false, 0, "")
	})
}

func (c *Composer) AddParagraph(text string) {
	c.pdf.SetFont("Arial", "", 11)
	lines := c.pdf.SplitText(latin1(text), c.geo.ContentWidth())
	c.flow(KindParagraph, [][]textRun{{{style: "", lines: lines}}})
	c.gap(bodyLineHeight)
}

// AddQA writes a bold question followed by its answer, kept on one page when they fit.
func (c *Composer) AddQA(question, answer string) {
	width := c.geo.ContentWidth()
	c.pdf.SetFont("Arial", "B", 11)
	q := c.pdf.SplitText(latin1(question), width)
	c.pdf.SetFont("Arial", "", 11)
	a := c.pdf.SplitText(latin1(answer), width)
	c.flow(KindQA, [][]textRun{{{style: "B", lines: q}, {style: "", lines: a}}})
	c.gap(qaGap)
}

type textRun struct {
	style string
	lines []string
}

// flow places each group of runs as one block when it fits on an empty page
// and line by line otherwise.
func (c *Composer) flow(kind Kind, groups [][]textRun) {
	for _, runs := range groups {
		n := 0
		for _, r := range runs {
			n += len(r.lines)
		}
		if n == 0 {
			continue
		}
		h := float64(n) * bodyLineHeight
		if h <= c.contentHeight() {
			c.place(kind, h, firstLine(runs), func(y float64) {
				for _, r := range runs {
					c.pdf.SetFont("Arial", r.style, 11)
					for _, ln := range r.lines {
						c.pdf.SetXY(c.geo.MarginLeft, y)
						c.pdf.CellFormat(0, bodyLineHeight, ln, "", 0, "L", false, 0, "")
						y += bodyLineHeight
					}
				}
			})
			continue
		}
		for _, r := range runs {
			for _, ln := range r.lines {
				c.place(kind, bodyLineHeight, ln, func(float64) {
					c.pdf.SetFont("Arial", r.style, 11)
					c.pdf.CellFormat(0, bodyLineHeight, ln, "", 1, "L", false, 0, "")
				})
			}
		}
	}
}

func firstLine(runs []textRun) string {
	for _, r := range runs {
		if len(r.lines) > 0 {
			return r.lines[0]
		}
	}
	return ""
}

// AddImage places the image at path centred and width mm wide, with an
// optional caption below it. A missing or unreadable file is replaced by a red
// error line and recorded in Markers; it never fails the document.
func (c *Composer) AddImage(path string, width float64, caption string) {
	if _, err := os.Stat(path); err != nil {
		c.addMarker(path, fmt.Sprintf("Error: Image '%s' not found.", path), err)
		return
	}
	info := c.pdf.RegisterImageOptions(path, fpdf.ImageOptions{ReadDpi: false})
	if err := c.pdf.Error(); err != nil || info == nil || info.Width() <= 0 {
		c.pdf.ClearError()
		c.addMarker(path, fmt.Sprintf("Error: Image '%s' could not be read.", path), err)
		return
	}

	if width <= 0 || width > c.geo.ContentWidth() {
		width = c.geo.ContentWidth()
	}
	height := width * info.Height() / info.Width()
	reserved := imageGap
	if caption != "" {
		reserved += captionHeight
	}
	if height+reserved > c.contentHeight() {
		height = c.contentHeight() - reserved
		width = height * info.Width() / info.Height()
	}

	caption = latin1(caption)
	x := (c.geo.PageWidth - width) / 2
	c.place(KindImage, height+reserved, path, func(y float64) {
		c.pdf.ImageOptions(path, x, y, width, height, false, fpdf.ImageOptions{ReadDpi: false}, 0, "")
		if caption != "" {
			c.pdf.SetXY(c.geo.MarginLeft, y+height+imageGap)
			c.pdf.SetFont("Arial", "I", 9)
			c.pdf.CellFormat(0, captionHeight, caption, "", 1, "C", false, 0, "")
		}
	})
	c.gap(imageTrailingGap)
}

func (c *Composer) addMarker(path, text string, cause error) {
	c.logger.Warn("image missing from report", "path", path, "error", cause)
	c.AddMarker(path, text)
}

// AddMarker writes text as a centred red error line and records ref in Markers.
func (c *Composer) AddMarker(ref, text string) {
	text = latin1(text)
	c.place(KindMarker, markerHeight, ref, func(float64) {
		c.pdf.SetFont("Arial", "", 11)
		c.pdf.SetTextColor(255, 0, 0)
		c.pdf.CellFormat(0, markerHeight, text, "", 1, "C", false, 0, "")
		c.pdf.SetTextColor(0, 0, 0)
	})
	c.markers = append(c.markers, ref)
}

// AddLink writes text as an underlined blue hyperlink to url.
func (c *Composer) AddLink(text, url string) {
	text = latin1(text)
	c.place(KindLink, linkHeight, url, func(float64) {
		c.pdf.SetFont("Arial", "U", 11)
		c.pdf.SetTextColor(0, 0, 255)
		c.pdf.CellFormat(0, linkHeight, text, "", 1, "L", false, 0, url)
		c.pdf.SetTextColor(0, 0, 0)
	})
}

// AddSpace advances the cursor by h mm, stopping at the content bound.
func (c *Composer) AddSpace(h float64) { c.gap(h) }

// AddPageBreak starts a new page unconditionally.
func (c *Composer) AddPageBreak() {
	c.newPage()
	c.placements = append(c.placements, Placement{Kind: KindPageBreak, Page: c.cursor.Page, Y: c.cursor.Y, BrokeBefore: true})
}

// Save serializes the document to path. It may be called once.
func (c *Composer) Save(path string) error {
	if c.saved {
		return ErrAlreadySaved
	}
	c.saved = true
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("compose document: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document dir: %w", err)
		}
	}
	if err := c.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
