package document

import "fmt"

// PageWriter is the subset of the PDF writer available to headers and footers.
type PageWriter interface {
	SetFont(family, style string, size float64)
	SetTextColor(r, g, b int)
	CellFormat(w, h float64, txt, border string, ln int, align string, fill bool, link int, linkStr string)
	Ln(h float64)
	SetY(y float64)
	PageNo() int
}

// HeaderRenderer draws the top of every page. The cursor starts below whatever it draws.
type HeaderRenderer interface {
	RenderHeader(w PageWriter)
}

// FooterRenderer draws into the bottom margin of every page.
type FooterRenderer interface {
	RenderFooter(w PageWriter)
}

type HeaderFunc func(w PageWriter)

func (f HeaderFunc) RenderHeader(w PageWriter) { f(w) }

type FooterFunc func(w PageWriter)

func (f FooterFunc) RenderFooter(w PageWriter) { f(w) }

// TitleHeader prints a bold centred title and an italic subtitle line.
type TitleHeader struct {
	Title    string
	Subtitle string
}

func (h TitleHeader) RenderHeader(w PageWriter) {
	w.SetTextColor(0, 0, 0)
	w.SetFont("Arial", "B", 14)
	w.CellFormat(0, 10, latin1(h.Title), "", 1, "C", false, 0, "")
	if h.Subtitle != "" {
		w.SetFont("Arial", "I", 10)
		w.CellFormat(0, 5, latin1(h.Subtitle), "", 1, "C", false, 0, "")
	}
	w.Ln(10)
}

// PageNumberFooter prints "Page N" centred 15 mm above the bottom edge.
type PageNumberFooter struct{}

func (PageNumberFooter) RenderFooter(w PageWriter) {
	w.SetY(-15)
	w.SetTextColor(0, 0, 0)
	w.SetFont("Arial", "I", 8)
	w.CellFormat(0, 10, fmt.Sprintf("Page %d", w.PageNo()), "", 0, "C", false, 0, "")
}
