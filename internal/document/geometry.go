package document

// Geometry is the fixed page layout in millimetres.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
}

// A4 is the only supported page: portrait, 10 mm side and top margins and a
// 15 mm bottom band reserved for the footer.
var A4 = Geometry{
	PageWidth:    210,
	PageHeight:   297,
	MarginLeft:   10,
	MarginRight:  10,
	MarginTop:    10,
	MarginBottom: 15,
}

// ContentBound is the lowest y a block may reach.
func (g Geometry) ContentBound() float64 { return g.PageHeight - g.MarginBottom }

func (g Geometry) ContentWidth() float64 { return g.PageWidth - g.MarginLeft - g.MarginRight }
