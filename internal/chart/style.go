package chart

import (
	"fmt"
	"image/color"

	"github.com/ciricc/copybench/pkg/benchreport"
	"gonum.org/v1/plot/vg/draw"
)

// Style is the fixed visual encoding of one strategy. Every chart looks its
// colours and markers up here so the legend means the same thing on every page.
type Style struct {
	Color     color.RGBA
	Glyph     draw.GlyphDrawer
	GlyphName string
}

var styles = map[benchreport.Strategy]Style{
	benchreport.TwoCopy:  {Color: color.RGBA{R: 31, G: 119, B: 180, A: 255}, Glyph: draw.CircleGlyph{}, GlyphName: "circle"},
	benchreport.OneCopy:  {Color: color.RGBA{R: 255, G: 127, B: 14, A: 255}, Glyph: draw.BoxGlyph{}, GlyphName: "square"},
	benchreport.ZeroCopy: {Color: color.RGBA{R: 44, G: 160, B: 44, A: 255}, Glyph: draw.TriangleGlyph{}, GlyphName: "triangle"},
}

// StyleFor returns the encoding for s. Unknown strategies get a grey cross.
func StyleFor(s benchreport.Strategy) Style {
	if st, ok := styles[s]; ok {
		return st
	}
	return Style{Color: color.RGBA{R: 128, G: 128, B: 128, A: 255}, Glyph: draw.CrossGlyph{}, GlyphName: "cross"}
}

func (s Style) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B)
}

func encoding(s benchreport.Strategy) benchreport.Encoding {
	st := StyleFor(s)
	return benchreport.Encoding{Strategy: s, Label: s.String(), Color: st.Hex(), Glyph: st.GlyphName}
}
