// Package lines reconstructs visual text lines from unordered glyph geometry.
//
// A page is processed as filter -> sort -> cluster -> (synthesize text, build
// record) per cluster. The package holds no state between calls.
package lines

import (
	"math"
	"sort"
)

// Glyph is a single decoded character with its axis-aligned bounding box in
// page space (points, origin bottom-left).
type Glyph struct {
	Char   rune    `json:"char"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterY returns the vertical center of the glyph box
func (g Glyph) CenterY() float64 {
	return g.Y + g.Height/2
}

// Right returns the right edge X coordinate
func (g Glyph) Right() float64 {
	return g.X + g.Width
}

// Top returns the top edge Y coordinate
func (g Glyph) Top() float64 {
	return g.Y + g.Height
}

// HasArea reports whether the glyph has a strictly positive width and height.
// NaN dimensions never have area.
func (g Glyph) HasArea() bool {
	return g.Width > 0 && g.Height > 0
}

// IsFinite reports whether every coordinate of the glyph box is a finite number
func (g Glyph) IsFinite() bool {
	for _, v := range [...]float64{g.X, g.Y, g.Width, g.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FilterGlyphs returns the glyphs that have a visible area and finite
// coordinates. The input slice is left untouched.
func FilterGlyphs(glyphs []Glyph) []Glyph {
	kept := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.HasArea() && g.IsFinite() {
			kept = append(kept, g)
		}
	}
	return kept
}

// SortGlyphs orders glyphs top of page first (descending Y), breaking ties
// left to right (ascending X). Equal keys keep their input order.
func SortGlyphs(glyphs []Glyph) {
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].Y != glyphs[j].Y {
			return glyphs[i].Y > glyphs[j].Y
		}
		return glyphs[i].X < glyphs[j].X
	})
}
