package lines

import "math"

// LineRecord is one reconstructed line of text. Page is 1-based; the box is
// the min/max extent of every glyph in the line's cluster.
type LineRecord struct {
	Page int     `json:"page"`
	Text string  `json:"text"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
}

// Width returns the horizontal extent of the line
func (r LineRecord) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent of the line
func (r LineRecord) Height() float64 {
	return r.Y1 - r.Y0
}

// Bounds returns the bounding box of a non-empty cluster as x0, y0, x1, y1.
func Bounds(c Cluster) (x0, y0, x1, y1 float64) {
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	for _, g := range c {
		x0 = math.Min(x0, g.X)
		y0 = math.Min(y0, g.Y)
		x1 = math.Max(x1, g.Right())
		y1 = math.Max(y1, g.Top())
	}
	return x0, y0, x1, y1
}

// BuildRecord assembles the record for a cluster found on the page with the
// given zero-based index.
func BuildRecord(pageIndex int, c Cluster, text string) LineRecord {
	x0, y0, x1, y1 := Bounds(c)
	return LineRecord{
		Page: pageIndex + 1,
		Text: text,
		X0:   x0,
		Y0:   y0,
		X1:   x1,
		Y1:   y1,
	}
}
