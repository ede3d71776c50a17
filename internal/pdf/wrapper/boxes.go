package wrapper

import "math"

// box is a normalized page boundary rectangle in points
type box struct {
	llx, lly, urx, ury float64
}

func newBox(x0, y0, x1, y1 float64) box {
	return box{
		llx: math.Min(x0, x1),
		lly: math.Min(y0, y1),
		urx: math.Max(x0, x1),
		ury: math.Max(y0, y1),
	}
}

func (b box) width() float64  { return b.urx - b.llx }
func (b box) height() float64 { return b.ury - b.lly }

// intersect clips b to o. It returns false when the overlap has no area.
func (b box) intersect(o box) (box, bool) {
	r := box{
		llx: math.Max(b.llx, o.llx),
		lly: math.Max(b.lly, o.lly),
		urx: math.Min(b.urx, o.urx),
		ury: math.Min(b.ury, o.ury),
	}
	return r, r.width() > 0 && r.height() > 0
}

// visibleSize returns the displayed size of a page: the CropBox clipped to
// the MediaBox, with width and height swapped for quarter-turn rotations. A
// missing or disjoint CropBox falls back to the MediaBox.
func visibleSize(media box, crop *box, rotate int) PageSize {
	visible := media
	if crop != nil {
		if clipped, ok := crop.intersect(media); ok {
			visible = clipped
		}
	}

	w, h := visible.width(), visible.height()
	if r := (rotate%360 + 360) % 360; r == 90 || r == 270 {
		w, h = h, w
	}
	return PageSize{Width: w, Height: h, Unit: "pt"}
}
