package lines

import (
	"math"
	"sort"
	"strings"
)

// Space inference thresholds. A gap must exceed the largest of the three to
// become a space; the relative ones use the glyph to the right of the gap.
const (
	MinSpaceGap         = 1.0
	SpaceHeightFraction = 0.20
	SpaceWidthFraction  = 0.40
	inferredSpace       = ' '
)

// sortedByX returns a copy of the cluster ordered left to right
func sortedByX(c Cluster) Cluster {
	out := make(Cluster, len(c))
	copy(out, c)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].X < out[j].X
	})
	return out
}

// spaceThreshold is the gap a glyph must be preceded by to get a space
func spaceThreshold(g Glyph) float64 {
	return math.Max(MinSpaceGap, math.Max(g.Height*SpaceHeightFraction, g.Width*SpaceWidthFraction))
}

// SynthesizeText builds the line text for a cluster: glyphs are read left to
// right and a single space is inserted wherever the horizontal gap to the
// previous glyph is wider than the current glyph's space threshold. The result
// is trimmed; an empty string means the cluster yields no line.
func SynthesizeText(c Cluster) string {
	return synthesize(sortedByX(c))
}

func synthesize(ordered Cluster) string {
	var b strings.Builder
	for i, g := range ordered {
		if i > 0 {
			prev := ordered[i-1]
			if g.X-prev.Right() > spaceThreshold(g) {
				b.WriteRune(inferredSpace)
			}
		}
		b.WriteRune(g.Char)
	}
	return strings.TrimSpace(b.String())
}
