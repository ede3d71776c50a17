package lines

import "math"

// ToleranceFraction is the share of the summed anchor and candidate heights
// that two vertical centers may differ by and still sit on the same line.
const ToleranceFraction = 0.25

// Cluster is the set of glyphs assigned to one reconstructed line, in the
// order they were discovered.
type Cluster []Glyph

// ClusterGlyphs partitions glyphs that are already in page order (see
// SortGlyphs) into line clusters with a single greedy pass.
//
// The first unassigned glyph anchors a new cluster and every later unassigned
// glyph whose vertical center lies strictly inside the anchor's tolerance band
// joins it. A closed cluster is never revisited, so two staggered rows that
// both fall inside one anchor's band end up merged.
func ClusterGlyphs(sorted []Glyph) []Cluster {
	if len(sorted) == 0 {
		return nil
	}

	assigned := make([]bool, len(sorted))
	var clusters []Cluster

	for i := range sorted {
		if assigned[i] {
			continue
		}
		anchor := sorted[i]
		assigned[i] = true
		cluster := Cluster{anchor}

		for j := i + 1; j < len(sorted); j++ {
			if assigned[j] {
				continue
			}
			if sameLine(anchor, sorted[j]) {
				cluster = append(cluster, sorted[j])
				assigned[j] = true
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

// sameLine reports whether candidate's vertical center is inside the anchor's
// tolerance band.
func sameLine(anchor, candidate Glyph) bool {
	tolerance := (anchor.Height + candidate.Height) * ToleranceFraction
	return math.Abs(candidate.CenterY()-anchor.CenterY()) < tolerance
}
