package lines

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ReconstructPage turns one page's raw glyphs into line records, in cluster
// discovery order. pageIndex is zero-based. Degenerate glyphs are dropped and
// clusters whose text trims to nothing are omitted; it never fails.
func ReconstructPage(pageIndex int, glyphs []Glyph) []LineRecord {
	visible := FilterGlyphs(glyphs)
	SortGlyphs(visible)

	var records []LineRecord
	for _, cluster := range ClusterGlyphs(visible) {
		ordered := sortedByX(cluster)
		text := synthesize(ordered)
		if text == "" {
			continue
		}
		records = append(records, BuildRecord(pageIndex, ordered, text))
	}
	return records
}

// ReconstructDocument reconstructs every page and returns one flat sequence in
// ascending page order. Pages are independent and are computed concurrently
// on at most workers goroutines (unbounded when workers <= 0).
//
// Cancellation is checked before each page starts; a cancelled run returns the
// context error and no records.
func ReconstructDocument(ctx context.Context, pages [][]Glyph, workers int) ([]LineRecord, error) {
	perPage := make([][]LineRecord, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perPage[i] = ReconstructPage(i, pages[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Flatten(perPage), nil
}

// Flatten concatenates per-page record slices in index order.
func Flatten(perPage [][]LineRecord) []LineRecord {
	total := 0
	for _, recs := range perPage {
		total += len(recs)
	}
	out := make([]LineRecord, 0, total)
	for _, recs := range perPage {
		out = append(out, recs...)
	}
	return out
}
