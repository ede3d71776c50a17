// Package pdftest generates small, well-formed PDF files for tests. Every page
// shares one Helvetica font whose printable glyphs are all 600 units wide, so
// a glyph at size s is exactly 0.6*s points wide.
package pdftest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// GlyphWidth is the advance of every printable glyph in font units
const GlyphWidth = 600

// Page describes one generated page
type Page struct {
	Width   float64
	Height  float64
	Content string

	// CropBox, when set, is written as the page's [llx lly urx ury] CropBox
	CropBox []float64
	// Extra holds raw entries appended to the page dictionary
	Extra   string
}

// dict returns the page-specific dictionary entries after the MediaBox
func (p Page) dict() string {
	var b strings.Builder
	if len(p.CropBox) == 4 {
		fmt.Fprintf(&b, "/CropBox [%g %g %g %g]\n", p.CropBox[0], p.CropBox[1], p.CropBox[2], p.CropBox[3])
	}
	if p.Extra != "" {
		b.WriteString(p.Extra)
		b.WriteString("\n")
	}
	return b.String()
}

// Letter returns a US Letter page with the given content stream
func Letter(content string) Page {
	return Page{Width: 612, Height: 792, Content: content}
}

// Text returns a content stream fragment that shows s at (x, y) in the given
// font size. Parentheses and backslashes in s are escaped.
func Text(x, y, size float64, s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return fmt.Sprintf("BT\n/F1 %g Tf\n%g %g Td\n(%s) Tj\nET\n", size, x, y, r.Replace(s))
}

// Build assembles a complete PDF with a correct cross-reference table
func Build(pages ...Page) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	// Objects: 1 catalog, 2 page tree, 3 font, then a page and its content
	// stream for every page.
	total := 3 + 2*len(pages)
	offsets := make([]int, total+1)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<<\n/Type /Catalog\n/Pages 2 0 R\n>>\nendobj\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<<\n/Type /Pages\n/Kids [%s]\n/Count %d\n>>\nendobj\n", strings.Join(kids, " "), len(pages))

	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = fmt.Sprint(GlyphWidth)
	}
	offsets[3] = b.Len()
	fmt.Fprintf(&b, "3 0 obj\n<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n/FirstChar 32\n/LastChar 126\n/Widths [%s]\n/Encoding /WinAnsiEncoding\n>>\nendobj\n",
		strings.Join(widths, " "))

	for i, p := range pages {
		pageObj := 4 + 2*i
		contentObj := pageObj + 1

		offsets[pageObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<<\n/Type /Page\n/Parent 2 0 R\n/MediaBox [0 0 %g %g]\n%s/Contents %d 0 R\n/Resources <<\n/Font <<\n/F1 3 0 R\n>>\n>>\n>>\nendobj\n",
			pageObj, p.Width, p.Height, p.dict(), contentObj)

		offsets[contentObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<<\n/Length %d\n>>\nstream\n%sendstream\nendobj\n", contentObj, len(p.Content), p.Content)
	}

	xrefStart := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", total+1)
	for obj := 1; obj <= total; obj++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[obj])
	}

	fmt.Fprintf(&b, "trailer\n<<\n/Size %d\n/Root 1 0 R\n>>\nstartxref\n%d\n%%%%EOF\n", total+1, xrefStart)
	return []byte(b.String())
}

// WriteFile builds the PDF into a file under t.TempDir and returns its path
func WriteFile(t testing.TB, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(pages...), 0o600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// TwoLines is the canonical fixture: "AB" on one line and "C" 40pt below it
func TwoLines() Page {
	return Letter(Text(72, 700, 10, "AB") + Text(72, 660, 10, "C"))
}
