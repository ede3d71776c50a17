package wrapper

import (
	"fmt"
	"math"
	"os"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/docparse/internal/lines"
)

// LedongthucLibrary extracts positioned glyphs using ledongthuc/pdf
type LedongthucLibrary struct {
	config FactoryConfig
}

// NewLedongthucLibrary creates a new ledongthuc library wrapper
func NewLedongthucLibrary(config FactoryConfig) *LedongthucLibrary {
	return &LedongthucLibrary{config: config}
}

var _ PDFLibrary = (*LedongthucLibrary)(nil)

// OpenFile opens a PDF from a file path
func (l *LedongthucLibrary) OpenFile(path string) (Document, error) {
	doc, err := l.open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (l *LedongthucLibrary) open(path string) (doc *LedongthucDocument, err error) {
	// The parser panics on some malformed trailers instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &WrapperError{
				Library: LibraryLedongthuc,
				Op:      "open_file",
				Err:     fmt.Errorf("failed to open PDF: %v", r),
			}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "open_file",
			Err:     fmt.Errorf("failed to open PDF: %w", err),
		}
	}

	return &LedongthucDocument{
		reader:    reader,
		file:      f,
		filePath:  path,
		pageCount: reader.NumPage(),
	}, nil
}

// GetLibraryType returns the library type
func (l *LedongthucLibrary) GetLibraryType() LibraryType {
	return LibraryLedongthuc
}

// GetVersion returns the ledongthuc/pdf version
func (l *LedongthucLibrary) GetVersion() string {
	return "ledongthuc/pdf-v0.0.0-20250511090121"
}

// LedongthucDocument is an open document backed by ledongthuc/pdf. It is not
// safe for concurrent use.
type LedongthucDocument struct {
	reader    *pdf.Reader
	file      *os.File
	filePath  string
	pageCount int
	closed    bool
}

// GetPageCount returns the number of pages in the document
func (d *LedongthucDocument) GetPageCount() int {
	return d.pageCount
}

// PageGlyphs returns the positioned glyphs of the page at a zero-based index
func (d *LedongthucDocument) PageGlyphs(index int) (glyphs []lines.Glyph, err error) {
	if d.closed {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "page_glyphs", Err: ErrDocumentClosed}
	}
	if index < 0 || index >= d.pageCount {
		return nil, &WrapperError{Library: LibraryLedongthuc, Op: "page_glyphs", Err: pageRangeError(index, d.pageCount)}
	}

	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = &WrapperError{
				Library: LibraryLedongthuc,
				Op:      "page_glyphs",
				Err:     fmt.Errorf("%w: page %d: %v", ErrTextLayer, index+1, r),
			}
		}
	}()

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return nil, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "page_glyphs",
			Err:     fmt.Errorf("%w: page %d not found in page tree", ErrTextLayer, index+1),
		}
	}

	content := page.Content()
	glyphs = make([]lines.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = appendTextGlyphs(glyphs, t)
	}
	return glyphs, nil
}

// Close releases the underlying file handle
func (d *LedongthucDocument) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// appendTextGlyphs converts one positioned text run into glyphs. The font size
// stands in for the glyph height. Runs holding several runes share their
// width evenly, and flipped text matrices are normalized to a lower-left
// origin with positive extents.
func appendTextGlyphs(dst []lines.Glyph, t pdf.Text) []lines.Glyph {
	n := utf8.RuneCountInString(t.S)
	if n == 0 {
		return dst
	}

	x, width := t.X, t.W
	if width < 0 {
		x += width
		width = -width
	}
	y, height := t.Y, t.FontSize
	if height < 0 {
		y += height
		height = -height
	}

	step := width / float64(n)
	i := 0
	for _, r := range t.S {
		dst = append(dst, lines.Glyph{
			Char:   r,
			X:      x + float64(i)*step,
			Y:      y,
			Width:  step,
			Height: height,
		})
		i++
	}
	return dst
}

// inherited looks key up on the page and then on its ancestors
func inherited(page pdf.Page, key string) pdf.Value {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		if x := v.Key(key); !x.IsNull() {
			return x
		}
	}
	return pdf.Value{}
}

func valueBox(v pdf.Value) (box, bool) {
	if v.Len() != 4 {
		return box{}, false
	}
	return newBox(v.Index(0).Float64(), v.Index(1).Float64(), v.Index(2).Float64(), v.Index(3).Float64()), true
}

// pageSize reads a page's visible size from its inherited MediaBox, CropBox
// and Rotate entries. It returns false when no usable MediaBox is present.
func pageSize(page pdf.Page) (PageSize, bool) {
	media, ok := valueBox(inherited(page, "MediaBox"))
	if !ok || media.width() <= 0 || media.height() <= 0 {
		return PageSize{}, false
	}

	var crop *box
	if b, ok := valueBox(inherited(page, "CropBox")); ok {
		crop = &b
	}
	rotate := int(math.Round(inherited(page, "Rotate").Float64()))
	return visibleSize(media, crop, rotate), true
}

// PageSize returns the visible size of the page at a zero-based index
func (d *LedongthucDocument) PageSize(index int) (size PageSize, err error) {
	if d.closed {
		return PageSize{}, &WrapperError{Library: LibraryLedongthuc, Op: "page_size", Err: ErrDocumentClosed}
	}
	if index < 0 || index >= d.pageCount {
		return PageSize{}, &WrapperError{Library: LibraryLedongthuc, Op: "page_size", Err: pageRangeError(index, d.pageCount)}
	}

	defer func() {
		if r := recover(); r != nil {
			size = PageSize{}
			err = &WrapperError{Library: LibraryLedongthuc, Op: "page_size", Err: fmt.Errorf("page %d: %v", index+1, r)}
		}
	}()

	size, ok := pageSize(d.reader.Page(index + 1))
	if !ok {
		return PageSize{}, &WrapperError{
			Library: LibraryLedongthuc,
			Op:      "page_size",
			Err:     fmt.Errorf("page %d has no MediaBox", index+1),
		}
	}
	return size, nil
}

// PageSizes returns the visible size of every page, in page order
func (d *LedongthucDocument) PageSizes() ([]PageSize, error) {
	sizes := make([]PageSize, d.pageCount)
	for i := range sizes {
		size, err := d.PageSize(i)
		if err != nil {
			return nil, err
		}
		sizes[i] = size
	}
	return sizes, nil
}
