package wrapper

import (
	"errors"
	"fmt"

	"github.com/a3tai/docparse/internal/lines"
)

// PDFLibrary opens documents for glyph extraction
type PDFLibrary interface {
	OpenFile(path string) (Document, error)

	// Library identification
	GetLibraryType() LibraryType
	GetVersion() string
}

// Document is the geometry source consumed by line reconstruction. Page
// indices are zero-based. No ordering is assumed for the returned glyphs.
type Document interface {
	GetPageCount() int
	PageGlyphs(index int) ([]lines.Glyph, error)
	Close() error
}

// Backend is the capability set the process-wide engine exposes to services
type Backend interface {
	// OpenDocument opens path as a glyph geometry source
	OpenDocument(path string) (Document, error)

	// PageDims returns every page's size in points, in page order
	PageDims(path string) ([]PageSize, error)

	// PageCount returns the number of pages
	PageCount(path string) (int, error)

	// ValidateStructure checks the cross reference table and object graph
	ValidateStructure(path string) error
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU     LibraryType = "pdfcpu"
	LibraryLedongthuc LibraryType = "ledongthuc"
)

// PageSize represents the dimensions of a PDF page
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"` // always "pt"
}

// WrapperError reports a failure inside a specific library adapter
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	ErrDocumentClosed = errors.New("document is closed")
	ErrInvalidPage    = errors.New("invalid page index")
	ErrTextLayer      = errors.New("text layer unavailable")
)

// pageRangeError formats an out-of-range page index against a page count
func pageRangeError(index, count int) error {
	return fmt.Errorf("%w: page index %d out of range (0..%d)", ErrInvalidPage, index, count)
}
