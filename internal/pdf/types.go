package pdf

import (
	"github.com/a3tai/docparse/internal/lines"
	"github.com/a3tai/docparse/internal/pdf/raster"
)

// Request types for PDF operations

// ExtractLinesRequest represents a request to reconstruct the text lines of a PDF
type ExtractLinesRequest struct {
	Path string `json:"path"`
	// Workers bounds parallel page reconstruction; 0 uses the service default
	Workers int `json:"workers,omitempty"`
}

// PageCountRequest represents a request for the number of pages in a PDF
type PageCountRequest struct {
	Path string `json:"path"`
}

// RenderPageRequest represents a request to rasterize one page
type RenderPageRequest struct {
	Path string `json:"path"`
	Page int    `json:"page"` // zero-based
	DPI  int    `json:"dpi"`
}

// ValidateFileRequest represents a request to validate a PDF file
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// Response types for PDF operations

// ExtractLinesResult holds the reconstructed lines of every page, in page
// order and discovery order within a page
type ExtractLinesResult struct {
	Path   string             `json:"path"`
	Pages  int                `json:"pages"`
	Lines  []lines.LineRecord `json:"lines"`
	Cached bool               `json:"cached"`
}

// PageCountResult represents the page count of a PDF
type PageCountResult struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
}

// RenderPageResult holds a rendered page
type RenderPageResult struct {
	Path   string         `json:"path"`
	Page   int            `json:"page"`
	DPI    int            `json:"dpi"`
	Bitmap *raster.Bitmap `json:"-"`
}

// ValidateFileResult represents the result of a PDF validation operation.
// Valid means the text layer can be opened; StructureValid reports pdfcpu's
// stricter object graph check.
type ValidateFileResult struct {
	Valid          bool   `json:"valid"`
	Path           string `json:"path"`
	Message        string `json:"message,omitempty"`
	Pages          int    `json:"pages,omitempty"`
	Size           int64  `json:"size,omitempty"`
	StructureValid bool   `json:"structure_valid"`
	StructureError string `json:"structure_error,omitempty"`
}
