package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFExtractLinesDescription = `Reconstruct the text lines of a PDF from glyph geometry.

**When to use:** Need the text of a document together with where each line sits on its page.

**Output:** One JSON object per line: {"page": 1, "text": "...", "x0": ..., "y0": ..., "x1": ..., "y1": ...}. Pages are 1-based, coordinates are PDF points with the origin at the bottom left. Lines are ordered by page, then top to bottom.

**Examples:**
• Locate a heading: "Find where 'Terms and Conditions' appears in contract.pdf"
• Column-aware reading: "Get the lines of page 3 of report.pdf with their x positions"

**Common workflows:**
1. Layout analysis: Extract lines → Group by x0 → Detect columns or tables
2. Visual grounding: Extract lines → Render the page → Crop line boxes

**Best practices:** Scanned documents without a text layer return no lines; render the page instead. Pass format "text" for a human readable listing.`

	PDFPageCountDescription = `Count the pages of a PDF document.

**When to use:** Before rendering, to know which page indexes are valid, or to estimate processing time.

**Examples:**
• "How many pages does manual.pdf have?"
• "Check the page count of scan.pdf before rendering each page"

**Best practices:** Page indexes for pdf_render_page are zero-based, so valid values run from 0 to count-1.`

	PDFRenderPageDescription = `Render one PDF page to a PNG image.

**When to use:** Need to see a page: scanned documents, figures, or checking what a reconstructed line looks like.

**Parameters:** page is zero-based (default 0). dpi defaults to 224; the image is exactly round(width_pt*dpi/72) by round(height_pt*dpi/72) pixels.

**Examples:**
• "Show me the first page of brochure.pdf"
• "Render page 4 of drawing.pdf at 300 dpi"

**Common workflows:**
1. Scanned documents: pdf_extract_lines returns nothing → pdf_render_page
2. Visual grounding: pdf_extract_lines → pdf_render_page → match line boxes to pixels (pixel = point * dpi / 72, y flipped)

**Best practices:** High dpi values on large pages produce very large images; 72 to 150 is enough for previews.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before attempting to read or process any PDF file, especially in automated workflows or when handling user uploads.

**Output:** Whether the text layer opens, the page count, and a stricter structural check of the object graph.

**Examples:**
• Batch processing safety: "Validate all PDFs in /invoices/ before bulk extraction"
• Upload verification: "Check user-uploaded contract.pdf is valid before processing"

**Common workflows:**
1. Automated Processing: Validate → Process if valid → Handle errors gracefully
2. File Quality Check: Validate → Report issues → Fix or reject bad files

**Best practices:** A file can be readable and still fail the structural check; extraction usually works on those.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_extract_lines": PDFExtractLinesDescription,
	"pdf_page_count":    PDFPageCountDescription,
	"pdf_render_page":   PDFRenderPageDescription,
	"pdf_validate_file": PDFValidateFileDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns all available tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
