package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		assert.NotEmpty(t, GetToolDescription(name), name)
		assert.NotEqual(t, "Tool description not available", GetToolDescription(name), name)
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_unknown"))
}

func TestGetAllToolNames(t *testing.T) {
	assert.Equal(t, []string{
		"pdf_extract_lines",
		"pdf_page_count",
		"pdf_render_page",
		"pdf_validate_file",
	}, GetAllToolNames())
}
