package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/docparse/internal/lines"
	"github.com/a3tai/docparse/internal/output"
	"github.com/a3tai/docparse/internal/pdftest"
)

const testVersion = "1.2.3"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version, buildTime, gitCommit = testVersion, "2023-12-01_10:30:00", "abc123"
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	var buf bytes.Buffer
	printVersion(&buf)

	for _, expected := range []string{
		"docparse",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	} {
		assert.Contains(t, buf.String(), expected)
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Version: ")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"frobnicate", "a.pdf"}},
		{name: "missing input", args: []string{"text"}},
		{name: "bad format", args: []string{"text", "a.pdf", "--format", "xml"}},
		{name: "bad flag", args: []string{"text", "a.pdf", "--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.NotEmpty(t, stderr)
		})
	}
}

func TestRun_Text(t *testing.T) {
	path := pdftest.WriteFile(t, "two-lines.pdf", pdftest.TwoLines())

	code, stdout, stderr := runCLI(t, "text", path)
	require.Equal(t, exitOK, code, stderr)

	records, err := output.Decode(strings.NewReader(stdout))
	require.NoError(t, err)
	want := []lines.LineRecord{
		{Page: 1, Text: "AB", X0: 72, Y0: 700, X1: 84, Y1: 710},
		{Page: 1, Text: "C", X0: 72, Y0: 660, X1: 78, Y1: 670},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, strings.Count(stdout, "\n"))
}

func TestRun_TextToFile(t *testing.T) {
	path := pdftest.WriteFile(t, "two-lines.pdf", pdftest.TwoLines())
	out := filepath.Join(t.TempDir(), "lines.txt")

	code, stdout, stderr := runCLI(t, "text", path, "-o", out, "--format", "text")
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[page 1] AB\n[page 1] C\n", string(data))
}

func TestRun_TextMissingFile(t *testing.T) {
	code, stdout, stderr := runCLI(t, "text", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "file does not exist")
}

func TestRun_Render(t *testing.T) {
	path := pdftest.WriteFile(t, "two-lines.pdf", pdftest.TwoLines())

	code, stdout, stderr := runCLI(t, "render", path, "--dpi", "36")
	require.Equal(t, exitOK, code, stderr)

	img, err := png.Decode(strings.NewReader(stdout))
	require.NoError(t, err)
	assert.Equal(t, 306, img.Bounds().Dx())
	assert.Equal(t, 396, img.Bounds().Dy())
}

func TestRun_RenderRaw(t *testing.T) {
	path := pdftest.WriteFile(t, "two-lines.pdf", pdftest.TwoLines())
	out := filepath.Join(t.TempDir(), "page.rgb")

	code, _, stderr := runCLI(t, "render", path, "--dpi", "36", "--image-format", "raw", "--output", out)
	require.Equal(t, exitOK, code, stderr)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, int64(306*396*3), info.Size())
}

func TestRun_RenderOutOfRange(t *testing.T) {
	path := pdftest.WriteFile(t, "two-lines.pdf", pdftest.TwoLines())

	code, stdout, stderr := runCLI(t, "render", path, "--page", "5")
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "out of range (0..1)")
}

func TestRun_RenderFailureLeavesNoOutputFile(t *testing.T) {
	path := pdftest.WriteFile(t, "two-lines.pdf", pdftest.TwoLines())
	out := filepath.Join(t.TempDir(), "page.png")

	code, _, stderr := runCLI(t, "render", path, "--page", "5", "-o", out)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "out of range (0..1)")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "output file must not be created when rendering fails")
}

func TestRun_RenderCroppedPage(t *testing.T) {
	path := pdftest.WriteFile(t, "cropped.pdf",
		pdftest.Page{Width: 612, Height: 792, CropBox: []float64{0, 0, 306, 396}},
	)
	out := filepath.Join(t.TempDir(), "page.png")

	code, _, stderr := runCLI(t, "render", path, "--dpi", "72", "-o", out)
	require.Equal(t, exitOK, code, stderr)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 306, img.Bounds().Dx())
	assert.Equal(t, 396, img.Bounds().Dy())
}

func TestRun_Pages(t *testing.T) {
	path := pdftest.WriteFile(t, "pages.pdf", pdftest.Letter(""), pdftest.Letter(""))

	code, stdout, stderr := runCLI(t, "pages", path)
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "2\n", stdout)
}

func TestRun_Validate(t *testing.T) {
	path := pdftest.WriteFile(t, "two-lines.pdf", pdftest.TwoLines())

	code, stdout, stderr := runCLI(t, "validate", path)
	require.Equal(t, exitOK, code, stderr)

	var result struct {
		Valid bool `json:"valid"`
		Pages int  `json:"pages"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Pages)

	junk := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(junk, []byte("not a pdf"), 0o644))
	code, stdout, _ = runCLI(t, "validate", junk)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stdout, `"valid": false`)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}
