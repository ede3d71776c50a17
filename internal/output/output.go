// Package output encodes reconstructed line records for callers.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a3tai/docparse/internal/lines"
	pdferrors "github.com/a3tai/docparse/internal/pdf/errors"
)

// Format selects how a record sequence is written
type Format string

const (
	// FormatJSONLines writes one JSON object per line (the default)
	FormatJSONLines Format = "jsonl"
	// FormatJSON writes a single JSON array
	FormatJSON Format = "json"
	// FormatText writes "[page N] text" lines for humans
	FormatText Format = "text"
)

// SupportedFormats lists every Format accepted by ParseFormat
func SupportedFormats() []Format {
	return []Format{FormatJSONLines, FormatJSON, FormatText}
}

// ParseFormat converts a user supplied name into a Format. An empty name
// selects FormatJSONLines.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "" {
		return FormatJSONLines, nil
	}

	names := make([]string, 0, len(SupportedFormats()))
	for _, supported := range SupportedFormats() {
		if f == supported {
			return f, nil
		}
		names = append(names, string(supported))
	}
	return "", fmt.Errorf("unsupported output format: %s (must be one of: %s)", name, strings.Join(names, ", "))
}

// Write encodes records to w in the given format. The records are written in
// slice order; no grouping wrapper is added. Records encoded before a failing
// one are still flushed to w.
func Write(w io.Writer, records []lines.LineRecord, format Format) error {
	bw := bufio.NewWriter(w)

	var err error
	switch format {
	case FormatJSONLines, "":
		err = writeJSONLines(bw, records)
	case FormatJSON:
		err = writeJSON(bw, records)
	case FormatText:
		err = writeText(bw, records)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		_ = bw.Flush()
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// EncodeLines returns one JSON document per record, in order
func EncodeLines(records []lines.LineRecord) ([]string, error) {
	out := make([]string, 0, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, encodeError(i, rec, err)
		}
		out = append(out, string(data))
	}
	return out, nil
}

func encodeError(i int, rec lines.LineRecord, err error) error {
	return pdferrors.Wrap(pdferrors.ErrorTypeEncode, fmt.Sprintf("failed to encode line %d on page %d", i, rec.Page), err).WithPage(rec.Page)
}

func writeJSONLines(w io.Writer, records []lines.LineRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return encodeError(i, rec, err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, records []lines.LineRecord) error {
	if records == nil {
		records = []lines.LineRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return pdferrors.Wrap(pdferrors.ErrorTypeEncode, "failed to encode lines", err)
	}
	return nil
}

func writeText(w io.Writer, records []lines.LineRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "[page %d] %s\n", rec.Page, rec.Text); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}
	return nil
}

// Decode reads a JSON lines stream produced by Write back into records.
// Blank lines are skipped.
func Decode(r io.Reader) ([]lines.LineRecord, error) {
	var records []lines.LineRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var rec lines.LineRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("invalid record on line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// PageLines is the set of records that share one page number
type PageLines struct {
	Page  int                `json:"page"`
	Lines []lines.LineRecord `json:"lines"`
}

// GroupByPage regroups a flat record sequence by page number. Pages come out
// in ascending order and each page keeps its records' relative order.
func GroupByPage(records []lines.LineRecord) []PageLines {
	byPage := make(map[int][]lines.LineRecord)
	for _, rec := range records {
		byPage[rec.Page] = append(byPage[rec.Page], rec)
	}

	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	out := make([]PageLines, 0, len(pages))
	for _, p := range pages {
		out = append(out, PageLines{Page: p, Lines: byPage[p]})
	}
	return out
}
