package output

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/docparse/internal/lines"
	pdferrors "github.com/a3tai/docparse/internal/pdf/errors"
)

var sampleRecords = []lines.LineRecord{
	{Page: 1, Text: "AB", X0: 0, Y0: 100, X1: 20, Y1: 110},
	{Page: 1, Text: "C", X0: 0, Y0: 50, X1: 10, Y1: 60},
	{Page: 3, Text: "x < y & z", X0: 1.5, Y0: 2.25, X1: 3.75, Y1: 4},
}

func TestWrite_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRecords, FormatJSONLines))

	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		`{"page":1,"text":"AB","x0":0,"y0":100,"x1":20,"y1":110}`,
		`{"page":1,"text":"C","x0":0,"y0":50,"x1":10,"y1":60}`,
		`{"page":3,"text":"x < y & z","x0":1.5,"y0":2.25,"x1":3.75,"y1":4}`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Write() mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Write(&a, sampleRecords, FormatJSONLines))
	require.NoError(t, Write(&b, sampleRecords, FormatJSONLines))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWrite_JSONArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, FormatJSON))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, sampleRecords[:1], FormatJSON))
	assert.Contains(t, buf.String(), `"text": "AB"`)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRecords[:2], FormatText))
	assert.Equal(t, "[page 1] AB\n[page 1] C\n", buf.String())
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleRecords, Format("xml")))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesWriterError(t *testing.T) {
	err := Write(failingWriter{}, sampleRecords, FormatJSONLines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrite_NonFiniteRecord(t *testing.T) {
	records := []lines.LineRecord{
		sampleRecords[0],
		{Page: 2, Text: "bad", X0: math.NaN(), Y0: 0, X1: 1, Y1: 1},
	}

	t.Run("jsonl keeps earlier records", func(t *testing.T) {
		var buf bytes.Buffer
		err := Write(&buf, records, FormatJSONLines)
		require.Error(t, err)
		assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeEncode))
		assert.Contains(t, err.Error(), "failed to encode line 1 on page 2")

		var pdfErr *pdferrors.PDFError
		require.True(t, errors.As(err, &pdfErr))
		assert.Equal(t, 2, pdfErr.PageNumber)

		assert.Equal(t, `{"page":1,"text":"AB","x0":0,"y0":100,"x1":20,"y1":110}`+"\n", buf.String())
	})

	t.Run("json array", func(t *testing.T) {
		var buf bytes.Buffer
		err := Write(&buf, records, FormatJSON)
		require.Error(t, err)
		assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeEncode))
	})

	t.Run("encode lines", func(t *testing.T) {
		_, err := EncodeLines(records)
		require.Error(t, err)
		assert.True(t, pdferrors.IsType(err, pdferrors.ErrorTypeEncode))
	})
}

func TestEncodeLines(t *testing.T) {
	got, err := EncodeLines(sampleRecords[:1])
	require.NoError(t, err)
	assert.Equal(t, []string{`{"page":1,"text":"AB","x0":0,"y0":100,"x1":20,"y1":110}`}, got)
}

func TestDecode_RoundTripsWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRecords, FormatJSONLines))
	buf.WriteString("\n\n")

	got, err := Decode(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleRecords, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_InvalidLine(t *testing.T) {
	_, err := Decode(strings.NewReader("{\"page\":1}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSONLines},
		{in: "jsonl", want: FormatJSONLines},
		{in: " JSON ", want: FormatJSON},
		{in: "text", want: FormatText},
		{in: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat_ErrorListsSupportedFormats(t *testing.T) {
	_, err := ParseFormat("yaml")
	require.Error(t, err)
	assert.EqualError(t, err, "unsupported output format: yaml (must be one of: jsonl, json, text)")
}

func TestGroupByPage(t *testing.T) {
	records := []lines.LineRecord{
		{Page: 2, Text: "b1"},
		{Page: 1, Text: "a1"},
		{Page: 2, Text: "b2"},
	}

	got := GroupByPage(records)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Page)
	assert.Equal(t, 2, got[1].Page)
	assert.Equal(t, "b1", got[1].Lines[0].Text)
	assert.Equal(t, "b2", got[1].Lines[1].Text)
	assert.Empty(t, GroupByPage(nil))
}
