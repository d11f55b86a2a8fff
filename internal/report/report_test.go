package report

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ironsheep/docscan/internal/batch"
	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/scanner"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResults() []batch.Result {
	quad := geom.Quad{geom.Pt(10, 20), geom.Pt(110, 20), geom.Pt(110, 220), geom.Pt(10, 220)}
	return []batch.Result{
		{
			Path: "a.jpg",
			Documents: []scanner.ScannedDocument{
				{ID: "doc-1", Confidence: 100, Width: 100, Height: 200, Corners: quad},
				{ID: "doc-2", Confidence: 80, Width: 50, Height: 60, Corners: quad},
			},
			Stats:   &scanner.ScanStats{Candidates: 3, Suppressed: 1, Rotated: true},
			Elapsed: 1500 * time.Millisecond,
			Saved:   []string{"out/a_1.jpg", "out/a_2.jpg"},
		},
		{
			Path: "broken.png",
			Err:  errors.New("failed to load image broken.png: bad data"),
		},
	}
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s): %v", sheet, ref, err)
	}
	return v
}

func TestXLSX_Sheets(t *testing.T) {
	data, err := XLSX(sampleResults(), quietLogger())
	if err != nil {
		t.Fatalf("XLSX failed: %v", err)
	}
	f := open(t, data)

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != DocumentsSheet || sheets[1] != FilesSheet {
		t.Errorf("sheets: got %v", sheets)
	}
}

func TestXLSX_Documents(t *testing.T) {
	data, err := XLSX(sampleResults(), quietLogger())
	if err != nil {
		t.Fatalf("XLSX failed: %v", err)
	}
	f := open(t, data)

	tests := []struct {
		ref, want string
	}{
		{"A1", "Source"},
		{"K1", "Output File"},
		{"A2", "a.jpg"},
		{"B2", "1"},
		{"C2", "doc-1"},
		{"D2", "100"},
		{"E2", "100"},
		{"F2", "200"},
		{"G2", "10.0, 20.0"},
		{"I2", "110.0, 220.0"},
		{"K2", "out/a_1.jpg"},
		{"B3", "2"},
		{"C3", "doc-2"},
		{"K3", "out/a_2.jpg"},
		{"A4", ""},
	}
	for _, tt := range tests {
		if got := cell(t, f, DocumentsSheet, tt.ref); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestXLSX_Files(t *testing.T) {
	data, err := XLSX(sampleResults(), quietLogger())
	if err != nil {
		t.Fatalf("XLSX failed: %v", err)
	}
	f := open(t, data)

	tests := []struct {
		ref, want string
	}{
		{"A2", "a.jpg"},
		{"B2", "2"},
		{"C2", "3"},
		{"D2", "1"},
		{"E2", "0"},
		{"F2", "TRUE"},
		{"G2", "1500"},
		{"H2", ""},
		{"A3", "broken.png"},
		{"B3", "0"},
		{"F3", "FALSE"},
	}
	for _, tt := range tests {
		if got := cell(t, f, FilesSheet, tt.ref); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.ref, got, tt.want)
		}
	}
	if got := cell(t, f, FilesSheet, "H3"); !strings.Contains(got, "bad data") {
		t.Errorf("H3: got %q, want the load error", got)
	}
}

func TestXLSX_Empty(t *testing.T) {
	data, err := XLSX(nil, quietLogger())
	if err != nil {
		t.Fatalf("XLSX failed: %v", err)
	}
	f := open(t, data)
	rows, err := f.GetRows(DocumentsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows: got %d, want header only", len(rows))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"toolong", 4, "too…"},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d): got %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
