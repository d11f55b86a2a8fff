// Package report writes batch scan results as an XLSX workbook.
package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ironsheep/docscan/internal/batch"
	"github.com/ironsheep/docscan/internal/geom"
)

const (
	DocumentsSheet = "Documents"
	FilesSheet     = "Files"
)

var documentHeaders = []string{
	"Source",
	"Document",
	"ID",
	"Confidence",
	"Width",
	"Height",
	"Top Left",
	"Top Right",
	"Bottom Right",
	"Bottom Left",
	"Output File",
}

var fileHeaders = []string{
	"Source",
	"Documents",
	"Candidates",
	"Suppressed",
	"Failed",
	"Rotated",
	"Elapsed (ms)",
	"Error",
}

// XLSX returns a workbook with one row per document on the Documents sheet
// and one row per source file on the Files sheet.
func XLSX(results []batch.Result, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	for _, sheet := range []string{DocumentsSheet, FilesSheet} {
		if index, _ := f.GetSheetIndex(sheet); index == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(DocumentsSheet)
	f.SetActiveSheet(activeIndex)

	writeHeaders(f, DocumentsSheet, documentHeaders)
	writeHeaders(f, FilesSheet, fileHeaders)

	docRow, fileRow := 2, 2
	for _, r := range results {
		for i, doc := range r.Documents {
			output := ""
			if i < len(r.Saved) {
				output = r.Saved[i]
			}
			writeRow(f, DocumentsSheet, docRow,
				r.Path,
				i+1,
				doc.ID,
				doc.Confidence,
				doc.Width,
				doc.Height,
				formatPoint(doc.Corners[geom.TopLeft]),
				formatPoint(doc.Corners[geom.TopRight]),
				formatPoint(doc.Corners[geom.BottomRight]),
				formatPoint(doc.Corners[geom.BottomLeft]),
				output,
			)
			docRow++
		}

		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		candidates, suppressed, failed, rotated := 0, 0, 0, false
		if r.Stats != nil {
			candidates = r.Stats.Candidates
			suppressed = r.Stats.Suppressed
			failed = r.Stats.Failed
			rotated = r.Stats.Rotated
		}
		writeRow(f, FilesSheet, fileRow,
			r.Path,
			len(r.Documents),
			candidates,
			suppressed,
			failed,
			rotated,
			r.Elapsed.Milliseconds(),
			truncate(errText, 200),
		)
		fileRow++
	}

	_ = f.SetColWidth(DocumentsSheet, "A", "A", 48) // source
	_ = f.SetColWidth(DocumentsSheet, "C", "C", 38) // id
	_ = f.SetColWidth(DocumentsSheet, "G", "J", 18) // corners
	_ = f.SetColWidth(DocumentsSheet, "K", "K", 48) // output
	_ = f.SetColWidth(FilesSheet, "A", "A", 48)
	_ = f.SetColWidth(FilesSheet, "H", "H", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("report.xlsx.ok",
		"files", len(results),
		"documents", docRow-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func formatPoint(p geom.Point) string {
	return fmt.Sprintf("%.1f, %.1f", p.X, p.Y)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
