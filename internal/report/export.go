package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"weedlist/internal"
)

// WriteJSON writes the accepted-name artifact: a sorted JSON array of
// strings, fully replacing any prior file. The write goes through a temp
// file so a crash never leaves a truncated artifact behind.
func WriteJSON(path string, names []string) error {
	if names == nil {
		names = []string{}
	}
	blob, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return err
	}
	blob = append(blob, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// WriteXLSX writes the per-candidate validation report.
func WriteXLSX(rows []internal.ReportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"index", "candidate", "status", "reason", "accepted_name", "confidence"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Index)
		set(2, row.Candidate)
		set(3, row.Status)
		set(4, row.Reason)
		set(5, row.AcceptedName)
		set(6, row.Confidence)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
