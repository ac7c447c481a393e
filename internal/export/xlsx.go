// Package export renders cleaned datasets into downloadable files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ridepulse/internal/pipeline"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

// WriteXLSX streams the dataset as an Excel workbook with a styled
// header row.
func WriteXLSX(w io.Writer, ds *pipeline.Dataset) error {
	f, err := buildWorkbook(ds)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the dataset workbook into dir and returns the file
// path. The directory is created if missing.
func SaveXLSX(dir, sessionID string, ds *pipeline.Dataset) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := buildWorkbook(ds)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_%s_%s.xlsx", sessionID, time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return filePath, nil
}

func buildWorkbook(ds *pipeline.Dataset) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	records := ds.Frame().Records()
	for rowIdx, record := range records {
		for colIdx, value := range record {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			_ = f.SetCellValue(sheetName, cell, value)
		}
	}

	if len(records) > 0 {
		headerStyle, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err == nil {
			lastCell, _ := excelize.CoordinatesToCellName(len(records[0]), 1)
			_ = f.SetCellStyle(sheetName, "A1", lastCell, headerStyle)
		}

		lastCol, _ := excelize.ColumnNumberToName(len(records[0]))
		_ = f.SetColWidth(sheetName, "A", lastCol, 18)
	}

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}
