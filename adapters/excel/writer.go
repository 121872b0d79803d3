package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"phstats/internal/frame"
)

// WriteFile writes a frame to path as xlsx, or CSV when the extension is .csv.
// sheet names the worksheet of an xlsx file; empty means Sheet1.
func WriteFile(f *frame.Frame, path, sheet string) error {
	start := time.Now()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = writeCSVFile(f, path)
	case ".xlsx":
		err = writeExcelFile(f, path, sheet)
	default:
		return fmt.Errorf("unsupported output file type: %s", path)
	}
	if err != nil {
		return err
	}
	logger.Info("wrote %d rows to %s in %.2fms", f.RowCount(), path, float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// WriteCSV writes a frame as CSV with a header row. Missing values are empty.
func WriteCSV(w io.Writer, f *frame.Frame) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Names()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	columns := frameColumns(f)
	record := make([]string, len(columns))
	for row := 0; row < f.RowCount(); row++ {
		for i, c := range columns {
			record[i] = c.Format(row)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", row+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeCSVFile(f *frame.Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteCSV(file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeExcelFile(f *frame.Frame, path, sheet string) error {
	if sheet == "" {
		sheet = defaultSheet
	}
	book := excelize.NewFile()
	defer book.Close()

	if sheet != defaultSheet {
		if err := book.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	header := make([]interface{}, 0, f.ColumnCount())
	for _, name := range f.Names() {
		header = append(header, name)
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	columns := frameColumns(f)
	for row := 0; row < f.RowCount(); row++ {
		cells := make([]interface{}, len(columns))
		for i, c := range columns {
			cells[i] = excelValue(c, row)
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row+1, err)
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// excelValue is the cell value of a row; missing values leave the cell empty
func excelValue(c *frame.Column, row int) interface{} {
	if c.IsMissing(row) {
		return nil
	}
	if c.Kind == frame.Float {
		v := c.Floats[row]
		if math.IsInf(v, 0) {
			return c.Format(row)
		}
		return v
	}
	return c.Strings[row]
}

func frameColumns(f *frame.Frame) []*frame.Column {
	columns := make([]*frame.Column, 0, f.ColumnCount())
	for _, name := range f.Names() {
		c, _ := f.Column(name)
		columns = append(columns, c)
	}
	return columns
}
