// Package excel reads input tables from xlsx, CSV and JSON files into frames
// and writes result frames back out as xlsx or CSV.
package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"phstats/internal"
	"phstats/internal/frame"
)

const defaultSheet = "Sheet1"

var logger = internal.DefaultLogger.Component("DataReader")

// DataReader handles reading Excel, CSV and JSON files
type DataReader struct {
	filePath string
	fileType string // "xlsx", "csv" or "json"
	opts     ReaderOptions
}

// NewDataReader creates a data reader, choosing the format from the file extension
func NewDataReader(filePath string, opts ReaderOptions) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	switch ext {
	case ".csv":
		fileType = "csv"
	case ".json":
		fileType = "json"
	}
	if opts.Sheet == "" {
		opts.Sheet = defaultSheet
	}
	return &DataReader{filePath: filePath, fileType: fileType, opts: opts}
}

// ReadData reads the file into a frame. A column is numeric when every
// non-empty cell parses as a number; empty cells become NaN.
func (r *DataReader) ReadData() (*frame.Frame, error) {
	logger.Debug("Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		data, err := r.readCSVData()
		if err != nil {
			return nil, err
		}
		return data.Frame()
	case "xlsx":
		data, err := r.readExcelData()
		if err != nil {
			return nil, err
		}
		return data.Frame()
	case "json":
		return r.readJSONData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the configured sheet
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	logger.Debug("Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	readStart := time.Now()
	rows, err := f.GetRows(r.opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.opts.Sheet, err)
	}
	logger.Info("%s read in %.2fms (%d rows)", r.opts.Sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	logger.Info("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			return nil, fmt.Errorf("column %d has an empty header", i+1)
		}
		if seen[headers[i]] {
			return nil, fmt.Errorf("duplicate column header %q", headers[i])
		}
		seen[headers[i]] = true
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData)

		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}

		dataRows = append(dataRows, rowData)
	}

	logger.Debug("%s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// Frame converts the raw cells into typed columns
func (d *ExcelData) Frame() (*frame.Frame, error) {
	columns := make([]*frame.Column, len(d.Headers))
	for i, header := range d.Headers {
		cells := make([]string, len(d.Rows))
		for j, row := range d.Rows {
			cells[j] = row[header]
		}
		if values, ok := parseNumbers(cells); ok {
			columns[i] = frame.FloatColumn(header, values)
		} else {
			columns[i] = frame.TextColumn(header, cells)
		}
	}
	return frame.New(columns...)
}

// parseNumbers parses every non-empty cell, reporting false at the first
// cell that is not a number
func parseNumbers(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}
