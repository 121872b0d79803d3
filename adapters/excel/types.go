package excel

// RawRowData represents a row of raw cell text keyed by column header
type RawRowData map[string]string

// ExcelData represents a sheet or CSV file before column types are inferred
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// ReaderOptions select what part of a file is read
type ReaderOptions struct {
	// Sheet is the xlsx worksheet to read; empty means Sheet1
	Sheet string
	// JSONPath is the gjson path of the record array in a .json file; empty
	// means the document itself is the array
	JSONPath string
}
