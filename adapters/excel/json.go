package excel

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"phstats/internal/frame"
)

// readJSONData reads an array of flat objects, found at the configured path.
// A column is numeric when every non-null value is a JSON number.
func (r *DataReader) readJSONData() (*frame.Frame, error) {
	readStart := time.Now()
	body, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON in %s", r.filePath)
	}

	data := gjson.ParseBytes(body)
	if r.opts.JSONPath != "" {
		data = gjson.GetBytes(body, r.opts.JSONPath)
		if !data.Exists() {
			return nil, fmt.Errorf("data path '%s' not found in %s", r.opts.JSONPath, r.filePath)
		}
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("expected an array of records, got %s", data.Type)
	}

	records := data.Array()
	if len(records) == 0 {
		return nil, fmt.Errorf("JSON data has no records")
	}

	var headers []string
	seen := make(map[string]bool)
	for i, record := range records {
		if !record.IsObject() {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		record.ForEach(func(key, _ gjson.Result) bool {
			if !seen[key.String()] {
				seen[key.String()] = true
				headers = append(headers, key.String())
			}
			return true
		})
	}
	logger.Info("JSON file read in %.2fms (%d records)", float64(time.Since(readStart).Nanoseconds())/1e6, len(records))

	columns := make([]*frame.Column, len(headers))
	for i, header := range headers {
		values := make([]gjson.Result, len(records))
		for j, record := range records {
			values[j] = record.Get(gjson.Escape(header))
		}
		columns[i] = jsonColumn(header, values)
	}
	return frame.New(columns...)
}

func jsonColumn(name string, values []gjson.Result) *frame.Column {
	numeric := true
	for _, v := range values {
		if v.Exists() && v.Type != gjson.Null && v.Type != gjson.Number {
			numeric = false
			break
		}
	}

	if numeric {
		floats := make([]float64, len(values))
		for i, v := range values {
			if v.Type == gjson.Number {
				floats[i] = v.Float()
			} else {
				floats[i] = math.NaN()
			}
		}
		return frame.FloatColumn(name, floats)
	}

	text := make([]string, len(values))
	for i, v := range values {
		if v.Exists() && v.Type != gjson.Null {
			text[i] = v.String()
		}
	}
	return frame.TextColumn(name, text)
}
