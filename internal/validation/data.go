// Package validation holds the input checks shared by the calculators:
// confidence levels, required columns and the numeric constraints on
// numerators, denominators and reference tables.
package validation

import (
	"math"
	"strconv"

	"phstats/internal/errors"
	"phstats/internal/frame"
)

// Data describes the columns a calculation reads from a frame
type Data struct {
	Numerator   string
	Denominator string // optional
	GroupBy     []string
}

// Check verifies that every named column exists, that the numerator and
// denominator are numeric and non-negative, and that denominators are
// strictly positive.
func (d Data) Check(f *frame.Frame) error {
	if f == nil {
		return errors.InvalidInput("data is required")
	}

	numeric := []string{d.Numerator}
	if d.Denominator != "" {
		numeric = append(numeric, d.Denominator)
	}

	required := append(append([]string{}, numeric...), d.GroupBy...)
	if err := Columns(f, required...); err != nil {
		return err
	}

	for _, name := range numeric {
		values, err := NumericColumn(f, name)
		if err != nil {
			return err
		}
		for _, v := range values {
			if v < 0 {
				return errors.ValidationError("no negative numbers can be used to calculate these statistics")
			}
		}
	}

	if d.Denominator != "" {
		values, _ := f.Floats(d.Denominator)
		for _, v := range values {
			if v <= 0 {
				return errors.ValidationError("denominators must be greater than zero")
			}
		}
	}
	return nil
}

// Columns checks that each name is a column of f
func Columns(f *frame.Frame, names ...string) error {
	for _, name := range names {
		if name == "" {
			return errors.InvalidInput("column names must not be empty")
		}
		if !f.Has(name) {
			return errors.Newf(errors.CodeNotFound, "%s is not a column header", strconv.Quote(name))
		}
	}
	return nil
}

// NumericColumn returns a column's values, failing when it holds text
func NumericColumn(f *frame.Frame, name string) ([]float64, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "%s is not a column header", strconv.Quote(name))
	}
	if c.Kind != frame.Float {
		return nil, errors.Newf(errors.CodeValidationError, "%s column must be a numeric data type", strconv.Quote(name))
	}
	return c.Floats, nil
}

// Multiplier requires a strictly positive scale factor
func Multiplier(m float64) error {
	if !(m > 0) || math.IsInf(m, 0) {
		return errors.Newf(errors.CodeInvalidInput, "multiplier must be a positive number, got %v", m)
	}
	return nil
}

// RowsPerGroup requires every group of f to hold exactly want rows
func RowsPerGroup(f *frame.Frame, groupBy []string, want int) error {
	if len(groupBy) == 0 {
		if f.RowCount() != want {
			return errors.Newf(errors.CodeValidationError,
				"data must have %d rows to match the reference data, got %d", want, f.RowCount())
		}
		return nil
	}

	groups, err := f.GroupBy(groupBy...)
	if err != nil {
		return err
	}
	size := -1
	for _, rows := range groups.Groups {
		if size >= 0 && len(rows) != size {
			return errors.ValidationError("there must be the same number of rows per group")
		}
		size = len(rows)
	}
	if size >= 0 && size != want {
		return errors.Newf(errors.CodeValidationError,
			"reference data length must equal the number of rows in each group: %d rows per group, %d reference rows", size, want)
	}
	return nil
}
