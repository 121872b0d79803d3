package frame

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"phstats/internal/errors"
)

// Grouping is the result of GroupBy: row indices per distinct key, ordered by
// key values.
type Grouping struct {
	frame  *Frame
	keys   []string
	Groups [][]int
}

// GroupBy splits rows by the values of the key columns. Groups are sorted by
// key, numerically for numeric keys. Rows with a missing key value belong to
// no group. With no keys the whole frame is one group.
func (f *Frame) GroupBy(keys ...string) (*Grouping, error) {
	cols, err := f.keyColumns(keys)
	if err != nil {
		return nil, err
	}

	g := &Grouping{frame: f, keys: keys}
	if len(keys) == 0 {
		all := make([]int, f.rows)
		for i := range all {
			all[i] = i
		}
		g.Groups = [][]int{all}
		return g, nil
	}

	lookup := make(map[string]int)
	for row := 0; row < f.rows; row++ {
		key, ok := encodeKey(cols, row)
		if !ok {
			continue
		}
		i, seen := lookup[key]
		if !seen {
			i = len(g.Groups)
			lookup[key] = i
			g.Groups = append(g.Groups, nil)
		}
		g.Groups[i] = append(g.Groups[i], row)
	}

	sort.SliceStable(g.Groups, func(a, b int) bool {
		return compareRows(cols, g.Groups[a][0], g.Groups[b][0]) < 0
	})
	return g, nil
}

// Len returns the number of groups
func (g *Grouping) Len() int {
	return len(g.Groups)
}

// Keys returns one row per group holding the key columns
func (g *Grouping) Keys() *Frame {
	first := make([]int, len(g.Groups))
	for i, rows := range g.Groups {
		if len(rows) > 0 {
			first[i] = rows[0]
		} else {
			first[i] = -1
		}
	}
	keys, _ := g.frame.Select(g.keys...)
	return keys.Take(first)
}

// Sum adds up a numeric column per group. NaN values are skipped unless
// every value in a group is NaN, which leaves 0.
func (g *Grouping) Sum(column string) ([]float64, error) {
	values, err := g.frame.Floats(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(g.Groups))
	for i, rows := range g.Groups {
		for _, r := range rows {
			if !math.IsNaN(values[r]) {
				out[i] += values[r]
			}
		}
	}
	return out, nil
}

// LeftJoin keeps every row of f and appends the non-key columns of right,
// matching leftOn against rightOn. A left row with several matches is
// repeated; one with none gets missing values.
func (f *Frame) LeftJoin(right *Frame, leftOn, rightOn []string) (*Frame, error) {
	if len(leftOn) == 0 || len(leftOn) != len(rightOn) {
		return nil, errors.InvalidInput("join needs the same number of key columns on both sides")
	}
	leftCols, err := f.keyColumns(leftOn)
	if err != nil {
		return nil, err
	}
	rightCols, err := right.keyColumns(rightOn)
	if err != nil {
		return nil, err
	}

	isKey := make(map[string]bool, len(rightOn))
	for _, k := range rightOn {
		isKey[k] = true
	}
	var extra []*Column
	for _, c := range right.columns {
		if isKey[c.Name] {
			continue
		}
		if f.Has(c.Name) {
			return nil, errors.Newf(errors.CodeValidationError, "column %q exists on both sides of the join", c.Name)
		}
		extra = append(extra, c)
	}

	matches := make(map[string][]int)
	for row := 0; row < right.rows; row++ {
		if key, ok := encodeKey(rightCols, row); ok {
			matches[key] = append(matches[key], row)
		}
	}

	leftRows := make([]int, 0, f.rows)
	rightRows := make([]int, 0, f.rows)
	for row := 0; row < f.rows; row++ {
		key, ok := encodeKey(leftCols, row)
		found := matches[key]
		if !ok || len(found) == 0 {
			leftRows = append(leftRows, row)
			rightRows = append(rightRows, -1)
			continue
		}
		for _, r := range found {
			leftRows = append(leftRows, row)
			rightRows = append(rightRows, r)
		}
	}

	out := f.Take(leftRows)
	for _, c := range extra {
		if err := out.AddColumn(c.take(rightRows)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *Frame) keyColumns(keys []string) ([]*Column, error) {
	cols := make([]*Column, len(keys))
	for i, k := range keys {
		c, ok := f.Column(k)
		if !ok {
			return nil, errors.NotFound("column " + strconv.Quote(k))
		}
		cols[i] = c
	}
	return cols, nil
}

func encodeKey(cols []*Column, row int) (string, bool) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if c.IsMissing(row) {
			return "", false
		}
		parts[i] = c.Format(row)
	}
	return strings.Join(parts, "\x00"), true
}

func compareRows(cols []*Column, a, b int) int {
	for _, c := range cols {
		if c.Kind == Float {
			switch {
			case c.Floats[a] < c.Floats[b]:
				return -1
			case c.Floats[a] > c.Floats[b]:
				return 1
			}
			continue
		}
		if cmp := strings.Compare(c.Strings[a], c.Strings[b]); cmp != 0 {
			return cmp
		}
	}
	return 0
}
