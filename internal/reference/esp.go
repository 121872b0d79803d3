// Package reference provides standard populations for direct standardisation.
package reference

import (
	"regexp"
	"sort"
	"strconv"

	"phstats/internal"
	"phstats/internal/errors"
	"phstats/internal/frame"
	"phstats/internal/validation"
)

// Column names added by JoinESP
const (
	ESPBandColumn       = "esp_age_bands"
	ESPPopulationColumn = "euro_standard_pops"
)

// ESPBands is the number of age bands in the European Standard Population
const ESPBands = 19

var (
	espAgeBands = []string{
		"0-4", "5-9", "10-14", "15-19", "20-24", "25-29", "30-34",
		"35-39", "40-44", "45-49", "50-54", "55-59", "60-64",
		"65-69", "70-74", "75-79", "80-84", "85-89", "90+",
	}
	espPopulations = []float64{
		5000, 5500, 5500, 5500, 6000, 6000, 6500, 7000, 7000, 7000,
		7000, 6500, 6000, 5500, 5000, 4000, 2500, 1500, 1000,
	}

	firstNumber = regexp.MustCompile(`\d+`)
	logger      = internal.DefaultLogger.Component("ESP")
)

// JoinESP attaches the European Standard Population to data holding 19 age
// bands per group. Bands are matched by order of the first number in each age
// label, so "<=4" and "5-9" map to 0-4 and 5-9; labels sharing a first number
// ("<5" and "5-9") are rejected.
func JoinESP(f *frame.Frame, ageColumn string, groupBy []string) (*frame.Frame, error) {
	if err := validation.Columns(f, append([]string{ageColumn}, groupBy...)...); err != nil {
		return nil, err
	}
	if err := validation.RowsPerGroup(f, groupBy, ESPBands); err != nil {
		return nil, errors.Wrap(err, "there must be 19 rows of data per group")
	}

	labels, _ := f.Strings(ageColumn)
	minAges := make([]int, len(labels))
	distinct := make(map[int]bool)
	for i, label := range labels {
		m := firstNumber.FindString(label)
		if m == "" {
			return nil, errors.Newf(errors.CodeValidationError, "age band %q has no number", label)
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return nil, errors.Wrapf(errors.WithCode(errors.CodeValidationError, err), "age band %q", label)
		}
		minAges[i] = n
		distinct[n] = true
	}
	if len(distinct) != ESPBands {
		return nil, errors.ValidationError("there are duplicate minimum ages, which is not accepted as bands are ordered by the first number in each age band: " +
			"<5 and 5-10 is not accepted but <=4 and 5-10 is accepted")
	}

	groups, err := f.GroupBy(groupBy...)
	if err != nil {
		return nil, err
	}

	grouped := 0
	for _, rows := range groups.Groups {
		grouped += len(rows)
	}
	if grouped != f.RowCount() {
		return nil, errors.ValidationError("group columns must have a value in every row")
	}

	bandIndex := make([]int, f.RowCount())
	for _, rows := range groups.Groups {
		ordered := append([]int(nil), rows...)
		sort.SliceStable(ordered, func(a, b int) bool {
			return minAges[ordered[a]] < minAges[ordered[b]]
		})
		for rank, row := range ordered {
			if rank > 0 && minAges[row] == minAges[ordered[rank-1]] {
				return nil, errors.ValidationError("there are duplicate minimum ages within a group")
			}
			bandIndex[row] = rank
		}
	}

	out := f.Take(identity(f.RowCount()))
	bands := make([]string, len(bandIndex))
	pops := make([]float64, len(bandIndex))
	for i, b := range bandIndex {
		bands[i] = espAgeBands[b]
		pops[i] = espPopulations[b]
	}
	if err := out.AddText(ESPBandColumn, bands); err != nil {
		return nil, err
	}
	if err := out.AddFloat(ESPPopulationColumn, pops); err != nil {
		return nil, err
	}

	logMapping(labels, bands)
	return out, nil
}

func logMapping(labels, bands []string) {
	seen := make(map[string]bool)
	for i, label := range labels {
		key := label + "\x00" + bands[i]
		if seen[key] {
			continue
		}
		seen[key] = true
		logger.Info("age band %q joined to %s", label, bands[i])
	}
	logger.Info("please check how the age band column has joined to %q above", ESPBandColumn)
}

func identity(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
