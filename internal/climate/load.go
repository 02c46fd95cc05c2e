package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/climate-dashboard/internal/common"
)

// ErrMissingColumn is returned when a required column is absent from the
// header row.
var ErrMissingColumn = errors.New("missing column")

// ReadTemperatures parses the per-country monthly file. Required columns are
// Year, ISO3, Country, Statistics (or Month) and a column whose name starts
// with "Temperature". Cells that do not parse are passed through as zero
// year or NaN temperature rather than rejected.
func ReadTemperatures(r io.Reader) ([]TemperatureRecord, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := common.HeaderIndex(header)

	yearCol, err := column(idx, "year")
	if err != nil {
		return nil, err
	}
	isoCol, err := column(idx, "iso3")
	if err != nil {
		return nil, err
	}
	countryCol, err := column(idx, "country")
	if err != nil {
		return nil, err
	}
	statsCol, err := column(idx, "statistics", "month")
	if err != nil {
		return nil, err
	}
	tempCol, err := columnWithPrefix(idx, "temperature")
	if err != nil {
		return nil, err
	}

	var out []TemperatureRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+2, err)
		}
		label := cell(row, statsCol)
		month, _ := parseMonth(label)
		out = append(out, TemperatureRecord{
			Year:        atoiOrZero(cell(row, yearCol)),
			ISOCode:     cell(row, isoCol),
			CountryName: cell(row, countryCol),
			Month:       month,
			Label:       label,
			Temperature: floatOrNaN(cell(row, tempCol)),
		})
	}
	return out, nil
}

// ReadAnomalies parses the global anomaly file. The year comes from a "Year"
// column, or from the leading four digits of a "Time" column ("1850-01").
// The value is the first column named like "anomaly" or "median", else the
// second column. Optional "lower"/"upper" columns carry the confidence band.
func ReadAnomalies(r io.Reader) ([]Anomaly, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := common.HeaderIndex(header)

	yearCol, err := column(idx, "year", "time", "date")
	if err != nil {
		return nil, err
	}
	valueCol, err := columnContaining(header, "anomaly", "median")
	if err != nil {
		if len(header) < 2 {
			return nil, err
		}
		valueCol = 1
		if valueCol == yearCol {
			valueCol = 0
		}
	}
	lowerCol, _ := columnContaining(header, "lower")
	upperCol, _ := columnContaining(header, "upper")

	var out []Anomaly
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+2, err)
		}
		y := cell(row, yearCol)
		if len(y) > 4 {
			y = y[:4]
		}
		a := Anomaly{
			Year:  atoiOrZero(y),
			Value: floatOrNaN(cell(row, valueCol)),
		}
		if lowerCol >= 0 {
			a.Lower = floatOrNaN(cell(row, lowerCol))
		}
		if upperCol >= 0 {
			a.Upper = floatOrNaN(cell(row, upperCol))
		}
		out = append(out, a)
	}
	return out, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func column(idx map[string]int, names ...string) (int, error) {
	for _, n := range names {
		if i, ok := idx[n]; ok {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, " or "))
}

func columnWithPrefix(idx map[string]int, prefix string) (int, error) {
	best := -1
	for name, i := range idx {
		if strings.HasPrefix(name, prefix) && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("%w: %s*", ErrMissingColumn, prefix)
	}
	return best, nil
}

func columnContaining(header []string, subs ...string) (int, error) {
	for i, h := range header {
		n := common.NormalizeHeader(h)
		for _, s := range subs {
			if strings.Contains(n, s) {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(subs, " or "))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func floatOrNaN(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
