package climate

import (
	"github.com/dolthub/swiss"
)

// Index groups temperature records by year and, within a year, by ISO3
// country code. It is built once and never mutated afterwards, so it may be
// read from any goroutine.
type Index struct {
	years *swiss.Map[int, *yearGroup]
	order []int
}

type yearGroup struct {
	countries *swiss.Map[string, []TemperatureRecord]
	order     []string
}

// YearSlice is the read-only per-country view of one year. The zero value is
// an empty slice in which every lookup misses.
type YearSlice struct {
	year int
	g    *yearGroup
}

// BuildIndex groups records in a single pass, preserving input order both
// for years and for countries within a year. Records are expected to be
// month-ordered per country and year already; nothing is sorted or checked.
func BuildIndex(records []TemperatureRecord) *Index {
	ix := &Index{years: swiss.NewMap[int, *yearGroup](128)}

	for _, r := range records {
		g, ok := ix.years.Get(r.Year)
		if !ok {
			g = &yearGroup{countries: swiss.NewMap[string, []TemperatureRecord](256)}
			ix.years.Put(r.Year, g)
			ix.order = append(ix.order, r.Year)
		}
		recs, ok := g.countries.Get(r.ISOCode)
		if !ok {
			g.order = append(g.order, r.ISOCode)
			recs = make([]TemperatureRecord, 0, 12)
		}
		g.countries.Put(r.ISOCode, append(recs, r))
	}
	return ix
}

// Years returns the years present, in first-seen order.
func (ix *Index) Years() []int {
	out := make([]int, len(ix.order))
	copy(out, ix.order)
	return out
}

// Year returns the slice for year y.
func (ix *Index) Year(y int) (YearSlice, bool) {
	g, ok := ix.years.Get(y)
	if !ok {
		return YearSlice{year: y}, false
	}
	return YearSlice{year: y, g: g}, true
}

// Country returns the monthly sequence for iso in year y.
func (ix *Index) Country(y int, iso string) ([]TemperatureRecord, bool) {
	s, ok := ix.Year(y)
	if !ok {
		return nil, false
	}
	return s.Get(iso)
}

// Countries lists the countries present in year y in first-seen order, named
// after their first record.
func (ix *Index) Countries(y int) []Country {
	s, _ := ix.Year(y)
	codes := s.Codes()
	out := make([]Country, 0, len(codes))
	for _, iso := range codes {
		recs, _ := s.Get(iso)
		name := iso
		if len(recs) > 0 {
			name = recs[0].CountryName
		}
		out = append(out, Country{ISOCode: iso, Name: name})
	}
	return out
}

// Year reports the year this slice was looked up for.
func (s YearSlice) Year() int { return s.year }

// Get returns the records for iso. The returned slice must not be modified.
func (s YearSlice) Get(iso string) ([]TemperatureRecord, bool) {
	if s.g == nil {
		return nil, false
	}
	return s.g.countries.Get(iso)
}

// Len returns the number of countries in the slice.
func (s YearSlice) Len() int {
	if s.g == nil {
		return 0
	}
	return len(s.g.order)
}

// Codes returns the ISO3 codes present, in first-seen order.
func (s YearSlice) Codes() []string {
	if s.g == nil {
		return nil
	}
	out := make([]string, len(s.g.order))
	copy(out, s.g.order)
	return out
}

// AnomalyIndex groups global anomaly rows by year.
type AnomalyIndex struct {
	byYear map[int][]Anomaly
	order  []int
}

// BuildAnomalyIndex groups rows by year in input order.
func BuildAnomalyIndex(rows []Anomaly) *AnomalyIndex {
	ax := &AnomalyIndex{byYear: make(map[int][]Anomaly)}
	for _, a := range rows {
		if _, ok := ax.byYear[a.Year]; !ok {
			ax.order = append(ax.order, a.Year)
		}
		ax.byYear[a.Year] = append(ax.byYear[a.Year], a)
	}
	return ax
}

// Get returns the rows for year y.
func (ax *AnomalyIndex) Get(y int) ([]Anomaly, bool) {
	rows, ok := ax.byYear[y]
	return rows, ok
}

// Mean returns the average anomaly of year y. Monthly files carry twelve
// rows per year, annual files one.
func (ax *AnomalyIndex) Mean(y int) (float64, bool) {
	rows, ok := ax.byYear[y]
	if !ok || len(rows) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range rows {
		sum += r.Value
	}
	return sum / float64(len(rows)), true
}

// Years returns the years present, in first-seen order.
func (ax *AnomalyIndex) Years() []int {
	out := make([]int, len(ax.order))
	copy(out, ax.order)
	return out
}
