package climate

import (
	"strings"
	"time"
)

// TemperatureRecord is one country's mean temperature for one month of one
// year, as read from the per-country monthly file.
type TemperatureRecord struct {
	Year        int        `json:"year"`
	ISOCode     string     `json:"iso3"`
	CountryName string     `json:"country"`
	Month       time.Month `json:"month"`

	// Label is the source "Statistics" cell, e.g. "Jan Average".
	Label string `json:"label"`

	// Temperature is in degrees Celsius. NaN when the cell did not parse.
	Temperature float64 `json:"temperatureC"`
}

// MonthAbbrev returns the three-letter month name ("Jan".."Dec"), or the
// first three characters of Label when Month is out of range.
func (r TemperatureRecord) MonthAbbrev() string {
	if r.Month >= time.January && r.Month <= time.December {
		return r.Month.String()[:3]
	}
	if len(r.Label) >= 3 {
		return r.Label[:3]
	}
	return r.Label
}

// Country is a dropdown entry: the ISO3 code is the lookup key and Name the
// display label.
type Country struct {
	ISOCode string `json:"iso3"`
	Name    string `json:"name"`
}

// Anomaly is one row of the global temperature anomaly file.
type Anomaly struct {
	Year  int     `json:"year"`
	Value float64 `json:"anomalyC"`
	Lower float64 `json:"lower,omitempty"`
	Upper float64 `json:"upper,omitempty"`
}

// MonthAbbrevs are the bar chart's categorical domain.
var MonthAbbrevs = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// parseMonth maps "Jan Average", "january" or "1" to a month.
func parseMonth(s string) (time.Month, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 3 {
		prefix := strings.ToLower(s[:3])
		for i, abbr := range MonthAbbrevs {
			if strings.ToLower(abbr) == prefix {
				return time.Month(i + 1), true
			}
		}
	}
	if n := atoiOrZero(s); n >= 1 && n <= 12 {
		return time.Month(n), true
	}
	return 0, false
}
