package climate

import (
	"fmt"
	"strings"
	"time"
)

// monthlyCSV renders a TEMP2-style file with twelve rows per country and
// year. temp returns the value for a (year, iso, month) triple.
func monthlyCSV(years []int, countries []Country, temp func(y int, iso string, m time.Month) float64) string {
	var b strings.Builder
	b.WriteString("Temperature - (Celsius), Year, Statistics, Country, ISO3\n")
	for _, y := range years {
		for _, c := range countries {
			for m := time.January; m <= time.December; m++ {
				fmt.Fprintf(&b, "%g, %d, %s Average, %s, %s\n", temp(y, c.ISOCode, m), y, m.String()[:3], c.Name, c.ISOCode)
			}
		}
	}
	return b.String()
}
