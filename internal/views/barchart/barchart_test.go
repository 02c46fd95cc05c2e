package barchart

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/climate-dashboard/internal/climate"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// months returns a year of records where month m holds base + m.
func months(year int, base float64) []climate.TemperatureRecord {
	out := make([]climate.TemperatureRecord, 12)
	for i := range out {
		out[i] = climate.TemperatureRecord{
			Year:        year,
			ISOCode:     "ALB",
			CountryName: "Albania",
			Month:       time.Month(i + 1),
			Label:       climate.MonthAbbrevs[i] + " Average",
			Temperature: base + float64(i),
		}
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDefaultCursorScenario(t *testing.T) {
	v := New()
	v.Update(months(1920, 5.2), t0)

	b, ok := v.Bar("Jan")
	if !ok {
		t.Fatal("no Jan bar")
	}
	if b.Value != 5.2 {
		t.Errorf("Jan value = %v, want 5.2", b.Value)
	}
	if b.Fill != "#ffc100" {
		t.Errorf("Jan fill = %q, want #ffc100", b.Fill)
	}
	if v.Len() != 12 {
		t.Errorf("Len() = %d, want 12", v.Len())
	}
}

func TestDomainIncludesZero(t *testing.T) {
	tests := []struct {
		name   string
		base   float64
		lo, hi float64
	}{
		{"all positive", 5, 0, 16},
		{"all negative", -20, -20, 0},
		{"straddles zero", -3, -3, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New()
			v.Update(months(1920, tc.base), t0)
			lo, hi := v.YDomain()
			if !near(lo, tc.lo) || !near(hi, tc.hi) {
				t.Errorf("YDomain() = [%v, %v], want [%v, %v]", lo, hi, tc.lo, tc.hi)
			}
		})
	}
}

func TestBarGeometry(t *testing.T) {
	v := New()
	v.Update(months(1920, -3), t0) // domain [-3, 8]

	step := float64(innerWidth) / 12.1
	jan, _ := v.Bar("Jan")
	if !near(jan.X, step*0.1) || !near(jan.Width, step*0.9) {
		t.Errorf("Jan x/width = %v/%v, want %v/%v", jan.X, jan.Width, step*0.1, step*0.9)
	}

	unit := float64(innerHeight) / 11
	zero := 8 * unit
	// Jan is -3: hangs below the zero line.
	if !near(jan.Y, zero) || !near(jan.Height, 3*unit) {
		t.Errorf("Jan y/height = %v/%v, want %v/%v", jan.Y, jan.Height, zero, 3*unit)
	}
	// Dec is 8: reaches the top.
	dec, _ := v.Bar("Dec")
	if !near(dec.Y, 0) || !near(dec.Height, zero) {
		t.Errorf("Dec y/height = %v/%v, want 0/%v", dec.Y, dec.Height, zero)
	}
	// Apr is 0: no height.
	apr, _ := v.Bar("Apr")
	if !near(apr.Height, 0) {
		t.Errorf("Apr height = %v, want 0", apr.Height)
	}
}

func TestEnteringBarsGrowFromBaseline(t *testing.T) {
	v := New()
	v.Update(months(1920, 5), t0)
	n := v.bars.Node("Jun")
	if h := n.Num("height", t0); h != 0 {
		t.Errorf("height at start = %v, want 0", h)
	}
	if h := n.Num("height", t0.Add(transition)); !near(h, n.NumTarget("height")) || h == 0 {
		t.Errorf("height after transition = %v, want %v", h, n.NumTarget("height"))
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	v := New()
	later := t0.Add(time.Second)
	v.Update(months(1920, 2), t0)
	var once bytes.Buffer
	if err := v.Render(&once, later); err != nil {
		t.Fatal(err)
	}
	v.Update(months(1920, 2), t0.Add(200*time.Millisecond))
	var twice bytes.Buffer
	if err := v.Render(&twice, later); err != nil {
		t.Fatal(err)
	}
	if once.String() != twice.String() {
		t.Error("second identical Update changed the rendered frame")
	}
}

func TestUpdateRemovesMissingMonths(t *testing.T) {
	v := New()
	v.Update(months(1920, 2), t0)
	v.Update(months(1921, 2)[:6], t0)
	if v.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", v.Len())
	}
	if _, ok := v.Bar("Dec"); ok {
		t.Error("Dec bar still drawn")
	}

	v.Update(nil, t0)
	if v.Len() != 0 {
		t.Errorf("Len() after empty update = %d", v.Len())
	}
	if lo, hi := v.YDomain(); lo != initialDomain[0] || hi != initialDomain[1] {
		t.Errorf("empty YDomain() = [%v, %v], want initial domain", lo, hi)
	}
}

func TestNaNValueDrawsEmptyNeutralBar(t *testing.T) {
	recs := months(1920, 2)
	recs[3].Temperature = math.NaN()
	v := New()
	v.Update(recs, t0)
	b, _ := v.Bar("Apr")
	if b.Height != 0 || b.Fill != neutralFill {
		t.Errorf("Apr bar = %+v, want zero height and neutral fill", b)
	}
	if lo, hi := v.YDomain(); lo != 0 || hi != 13 {
		t.Errorf("YDomain() = [%v, %v], want [0, 13]", lo, hi)
	}
}

func TestHoverTooltip(t *testing.T) {
	v := New()
	v.Update(months(1950, 3.5), t0)
	if !v.PointerEnter("Mar", 40, 60, t0) {
		t.Fatal("PointerEnter(Mar) = false")
	}
	if got := strings.Join(v.TooltipLines(), "|"); got != "Mar Average|5.5℃" {
		t.Errorf("tooltip = %q", got)
	}

	v.Update(months(1951, 4), t0.Add(400*time.Millisecond))
	if got := strings.Join(v.TooltipLines(), "|"); got != "Mar Average|6℃" {
		t.Errorf("tooltip after update = %q", got)
	}

	var buf bytes.Buffer
	if err := v.Render(&buf, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `stroke="#000000"`) {
		t.Error("hovered bar not outlined")
	}

	v.PointerLeave(t0.Add(time.Second))
	if v.Hovered() != "" {
		t.Errorf("Hovered() = %q after leave", v.Hovered())
	}
	if v.PointerEnter("Foo", 0, 0, t0) {
		t.Error("PointerEnter(Foo) = true")
	}
}

func TestRenderDocument(t *testing.T) {
	v := New()
	v.Update(months(1920, 5.2), t0)
	var buf bytes.Buffer
	if err := v.Render(&buf, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", `data-month="Jan"`, `data-month="Dec"`, ">Jan<", `fill="#ffc100"`} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered SVG missing %q", want)
		}
	}
}
