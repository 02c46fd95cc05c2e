package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/controller"
	"github.com/i474232898/climate-dashboard/internal/geo"
	"github.com/i474232898/climate-dashboard/internal/views/areachart"
	"github.com/i474232898/climate-dashboard/internal/views/barchart"
	"github.com/i474232898/climate-dashboard/internal/views/globe"
)

// manualTimer never fires on its own.
type manualTimer struct {
	mu      sync.Mutex
	running bool
}

func (m *manualTimer) Start(func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	return nil
}

func (m *manualTimer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
}

func (m *manualTimer) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	var recs []climate.TemperatureRecord
	for _, y := range []int{1920, 1950} {
		for _, c := range []climate.Country{{ISOCode: "ALB", Name: "Albania"}, {ISOCode: "FRA", Name: "France"}} {
			for m := time.January; m <= time.December; m++ {
				recs = append(recs, climate.TemperatureRecord{
					Year: y, ISOCode: c.ISOCode, CountryName: c.Name, Month: m,
					Temperature: 5.2 + float64(m-1),
				})
			}
		}
	}
	features := []geo.Feature{{
		ISOCode:  "ALB",
		Polygons: []orb.Polygon{{{{19, 40}, {21, 40}, {21, 42}, {19, 42}, {19, 40}}}},
	}}
	views := controller.Views{Globe: globe.New(), Bars: barchart.New(), Area: areachart.New()}
	ctl, err := controller.New(climate.BuildIndex(recs), features, views, &manualTimer{}, controller.Options{
		FirstYear:      1920,
		LastYear:       2020,
		DefaultCountry: "ALB",
		Autoplay:       true,
	})
	if err != nil {
		t.Fatalf("controller.New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctl.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	anomalies := climate.BuildAnomalyIndex([]climate.Anomaly{{Year: 1920, Value: -0.25}})

	app := fiber.New()
	RegisterRoutes(app, ctl, anomalies)
	return app
}

func do(t *testing.T, app *fiber.App, method, target string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	if err != nil {
		t.Fatalf("%s %s: unexpected error: %v", method, target, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func decodeState(t *testing.T, body string) controller.Snapshot {
	t.Helper()
	var s controller.Snapshot
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("decode state %q: %v", body, err)
	}
	return s
}

func TestStatusCodes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/api/v1/state", http.StatusOK},
		{http.MethodGet, "/api/v1/years", http.StatusOK},
		{http.MethodGet, "/api/v1/countries", http.StatusOK},

		{http.MethodPost, "/api/v1/cursor/year", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/cursor/year?year=abc", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/cursor/year?year=1800", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/cursor/year?year=1950", http.StatusOK},

		{http.MethodPost, "/api/v1/cursor/month?month=12", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/cursor/month?month=0", http.StatusOK},

		{http.MethodPost, "/api/v1/cursor/country?iso=FRANCE", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/cursor/country?iso=XXX", http.StatusNotFound},

		{http.MethodPost, "/api/v1/slider/input?year=2021", http.StatusBadRequest},

		{http.MethodPost, "/api/v1/globe/drag?dx=10", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/globe/drag?dx=10&dy=NaN", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/globe/drag?dx=10&dy=-4", http.StatusNoContent},

		{http.MethodPost, "/api/v1/globe/hover", http.StatusBadRequest},
		{http.MethodPost, "/api/v1/globe/hover?iso=ZZZ", http.StatusNotFound},
		{http.MethodPost, "/api/v1/globe/hover?iso=ALB&x=5&y=6", http.StatusNoContent},
		{http.MethodDelete, "/api/v1/globe/hover", http.StatusNoContent},

		{http.MethodPost, "/api/v1/bars/hover?month=Smarch", http.StatusNotFound},
		{http.MethodPost, "/api/v1/bars/hover?month=Jan&x=1&y=2", http.StatusNoContent},
		{http.MethodDelete, "/api/v1/bars/hover", http.StatusNoContent},

		{http.MethodGet, "/api/v1/views/map.svg", http.StatusNotFound},
		{http.MethodGet, "/api/v1/views/globe", http.StatusNotFound},

		{http.MethodGet, "/api/v1/anomaly", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/anomaly?year=1800", http.StatusNotFound},
		{http.MethodGet, "/api/v1/anomaly?year=1920", http.StatusOK},
	}
	for _, tc := range tests {
		resp, body := do(t, app, tc.method, tc.target)
		if resp.StatusCode != tc.want {
			t.Errorf("%s %s: expected status %d, got %d (%s)", tc.method, tc.target, tc.want, resp.StatusCode, body)
		}
	}
}

func TestCursorOperations(t *testing.T) {
	app := newTestApp(t)

	_, body := do(t, app, http.MethodGet, "/api/v1/state")
	s := decodeState(t, body)
	if s.Cursor.Year != 1920 || s.Cursor.ISOCode != "ALB" || !s.Playing {
		t.Fatalf("initial state = %+v", s)
	}

	_, body = do(t, app, http.MethodPost, "/api/v1/cursor/country?iso=fra")
	if s = decodeState(t, body); s.Cursor.ISOCode != "FRA" {
		t.Errorf("country = %q, want FRA", s.Cursor.ISOCode)
	}

	_, body = do(t, app, http.MethodPost, "/api/v1/play/toggle")
	if s = decodeState(t, body); s.Playing || s.ButtonLabel != "Play" {
		t.Errorf("after toggle: %+v", s)
	}

	_, body = do(t, app, http.MethodPost, "/api/v1/slider/input?year=1950")
	if s = decodeState(t, body); s.Cursor.Year != 1950 || !s.Dragging {
		t.Errorf("during slide: %+v", s)
	}
	_, body = do(t, app, http.MethodPost, "/api/v1/slider/release")
	if s = decodeState(t, body); s.Dragging {
		t.Errorf("after release: %+v", s)
	}
}

func TestDropdownEntries(t *testing.T) {
	app := newTestApp(t)

	_, body := do(t, app, http.MethodGet, "/api/v1/years")
	if strings.TrimSpace(body) != "[1920,1950]" {
		t.Errorf("years = %s", body)
	}
	_, body = do(t, app, http.MethodGet, "/api/v1/countries")
	var countries []climate.Country
	if err := json.Unmarshal([]byte(body), &countries); err != nil {
		t.Fatal(err)
	}
	if len(countries) != 2 || countries[1] != (climate.Country{ISOCode: "FRA", Name: "France"}) {
		t.Errorf("countries = %+v", countries)
	}
}

func TestViewFrames(t *testing.T) {
	app := newTestApp(t)

	for _, name := range []string{"globe", "bars", "area"} {
		resp, body := do(t, app, http.MethodGet, "/api/v1/views/"+name+".svg")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d", name, resp.StatusCode)
			continue
		}
		if ct := resp.Header.Get(fiber.HeaderContentType); ct != "image/svg+xml" {
			t.Errorf("%s: content type %q", name, ct)
		}
		if !strings.Contains(body, "<svg") {
			t.Errorf("%s: body is not an SVG document", name)
		}
	}

	_, body := do(t, app, http.MethodGet, "/api/v1/views/globe.svg")
	if !strings.Contains(body, `data-iso="ALB"`) || !strings.Contains(body, `fill="#ffc100"`) {
		t.Error("globe frame does not show ALB at 5.2℃")
	}
}

func TestAnomaly(t *testing.T) {
	app := newTestApp(t)
	_, body := do(t, app, http.MethodGet, "/api/v1/anomaly?year=1920")
	var got struct {
		Year     int     `json:"year"`
		AnomalyC float64 `json:"anomalyC"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	if got.Year != 1920 || got.AnomalyC != -0.25 {
		t.Errorf("anomaly = %+v", got)
	}
}

func TestDashboardPage(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	app := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	for _, want := range []string{
		`<option value="ALB" selected>Albania</option>`,
		`<option value="FRA">France</option>`,
		`<option value="1920" selected>1920</option>`,
		">Pause</button>",
		"Global anomaly: -0.25℃",
		`class="globe"`,
		`class="bar-chart"`,
		`class="area-chart"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard page missing %q", want)
		}
	}
}
