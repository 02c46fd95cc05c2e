// Package controller owns the dashboard's shared cursor and keeps the three
// views in step with it. All state lives on a single event-loop goroutine;
// every exported operation is queued onto that loop and runs in arrival
// order.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/geo"
)

var (
	// ErrStopped is returned for operations submitted after Run returned.
	ErrStopped = errors.New("controller: stopped")
	// ErrUnknownCountry is returned when selecting a country that is not
	// offered in the country list.
	ErrUnknownCountry = errors.New("controller: unknown country")
	// ErrOutOfRange is returned for a year outside the timeline or a month
	// outside 0..11.
	ErrOutOfRange = errors.New("controller: out of range")
	// ErrUnknownView is returned by Render for an unknown view name.
	ErrUnknownView = errors.New("controller: unknown view")
)

// State is the autoplay state.
type State int

const (
	Paused State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// ButtonLabel is the text of the play/pause button in this state.
func (s State) ButtonLabel() string {
	if s == Playing {
		return "Pause"
	}
	return "Play"
}

// Cursor is the shared selection every view draws.
type Cursor struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	ISOCode string `json:"iso3"`
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Cursor      Cursor `json:"cursor"`
	Playing     bool   `json:"playing"`
	Dragging    bool   `json:"dragging"`
	ButtonLabel string `json:"buttonLabel"`
	FirstYear   int    `json:"firstYear"`
	LastYear    int    `json:"lastYear"`
}

// Timer is the autoplay tick source.
type Timer interface {
	Start(tick func()) error
	Stop()
	Running() bool
}

// GlobeView is the choropleth.
type GlobeView interface {
	Update(features []geo.Feature, slice climate.YearSlice, month int, now time.Time)
	Rotate(dx, dy float64)
	PointerEnter(key string, x, y float64, now time.Time) bool
	PointerLeave(now time.Time)
	Render(w io.Writer, now time.Time) error
}

// SeriesView draws one country's months.
type SeriesView interface {
	Update(records []climate.TemperatureRecord, now time.Time)
	Render(w io.Writer, now time.Time) error
}

// BarView is a SeriesView with per-month hover.
type BarView interface {
	SeriesView
	PointerEnter(month string, x, y float64, now time.Time) bool
	PointerLeave(now time.Time)
}

// Views are the views the controller drives.
type Views struct {
	Globe GlobeView
	Bars  BarView
	Area  SeriesView
}

// View names accepted by Render.
const (
	ViewGlobe = "globe"
	ViewBars  = "bars"
	ViewArea  = "area"
)

// Options configure a Controller.
type Options struct {
	FirstYear      int
	LastYear       int
	DefaultCountry string
	Autoplay       bool

	// Now is the clock used to time transitions. Defaults to time.Now.
	Now func() time.Time
}

type event struct {
	fn   func()
	done chan struct{}
}

// Controller is the dashboard's event loop.
type Controller struct {
	index    *climate.Index
	features []geo.Feature
	views    Views
	timer    Timer
	opts     Options

	years     []int
	countries []climate.Country
	known     map[string]bool

	events  chan event
	stopped chan struct{}

	// Loop-owned.
	cursor   Cursor
	state    State
	dragging bool
}

// New creates a controller at the first year, January and the default
// country. Views are not drawn until Run starts.
func New(index *climate.Index, features []geo.Feature, views Views, timer Timer, opts Options) (*Controller, error) {
	if opts.FirstYear > opts.LastYear {
		return nil, fmt.Errorf("%w: timeline %d..%d", ErrOutOfRange, opts.FirstYear, opts.LastYear)
	}
	if views.Globe == nil || views.Bars == nil || views.Area == nil || timer == nil {
		return nil, errors.New("controller: views and timer are required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Controller{
		index:    index,
		features: features,
		views:    views,
		timer:    timer,
		opts:     opts,
		years:    index.Years(),
		events:   make(chan event),
		stopped:  make(chan struct{}),
		cursor:   Cursor{Year: opts.FirstYear, ISOCode: opts.DefaultCountry},
	}
	if len(c.years) > 0 {
		c.countries = index.Countries(c.years[0])
	}
	c.known = make(map[string]bool, len(c.countries))
	for _, ct := range c.countries {
		c.known[ct.ISOCode] = true
	}
	if opts.Autoplay {
		c.state = Playing
	}
	return c, nil
}

// Years returns the year dropdown entries.
func (c *Controller) Years() []int { return c.years }

// Countries returns the country dropdown entries.
func (c *Controller) Countries() []climate.Country { return c.countries }

// Run draws the initial frame, starts autoplay when playing, and executes
// queued operations until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.stopped)

	c.redraw()
	if c.state == Playing {
		c.startTimer()
	}
	slog.Debug("controller running", "state", c.state, "year", c.cursor.Year, "iso3", c.cursor.ISOCode)

	for {
		select {
		case <-ctx.Done():
			c.timer.Stop()
			return nil
		case e := <-c.events:
			e.fn()
			close(e.done)
		}
	}
}

// submit runs fn on the loop and waits for it to finish.
func (c *Controller) submit(ctx context.Context, fn func()) error {
	e := event{fn: fn, done: make(chan struct{})}
	select {
	case c.events <- e:
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-e.done
	return nil
}

func (c *Controller) startTimer() {
	if err := c.timer.Start(c.onTick); err != nil {
		slog.Error("autoplay timer failed to start", "error", err)
	}
}

func (c *Controller) onTick() {
	if err := c.submit(context.Background(), c.advance); err != nil {
		slog.Debug("autoplay tick dropped", "error", err)
	}
}

// redraw pushes the cursor's slices into every view: bar chart, area chart,
// then globe.
func (c *Controller) redraw() {
	now := c.opts.Now()
	records, _ := c.index.Country(c.cursor.Year, c.cursor.ISOCode)
	slice, _ := c.index.Year(c.cursor.Year)

	c.views.Bars.Update(records, now)
	c.views.Area.Update(records, now)
	c.views.Globe.Update(c.features, slice, c.cursor.Month, now)
}

// advance moves one year forward, wrapping from the last year to the first.
// Ticks that arrive after pausing or during a slider drag are ignored.
func (c *Controller) advance() {
	if c.state != Playing || c.dragging {
		return
	}
	c.cursor.Year++
	if c.cursor.Year > c.opts.LastYear {
		c.cursor.Year = c.opts.FirstYear
	}
	c.redraw()
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		Cursor:      c.cursor,
		Playing:     c.state == Playing,
		Dragging:    c.dragging,
		ButtonLabel: c.state.ButtonLabel(),
		FirstYear:   c.opts.FirstYear,
		LastYear:    c.opts.LastYear,
	}
}

func (c *Controller) checkYear(year int) error {
	if year < c.opts.FirstYear || year > c.opts.LastYear {
		return fmt.Errorf("%w: year %d not in %d..%d", ErrOutOfRange, year, c.opts.FirstYear, c.opts.LastYear)
	}
	return nil
}

// State returns a copy of the current state.
func (c *Controller) State(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := c.submit(ctx, func() { s = c.snapshot() })
	return s, err
}

// Tick advances the year as one autoplay tick would.
func (c *Controller) Tick(ctx context.Context) error {
	return c.submit(ctx, c.advance)
}

// TogglePlay flips between playing and paused, starting or stopping the
// autoplay timer.
func (c *Controller) TogglePlay(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := c.submit(ctx, func() {
		if c.state == Playing {
			c.state = Paused
			c.timer.Stop()
		} else {
			c.state = Playing
			if !c.dragging {
				c.startTimer()
			}
		}
		slog.Debug("play toggled", "state", c.state)
		s = c.snapshot()
	})
	return s, err
}

// SliderInput moves the cursor to year while the slider is dragged. The
// autoplay timer is held until SliderRelease.
func (c *Controller) SliderInput(ctx context.Context, year int) error {
	if err := c.checkYear(year); err != nil {
		return err
	}
	return c.submit(ctx, func() {
		c.dragging = true
		c.timer.Stop()
		c.cursor.Year = year
		c.redraw()
	})
}

// SliderRelease ends a slider drag and resumes autoplay when playing.
func (c *Controller) SliderRelease(ctx context.Context) error {
	return c.submit(ctx, func() {
		c.dragging = false
		if c.state == Playing {
			c.startTimer()
		}
	})
}

// SelectYear moves the cursor to year without touching the timer.
func (c *Controller) SelectYear(ctx context.Context, year int) error {
	if err := c.checkYear(year); err != nil {
		return err
	}
	return c.submit(ctx, func() {
		c.cursor.Year = year
		c.redraw()
	})
}

// SelectMonth moves the cursor to month (0 = January).
func (c *Controller) SelectMonth(ctx context.Context, month int) error {
	if month < 0 || month > 11 {
		return fmt.Errorf("%w: month %d not in 0..11", ErrOutOfRange, month)
	}
	return c.submit(ctx, func() {
		c.cursor.Month = month
		c.redraw()
	})
}

// SelectCountry moves the cursor to the country with ISO3 code iso.
func (c *Controller) SelectCountry(ctx context.Context, iso string) error {
	if !c.known[iso] {
		return fmt.Errorf("%w: %q", ErrUnknownCountry, iso)
	}
	return c.submit(ctx, func() {
		c.cursor.ISOCode = iso
		c.redraw()
	})
}

// Drag rotates the globe by a pointer delta.
func (c *Controller) Drag(ctx context.Context, dx, dy float64) error {
	return c.submit(ctx, func() { c.views.Globe.Rotate(dx, dy) })
}

// GlobeHover starts hovering the country drawn under key. It reports false
// when no such shape exists.
func (c *Controller) GlobeHover(ctx context.Context, key string, x, y float64) (bool, error) {
	var ok bool
	err := c.submit(ctx, func() { ok = c.views.Globe.PointerEnter(key, x, y, c.opts.Now()) })
	return ok, err
}

// GlobeLeave ends a globe hover.
func (c *Controller) GlobeLeave(ctx context.Context) error {
	return c.submit(ctx, func() { c.views.Globe.PointerLeave(c.opts.Now()) })
}

// BarHover starts hovering the bar for month ("Jan".."Dec").
func (c *Controller) BarHover(ctx context.Context, month string, x, y float64) (bool, error) {
	var ok bool
	err := c.submit(ctx, func() { ok = c.views.Bars.PointerEnter(month, x, y, c.opts.Now()) })
	return ok, err
}

// BarLeave ends a bar hover.
func (c *Controller) BarLeave(ctx context.Context) error {
	return c.submit(ctx, func() { c.views.Bars.PointerLeave(c.opts.Now()) })
}

// Render writes the named view's current frame to w.
func (c *Controller) Render(ctx context.Context, view string, w io.Writer) error {
	var r interface {
		Render(io.Writer, time.Time) error
	}
	switch view {
	case ViewGlobe:
		r = c.views.Globe
	case ViewBars:
		r = c.views.Bars
	case ViewArea:
		r = c.views.Area
	default:
		return fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	var err error
	if serr := c.submit(ctx, func() { err = r.Render(w, c.opts.Now()) }); serr != nil {
		return serr
	}
	return err
}
