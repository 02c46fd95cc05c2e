package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/controller"
)

var validate = validator.New()

// RegisterRoutes wires the dashboard page and its UI operations into the
// Fiber app.
func RegisterRoutes(app *fiber.App, ctl *controller.Controller, anomalies *climate.AnomalyIndex) {
	app.Get("/", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		state, err := ctl.State(ctx)
		if err != nil {
			return controllerError(err)
		}
		data := &dashboardData{
			State:     state,
			Years:     ctl.Years(),
			Countries: ctl.Countries(),
			Months:    climate.MonthAbbrevs,
		}
		if anomalies != nil {
			data.Anomaly, data.HasAnomaly = anomalies.Mean(state.Cursor.Year)
		}
		for name, dst := range map[string]*template.HTML{
			controller.ViewGlobe: &data.Globe,
			controller.ViewBars:  &data.Bars,
			controller.ViewArea:  &data.Area,
		} {
			svg, err := renderView(ctx, ctl, name)
			if err != nil {
				return controllerError(err)
			}
			*dst = template.HTML(svg)
		}

		var buf bytes.Buffer
		if err := renderDashboard(&buf, data); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	})

	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return respondState(c, ctl)
	})

	v1.Get("/years", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Years())
	})

	v1.Get("/countries", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Countries())
	})

	v1.Post("/play/toggle", func(c *fiber.Ctx) error {
		state, err := ctl.TogglePlay(c.UserContext())
		if err != nil {
			return controllerError(err)
		}
		return c.JSON(state)
	})

	v1.Post("/slider/input", func(c *fiber.Ctx) error {
		var q yearQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ctl.SliderInput(c.UserContext(), q.Year); err != nil {
			return controllerError(err)
		}
		return respondState(c, ctl)
	})

	v1.Post("/slider/release", func(c *fiber.Ctx) error {
		if err := ctl.SliderRelease(c.UserContext()); err != nil {
			return controllerError(err)
		}
		return respondState(c, ctl)
	})

	v1.Post("/cursor/year", func(c *fiber.Ctx) error {
		var q yearQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ctl.SelectYear(c.UserContext(), q.Year); err != nil {
			return controllerError(err)
		}
		return respondState(c, ctl)
	})

	v1.Post("/cursor/month", func(c *fiber.Ctx) error {
		var q monthQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ctl.SelectMonth(c.UserContext(), q.Month); err != nil {
			return controllerError(err)
		}
		return respondState(c, ctl)
	})

	v1.Post("/cursor/country", func(c *fiber.Ctx) error {
		q := countryQuery{ISO: strings.ToUpper(c.Query("iso"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ctl.SelectCountry(c.UserContext(), q.ISO); err != nil {
			return controllerError(err)
		}
		return respondState(c, ctl)
	})

	v1.Post("/globe/drag", func(c *fiber.Ctx) error {
		var q dragQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := ctl.Drag(c.UserContext(), q.DX, q.DY); err != nil {
			return controllerError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/globe/hover", func(c *fiber.Ctx) error {
		var q hoverQuery
		if err := q.bind(c, "iso"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ok, err := ctl.GlobeHover(c.UserContext(), q.Key, q.X, q.Y)
		if err != nil {
			return controllerError(err)
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no country shape for "+q.Key)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/globe/hover", func(c *fiber.Ctx) error {
		if err := ctl.GlobeLeave(c.UserContext()); err != nil {
			return controllerError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/bars/hover", func(c *fiber.Ctx) error {
		var q hoverQuery
		if err := q.bind(c, "month"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ok, err := ctl.BarHover(c.UserContext(), q.Key, q.X, q.Y)
		if err != nil {
			return controllerError(err)
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no bar for "+q.Key)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/bars/hover", func(c *fiber.Ctx) error {
		if err := ctl.BarLeave(c.UserContext()); err != nil {
			return controllerError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/views/:file", func(c *fiber.Ctx) error {
		name, ok := strings.CutSuffix(c.Params("file"), ".svg")
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown view")
		}
		svg, err := renderView(c.UserContext(), ctl, name)
		if err != nil {
			return controllerError(err)
		}
		c.Set(fiber.HeaderContentType, "image/svg+xml")
		return c.Send(svg)
	})

	v1.Get("/anomaly", func(c *fiber.Ctx) error {
		var q yearQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if anomalies == nil {
			return fiber.NewError(fiber.StatusNotFound, "no anomaly data loaded")
		}
		rows, ok := anomalies.Get(q.Year)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("no anomaly data for %d", q.Year))
		}
		mean, _ := anomalies.Mean(q.Year)
		return c.JSON(fiber.Map{
			"year":     q.Year,
			"anomalyC": mean,
			"rows":     rows,
		})
	})
}

func respondState(c *fiber.Ctx, ctl *controller.Controller) error {
	state, err := ctl.State(c.UserContext())
	if err != nil {
		return controllerError(err)
	}
	return c.JSON(state)
}

func renderView(ctx context.Context, ctl *controller.Controller, name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := ctl.Render(ctx, name, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// controllerError maps controller failures to HTTP errors.
func controllerError(err error) error {
	switch {
	case errors.Is(err, controller.ErrOutOfRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, controller.ErrUnknownCountry), errors.Is(err, controller.ErrUnknownView):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, controller.ErrStopped):
		return fiber.NewError(fiber.StatusServiceUnavailable, "dashboard is shutting down")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "dashboard operation failed")
	}
}

// yearQuery holds the year query parameter.
type yearQuery struct {
	Year int `validate:"gte=0"`
}

func (q *yearQuery) bind(c *fiber.Ctx) error {
	n, err := requiredInt(c, "year")
	if err != nil {
		return err
	}
	q.Year = n
	return validate.Struct(q)
}

// monthQuery holds the month query parameter, 0 for January.
type monthQuery struct {
	Month int `validate:"gte=0,lte=11"`
}

func (q *monthQuery) bind(c *fiber.Ctx) error {
	n, err := requiredInt(c, "month")
	if err != nil {
		return err
	}
	q.Month = n
	return validate.Struct(q)
}

// countryQuery holds the ISO3 code of a country selection.
type countryQuery struct {
	ISO string `validate:"required,len=3,alpha"`
}

// dragQuery holds a pointer drag delta in pixels.
type dragQuery struct {
	DX float64
	DY float64
}

func (q *dragQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.DX, err = requiredFloat(c, "dx"); err != nil {
		return err
	}
	q.DY, err = requiredFloat(c, "dy")
	return err
}

// hoverQuery holds the hovered shape and the pointer position.
type hoverQuery struct {
	Key string `validate:"required,max=64"`
	X   float64
	Y   float64
}

func (q *hoverQuery) bind(c *fiber.Ctx, keyParam string) error {
	q.Key = c.Query(keyParam)
	q.X = c.QueryFloat("x", 0)
	q.Y = c.QueryFloat("y", 0)
	return validate.Struct(q)
}

func requiredInt(c *fiber.Ctx, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, fmt.Errorf("%s query parameter is required", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return n, nil
}

func requiredFloat(c *fiber.Ctx, name string) (float64, error) {
	s := c.Query(name)
	if s == "" {
		return 0, fmt.Errorf("%s query parameter is required", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, nil
}
