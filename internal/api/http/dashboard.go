package httpapi

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/controller"
)

//go:embed templates/*.html
var templatesFS embed.FS

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	// signed formats an anomaly as "+0.12℃".
	"signed": func(v float64) string {
		s := strconv.FormatFloat(v, 'f', 2, 64)
		if v >= 0 {
			s = "+" + s
		}
		return s + "℃"
	},
}

func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.New("dashboard").Funcs(funcs).ParseFS(sub, "*.html")
	return err
}

// LoadTemplates parses the embedded dashboard page. Call it during startup;
// if it fails, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(templatesFS, "templates")
}

// dashboardData is the view model of the dashboard page.
type dashboardData struct {
	State     controller.Snapshot
	Years     []int
	Countries []climate.Country
	Months    []string

	HasAnomaly bool
	Anomaly    float64

	Globe template.HTML
	Bars  template.HTML
	Area  template.HTML
}

func renderDashboard(w io.Writer, data *dashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call httpapi.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
