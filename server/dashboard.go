package server

import (
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"osaka-mansion/config"
	"osaka-mansion/models"
	"osaka-mansion/services"
	"osaka-mansion/storage"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"stat":   func(s models.Stat, prec int) string { return s.Format(prec) },
	"num":    func(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) },
	"manYen": func(v float64) string { return strconv.FormatFloat(v/10000, 'f', 0, 64) },
	"manYenStat": func(s models.Stat) string {
		if !s.Valid {
			return s.Format(0)
		}
		return strconv.FormatFloat(s.Value/10000, 'f', 0, 64)
	},
	"width": func(v, max float64) string {
		if max <= 0 {
			return "0"
		}
		return strconv.FormatFloat(v/max*100, 'f', 1, 64)
	},
	"binMax": func(bins []models.Bin) float64 {
		m := 0
		for _, b := range bins {
			if b.Count > m {
				m = b.Count
			}
		}
		return float64(m)
	},
	"float": func(i int) float64 { return float64(i) },
}).Parse(dashboardHTML))

type wardOption struct {
	Name     string
	Selected bool
}

type dashboardPage struct {
	Report     *models.InsightReport
	Wards      []wardOption
	TopPrice   float64
	Preview    []models.Record
	Scatter    scatterPlot
	Sim        *simulateResponse
	SimError   string
	SimConfig  config.SimulatorConfig
	Bands      []models.AreaBand
	Price      string
	Rent       string
	Cost       string
	ExportURL  string
	ExportName string
}

// Scatter chart geometry in SVG user units.
const (
	plotLeft   = 48.0
	plotRight  = 600.0
	plotTop    = 20.0
	plotBottom = 320.0
)

var wardPalette = []string{
	"#4a90d9", "#e4572e", "#29bf12", "#ffc914", "#8e44ad", "#17becf",
	"#d62728", "#7f7f7f", "#bcbd22", "#ff7f0e", "#2ca02c", "#9467bd",
}

type scatterDot struct {
	X, Y  float64
	Color string
	Title string
}

type scatterLegend struct {
	Ward  string
	Color string
}

type scatterPlot struct {
	Dots   []scatterDot
	Legend []scatterLegend
	XMax   float64
	YMax   float64
}

// newScatterPlot lays points out on a chart whose axes start at zero. Colors
// follow the ward's position in wards so they are stable across filters.
func newScatterPlot(points []models.ScatterPoint, wards []string) scatterPlot {
	plot := scatterPlot{Dots: make([]scatterDot, 0, len(points))}
	if len(points) == 0 {
		return plot
	}

	colors := make(map[string]string, len(wards))
	for i, w := range wards {
		colors[w] = wardPalette[i%len(wardPalette)]
	}

	for _, p := range points {
		if p.Area > plot.XMax {
			plot.XMax = p.Area
		}
		if p.UnitPrice > plot.YMax {
			plot.YMax = p.UnitPrice
		}
	}
	xMax, yMax := plot.XMax, plot.YMax
	if xMax <= 0 {
		xMax = 1
	}
	if yMax <= 0 {
		yMax = 1
	}

	seen := make(map[string]bool)
	for _, p := range points {
		color := colors[p.Ward]
		if color == "" {
			color = wardPalette[0]
		}
		plot.Dots = append(plot.Dots, scatterDot{
			X:     plotLeft + p.Area/xMax*(plotRight-plotLeft),
			Y:     plotBottom - p.UnitPrice/yMax*(plotBottom-plotTop),
			Color: color,
			Title: fmt.Sprintf("%s %.1f㎡ %.2f万円/㎡ 築%.0f年 駅%.0f分",
				p.Ward, p.Area, p.UnitPrice, p.Age, p.StationMinutes),
		})
		if !seen[p.Ward] {
			seen[p.Ward] = true
			plot.Legend = append(plot.Legend, scatterLegend{Ward: p.Ward, Color: color})
		}
	}
	return plot
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := parseCriteria(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := s.insights.Generate(s.ds, c, s.sim)
	page := dashboardPage{
		Report:     report,
		Wards:      wardOptions(append([]string{models.AllWards}, s.ds.Wards()...), c),
		Preview:    report.Preview,
		Scatter:    newScatterPlot(services.Scatter(services.Filter(s.ds, c)), s.ds.Wards()),
		SimConfig:  s.sim.Config(),
		Bands:      s.sim.Bands(),
		Price:      valueOr(q.Get("price"), defaultSimPrice),
		Rent:       valueOr(q.Get("rent"), defaultSimRent),
		Cost:       valueOr(q.Get("cost"), defaultSimCostPct),
		ExportURL:  "/api/export?" + r.URL.RawQuery,
		ExportName: storage.ExportFileName(s.exportPrefix, report.Summary.Count),
	}
	if len(report.Wards) > 0 {
		page.TopPrice = report.Wards[0].MeanUnitPrice
	}

	if in, res, err := s.simulate(q); err != nil {
		page.SimError = err.Error()
	} else {
		page.Sim = &simulateResponse{Input: in, Result: res}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, page); err != nil {
		s.logger.Error("[server] Render dashboard: %v", err)
	}
}

func wardOptions(names []string, c models.Criteria) []wardOption {
	selected := make(map[string]bool, len(c.Wards))
	for _, w := range c.Wards {
		selected[w] = true
	}
	if len(c.Wards) == 0 {
		selected[models.AllWards] = true
	}

	out := make([]wardOption, len(names))
	for i, n := range names {
		out[i] = wardOption{Name: n, Selected: selected[n]}
	}
	return out
}

func valueOr(raw string, fallback float64) string {
	if raw != "" {
		return raw
	}
	return strconv.FormatFloat(fallback, 'f', -1, 64)
}
