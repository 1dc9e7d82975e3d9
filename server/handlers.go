package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"osaka-mansion/models"
	"osaka-mansion/services"
	"osaka-mansion/storage"
)

// Default simulator inputs of the dashboard form.
const (
	defaultSimPrice   = 3000
	defaultSimRent    = 12
	defaultSimCostPct = 20
)

type optionsResponse struct {
	Wards    []string        `json:"wards"`
	Bounds   models.Bounds   `json:"bounds"`
	Defaults models.Criteria `json:"defaults"`
	Total    int             `json:"total"`
}

type recordsResponse struct {
	Count   int             `json:"count"`
	Share   models.Stat     `json:"share_pct"`
	Records []models.Record `json:"records"`
}

type simulateResponse struct {
	Input  models.SimulationInput  `json:"input"`
	Result models.SimulationResult `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": s.ds.Len()})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		Wards:    append([]string{models.AllWards}, s.ds.Wards()...),
		Bounds:   s.ds.Bounds(),
		Defaults: services.DefaultCriteria(),
		Total:    s.ds.Len(),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, services.Summarize(view))
}

func (s *Server) handleWards(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, services.GroupByWard(view))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filtered(w, r)
	if !ok {
		return
	}

	limit := services.PreviewRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, recordsResponse{
		Count:   view.Len(),
		Share:   services.Share(view, s.ds),
		Records: view.Head(limit),
	})
}

func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sim.BandYields(view))
}

func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, services.Scatter(view))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.insights.Generate(s.ds, c, s.sim))
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	in, res, err := s.simulate(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, simulateResponse{Input: in, Result: res})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filtered(w, r)
	if !ok {
		return
	}

	name := storage.ExportFileName(s.exportPrefix, view.Len())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))

	if err := storage.WriteCSV(w, view.Records()); err != nil {
		s.logger.Error("[server] Export failed: %v", err)
	}
}

func (s *Server) filtered(w http.ResponseWriter, r *http.Request) (models.View, bool) {
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return models.View{}, false
	}
	return services.Filter(s.ds, c), true
}

func (s *Server) simulate(q url.Values) (models.SimulationInput, models.SimulationResult, error) {
	price, err := floatParam(q, "price", defaultSimPrice)
	if err != nil {
		return models.SimulationInput{}, models.SimulationResult{}, err
	}
	rent, err := floatParam(q, "rent", defaultSimRent)
	if err != nil {
		return models.SimulationInput{}, models.SimulationResult{}, err
	}
	cost, err := floatParam(q, "cost", defaultSimCostPct)
	if err != nil {
		return models.SimulationInput{}, models.SimulationResult{}, err
	}

	in, err := s.sim.Input(price, rent, cost)
	if err != nil {
		return models.SimulationInput{}, models.SimulationResult{}, err
	}
	res, err := s.sim.Simulate(in)
	return in, res, err
}

// parseCriteria reads filter criteria from query parameters, starting from
// the dashboard defaults.
func parseCriteria(q url.Values) (models.Criteria, error) {
	c := services.DefaultCriteria()
	if wards, ok := q["ward"]; ok {
		c.Wards = nonEmpty(wards)
	}

	bounds := []struct {
		key string
		dst *float64
	}{
		{"area_min", &c.Area.Min},
		{"area_max", &c.Area.Max},
		{"age_min", &c.Age.Min},
		{"age_max", &c.Age.Max},
		{"dist_min", &c.Distance.Min},
		{"dist_max", &c.Distance.Max},
	}
	for _, b := range bounds {
		v, err := floatParam(q, b.key, *b.dst)
		if err != nil {
			return c, err
		}
		*b.dst = v
	}
	return c, nil
}

var errBadParam = errors.New("invalid query parameter")

func floatParam(q url.Values, key string, fallback float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w %s=%q", errBadParam, key, raw)
	}
	return v, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
