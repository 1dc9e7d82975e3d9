package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"osaka-mansion/models"
	"osaka-mansion/utils"
)

const (
	// HistogramBins is the bin count of the price distributions.
	HistogramBins = 50
	// PreviewRows is the number of leading records included in a report.
	PreviewRows = 20
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds the full report for criteria c over ds.
func (s *InsightService) Generate(ds *models.Dataset, c models.Criteria, sim *Simulator) *models.InsightReport {
	view := Filter(ds, c)

	report := &models.InsightReport{
		Criteria:       c,
		DatasetSize:    ds.Len(),
		Share:          Share(view, ds),
		Summary:        Summarize(view),
		Wards:          GroupByWard(view),
		UnitPriceHist:  Histogram(column(view, unitPrice), HistogramBins),
		TotalPriceHist: Histogram(column(view, totalPrice), HistogramBins),
		Bands:          sim.BandYields(view),
		Preview:        view.Head(PreviewRows),
	}

	s.logger.Debug("[insights] %d of %d records match, %d wards", view.Len(), ds.Len(), len(report.Wards))
	return report
}

// Summarize computes the overall means of v. Every mean of an empty view is
// NoData.
func Summarize(v models.View) models.Summary {
	sum := models.Summary{Count: v.Len()}
	if v.Len() == 0 {
		return sum
	}

	var unit, total, area, age, dist float64
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		unit += r.UnitPrice
		total += r.TotalPrice
		area += r.Area
		age += r.Age
		dist += r.StationMinutes
	}

	n := float64(v.Len())
	sum.MeanUnitPrice = models.Some(unit / n)
	sum.MeanTotalPrice = models.Some(total / n)
	sum.MeanArea = models.Some(area / n)
	sum.MeanAge = models.Some(age / n)
	sum.MeanDistance = models.Some(dist / n)
	return sum
}

// GroupByWard computes per-ward means and counts, ordered by mean unit price
// descending and then by ward name. Wards absent from v are not listed.
func GroupByWard(v models.View) []models.WardStat {
	groups := make(map[string]*models.WardStat)
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		g, ok := groups[r.Ward]
		if !ok {
			g = &models.WardStat{Ward: r.Ward}
			groups[r.Ward] = g
		}
		g.Count++
		g.MeanUnitPrice += r.UnitPrice
		g.MeanTotalPrice += r.TotalPrice
		g.MeanArea += r.Area
		g.MeanAge += r.Age
		g.MeanDistance += r.StationMinutes
	}

	out := make([]models.WardStat, 0, len(groups))
	for _, g := range groups {
		n := float64(g.Count)
		g.MeanUnitPrice /= n
		g.MeanTotalPrice /= n
		g.MeanArea /= n
		g.MeanAge /= n
		g.MeanDistance /= n
		out = append(out, *g)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanUnitPrice != out[j].MeanUnitPrice {
			return out[i].MeanUnitPrice > out[j].MeanUnitPrice
		}
		return out[i].Ward < out[j].Ward
	})
	return out
}

// Histogram splits values into n equal-width bins spanning their range.
func Histogram(values []float64, n int) []models.Bin {
	if len(values) == 0 || n < 1 {
		return []models.Bin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []models.Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]models.Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}

// Scatter returns the area and unit price of every record in v, in view
// order, with age and station distance for hover details.
func Scatter(v models.View) []models.ScatterPoint {
	out := make([]models.ScatterPoint, v.Len())
	for i := range out {
		r := v.At(i)
		out[i] = models.ScatterPoint{
			Ward:           r.Ward,
			Area:           r.Area,
			UnitPrice:      r.UnitPrice,
			Age:            r.Age,
			StationMinutes: r.StationMinutes,
		}
	}
	return out
}

type field func(models.Record) float64

func unitPrice(r models.Record) float64  { return r.UnitPrice }
func totalPrice(r models.Record) float64 { return r.TotalPrice }

func column(v models.View, f field) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = f(v.At(i))
	}
	return out
}

// Print renders the report for a terminal.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏢 OSAKA MANSION INVESTMENT ANALYSIS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Matching records   : \033[1m%d\033[0m of %d (%s%%)\n",
		r.Summary.Count, r.DatasetSize, r.Share.Format(1))
	fmt.Fprintf(w, "  Mean unit price    : %s 万円/㎡\n", r.Summary.MeanUnitPrice.Format(2))
	fmt.Fprintf(w, "  Mean total price   : %s 万円\n", manYen(r.Summary.MeanTotalPrice))
	fmt.Fprintf(w, "  Mean area          : %s ㎡\n", r.Summary.MeanArea.Format(1))
	fmt.Fprintf(w, "  Mean age           : %s years\n", r.Summary.MeanAge.Format(1))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Unit Price Ranking by Ward\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Wards) == 0 {
		fmt.Fprintf(w, "  No data\n")
	} else {
		top := r.Wards[0].MeanUnitPrice
		for i, ws := range r.Wards {
			bar := ""
			if top > 0 {
				bar = strings.Repeat("█", int(math.Round(ws.MeanUnitPrice/top*20)))
			}
			fmt.Fprintf(w, "  %2d. %s %-20s %6.2f (%d)\n",
				i+1, padRight(ws.Ward, 8), bar, ws.MeanUnitPrice, ws.Count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Estimated Gross Yield by Area Band\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Bands) == 0 {
		fmt.Fprintf(w, "  No data\n")
	}
	for _, b := range r.Bands {
		fmt.Fprintf(w, "  %s  mean %6.2f 万円/㎡  →  \033[1;32m%s%%\033[0m (%d)\n",
			padRight(b.Band.Label, 9), b.MeanUnitPrice, b.EstimatedYield.Format(2), b.Count)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// PrintSimulation renders a simulation result for a terminal.
func (s *InsightService) PrintSimulation(w io.Writer, in models.SimulationInput, res models.SimulationResult) {
	thin := strings.Repeat("─", 62)

	fmt.Fprintf(w, "\n\033[1;33m  Investment Simulation\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Purchase price     : %.0f 万円\n", in.Price)
	fmt.Fprintf(w, "  Monthly rent       : %.1f 万円\n", in.Rent)
	fmt.Fprintf(w, "  Annual cost ratio  : %.0f%%\n", in.CostRatio*100)
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Gross yield        : \033[1;32m%.2f%%\033[0m\n", res.GrossYield)
	fmt.Fprintf(w, "  Net yield          : \033[1;32m%.2f%%\033[0m\n", res.NetYield)
	fmt.Fprintf(w, "  Annual cash flow   : %.0f 万円\n", res.AnnualCashflow)
	if res.PaybackYears.Valid {
		fmt.Fprintf(w, "  Payback period     : %.1f years\n\n", res.PaybackYears.Value)
	} else {
		fmt.Fprintf(w, "  Payback period     : never (no positive cash flow)\n\n")
	}
}

// manYen converts a yen amount to 万円.
func manYen(s models.Stat) string {
	if !s.Valid {
		return s.Format(0)
	}
	return models.Some(s.Value / 10000).Format(0)
}

// padRight pads s with spaces to width display cells, counting CJK runes as two.
func padRight(s string, width int) string {
	cells := 0
	for _, r := range s {
		if utf8.RuneLen(r) > 1 {
			cells += 2
		} else {
			cells++
		}
	}
	if cells >= width {
		return s
	}
	return s + strings.Repeat(" ", width-cells)
}
