package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"osaka-mansion/config"
	"osaka-mansion/models"
)

// ErrInvalidInput is returned for simulator inputs outside their domain.
var ErrInvalidInput = errors.New("invalid simulation input")

// DefaultBands are the area bands of the yield comparison.
var DefaultBands = []models.AreaBand{
	{Label: "30-50㎡", Lower: 30, Upper: 50},
	{Label: "50-70㎡", Lower: 50, Upper: 70},
	{Label: "70-100㎡", Lower: 70, Upper: 100},
}

var (
	months  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Simulator computes rental yield metrics. It does not depend on the dataset
// except for the band table, which reads a View.
type Simulator struct {
	cfg   config.SimulatorConfig
	bands []models.AreaBand
}

// NewSimulator creates a Simulator with the default area bands.
func NewSimulator(cfg config.SimulatorConfig) *Simulator {
	return &Simulator{cfg: cfg, bands: DefaultBands}
}

// Config returns the simulator constants.
func (s *Simulator) Config() config.SimulatorConfig { return s.cfg }

// Bands returns the area bands used by BandYields.
func (s *Simulator) Bands() []models.AreaBand {
	out := make([]models.AreaBand, len(s.bands))
	copy(out, s.bands)
	return out
}

// Input checks user-facing values against the configured widget bounds and
// converts the cost percentage into a ratio.
func (s *Simulator) Input(price, rent, costPct float64) (models.SimulationInput, error) {
	if err := within("price", price, s.cfg.PriceMin, s.cfg.PriceMax); err != nil {
		return models.SimulationInput{}, err
	}
	if err := within("rent", rent, s.cfg.RentMin, s.cfg.RentMax); err != nil {
		return models.SimulationInput{}, err
	}
	if err := within("cost", costPct, s.cfg.CostMinPct, s.cfg.CostMaxPct); err != nil {
		return models.SimulationInput{}, err
	}

	ratio := decimal.NewFromFloat(costPct).Div(hundred).InexactFloat64()
	return models.SimulationInput{Price: price, Rent: rent, CostRatio: ratio}, nil
}

// Simulate computes gross and net yield, annual cash flow and the payback
// period. Payback is NoData when the cash flow is not positive.
func (s *Simulator) Simulate(in models.SimulationInput) (models.SimulationResult, error) {
	if err := checkDomain(in); err != nil {
		return models.SimulationResult{}, err
	}

	price := decimal.NewFromFloat(in.Price)
	annualRent := decimal.NewFromFloat(in.Rent).Mul(months)
	cashflow := annualRent.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(in.CostRatio)))

	res := models.SimulationResult{
		GrossYield:     annualRent.Div(price).Mul(hundred).InexactFloat64(),
		NetYield:       cashflow.Div(price).Mul(hundred).InexactFloat64(),
		AnnualCashflow: cashflow.InexactFloat64(),
		PaybackYears:   models.NoData,
	}
	if cashflow.Sign() > 0 {
		res.PaybackYears = models.Some(price.Div(cashflow).InexactFloat64())
	}
	return res, nil
}

// BandYields buckets v by area and estimates each non-empty band's gross
// yield for a reference unit:
//
//	(ReferenceRent × 12) / (mean unit price × ReferenceArea) × 100
func (s *Simulator) BandYields(v models.View) []models.BandYield {
	sums := make([]float64, len(s.bands))
	counts := make([]int, len(s.bands))

	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		if b := s.bandOf(r.Area); b >= 0 {
			sums[b] += r.UnitPrice
			counts[b]++
		}
	}

	out := make([]models.BandYield, 0, len(s.bands))
	for i, band := range s.bands {
		if counts[i] == 0 {
			continue
		}
		mean := sums[i] / float64(counts[i])
		by := models.BandYield{
			Band:           band,
			Count:          counts[i],
			MeanUnitPrice:  mean,
			EstimatedYield: models.NoData,
		}
		if denom := mean * s.cfg.ReferenceArea; denom > 0 {
			by.EstimatedYield = models.Some(s.cfg.ReferenceRent * 12 / denom * 100)
		}
		out = append(out, by)
	}
	return out
}

// bandOf returns the index of the band containing area, or -1. Bands are
// left-closed and right-open except the last, which is closed.
func (s *Simulator) bandOf(area float64) int {
	last := len(s.bands) - 1
	for i, b := range s.bands {
		if area < b.Lower {
			continue
		}
		if area < b.Upper || (i == last && area == b.Upper) {
			return i
		}
	}
	return -1
}

func checkDomain(in models.SimulationInput) error {
	for _, v := range []float64{in.Price, in.Rent, in.CostRatio} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidInput)
		}
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive, got %v", ErrInvalidInput, in.Price)
	}
	if in.Rent <= 0 {
		return fmt.Errorf("%w: rent must be positive, got %v", ErrInvalidInput, in.Rent)
	}
	if in.CostRatio < 0 || in.CostRatio > 1 {
		return fmt.Errorf("%w: cost ratio must be within [0,1], got %v", ErrInvalidInput, in.CostRatio)
	}
	return nil
}

func within(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s must be between %v and %v, got %v", ErrInvalidInput, name, lo, hi, v)
	}
	return nil
}
