package models

import (
	"encoding/json"
	"strconv"
)

// Stat is a numeric result that may be undefined, e.g. the mean of an empty
// set or the payback period of a property with no cash flow.
type Stat struct {
	Value float64
	Valid bool
}

// Some returns a defined Stat.
func Some(v float64) Stat { return Stat{Value: v, Valid: true} }

// NoData is the undefined Stat.
var NoData = Stat{}

// Format renders the value with the given precision, or "no data".
func (s Stat) Format(prec int) string {
	if !s.Valid {
		return "no data"
	}
	return strconv.FormatFloat(s.Value, 'f', prec, 64)
}

func (s Stat) String() string { return s.Format(2) }

// MarshalJSON encodes an undefined Stat as null.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON decodes null as an undefined Stat.
func (s *Stat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = NoData
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}

// Summary holds the overall statistics of a View.
type Summary struct {
	Count          int  `json:"count"`
	MeanUnitPrice  Stat `json:"mean_unit_price"`
	MeanTotalPrice Stat `json:"mean_total_price"`
	MeanArea       Stat `json:"mean_area"`
	MeanAge        Stat `json:"mean_age"`
	MeanDistance   Stat `json:"mean_distance"`
}

// WardStat holds per-ward means and the ward's record count.
type WardStat struct {
	Ward           string  `json:"ward"`
	Count          int     `json:"count"`
	MeanUnitPrice  float64 `json:"mean_unit_price"`
	MeanTotalPrice float64 `json:"mean_total_price"`
	MeanArea       float64 `json:"mean_area"`
	MeanAge        float64 `json:"mean_age"`
	MeanDistance   float64 `json:"mean_distance"`
}

// Bin is one equal-width histogram bucket, covering [Lower, Upper).
// The last bin of a histogram also includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// InsightReport bundles everything the presentation layer renders for one
// set of criteria.
type InsightReport struct {
	Criteria       Criteria    `json:"criteria"`
	DatasetSize    int         `json:"dataset_size"`
	Share          Stat        `json:"share_pct"`
	Summary        Summary     `json:"summary"`
	Wards          []WardStat  `json:"wards"`
	UnitPriceHist  []Bin       `json:"unit_price_histogram"`
	TotalPriceHist []Bin       `json:"total_price_histogram"`
	Bands          []BandYield `json:"bands"`
	Preview        []Record    `json:"preview"`
}

// ScatterPoint is one transaction on the area against unit price chart.
type ScatterPoint struct {
	Ward           string  `json:"ward"`
	Area           float64 `json:"area"`
	UnitPrice      float64 `json:"unit_price"`
	Age            float64 `json:"age"`
	StationMinutes float64 `json:"station_minutes"`
}

// SimulationInput holds the investment simulator inputs. Price and rent are
// in 万円; CostRatio is a fraction in [0,1].
type SimulationInput struct {
	Price     float64 `json:"price"`
	Rent      float64 `json:"rent"`
	CostRatio float64 `json:"cost_ratio"`
}

// SimulationResult holds the simulator outputs. PaybackYears is undefined
// when the annual cash flow is not positive.
type SimulationResult struct {
	GrossYield     float64 `json:"gross_yield_pct"`
	NetYield       float64 `json:"net_yield_pct"`
	AnnualCashflow float64 `json:"annual_cashflow"`
	PaybackYears   Stat    `json:"payback_years"`
}

// AreaBand is an area interval [Lower, Upper); the last band of a set is
// closed on both ends.
type AreaBand struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// BandYield is the estimated gross yield of one non-empty area band.
type BandYield struct {
	Band           AreaBand `json:"band"`
	Count          int      `json:"count"`
	MeanUnitPrice  float64  `json:"mean_unit_price"`
	EstimatedYield Stat     `json:"estimated_yield_pct"`
}
