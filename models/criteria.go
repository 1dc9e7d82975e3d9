package models

import "sort"

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds holds the observed range of each filterable field in a Dataset.
type Bounds struct {
	Area     Range `json:"area"`
	Age      Range `json:"age"`
	Distance Range `json:"distance"`
}

// Criteria selects records by ward membership and three closed ranges.
// An empty Wards slice, or one containing AllWards, means every ward.
type Criteria struct {
	Wards    []string `json:"wards"`
	Area     Range    `json:"area"`
	Age      Range    `json:"age"`
	Distance Range    `json:"distance"`
}

// AllWardsSelected reports whether the ward filter is disabled.
func (c Criteria) AllWardsSelected() bool {
	if len(c.Wards) == 0 {
		return true
	}
	for _, w := range c.Wards {
		if w == AllWards {
			return true
		}
	}
	return false
}

func distinctWards(records []Record) []string {
	seen := make(map[string]struct{})
	wards := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Ward]; ok {
			continue
		}
		seen[r.Ward] = struct{}{}
		wards = append(wards, r.Ward)
	}
	sort.Strings(wards)
	return wards
}

func computeBounds(records []Record) Bounds {
	var b Bounds
	for i, r := range records {
		if i == 0 {
			b.Area = Range{r.Area, r.Area}
			b.Age = Range{r.Age, r.Age}
			b.Distance = Range{r.StationMinutes, r.StationMinutes}
			continue
		}
		b.Area = widen(b.Area, r.Area)
		b.Age = widen(b.Age, r.Age)
		b.Distance = widen(b.Distance, r.StationMinutes)
	}
	return b
}

func widen(r Range, v float64) Range {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}
