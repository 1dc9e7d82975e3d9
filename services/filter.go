package services

import (
	"osaka-mansion/models"
)

// Dashboard slider defaults.
var (
	DefaultArea     = models.Range{Min: 30, Max: 100}
	DefaultAge      = models.Range{Min: 0, Max: 35}
	DefaultDistance = models.Range{Min: 0, Max: 12}
)

// DefaultCriteria selects every ward with the dashboard's default ranges.
func DefaultCriteria() models.Criteria {
	return models.Criteria{
		Wards:    []string{models.AllWards},
		Area:     DefaultArea,
		Age:      DefaultAge,
		Distance: DefaultDistance,
	}
}

// Filter returns the records of ds matching every predicate of c, in
// dataset order.
func Filter(ds *models.Dataset, c models.Criteria) models.View {
	match := matcher(c)

	out := make([]models.Record, 0)
	for i := 0; i < ds.Len(); i++ {
		if r := ds.At(i); match(r) {
			out = append(out, r)
		}
	}
	return models.NewView(out)
}

// Refine filters an existing view again.
func Refine(v models.View, c models.Criteria) models.View {
	match := matcher(c)

	out := make([]models.Record, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if r := v.At(i); match(r) {
			out = append(out, r)
		}
	}
	return models.NewView(out)
}

// Matches reports whether r satisfies every predicate of c.
func Matches(r models.Record, c models.Criteria) bool {
	return matcher(c)(r)
}

// Share returns the view's size as a percentage of the dataset.
func Share(v models.View, ds *models.Dataset) models.Stat {
	if ds.Len() == 0 {
		return models.NoData
	}
	return models.Some(float64(v.Len()) / float64(ds.Len()) * 100)
}

func matcher(c models.Criteria) func(models.Record) bool {
	var wards map[string]struct{}
	if !c.AllWardsSelected() {
		wards = make(map[string]struct{}, len(c.Wards))
		for _, w := range c.Wards {
			wards[w] = struct{}{}
		}
	}

	return func(r models.Record) bool {
		if wards != nil {
			if _, ok := wards[r.Ward]; !ok {
				return false
			}
		}
		return c.Area.Contains(r.Area) &&
			c.Age.Contains(r.Age) &&
			c.Distance.Contains(r.StationMinutes)
	}
}
