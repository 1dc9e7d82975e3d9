package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osaka-mansion/config"
	"osaka-mansion/models"
)

func TestSummarizeMeans(t *testing.T) {
	v := models.NewView(sampleRecords())
	s := Summarize(v)

	require.Equal(t, 7, s.Count)
	var unit, total, area, age, dist float64
	for _, r := range sampleRecords() {
		unit += r.UnitPrice
		total += r.TotalPrice
		area += r.Area
		age += r.Age
		dist += r.StationMinutes
	}

	assert.True(t, s.MeanUnitPrice.Valid)
	assert.InDelta(t, unit/7, s.MeanUnitPrice.Value, 1e-9)
	assert.InDelta(t, total/7, s.MeanTotalPrice.Value, 1e-6)
	assert.InDelta(t, area/7, s.MeanArea.Value, 1e-9)
	assert.InDelta(t, age/7, s.MeanAge.Value, 1e-9)
	assert.InDelta(t, dist/7, s.MeanDistance.Value, 1e-9)
}

func TestSummarizeEmptyIsNoData(t *testing.T) {
	s := Summarize(models.NewView(nil))

	assert.Equal(t, 0, s.Count)
	for _, st := range []models.Stat{s.MeanUnitPrice, s.MeanTotalPrice, s.MeanArea, s.MeanAge, s.MeanDistance} {
		assert.False(t, st.Valid)
		assert.Equal(t, "no data", st.String())
	}
}

func TestGroupByWardOrderAndCounts(t *testing.T) {
	v := models.NewView(sampleRecords())
	groups := GroupByWard(v)

	require.Len(t, groups, 4)
	wards := make([]string, len(groups))
	total := 0
	for i, g := range groups {
		wards[i] = g.Ward
		total += g.Count
	}

	// 中央区 87.5, 天王寺区 70, 北区 70, 西成区 26.5; the tie is broken by name.
	assert.Equal(t, []string{"中央区", "北区", "天王寺区", "西成区"}, wards)
	assert.Equal(t, v.Len(), total)
	assert.InDelta(t, 87.5, groups[0].MeanUnitPrice, 1e-9)
	assert.InDelta(t, 82.5, groups[1].MeanArea, 1e-9)
	assert.Equal(t, 2, groups[3].Count)
}

func TestGroupByWardEmpty(t *testing.T) {
	assert.Empty(t, GroupByWard(models.NewView(nil)))
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 1, 2, 3, 4, 10}, 5)

	require.Len(t, bins, 5)
	assert.Equal(t, 0.0, bins[0].Lower)
	assert.Equal(t, 10.0, bins[4].Upper)
	assert.Equal(t, 2, bins[0].Count) // 0, 1
	assert.Equal(t, 2, bins[1].Count) // 2, 3
	assert.Equal(t, 1, bins[2].Count) // 4
	assert.Equal(t, 1, bins[4].Count, "the maximum lands in the last bin")

	assert.Empty(t, Histogram(nil, 5))

	flat := Histogram([]float64{3, 3, 3}, 5)
	require.Len(t, flat, 1)
	assert.Equal(t, 3, flat[0].Count)
}

func TestGenerateReport(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	sim := NewSimulator(config.DefaultSimulator())

	r := svc.Generate(sampleDataset(), DefaultCriteria(), sim)

	assert.Equal(t, 7, r.DatasetSize)
	assert.Equal(t, 5, r.Summary.Count)
	assert.InDelta(t, 500.0/7, r.Share.Value, 1e-9)
	assert.NotEmpty(t, r.Wards)
	assert.Len(t, r.UnitPriceHist, HistogramBins)
	assert.NotEmpty(t, r.Bands)
}

func TestPrintHandlesEmptyReport(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	sim := NewSimulator(config.DefaultSimulator())

	c := wideCriteria()
	c.Wards = []string{"存在しない区"}
	r := svc.Generate(sampleDataset(), c, sim)

	var buf bytes.Buffer
	svc.Print(&buf, r)

	out := buf.String()
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, "No data")
}

func TestScatterFollowsViewOrder(t *testing.T) {
	pts := Scatter(Filter(sampleDataset(), DefaultCriteria()))

	require.Len(t, pts, 5)
	assert.Equal(t, models.ScatterPoint{Ward: "北区", Area: 65, UnitPrice: 80, Age: 10, StationMinutes: 4}, pts[0])
	assert.Equal(t, "天王寺区", pts[3].Ward)
	assert.Equal(t, "西成区", pts[4].Ward)
	assert.Empty(t, Scatter(models.NewView(nil)))
}
