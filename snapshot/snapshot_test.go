package snapshot

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osaka-mansion/models"
)

func criteria() models.Criteria {
	return models.Criteria{
		Wards:    []string{models.AllWards},
		Area:     models.Range{Min: 30, Max: 100},
		Age:      models.Range{Min: 0, Max: 35},
		Distance: models.Range{Min: 0, Max: 12.5},
	}
}

func TestTargetsOverviewOnly(t *testing.T) {
	targets := Targets("http://127.0.0.1:8501/", criteria(), []string{"北区"}, false)

	require.Len(t, targets, 1)
	assert.Equal(t, "overview", targets[0].Name)
	assert.True(t, strings.HasPrefix(targets[0].URL, "http://127.0.0.1:8501/?"))

	u, err := url.Parse(targets[0].URL)
	require.NoError(t, err)
	assert.Equal(t, models.AllWards, u.Query().Get("ward"))
	assert.Equal(t, "12.5", u.Query().Get("dist_max"))
}

func TestTargetsPerWard(t *testing.T) {
	targets := Targets("http://localhost:8501", criteria(), []string{"北区", "西成区"}, true)

	require.Len(t, targets, 3)
	assert.Equal(t, "北区", targets[1].Name)

	u, err := url.Parse(targets[2].URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"西成区"}, u.Query()["ward"])
	assert.Equal(t, "30", u.Query().Get("area_min"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "北区.png", FileName("北区"))
	assert.Equal(t, "a_b_c.png", FileName("a/b:c"))
	assert.Equal(t, "snapshot.png", FileName("  "))
}
