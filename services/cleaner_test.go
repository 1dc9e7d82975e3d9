package services

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osaka-mansion/models"
	"osaka-mansion/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerWithWriter(io.Discard) }

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"65", 65, false},
		{" 72.5 ", 72.5, false},
		{"25,000,000", 25000000, false},
		{"0", 0, false},
		{"", 0, true},
		{"n/a", 0, true},
	}

	for _, tt := range tests {
		got, err := parseNumber("area", tt.raw)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidRecord, "parseNumber(%q)", tt.raw)
			continue
		}
		require.NoError(t, err, "parseNumber(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "parseNumber(%q)", tt.raw)
	}
}

func TestCleanerParsesRows(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawRecord{
		{Line: 2, Ward: "  北区 ", Area: "65", Age: "12", StationMinutes: "5", UnitPrice: "75.5", TotalPrice: "49,000,000"},
		{Line: 3, Ward: "西成区", Area: "40", Age: "30", StationMinutes: "9", UnitPrice: "30", TotalPrice: "12000000"},
	}

	recs, err := c.Clean(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, models.Record{
		Ward: "北区", Area: 65, Age: 12, StationMinutes: 5, UnitPrice: 75.5, TotalPrice: 49000000,
	}, recs[0])
	assert.Equal(t, "西成区", recs[1].Ward)
}

func TestCleanerRejectsEmptyWard(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawRecord{
		{Line: 7, Ward: "   ", Area: "65", Age: "12", StationMinutes: "5", UnitPrice: "75", TotalPrice: "100"},
	}

	_, err := c.Clean(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "line 7")
}

func TestCleanerRejectsNegative(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawRecord{
		{Line: 4, Ward: "北区", Area: "65", Age: "-1", StationMinutes: "5", UnitPrice: "75", TotalPrice: "100"},
	}

	_, err := c.Clean(raw)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "age")
}

func TestCleanerRejectsMalformed(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawRecord{
		{Line: 9, Ward: "北区", Area: "sixty", Age: "1", StationMinutes: "5", UnitPrice: "75", TotalPrice: "100"},
	}

	_, err := c.Clean(raw)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "line 9")
}
