package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInsertPlaceholders(t *testing.T) {
	recs := sampleRecords()[:2]

	query, args := buildInsert(recs, 400)

	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7),($8,$9,$10,$11,$12,$13,$14)")
	assert.Contains(t, query, "INSERT INTO transactions")
	require.Len(t, args, 14)
	assert.Equal(t, 400, args[0], "ord carries the dataset position")
	assert.Equal(t, "北区", args[1])
	assert.Equal(t, 401, args[7])
	assert.Equal(t, 12500000.0, args[13])
}

func TestBuildInsertSingleRow(t *testing.T) {
	query, args := buildInsert(sampleRecords()[2:], 0)

	assert.Equal(t, 1, strings.Count(query, "("+"$1"))
	assert.NotContains(t, query, "$8")
	assert.Len(t, args, 7)
}
