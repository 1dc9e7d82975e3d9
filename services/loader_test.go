package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osaka-mansion/models"
	"osaka-mansion/storage"
)

type fakeRecordSource struct {
	records []models.Record
	err     error
}

func (f fakeRecordSource) FetchAll(context.Context) ([]models.Record, error) {
	return f.records, f.err
}

const sampleCSV = "市区町村名,種類,面積（㎡）,築年数,最寄駅：距離（分）,平米単価,取引価格（総額）\n" +
	"北区,中古マンション等,65,10,4,80,52000000\n" +
	"西成区,中古マンション等,50,40,10,25,12500000\n" +
	"中央区,中古マンション等,45,5,3,90,40500000\n"

func TestLoadRawFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	l := NewLoader(newTestLogger())
	ds, err := l.LoadRaw(context.Background(), storage.NewCSVReader(path, "utf-8"))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"中央区", "北区", "西成区"}, ds.Wards())
	assert.Equal(t, models.Range{Min: 45, Max: 65}, ds.Bounds().Area)
	assert.Equal(t, "北区", ds.At(0).Ward, "load order is preserved")
}

func TestLoadRawMissingFileIsFatal(t *testing.T) {
	l := NewLoader(newTestLogger())
	_, err := l.LoadRaw(context.Background(), storage.NewCSVReader("/does/not/exist.csv", "utf-8"))
	assert.Error(t, err)
}

func TestLoadRawMissingColumnIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "市区町村名,面積（㎡）,築年数,平米単価,取引価格（総額）\n北区,65,10,80,52000000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	l := NewLoader(newTestLogger())
	_, err := l.LoadRaw(context.Background(), storage.NewCSVReader(path, "utf-8"))
	assert.ErrorIs(t, err, storage.ErrMissingColumn)
}

func TestLoadRecordsValidates(t *testing.T) {
	l := NewLoader(newTestLogger())

	ds, err := l.LoadRecords(context.Background(), fakeRecordSource{records: sampleRecords()})
	require.NoError(t, err)
	assert.Equal(t, 7, ds.Len())

	bad := sampleRecords()
	bad[2].UnitPrice = -3
	_, err = l.LoadRecords(context.Background(), fakeRecordSource{records: bad})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	down := errors.New("connection refused")
	_, err = l.LoadRecords(context.Background(), fakeRecordSource{err: down})
	assert.ErrorIs(t, err, down)
}
