package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"osaka-mansion/models"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{Ward: "北区", Area: 65.5, Age: 10, StationMinutes: 4, UnitPrice: 80.123456, TotalPrice: 52000000},
		{Ward: "西成区", Area: 50, Age: 40, StationMinutes: 10, UnitPrice: 25, TotalPrice: 12500000},
		{Ward: "中央区, 本町", Area: 45, Age: 0, StationMinutes: 0, UnitPrice: 90, TotalPrice: 40500000},
	}
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "osaka_mansion_filtered_42.csv", ExportFileName("osaka_mansion_filtered", 42))
}

type failingWriter struct {
	err    error
	closed bool
}

func (f *failingWriter) Write([]models.Record) error { return f.err }
func (f *failingWriter) Close() error { f.closed = true; return nil }

func TestSaveClosesWriterOnFailure(t *testing.T) {
	boom := errors.New("disk full")
	w := &failingWriter{err: boom}

	err := Save(w, sampleRecords())
	assert.ErrorIs(t, err, boom)
	assert.True(t, w.closed, "writer is closed even when Write fails")

	ok := &failingWriter{}
	require.NoError(t, Save(ok, sampleRecords()))
	assert.True(t, ok.closed)
}

func TestNewCSVWriterReportsHeaderFlushError(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}

	_, err := NewCSVWriter("/dev/full")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: write header")
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	view := models.NewView(sampleRecords())

	path, err := Export(dir, "osaka_mansion_filtered", view)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "osaka_mansion_filtered_3.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\xef\xbb\xbf")), "export starts with a UTF-8 BOM")

	raw, err := NewCSVReader(path, "utf-8").ReadRaw(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, view.Len())

	for i, r := range raw {
		want := view.At(i)
		assert.Equal(t, want.Ward, r.Ward)
		assert.Equal(t, formatFloat(want.Area), r.Area)
		assert.Equal(t, formatFloat(want.Age), r.Age)
		assert.Equal(t, formatFloat(want.StationMinutes), r.StationMinutes)
		assert.Equal(t, formatFloat(want.UnitPrice), r.UnitPrice)
		assert.Equal(t, formatFloat(want.TotalPrice), r.TotalPrice)
		assert.Equal(t, i+2, r.Line)
	}
}

func TestWriteCSVEmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	raw, err := ParseRaw(context.Background(), &buf, "utf-8")
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestParseRawIgnoresExtraColumns(t *testing.T) {
	src := "種類,市区町村名,面積（㎡）,築年数,最寄駅：距離（分）,平米単価,取引価格（総額）,備考\n" +
		"中古,北区,65,10,4,80,52000000,\n"

	raw, err := ParseRaw(context.Background(), strings.NewReader(src), "utf-8")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "北区", raw[0].Ward)
	assert.Equal(t, "52000000", raw[0].TotalPrice)
}

func TestParseRawMissingColumn(t *testing.T) {
	src := "市区町村名,面積（㎡）\n北区,65\n"

	_, err := ParseRaw(context.Background(), strings.NewReader(src), "utf-8")
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), ColAge)
}

func TestParseRawRaggedRow(t *testing.T) {
	src := strings.Join(Columns, ",") + "\n北区,65,10\n"

	_, err := ParseRaw(context.Background(), strings.NewReader(src), "utf-8")
	assert.Error(t, err)
}

func TestParseRawShiftJIS(t *testing.T) {
	src := strings.Join(Columns, ",") + "\n北区,65,10,4,80,52000000\n"
	encoded, _, err := transform.String(japanese.ShiftJIS.NewEncoder(), src)
	require.NoError(t, err)

	raw, err := ParseRaw(context.Background(), strings.NewReader(encoded), "shift_jis")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "北区", raw[0].Ward)
}

func TestParseRawUnknownEncoding(t *testing.T) {
	_, err := ParseRaw(context.Background(), strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}
