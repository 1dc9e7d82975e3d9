package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"osaka-mansion/models"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// CSVReader reads the transaction table from a delimited text file.
type CSVReader struct {
	path     string
	encoding string
}

// NewCSVReader returns a reader for the file at path. encoding is "utf-8"
// (a leading BOM is stripped) or "shift_jis".
func NewCSVReader(path, encoding string) *CSVReader {
	return &CSVReader{path: path, encoding: encoding}
}

// ReadRaw reads every data row of the file.
func (r *CSVReader) ReadRaw(ctx context.Context) ([]*models.RawRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", r.path, err)
	}
	defer f.Close()

	return ParseRaw(ctx, f, r.encoding)
}

// ParseRaw decodes src and maps each row onto the required columns.
// Extra columns are ignored; a missing column is an error.
func ParseRaw(ctx context.Context, src io.Reader, encoding string) ([]*models.RawRecord, error) {
	decoded, err := decode(src, encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []*models.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, &models.RawRecord{
			Line:           line,
			Ward:           row[idx[ColWard]],
			Area:           row[idx[ColArea]],
			Age:            row[idx[ColAge]],
			StationMinutes: row[idx[ColDistance]],
			UnitPrice:      row[idx[ColUnitPrice]],
			TotalPrice:     row[idx[ColTotalPrice]],
		})
	}

	return rows, nil
}

func decode(src io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "-", "_")) {
	case "", "utf_8", "utf8", "utf_8_sig":
		return transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "shift_jis", "sjis", "cp932":
		return transform.NewReader(src, japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("csv: unsupported encoding %q", encoding)
	}
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("csv: %w %q", ErrMissingColumn, col)
		}
	}
	return idx, nil
}
