package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"osaka-mansion/models"
)

// CSVWriter exports records to a UTF-8 (with BOM) CSV file so spreadsheet
// tools keep the Japanese headers intact. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	enc    io.WriteCloser
	writer *csv.Writer
}

var _ RecordWriter = (*CSVWriter)(nil)

// ExportFileName returns the export file name for n records.
func ExportFileName(prefix string, n int) string {
	return fmt.Sprintf("%s_%d.csv", prefix, n)
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	enc := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(enc)

	if err := w.Write(Columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{file: f, enc: enc, writer: w}, nil
}

// Write appends records to the file.
func (c *CSVWriter) Write(records []models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if err := c.writer.Write(recordRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes the encoder and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.enc.Close(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush encoder: %w", err)
	}
	return c.file.Close()
}

// WriteCSV streams the header and records to w in the export format.
func WriteCSV(w io.Writer, records []models.Record) error {
	enc := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(enc)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return enc.Close()
}

// Export writes view to dir under the count-bearing export name and
// returns the file path.
func Export(dir, prefix string, view models.View) (string, error) {
	path := filepath.Join(dir, ExportFileName(prefix, view.Len()))

	w, err := NewCSVWriter(path)
	if err != nil {
		return "", err
	}
	if err := Save(w, view.Records()); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// Save writes records through w and closes it. w is closed even when the
// write fails.
func Save(w RecordWriter, records []models.Record) error {
	if err := w.Write(records); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func recordRow(r models.Record) []string {
	return []string{
		r.Ward,
		formatFloat(r.Area),
		formatFloat(r.Age),
		formatFloat(r.StationMinutes),
		formatFloat(r.UnitPrice),
		formatFloat(r.TotalPrice),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
