package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"osaka-mansion/models"
	"osaka-mansion/utils"
)

// ErrInvalidRecord is returned when a row violates the dataset schema.
var ErrInvalidRecord = errors.New("invalid record")

// Cleaner turns RawRecords into validated Records. Any schema violation is
// fatal: the dataset is pre-cleaned, so a bad row means a bad file.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses raw rows in order and returns the typed records.
func (c *Cleaner) Clean(raw []*models.RawRecord) ([]models.Record, error) {
	result := make([]models.Record, 0, len(raw))

	for _, r := range raw {
		rec, err := c.parse(r)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}

	c.logger.Debug("[cleaner] Parsed %d records", len(result))
	return result, nil
}

// Validate checks the invariants of an already typed record.
func (c *Cleaner) Validate(r models.Record) error {
	if r.Ward == "" {
		return fmt.Errorf("%w: empty ward", ErrInvalidRecord)
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"area", r.Area},
		{"age", r.Age},
		{"station_minutes", r.StationMinutes},
		{"unit_price", r.UnitPrice},
		{"total_price", r.TotalPrice},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidRecord, f.name, f.v)
		}
	}
	return nil
}

func (c *Cleaner) parse(r *models.RawRecord) (models.Record, error) {
	rec := models.Record{Ward: normaliseText(r.Ward)}

	var err error
	if rec.Area, err = parseNumber("area", r.Area); err != nil {
		return rec, lineError(r.Line, err)
	}
	if rec.Age, err = parseNumber("age", r.Age); err != nil {
		return rec, lineError(r.Line, err)
	}
	if rec.StationMinutes, err = parseNumber("station_minutes", r.StationMinutes); err != nil {
		return rec, lineError(r.Line, err)
	}
	if rec.UnitPrice, err = parseNumber("unit_price", r.UnitPrice); err != nil {
		return rec, lineError(r.Line, err)
	}
	if rec.TotalPrice, err = parseNumber("total_price", r.TotalPrice); err != nil {
		return rec, lineError(r.Line, err)
	}

	if err := c.Validate(rec); err != nil {
		return rec, lineError(r.Line, err)
	}
	return rec, nil
}

// parseNumber accepts plain and thousands-separated decimals.
func parseNumber(field, raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrInvalidRecord, field)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidRecord, field, raw)
	}
	return v, nil
}

func lineError(line int, err error) error {
	return fmt.Errorf("line %d: %w", line, err)
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
