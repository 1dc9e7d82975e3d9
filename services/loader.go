package services

import (
	"context"
	"fmt"

	"osaka-mansion/models"
	"osaka-mansion/storage"
	"osaka-mansion/utils"
)

// Loader builds the process-wide Dataset once at startup.
type Loader struct {
	logger  *utils.Logger
	cleaner *Cleaner
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger, cleaner: NewCleaner(logger)}
}

// LoadRaw reads and parses a raw table, such as a CSV file.
func (l *Loader) LoadRaw(ctx context.Context, src storage.RawSource) (*models.Dataset, error) {
	raw, err := src.ReadRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("loader: read: %w", err)
	}

	records, err := l.cleaner.Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	ds := models.NewDataset(records)
	l.logger.Info("[loader] Loaded %d records across %d wards", ds.Len(), len(ds.Wards()))
	return ds, nil
}

// LoadRecords reads typed records, such as rows of the PostgreSQL table,
// and validates them against the same invariants as LoadRaw.
func (l *Loader) LoadRecords(ctx context.Context, src storage.RecordSource) (*models.Dataset, error) {
	records, err := src.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch: %w", err)
	}

	for i, r := range records {
		if err := l.cleaner.Validate(r); err != nil {
			return nil, fmt.Errorf("loader: record %d: %w", i+1, err)
		}
	}

	ds := models.NewDataset(records)
	l.logger.Info("[loader] Loaded %d records across %d wards", ds.Len(), len(ds.Wards()))
	return ds, nil
}
