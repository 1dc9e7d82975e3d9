package storage

import (
	"context"

	"osaka-mansion/models"
)

// RawSource yields unparsed rows of the transaction table.
type RawSource interface {
	ReadRaw(ctx context.Context) ([]*models.RawRecord, error)
}

// RecordSource yields typed records from a backend that already stores them
// in parsed form.
type RecordSource interface {
	FetchAll(ctx context.Context) ([]models.Record, error)
}

// RecordWriter is a sink that receives records in batches and is closed
// once at the end.
type RecordWriter interface {
	Write(records []models.Record) error
	Close() error
}
