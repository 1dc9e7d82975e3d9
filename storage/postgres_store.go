package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"osaka-mansion/models"
	"osaka-mansion/utils"
)

const insertBatchSize = 200

// PostgresStore keeps the transaction table in PostgreSQL as an alternative
// dataset source. Rows are read back in the order they were imported.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to accept
// connections, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id              SERIAL PRIMARY KEY,
			ord             INTEGER          NOT NULL,
			ward            TEXT             NOT NULL,
			area            DOUBLE PRECISION NOT NULL CHECK (area >= 0),
			age             DOUBLE PRECISION NOT NULL CHECK (age >= 0),
			station_minutes DOUBLE PRECISION NOT NULL CHECK (station_minutes >= 0),
			unit_price      DOUBLE PRECISION NOT NULL CHECK (unit_price >= 0),
			total_price     DOUBLE PRECISION NOT NULL CHECK (total_price >= 0)
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_ord  ON transactions(ord);
		CREATE INDEX IF NOT EXISTS idx_transactions_ward ON transactions(ward);
	`)
	return err
}

// WriteContext replaces the table contents with records inside one
// transaction.
func (ps *PostgresStore) WriteContext(ctx context.Context, records []models.Record) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(records); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		query, args := buildInsert(records[i:end], i)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// buildInsert returns a multi-row INSERT for batch whose first record has
// dataset position offset.
func buildInsert(batch []models.Record, offset int) (string, []any) {
	const cols = 7
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			offset+idx, r.Ward, r.Area, r.Age, r.StationMinutes, r.UnitPrice, r.TotalPrice)
	}

	query := fmt.Sprintf(`
		INSERT INTO transactions (ord, ward, area, age, station_minutes, unit_price, total_price)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	return query, valueArgs
}

// FetchAll retrieves all stored transactions in import order.
func (ps *PostgresStore) FetchAll(ctx context.Context) ([]models.Record, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT ward, area, age, station_minutes, unit_price, total_price
		FROM transactions
		ORDER BY ord, id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(
			&r.Ward, &r.Area, &r.Age, &r.StationMinutes, &r.UnitPrice, &r.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
