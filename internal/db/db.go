// Package db provides the PostgreSQL run ledger that records the outcome of every manifest entry.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the ledger tables if they do not exist
const Schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	id           UUID PRIMARY KEY,
	sheet_id     TEXT NOT NULL,
	entries      INTEGER NOT NULL,
	status       TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS sync_outcomes (
	id            BIGSERIAL PRIMARY KEY,
	run_id        UUID NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
	entry_index   INTEGER NOT NULL,
	report_path   TEXT NOT NULL,
	hostname      TEXT,
	status        TEXT NOT NULL,
	error_kind    TEXT,
	failed_step   TEXT,
	error_message TEXT,
	columns_added INTEGER NOT NULL DEFAULT 0,
	table_created BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (run_id, entry_index)
);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and ensures the ledger schema exists
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// StartRun records a new synchronization run
func (db *DB) StartRun(ctx context.Context, runID uuid.UUID, sheetID string, entries int) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, sheet_id, entries, status)
		 VALUES ($1, $2, $3, $4)`,
		runID, sheetID, entries, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// RecordOutcome stores the result of one manifest entry
func (db *DB) RecordOutcome(ctx context.Context, runID uuid.UUID, o EntryOutcome) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sync_outcomes
		   (run_id, entry_index, report_path, hostname, status, error_kind, failed_step, error_message, columns_added, table_created)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10)
		 ON CONFLICT (run_id, entry_index) DO UPDATE
		   SET status = $5, error_kind = NULLIF($6, ''), failed_step = NULLIF($7, ''), error_message = NULLIF($8, ''),
		       columns_added = $9, table_created = $10`,
		runID, o.EntryIndex, o.ReportPath, o.Hostname, o.Status, o.ErrorKind, o.FailedStep, o.ErrorMessage,
		o.ColumnsAdded, o.TableCreated,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome for entry %d: %w", o.EntryIndex, err)
	}
	return nil
}

// CompleteRun marks a run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID; it returns nil when the run does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*SyncRun, error) {
	var run SyncRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, sheet_id, entries, status, started_at, completed_at
		 FROM sync_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.SheetID, &run.Entries, &run.Status, &run.StartedAt, &run.CompletedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// isNoRows reports whether err means the query matched nothing, however it was wrapped
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// ListOutcomes returns a run's entry outcomes in manifest order
func (db *DB) ListOutcomes(ctx context.Context, runID uuid.UUID) ([]EntryOutcome, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT entry_index, report_path, COALESCE(hostname, ''), status, COALESCE(error_kind, ''),
		        COALESCE(failed_step, ''), COALESCE(error_message, ''), columns_added, table_created
		 FROM sync_outcomes WHERE run_id = $1 ORDER BY entry_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []EntryOutcome
	for rows.Next() {
		var o EntryOutcome
		if err := rows.Scan(&o.EntryIndex, &o.ReportPath, &o.Hostname, &o.Status, &o.ErrorKind,
			&o.FailedStep, &o.ErrorMessage, &o.ColumnsAdded, &o.TableCreated); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}
	return outcomes, nil
}
