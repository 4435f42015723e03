package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
)

// ScanRun is one persisted screening run: what was scanned, with which
// strategy, and the full ranked result.
type ScanRun struct {
	ID         int64                   `json:"id"`
	Universe   string                  `json:"universe"`
	ConfigHash string                  `json:"config_hash"`
	Report     *contracts.ScreenReport `json:"report"`
	CreatedAt  time.Time               `json:"created_at"`
}

// Repository persists scan runs in Postgres. Storage is optional; the
// engine runs without it and callers skip persistence when no pool exists.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new scan-run repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the scan_runs table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS scan_runs (
			id          BIGSERIAL PRIMARY KEY,
			universe    TEXT NOT NULL,
			config_hash TEXT NOT NULL,
			rows        JSONB NOT NULL,
			excluded    JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS scan_runs_universe_created_idx
			ON scan_runs (universe, created_at DESC);
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create scan_runs schema: %w", err)
	}
	return nil
}

// SaveRun stores a completed screening run and returns its id.
func (r *Repository) SaveRun(ctx context.Context, universe, configHash string, report *contracts.ScreenReport) (int64, error) {
	rowsJSON, err := json.Marshal(report.Rows)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal rows: %w", err)
	}
	excludedJSON, err := json.Marshal(report.Excluded)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal exclusions: %w", err)
	}

	query := `
		INSERT INTO scan_runs (universe, config_hash, rows, excluded)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err = r.pool.QueryRow(ctx, query, universe, configHash, rowsJSON, excludedJSON).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan run: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recent run for a universe, or nil when none
// has been stored yet.
func (r *Repository) LatestRun(ctx context.Context, universe string) (*ScanRun, error) {
	query := `
		SELECT id, universe, config_hash, rows, excluded, created_at
		FROM scan_runs
		WHERE universe = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	run, err := r.scanRun(r.pool.QueryRow(ctx, query, universe))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// GetRun returns one run by id, or nil when it does not exist.
func (r *Repository) GetRun(ctx context.Context, id int64) (*ScanRun, error) {
	query := `
		SELECT id, universe, config_hash, rows, excluded, created_at
		FROM scan_runs
		WHERE id = $1
	`
	run, err := r.scanRun(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// ListRuns returns recent runs for a universe, newest first, without the
// row payloads.
func (r *Repository) ListRuns(ctx context.Context, universe string, limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, universe, config_hash, created_at
		FROM scan_runs
		WHERE universe = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, universe, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var run ScanRun
		if err := rows.Scan(&run.ID, &run.Universe, &run.ConfigHash, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan runs: %w", err)
	}
	return runs, nil
}

func (r *Repository) scanRun(row pgx.Row) (*ScanRun, error) {
	var run ScanRun
	var rowsJSON, excludedJSON []byte

	if err := row.Scan(&run.ID, &run.Universe, &run.ConfigHash, &rowsJSON, &excludedJSON, &run.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	report := &contracts.ScreenReport{}
	if err := json.Unmarshal(rowsJSON, &report.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	if err := json.Unmarshal(excludedJSON, &report.Excluded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exclusions: %w", err)
	}
	run.Report = report

	return &run, nil
}
