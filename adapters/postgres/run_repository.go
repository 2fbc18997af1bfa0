// Package postgres persists pipeline run records.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gobiome/domain/core"
	"gobiome/domain/run"
	"gobiome/internal/errors"
	"gobiome/ports"
)

// Connect opens a postgres connection pool and verifies it
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, nil
}

// schema holds the run store DDL. The diversity and significant-feature
// payloads are stored as JSONB rather than normalized tables; runs are
// written once and read whole.
const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id UUID PRIMARY KEY,
	method TEXT NOT NULL,
	significance_threshold DOUBLE PRECISION NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	total_features INTEGER NOT NULL,
	tested_features INTEGER NOT NULL,
	alpha JSONB,
	permanova JSONB,
	significant JSONB NOT NULL,
	fingerprint TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_started_at ON analysis_runs (started_at DESC);
`

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

var _ ports.RunRepository = (*RunRepositoryImpl)(nil)

// EnsureSchema creates the run store tables if they do not exist
func (r *RunRepositoryImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.DatabaseError("failed to create run schema", err)
	}
	return nil
}

// SaveRun persists a completed run record
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, record *run.Record) error {
	alpha, err := json.Marshal(record.Alpha)
	if err != nil {
		return errors.DatabaseError("failed to encode alpha report", err)
	}
	var permanova interface{}
	if record.Permanova != nil {
		raw, err := json.Marshal(record.Permanova)
		if err != nil {
			return errors.DatabaseError("failed to encode PERMANOVA result", err)
		}
		permanova = raw
	}
	significant, err := json.Marshal(record.Significant)
	if err != nil {
		return errors.DatabaseError("failed to encode significant features", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, method, significance_threshold, started_at, completed_at, total_features, tested_features, alpha, permanova, significant, fingerprint)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, string(record.ID), record.Method, record.SignificanceThreshold,
		record.StartedAt.Time(), record.CompletedAt.Time(),
		record.TotalFeatures, record.TestedFeatures,
		alpha, permanova, significant, record.Fingerprint.String())

	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to save run %s", record.ID), err)
	}
	return nil
}

// GetRun retrieves a run record by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*run.Record, error) {
	row := r.db.QueryRowxContext(ctx, `
		SELECT id, method, significance_threshold, started_at, completed_at, total_features, tested_features, alpha, permanova, significant, fingerprint
		FROM analysis_runs
		WHERE id = $1
	`, string(id))

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("run %s", id))
	}
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to load run %s", id), err)
	}
	return record, nil
}

// ListRuns returns the most recent runs, newest first
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*run.Record, error) {
	query := `
		SELECT id, method, significance_threshold, started_at, completed_at, total_features, tested_features, alpha, permanova, significant, fingerprint
		FROM analysis_runs
		ORDER BY started_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}
	defer rows.Close()

	var records []*run.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, errors.DatabaseError("failed to scan run row", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}
	return records, nil
}

// rowScanner abstracts Row and Rows for shared scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*run.Record, error) {
	var (
		record      run.Record
		id          string
		startedAt   sql.NullTime
		completedAt sql.NullTime
		alpha       []byte
		permanova   []byte
		significant []byte
		fingerprint string
	)
	err := row.Scan(
		&id,
		&record.Method,
		&record.SignificanceThreshold,
		&startedAt,
		&completedAt,
		&record.TotalFeatures,
		&record.TestedFeatures,
		&alpha,
		&permanova,
		&significant,
		&fingerprint,
	)
	if err != nil {
		return nil, err
	}

	record.ID = core.RunID(id)
	if startedAt.Valid {
		record.StartedAt = core.NewTimestamp(startedAt.Time)
	}
	if completedAt.Valid {
		record.CompletedAt = core.NewTimestamp(completedAt.Time)
	}
	if len(alpha) > 0 {
		if err := json.Unmarshal(alpha, &record.Alpha); err != nil {
			return nil, err
		}
	}
	if len(permanova) > 0 {
		if err := json.Unmarshal(permanova, &record.Permanova); err != nil {
			return nil, err
		}
	}
	if len(significant) > 0 {
		if err := json.Unmarshal(significant, &record.Significant); err != nil {
			return nil, err
		}
	}
	record.Fingerprint = core.Hash(fingerprint)
	return &record, nil
}
