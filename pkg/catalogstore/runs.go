package catalogstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
)

// Run is the summary of one calculation run.
type Run struct {
	ID          string     `json:"id"`
	Project     string     `json:"project,omitempty"`
	Catalog     fault.Key  `json:"catalog"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Total       int        `json:"total"`
	Computed    int        `json:"computed"`
	Switching   int        `json:"switching"`
	Failed      int        `json:"failed"`
	Defaults    int        `json:"defaults"`

	// Report is an opaque encoded run report (CBOR).
	Report []byte `json:"-"`
}

// RunResult is the stored outcome of one test.
type RunResult struct {
	TestID  int      `json:"testId"`
	Kind    string   `json:"kind"`
	Psif    float64  `json:"psif"`
	Rf      *float64 `json:"rf,omitempty"`
	Xf      *float64 `json:"xf,omitempty"`
	Doubled bool     `json:"doubled,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewRunResult converts a calculator result.
func NewRunResult(r impedance.Result) RunResult {
	rr := RunResult{
		TestID:  r.Test.ID,
		Kind:    r.Kind.String(),
		Psif:    r.Psif,
		Doubled: r.Doubled,
	}
	if r.Impedance != nil {
		rf, xf := r.Impedance.R, r.Impedance.X
		rr.Rf, rr.Xf = &rf, &xf
	}
	if r.Err != nil {
		rr.Error = r.Err.Error()
	}
	return rr
}

// RecordRun stores a run with its results. An empty run ID is replaced by a
// new UUID.
func (s *Store) RecordRun(ctx context.Context, run *Run, results []RunResult) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, project, catalog_key, started_at, completed_at,
		                  total_count, computed_count, switching_count, failed_count, defaults_count, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Project, run.Catalog.String(), run.StartedAt, run.CompletedAt,
		run.Total, run.Computed, run.Switching, run.Failed, run.Defaults, run.Report)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, r := range results {
		var errMsg sql.NullString
		if r.Error != "" {
			errMsg = sql.NullString{String: r.Error, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_results (run_id, test_id, kind, psif, rf, xf, doubled, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, r.TestID, r.Kind, r.Psif, r.Rf, r.Xf, r.Doubled, errMsg); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", r.TestID, err)
		}
	}
	return tx.Commit()
}

const runColumns = `id, project, catalog_key, started_at, completed_at,
	total_count, computed_count, switching_count, failed_count, defaults_count`

func scanRun(row scanner) (Run, error) {
	var run Run
	var project sql.NullString
	var key string
	var completedAt sql.NullTime
	if err := row.Scan(&run.ID, &project, &key, &run.StartedAt, &completedAt,
		&run.Total, &run.Computed, &run.Switching, &run.Failed, &run.Defaults); err != nil {
		return Run{}, err
	}
	run.Project = project.String
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	k, err := fault.ParseKey(key)
	if err != nil {
		return Run{}, err
	}
	run.Catalog = k
	return run, nil
}

// GetRun reads a run, its report and its results.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, []RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = ?`, id).Scan(&run.Report); err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT test_id, kind, psif, rf, xf, doubled, error
		FROM run_results WHERE run_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		var rf, xf sql.NullFloat64
		var errMsg sql.NullString
		if err := rows.Scan(&r.TestID, &r.Kind, &r.Psif, &rf, &xf, &r.Doubled, &errMsg); err != nil {
			return nil, nil, err
		}
		if rf.Valid {
			r.Rf = &rf.Float64
		}
		if xf.Valid {
			r.Xf = &xf.Float64
		}
		r.Error = errMsg.String
		results = append(results, r)
	}
	return &run, results, rows.Err()
}

// ListRuns lists runs, most recent first.
func (s *Store) ListRuns(ctx context.Context, limit, offset int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs
		ORDER BY started_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run and its results.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	return err
}
