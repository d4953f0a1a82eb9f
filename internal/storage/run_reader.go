package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// ErrRunNotFound is returned when no run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

var runColumns = []string{
	"run_id", "root", "backend", "started_at", "duration_ms",
	"files_discovered", "files_scanned", "files_skipped", "records", "missed",
}

var functionColumns = []string{"name", "text", "file_path", "language", "line"}

// RunReader reads runs and functions back out of SQLite.
type RunReader struct {
	db *sql.DB
}

// NewRunReader creates a RunReader using an existing database connection.
func NewRunReader(db *sql.DB) *RunReader {
	return &RunReader{db: db}
}

// GetRun loads one run by ID.
func (r *RunReader) GetRun(runID string) (*Run, error) {
	row := sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"run_id": runID}).
		RunWith(r.db).
		QueryRow()

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
	}
	return run, nil
}

// LatestRun returns the most recent run of root.
func (r *RunReader) LatestRun(root string) (*Run, error) {
	row := sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"root": root}).
		OrderBy("started_at DESC", "rowid DESC").
		Limit(1).
		RunWith(r.db).
		QueryRow()

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no runs for %s", ErrRunNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run, newest first.
func (r *RunReader) ListRuns() ([]*Run, error) {
	rows, err := sq.Select(runColumns...).
		From("runs").
		OrderBy("started_at DESC", "rowid DESC").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// ReadFunctions returns the records of a run in scan order.
func (r *RunReader) ReadFunctions(runID string) ([]extract.Record, error) {
	return r.queryFunctions(sq.Eq{"run_id": runID})
}

// FunctionsByName returns every record called name within a run.
func (r *RunReader) FunctionsByName(runID, name string) ([]extract.Record, error) {
	return r.queryFunctions(sq.Eq{"run_id": runID, "name": name})
}

func (r *RunReader) queryFunctions(where sq.Eq) ([]extract.Record, error) {
	rows, err := sq.Select(functionColumns...).
		From("functions").
		Where(where).
		OrderBy("seq").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query functions: %w", err)
	}
	defer rows.Close()

	var records []extract.Record
	for rows.Next() {
		var rec extract.Record
		if err := rows.Scan(&rec.Name, &rec.Text, &rec.File, &rec.Language, &rec.Line); err != nil {
			return nil, fmt.Errorf("failed to scan function: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating functions: %w", err)
	}
	return records, nil
}

func scanRun(row sq.RowScanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		durationMs int64
	)
	err := row.Scan(
		&run.ID, &run.Root, &run.Backend, &startedAt, &durationMs,
		&run.FilesDiscovered, &run.FilesScanned, &run.FilesSkipped, &run.Records, &run.Missed,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return &run, nil
}
