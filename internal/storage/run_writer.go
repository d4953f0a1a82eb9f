package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// Run describes one scrape of a corpus.
type Run struct {
	ID              string
	Root            string
	Backend         string
	StartedAt       time.Time
	Duration        time.Duration
	FilesDiscovered int
	FilesScanned    int
	FilesSkipped    int
	Records         int
	Missed          int
}

// RunWriter stores runs and their functions.
type RunWriter struct {
	db *sql.DB
}

// NewRunWriter creates a RunWriter instance.
// DB must have schema already created via CreateSchema().
func NewRunWriter(db *sql.DB) *RunWriter {
	return &RunWriter{db: db}
}

// WriteRun stores run and all of its records in one transaction. A new UUID
// is assigned when run.ID is empty; the ID used is returned.
func (w *RunWriter) WriteRun(run *Run, records []extract.Record) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	tx, err := w.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns(
			"run_id", "root", "backend", "started_at", "duration_ms",
			"files_discovered", "files_scanned", "files_skipped", "records", "missed",
		).
		Values(
			run.ID,
			run.Root,
			run.Backend,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Duration.Milliseconds(),
			run.FilesDiscovered,
			run.FilesScanned,
			run.FilesSkipped,
			run.Records,
			run.Missed,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to write run %s: %w", run.ID, err)
	}

	// Build the query once with Squirrel, then get SQL for preparation
	sqlStr, _, err := sq.Insert("functions").
		Columns("run_id", "seq", "name", "text", "file_path", "language", "line").
		Values("", 0, "", "", "", "", 0).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.Prepare(sqlStr)
	if err != nil {
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(run.ID, i, r.Name, r.Text, r.File, r.Language, r.Line); err != nil {
			return "", fmt.Errorf("failed to insert function %s (%s:%d): %w", r.Name, r.File, r.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return run.ID, nil
}

// DeleteRun removes a run and, through the foreign key, its functions.
func (w *RunWriter) DeleteRun(runID string) error {
	_, err := sq.Delete("runs").
		Where(sq.Eq{"run_id": runID}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}

// PruneRuns keeps the newest keep runs of root and deletes the rest.
func (w *RunWriter) PruneRuns(root string, keep int) (int64, error) {
	newest := sq.Select("run_id").
		From("runs").
		Where(sq.Eq{"root": root}).
		OrderBy("started_at DESC", "rowid DESC").
		Limit(uint64(keep))
	newestSQL, newestArgs, err := newest.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL: %w", err)
	}

	res, err := sq.Delete("runs").
		Where(sq.Eq{"root": root}).
		Where(sq.Expr("run_id NOT IN ("+newestSQL+")", newestArgs...)).
		RunWith(w.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs of %s: %w", root, err)
	}
	return res.RowsAffected()
}
