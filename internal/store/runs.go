package store

import (
	"github.com/cesargomez89/gtstats/internal/models"
)

// RecordRun inserts a completed scheduler run.
func (db *DB) RecordRun(run models.JobRun) error {
	query := `INSERT INTO runs (id, name, started_at, ended_at, duration_ms, error)
		VALUES (:id, :name, :started_at, :ended_at, :duration_ms, :error)`

	_, err := db.NamedExec(query, run)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]models.JobRun, error) {
	query := `SELECT id, name, started_at, ended_at, duration_ms, error
		FROM runs ORDER BY started_at DESC LIMIT ?`

	runs := []models.JobRun{}
	if err := db.Select(&runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListRunsByName returns the most recent runs for one job, newest first.
func (db *DB) ListRunsByName(name string, limit int) ([]models.JobRun, error) {
	query := `SELECT id, name, started_at, ended_at, duration_ms, error
		FROM runs WHERE name = ? ORDER BY started_at DESC LIMIT ?`

	runs := []models.JobRun{}
	if err := db.Select(&runs, query, name, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// ClearRuns drops the whole run history.
func (db *DB) ClearRuns() error {
	_, err := db.Exec(`DELETE FROM runs`)
	return err
}
