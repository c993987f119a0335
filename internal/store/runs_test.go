package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/gtstats/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testRun(name string, startedAt time.Time, runErr string) models.JobRun {
	return models.JobRun{
		ID:         uuid.New().String(),
		Name:       name,
		StartedAt:  startedAt,
		EndedAt:    startedAt.Add(3 * time.Second),
		DurationMS: 3000,
		Error:      runErr,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, time.August, 1, 4, 0, 0, 0, time.UTC)
	older := testRun("meta", base, "")
	newer := testRun("profiles", base.Add(time.Hour), "remote exploded")

	for _, run := range []models.JobRun{older, newer} {
		if err := db.RecordRun(run); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].ID != newer.ID || runs[1].ID != older.ID {
		t.Errorf("Unexpected order: %s then %s", runs[0].Name, runs[1].Name)
	}
	if runs[0].Error != "remote exploded" {
		t.Errorf("Expected error to round-trip, got %q", runs[0].Error)
	}
	if runs[1].DurationMS != 3000 {
		t.Errorf("Expected duration to round-trip, got %d", runs[1].DurationMS)
	}
}

func TestListRunsLimit(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, time.August, 1, 4, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := db.RecordRun(testRun("meta", base.Add(time.Duration(i)*time.Minute), "")); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	runs, err := db.ListRuns(3)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("Expected 3 runs, got %d", len(runs))
	}
}

func TestListRunsByName(t *testing.T) {
	db := setupTestDB(t)

	base := time.Date(2026, time.August, 1, 4, 0, 0, 0, time.UTC)
	if err := db.RecordRun(testRun("meta", base, "")); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := db.RecordRun(testRun("profiles", base.Add(time.Minute), "")); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := db.ListRunsByName("meta", 10)
	if err != nil {
		t.Fatalf("ListRunsByName failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Name != "meta" {
		t.Errorf("Unexpected runs: %+v", runs)
	}

	runs, err = db.ListRunsByName("nonexistent", 10)
	if err != nil {
		t.Fatalf("ListRunsByName failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Expected no runs for unknown job, got %d", len(runs))
	}
}

func TestClearRuns(t *testing.T) {
	db := setupTestDB(t)

	if err := db.RecordRun(testRun("meta", time.Now().UTC(), "")); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := db.ClearRuns(); err != nil {
		t.Fatalf("ClearRuns failed: %v", err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Expected empty history, got %d runs", len(runs))
	}
}

func TestDuplicateRunID(t *testing.T) {
	db := setupTestDB(t)

	run := testRun("meta", time.Now().UTC(), "")
	if err := db.RecordRun(run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := db.RecordRun(run); err == nil {
		t.Error("Expected primary key violation, got nil")
	}
}
