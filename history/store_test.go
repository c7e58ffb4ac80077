package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndRecentRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	run := Run{
		ID:          "run-1",
		ModelPath:   "model.json",
		LogPath:     "log.csv",
		StartedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalTraces: 2,
		Fitness:     0.9,
		Precision:   0.8,
		FScore:      0.85,
	}
	traces := []TraceRecord{
		{CaseID: "case-1", Fitness: 1.0, Fitting: true},
		{CaseID: "case-2", Fitness: 0.8, Fitting: false, MissingTokens: 1},
	}

	if err := store.RecordRun(run, traces); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != "run-1" || runs[0].Fitness != 0.9 {
		t.Errorf("unexpected run: %+v", runs[0])
	}
}

func TestExportRunJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	run := Run{ID: "run-1", ModelPath: "model.json", LogPath: "log.csv", StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.RecordRun(run, []TraceRecord{{CaseID: "case-1", Fitness: 1.0, Fitting: true}}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	data, err := store.ExportRunJSON("run-1")
	if err != nil {
		t.Fatalf("ExportRunJSON: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty JSON export")
	}
}
