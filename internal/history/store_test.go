package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordSubmissionRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	record, err := store.RecordSubmission(ctx, 7, "7", "https://youtu.be/abc", "launch recap", "PENDING")
	if err != nil {
		t.Fatalf("RecordSubmission failed: %v", err)
	}
	if record.ID == 0 || record.VideoID != 7 || record.State != "PENDING" {
		t.Errorf("record = %+v", record)
	}

	fetched, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.SourceURL != "https://youtu.be/abc" || fetched.Title != "launch recap" {
		t.Errorf("fetched = %+v", fetched)
	}
}

func TestUpdateStateTracksOutcome(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	record, err := store.RecordSubmission(ctx, 7, "task-7", "https://youtu.be/abc", "", "PENDING")
	if err != nil {
		t.Fatalf("RecordSubmission failed: %v", err)
	}

	if err := store.UpdateState(ctx, "task-7", "SUCCESS", "Completed"); err != nil {
		t.Fatalf("UpdateState failed: %v", err)
	}
	updated, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.State != "SUCCESS" || updated.Detail != "Completed" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Error("updated_at precedes created_at")
	}

	err = store.UpdateState(ctx, "missing-task", "SUCCESS", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown task, got %v", err)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for i, url := range []string{"https://youtu.be/a", "https://youtu.be/b", "https://youtu.be/c"} {
		if _, err := store.RecordSubmission(ctx, int64(i+1), "", url, "", "PENDING"); err != nil {
			t.Fatalf("RecordSubmission %d failed: %v", i, err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].SourceURL != "https://youtu.be/c" {
		t.Errorf("first record = %+v, want newest submission", records[0])
	}
}

func TestStatsAggregatesOutcomes(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	seed := []struct {
		taskID string
		state  string
	}{
		{"t1", "SUCCESS"},
		{"t2", "SUCCESS"},
		{"t3", "FAILURE"},
		{"t4", "PROCESSING"},
	}
	for i, item := range seed {
		if _, err := store.RecordSubmission(ctx, int64(i+1), item.taskID, "https://youtu.be/x", "", item.state); err != nil {
			t.Fatalf("seed %s failed: %v", item.taskID, err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 4 || stats.Succeeded != 2 || stats.Failed != 1 || stats.Active != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPruneRemovesOldRecords(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.RecordSubmission(ctx, 1, "t1", "https://youtu.be/a", "", "SUCCESS"); err != nil {
		t.Fatalf("RecordSubmission failed: %v", err)
	}

	deleted, err := store.Prune(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("pruned %d fresh records", deleted)
	}

	deleted, err = store.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("pruned %d records, want 1", deleted)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
