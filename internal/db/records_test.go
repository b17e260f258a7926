package db

import (
	"context"
	"testing"
	"time"

	"github.com/forkmate/forkmate/internal/model"
)

func TestSyncRecordCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fork, _ := insertTestRepoPair(t, db)

	record := model.NewSyncRecord(fork.ID)
	record.BranchesSynced = 1
	record.CommitsTransferred = 7
	record.Status = model.StatusSuccess
	if err := db.InsertSyncRecord(ctx, record); err != nil {
		t.Fatalf("InsertSyncRecord() failed: %v", err)
	}

	history, err := db.ListSyncHistory(ctx, &fork.ID, nil, 10)
	if err != nil {
		t.Fatalf("ListSyncHistory() failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("ListSyncHistory() returned %d records, want 1", len(history))
	}
	got := history[0]
	if got.ID != record.ID || got.RepoID != fork.ID {
		t.Errorf("record ids = %+v", got)
	}
	if got.BranchesSynced != 1 || got.CommitsTransferred != 7 {
		t.Errorf("counters = %+v", got)
	}
	if got.Status != model.StatusSuccess {
		t.Errorf("Status = %q, want success", got.Status)
	}
	if got.SyncLinkID != nil {
		t.Errorf("SyncLinkID = %v, want nil", got.SyncLinkID)
	}
}

func TestSyncRecordErrorsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fork, _ := insertTestRepoPair(t, db)

	record := model.NewSyncRecord(fork.ID)
	record.BranchesFailed = 1
	record.Status = model.StatusFailed
	record.Errors = []string{"fast-forward failed on branch main: diverged"}
	if err := db.InsertSyncRecord(ctx, record); err != nil {
		t.Fatalf("InsertSyncRecord() failed: %v", err)
	}

	history, err := db.ListSyncHistory(ctx, &fork.ID, nil, 10)
	if err != nil {
		t.Fatalf("ListSyncHistory() failed: %v", err)
	}
	if len(history) != 1 || len(history[0].Errors) != 1 {
		t.Fatalf("history = %+v", history)
	}
	if history[0].Errors[0] != record.Errors[0] {
		t.Errorf("Errors[0] = %q", history[0].Errors[0])
	}
}

func TestListSyncHistoryOrderAndLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fork, upstream := insertTestRepoPair(t, db)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record := model.NewSyncRecord(fork.ID)
		record.StartedAt = base.Add(time.Duration(i) * time.Hour)
		record.FinishedAt = record.StartedAt.Add(time.Minute)
		record.CommitsTransferred = i
		if err := db.InsertSyncRecord(ctx, record); err != nil {
			t.Fatalf("InsertSyncRecord(%d) failed: %v", i, err)
		}
	}
	// A record for another repo must not leak into the filtered view.
	other := model.NewSyncRecord(upstream.ID)
	if err := db.InsertSyncRecord(ctx, other); err != nil {
		t.Fatalf("InsertSyncRecord(other) failed: %v", err)
	}

	history, err := db.ListSyncHistory(ctx, &fork.ID, nil, 2)
	if err != nil {
		t.Fatalf("ListSyncHistory() failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("ListSyncHistory() returned %d records, want 2", len(history))
	}
	if history[0].CommitsTransferred != 2 || history[1].CommitsTransferred != 1 {
		t.Errorf("history not newest first: %d, %d",
			history[0].CommitsTransferred, history[1].CommitsTransferred)
	}

	all, err := db.ListSyncHistory(ctx, nil, nil, 10)
	if err != nil {
		t.Fatalf("ListSyncHistory(nil) failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListSyncHistory(nil) returned %d records, want 4", len(all))
	}

	// The time floor keeps only records started at or after it.
	since := base.Add(time.Hour)
	recent, err := db.ListSyncHistory(ctx, &fork.ID, &since, 10)
	if err != nil {
		t.Fatalf("ListSyncHistory(since) failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("ListSyncHistory(since) returned %d records, want 2", len(recent))
	}
}

func TestBranchSnapshotUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fork, _ := insertTestRepoPair(t, db)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := &model.BranchSnapshot{
		RepoID:      fork.ID,
		Branch:      "main",
		LocalSHA:    "aaa111",
		UpstreamSHA: "bbb222",
		BehindCount: 5,
		AheadCount:  0,
		UpdatedAt:   now,
	}
	if err := db.UpsertBranchSnapshot(ctx, snap); err != nil {
		t.Fatalf("UpsertBranchSnapshot() failed: %v", err)
	}

	// Second upsert for the same branch replaces, not duplicates.
	snap.BehindCount = 0
	snap.LocalSHA = "bbb222"
	snap.UpdatedAt = now.Add(time.Hour)
	if err := db.UpsertBranchSnapshot(ctx, snap); err != nil {
		t.Fatalf("second UpsertBranchSnapshot() failed: %v", err)
	}

	dev := &model.BranchSnapshot{RepoID: fork.ID, Branch: "dev", UpdatedAt: now}
	if err := db.UpsertBranchSnapshot(ctx, dev); err != nil {
		t.Fatalf("UpsertBranchSnapshot(dev) failed: %v", err)
	}

	snaps, err := db.GetBranchSnapshots(ctx, fork.ID)
	if err != nil {
		t.Fatalf("GetBranchSnapshots() failed: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("GetBranchSnapshots() returned %d snapshots, want 2", len(snaps))
	}
	// Ordered by branch name.
	if snaps[0].Branch != "dev" || snaps[1].Branch != "main" {
		t.Errorf("branch order = %q, %q", snaps[0].Branch, snaps[1].Branch)
	}
	if snaps[1].BehindCount != 0 || snaps[1].LocalSHA != "bbb222" {
		t.Errorf("main snapshot not replaced: %+v", snaps[1])
	}
	if snaps[0].LocalSHA != "" {
		t.Errorf("dev LocalSHA = %q, want empty", snaps[0].LocalSHA)
	}
}
