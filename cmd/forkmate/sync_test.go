package main

import (
	"context"
	"testing"

	"github.com/forkmate/forkmate/internal/credential"
	"github.com/forkmate/forkmate/internal/forksync"
	"github.com/forkmate/forkmate/internal/model"
)

func TestTallyResults(t *testing.T) {
	mk := func(status model.SyncStatus) forksync.Result {
		rec := model.NewSyncRecord(model.NewRepoID())
		rec.Status = status
		return forksync.Result{RepoFullName: "octocat/widget", Record: rec}
	}

	results := []forksync.Result{
		mk(model.StatusSuccess),
		mk(model.StatusFailed),
		mk(model.StatusSkipped),
		mk(model.StatusSuccess),
		mk(model.StatusPartialSuccess),
	}

	synced, failed, skipped := tallyResults(results)
	if synced != 2 || failed != 1 || skipped != 1 {
		t.Errorf("tallyResults = %d synced, %d failed, %d skipped; want 2, 1, 1", synced, failed, skipped)
	}
}

func TestUpstreamResolverFallback(t *testing.T) {
	catalog := testCatalog(t)
	resolver := newUpstreamResolver(catalog, credential.NewMemory())
	ctx := context.Background()

	fork := model.NewRepo("octocat/widget", model.NewHostID(), "https://github.com/octocat/widget.git", "main", model.SourceAPI)
	fork.IsFork = true
	fork.UpstreamFullName = "upstream/widget"

	// The fork's host is not in the catalog, so the public URL form
	// is all we can offer.
	got := resolver.cloneURL(ctx, fork)
	if want := "https://github.com/upstream/widget.git"; got != want {
		t.Errorf("cloneURL = %q, want %q", got, want)
	}
}

func TestUpstreamResolverMalformedName(t *testing.T) {
	catalog := testCatalog(t)
	resolver := newUpstreamResolver(catalog, credential.NewMemory())

	fork := model.NewRepo("octocat/widget", model.NewHostID(), "https://github.com/octocat/widget.git", "main", model.SourceAPI)
	fork.UpstreamFullName = "widget"

	got := resolver.cloneURL(context.Background(), fork)
	if want := "https://github.com/widget.git"; got != want {
		t.Errorf("cloneURL = %q, want %q", got, want)
	}
}
