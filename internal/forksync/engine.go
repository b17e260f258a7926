package forksync

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/forkmate/forkmate/internal/model"
)

// DefaultConcurrency is how many forks sync at once when no limit is
// given.
const DefaultConcurrency = 8

// Pair names one fork to sync and the clone URL of its upstream.
type Pair struct {
	Repo        *model.Repo
	UpstreamURL string
}

// Syncer is the single-fork operation the engine fans out. It matches
// Synchronizer.SyncFork.
type Syncer interface {
	SyncFork(ctx context.Context, repo *model.Repo, upstreamCloneURL string, opts Options) Result
}

// Engine syncs many forks with bounded concurrency. Each pair must
// name a distinct local path; the engine does not serialize work on
// the same clone.
type Engine struct {
	syncer Syncer
	limit  int64

	// Progress, when set, receives each result as it completes. It is
	// called from worker goroutines and must be safe for concurrent
	// use.
	Progress func(Result)
}

// NewEngine wraps syncer with a concurrency limit. Limits below one
// fall back to DefaultConcurrency.
func NewEngine(syncer Syncer, limit int) *Engine {
	if limit < 1 {
		limit = DefaultConcurrency
	}
	return &Engine{syncer: syncer, limit: int64(limit)}
}

// SyncAll syncs every pair and returns one result per pair, in input
// order. A failing sync never stops the others. When ctx is cancelled,
// pairs not yet started are recorded as failed without running git.
func (e *Engine) SyncAll(ctx context.Context, pairs []Pair, opts Options) []Result {
	results := make([]Result, len(pairs))
	sem := semaphore.NewWeighted(e.limit)
	var wg sync.WaitGroup

	for i, pair := range pairs {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = skippedResult(pair, opts, err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			res := e.syncer.SyncFork(ctx, pair.Repo, pair.UpstreamURL, opts)
			results[i] = res
			if e.Progress != nil {
				e.Progress(res)
			}
		}()
	}

	wg.Wait()
	return results
}

// skippedResult records a sync that never started.
func skippedResult(pair Pair, opts Options, err error) Result {
	record := model.NewSyncRecord(pair.Repo.ID)
	record.BranchesFailed = 1
	record.Status = model.StatusFailed
	record.Errors = append(record.Errors, err.Error())
	return Result{RepoFullName: pair.Repo.FullName, Record: record, DryRun: opts.DryRun}
}
