// Package forksync pulls upstream changes into fork clones.
//
// A Synchronizer drives one fork at a time through git: ensure a local
// clone exists, ensure an "upstream" remote points at the parent,
// fetch, and fold upstream commits into the default branch with the
// configured merge strategy before pushing back to origin. The Engine
// fans SyncFork out over many forks with bounded concurrency.
package forksync

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/forkmate/forkmate/internal/git"
	"github.com/forkmate/forkmate/internal/model"
)

// Options tunes a sync run.
type Options struct {
	// CloneBase is where repos without a known local path get cloned,
	// as CloneBase/<repo name>.
	CloneBase string

	// Strategy picks how upstream commits are folded in.
	Strategy model.MergeStrategy

	// DryRun reports what would happen without cloning, fetching, or
	// touching any branch.
	DryRun bool
}

// Result pairs a sync outcome with the repo it belongs to.
type Result struct {
	RepoFullName string
	Record       *model.SyncRecord
	DryRun       bool
}

// Synchronizer syncs forks from their upstreams via the git binary.
type Synchronizer struct {
	git    *git.Runner
	logger *log.Logger
}

// New returns a Synchronizer running git through runner. A nil logger
// falls back to stderr.
func New(runner *git.Runner, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Synchronizer{git: runner, logger: logger}
}

// SyncFork brings repo's default branch up to date with its upstream
// and records the outcome. The returned record is always populated:
// failures land in Record.Errors with status failed, dry runs finish
// as skipped, and live runs as success.
func (s *Synchronizer) SyncFork(ctx context.Context, repo *model.Repo, upstreamCloneURL string, opts Options) Result {
	record := model.NewSyncRecord(repo.ID)

	commits, err := s.syncBranch(ctx, repo, upstreamCloneURL, opts)
	record.FinishedAt = time.Now().UTC()

	if err != nil {
		record.BranchesFailed = 1
		record.Status = model.StatusFailed
		record.Errors = append(record.Errors, err.Error())
	} else {
		record.BranchesSynced = 1
		record.CommitsTransferred = commits
		if opts.DryRun {
			record.Status = model.StatusSkipped
		} else {
			record.Status = model.StatusSuccess
		}
	}

	return Result{RepoFullName: repo.FullName, Record: record, DryRun: opts.DryRun}
}

// syncBranch runs the sync steps for repo's default branch and returns
// how many commits came over from upstream.
func (s *Synchronizer) syncBranch(ctx context.Context, repo *model.Repo, upstreamCloneURL string, opts Options) (int, error) {
	localPath := repo.LocalPath
	if localPath == "" {
		localPath = filepath.Join(opts.CloneBase, repo.Name)
	}

	if _, err := os.Stat(filepath.Join(localPath, ".git")); err != nil {
		if opts.DryRun {
			s.logger.Printf("[dry-run] would clone %s to %s", repo.CloneURL, localPath)
			return 0, nil
		}
		s.logger.Printf("cloning %s to %s", repo.CloneURL, localPath)
		if err := s.git.Clone(ctx, repo.CloneURL, localPath); err != nil {
			return 0, err
		}
	}

	remotes, err := s.git.RemoteList(ctx, localPath)
	if err != nil {
		return 0, err
	}
	if !slices.Contains(remotes, "upstream") {
		if opts.DryRun {
			s.logger.Printf("[dry-run] would add upstream remote: %s", upstreamCloneURL)
		} else if err := s.git.RemoteAdd(ctx, localPath, "upstream", upstreamCloneURL); err != nil {
			return 0, err
		}
	}

	if !opts.DryRun {
		if err := s.git.Fetch(ctx, localPath, "upstream"); err != nil {
			return 0, err
		}
	}

	branch := repo.DefaultBranch
	upstreamRef := "upstream/" + branch

	if opts.DryRun {
		// The upstream remote may not be fetched yet; treat an
		// unresolvable ref as zero commits behind.
		behind, _ := s.git.RevListCount(ctx, localPath, branch, upstreamRef)
		s.logger.Printf("[dry-run] %s: %d commits behind upstream on %s", repo.FullName, behind, branch)
		return behind, nil
	}

	behind, err := s.git.RevListCount(ctx, localPath, branch, upstreamRef)
	if err != nil {
		return 0, err
	}
	if behind == 0 {
		s.logger.Printf("%s: already up to date on %s", repo.FullName, branch)
		return 0, nil
	}

	s.logger.Printf("%s: %d commits behind upstream on %s, syncing with strategy %s",
		repo.FullName, behind, branch, opts.Strategy)

	if err := s.git.Checkout(ctx, localPath, branch); err != nil {
		return 0, err
	}

	switch opts.Strategy {
	case model.StrategyFastForward:
		err = s.git.MergeFF(ctx, localPath, upstreamRef)
	case model.StrategyMerge:
		err = s.git.Merge(ctx, localPath, upstreamRef)
	case model.StrategyRebase:
		err = s.git.Rebase(ctx, localPath, upstreamRef)
	case model.StrategyForcePush:
		err = s.git.ResetHard(ctx, localPath, upstreamRef)
	default:
		err = fmt.Errorf("unknown merge strategy: %s", opts.Strategy)
	}
	if err != nil {
		return 0, err
	}

	if err := s.git.Push(ctx, localPath, "origin", branch); err != nil {
		return 0, err
	}

	return behind, nil
}
