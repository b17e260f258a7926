package forksync

import (
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forkmate/forkmate/internal/git"
	"github.com/forkmate/forkmate/internal/model"
)

var discard = log.New(io.Discard, "", 0)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}

func gitOut(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := exec.Command("git", append([]string{"-C", dir}, args...)...).Output()
	if err != nil {
		t.Fatalf("git %s: %v", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out))
}

func commitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	mustGit(t, dir, "add", name)
	mustGit(t, dir, "commit", "-m", msg)
}

func initRepo(t *testing.T, dir string) string {
	t.Helper()
	mustGit(t, dir, "init")
	mustGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	mustGit(t, dir, "config", "user.name", "Test User")
	mustGit(t, dir, "config", "user.email", "test@example.com")
	return dir
}

// forkFixture is the three-repo layout a fork sync works against: the
// upstream repo, a bare origin holding the fork on the host side, and
// the fork's local clone with origin and upstream remotes configured.
type forkFixture struct {
	upstream string
	origin   string
	fork     string
	repo     *model.Repo
}

func setupForkFixture(t *testing.T) *forkFixture {
	t.Helper()
	requireGit(t)

	upstream := initRepo(t, t.TempDir())
	commitFile(t, upstream, "README.md", "hello\n", "initial")

	origin := t.TempDir()
	mustGit(t, origin, "init", "--bare")
	mustGit(t, origin, "symbolic-ref", "HEAD", "refs/heads/main")
	mustGit(t, upstream, "push", origin, "main")

	fork := t.TempDir()
	mustGit(t, fork, "clone", origin, ".")
	mustGit(t, fork, "config", "user.name", "Test User")
	mustGit(t, fork, "config", "user.email", "test@example.com")
	mustGit(t, fork, "remote", "add", "upstream", upstream)

	repo := model.NewRepo("octocat/widget", model.NewHostID(), origin, "main", model.SourceAPI)
	repo.LocalPath = fork
	repo.IsFork = true
	repo.UpstreamFullName = "upstream/widget"

	return &forkFixture{upstream: upstream, origin: origin, fork: fork, repo: repo}
}

func TestSyncForkDryRunFreshClone(t *testing.T) {
	requireGit(t)

	upstream := initRepo(t, t.TempDir())
	commitFile(t, upstream, "README.md", "hello\n", "initial")

	cloneBase := t.TempDir()
	repo := model.NewRepo("octocat/widget", model.NewHostID(), upstream, "main", model.SourceAPI)

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), repo, upstream, Options{
		CloneBase: cloneBase,
		Strategy:  model.StrategyFastForward,
		DryRun:    true,
	})

	if !res.DryRun {
		t.Error("result not marked dry-run")
	}
	if res.Record.Status != model.StatusSkipped {
		t.Errorf("status = %s, want skipped", res.Record.Status)
	}
	if res.Record.CommitsTransferred != 0 {
		t.Errorf("commits = %d, want 0", res.Record.CommitsTransferred)
	}
	if _, err := os.Stat(filepath.Join(cloneBase, "widget")); !os.IsNotExist(err) {
		t.Error("dry run cloned the repo")
	}
}

func TestSyncForkDryRunReportsBehind(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "a.txt", "a\n", "commit a")
	commitFile(t, f.upstream, "b.txt", "b\n", "commit b")
	mustGit(t, f.fork, "fetch", "upstream")

	before := gitOut(t, f.fork, "rev-parse", "main")

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{
		Strategy: model.StrategyFastForward,
		DryRun:   true,
	})

	rec := res.Record
	if rec.Status != model.StatusSkipped {
		t.Errorf("status = %s, want skipped", rec.Status)
	}
	if rec.BranchesSynced != 1 || rec.CommitsTransferred != 2 {
		t.Errorf("synced = %d, commits = %d, want 1 and 2", rec.BranchesSynced, rec.CommitsTransferred)
	}
	if got := gitOut(t, f.fork, "rev-parse", "main"); got != before {
		t.Error("dry run moved the branch")
	}
}

func TestSyncForkUpToDate(t *testing.T) {
	f := setupForkFixture(t)

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{Strategy: model.StrategyFastForward})

	rec := res.Record
	if rec.Status != model.StatusSuccess {
		t.Fatalf("status = %s, errors = %v", rec.Status, rec.Errors)
	}
	if rec.BranchesSynced != 1 || rec.CommitsTransferred != 0 {
		t.Errorf("synced = %d, commits = %d, want 1 and 0", rec.BranchesSynced, rec.CommitsTransferred)
	}
	if rec.FinishedAt.Before(rec.StartedAt) {
		t.Error("finished before started")
	}
}

func TestSyncForkFastForward(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "a.txt", "a\n", "commit a")
	commitFile(t, f.upstream, "b.txt", "b\n", "commit b")

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{Strategy: model.StrategyFastForward})

	rec := res.Record
	if rec.Status != model.StatusSuccess {
		t.Fatalf("status = %s, errors = %v", rec.Status, rec.Errors)
	}
	if rec.CommitsTransferred != 2 {
		t.Errorf("commits = %d, want 2", rec.CommitsTransferred)
	}

	want := gitOut(t, f.upstream, "rev-parse", "main")
	if got := gitOut(t, f.fork, "rev-parse", "main"); got != want {
		t.Errorf("fork main = %s, want %s", got, want)
	}
	// The sync pushes the advanced branch back to origin.
	if got := gitOut(t, f.origin, "rev-parse", "main"); got != want {
		t.Errorf("origin main = %s, want %s", got, want)
	}
}

func TestSyncForkFastForwardDiverged(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "up.txt", "upstream\n", "upstream change")
	commitFile(t, f.fork, "local.txt", "local\n", "local change")

	before := gitOut(t, f.fork, "rev-parse", "main")

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{Strategy: model.StrategyFastForward})

	rec := res.Record
	if rec.Status != model.StatusFailed {
		t.Fatalf("status = %s, want failed", rec.Status)
	}
	if rec.BranchesFailed != 1 {
		t.Errorf("branches failed = %d, want 1", rec.BranchesFailed)
	}
	if len(rec.Errors) != 1 || !strings.Contains(rec.Errors[0], "fast-forward failed") {
		t.Errorf("errors = %v, want fast-forward failure", rec.Errors)
	}
	if got := gitOut(t, f.fork, "rev-parse", "main"); got != before {
		t.Error("failed fast-forward moved the branch")
	}
}

func TestSyncForkMergeDiverged(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "up.txt", "upstream\n", "upstream change")
	commitFile(t, f.fork, "local.txt", "local\n", "local change")

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{Strategy: model.StrategyMerge})

	rec := res.Record
	if rec.Status != model.StatusSuccess {
		t.Fatalf("status = %s, errors = %v", rec.Status, rec.Errors)
	}
	if behind := gitOut(t, f.fork, "rev-list", "--count", "main..upstream/main"); behind != "0" {
		t.Errorf("still %s commits behind after merge", behind)
	}
	// The local commit survives the merge.
	if _, err := os.Stat(filepath.Join(f.fork, "local.txt")); err != nil {
		t.Error("merge dropped the local commit")
	}
}

func TestSyncForkRebaseDiverged(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "up.txt", "upstream\n", "upstream change")
	commitFile(t, f.fork, "local.txt", "local\n", "local change")

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{Strategy: model.StrategyRebase})

	rec := res.Record
	if rec.Status != model.StatusSuccess {
		t.Fatalf("status = %s, errors = %v", rec.Status, rec.Errors)
	}
	if behind := gitOut(t, f.fork, "rev-list", "--count", "main..upstream/main"); behind != "0" {
		t.Errorf("still %s commits behind after rebase", behind)
	}
	if _, err := os.Stat(filepath.Join(f.fork, "local.txt")); err != nil {
		t.Error("rebase dropped the local commit")
	}
}

func TestSyncForkForcePush(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "up.txt", "upstream\n", "upstream change")
	commitFile(t, f.fork, "local.txt", "local\n", "local change")

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{Strategy: model.StrategyForcePush})

	rec := res.Record
	if rec.Status != model.StatusSuccess {
		t.Fatalf("status = %s, errors = %v", rec.Status, rec.Errors)
	}

	// The branch now mirrors upstream; the local commit is gone.
	want := gitOut(t, f.upstream, "rev-parse", "main")
	if got := gitOut(t, f.fork, "rev-parse", "main"); got != want {
		t.Errorf("fork main = %s, want upstream %s", got, want)
	}
	if got := gitOut(t, f.origin, "rev-parse", "main"); got != want {
		t.Errorf("origin main = %s, want upstream %s", got, want)
	}
	if _, err := os.Stat(filepath.Join(f.fork, "local.txt")); !os.IsNotExist(err) {
		t.Error("local commit survived the reset")
	}
}

func TestSyncForkClonesWhenMissing(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "a.txt", "a\n", "commit a")

	cloneBase := t.TempDir()
	repo := model.NewRepo("octocat/widget", model.NewHostID(), f.origin, "main", model.SourceAPI)

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), repo, f.upstream, Options{
		CloneBase: cloneBase,
		Strategy:  model.StrategyFastForward,
	})

	rec := res.Record
	if rec.Status != model.StatusSuccess {
		t.Fatalf("status = %s, errors = %v", rec.Status, rec.Errors)
	}
	clone := filepath.Join(cloneBase, "widget")
	if _, err := os.Stat(filepath.Join(clone, ".git")); err != nil {
		t.Fatalf("clone missing: %v", err)
	}
	if rec.CommitsTransferred != 1 {
		t.Errorf("commits = %d, want 1", rec.CommitsTransferred)
	}
	want := gitOut(t, f.upstream, "rev-parse", "main")
	if got := gitOut(t, clone, "rev-parse", "main"); got != want {
		t.Errorf("clone main = %s, want %s", got, want)
	}
}

func TestSyncForkUnknownStrategy(t *testing.T) {
	f := setupForkFixture(t)

	commitFile(t, f.upstream, "a.txt", "a\n", "commit a")

	s := New(git.New(0), discard)
	res := s.SyncFork(context.Background(), f.repo, f.upstream, Options{Strategy: "octopus"})

	rec := res.Record
	if rec.Status != model.StatusFailed {
		t.Fatalf("status = %s, want failed", rec.Status)
	}
	if len(rec.Errors) != 1 || !strings.Contains(rec.Errors[0], "unknown merge strategy") {
		t.Errorf("errors = %v, want unknown strategy", rec.Errors)
	}
}
