// Package git runs the git binary and wraps the handful of commands
// fork syncing needs.
//
// Commands run as subprocesses against an explicit working directory.
// A Runner holds no per-repo state and is safe for concurrent use
// across repos.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner executes git commands with an optional per-command timeout.
type Runner struct {
	// Timeout bounds each git invocation. Zero means no limit.
	Timeout time.Duration
}

// New returns a Runner with the given per-command timeout.
func New(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout}
}

// Output captures one git invocation.
type Output struct {
	Stdout  string
	Stderr  string
	Success bool
}

// run executes git with args in dir, capturing stdout and stderr
// separately. A non-zero exit is not an error at this level; callers
// check Success. The returned error covers spawn failures and
// timeouts only.
func (r *Runner) run(ctx context.Context, dir string, args ...string) (Output, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Success: err == nil,
	}
	if err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("git %s: %w", strings.Join(args, " "), ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
	}
	return out, nil
}

// runOK executes git and converts a non-zero exit into a CommandError
// carrying the trimmed stderr.
func (r *Runner) runOK(ctx context.Context, dir string, args ...string) (Output, error) {
	out, err := r.run(ctx, dir, args...)
	if err != nil {
		return out, err
	}
	if !out.Success {
		return out, &CommandError{Args: args, Stderr: strings.TrimSpace(out.Stderr)}
	}
	return out, nil
}

// Clone clones url into dest.
func (r *Runner) Clone(ctx context.Context, url, dest string) error {
	_, err := r.runOK(ctx, "", "clone", url, dest)
	return err
}

// Fetch updates remote-tracking refs for remote, pruning refs whose
// upstream branches are gone.
func (r *Runner) Fetch(ctx context.Context, dir, remote string) error {
	_, err := r.runOK(ctx, dir, "fetch", remote, "--prune")
	return err
}

// Checkout switches the worktree in dir to branch.
func (r *Runner) Checkout(ctx context.Context, dir, branch string) error {
	_, err := r.runOK(ctx, dir, "checkout", branch)
	return err
}

// MergeFF fast-forwards the current branch to ref. Diverged histories
// yield a FastForwardError rather than a merge commit.
func (r *Runner) MergeFF(ctx context.Context, dir, ref string) error {
	out, err := r.run(ctx, dir, "merge", "--ff-only", ref)
	if err != nil {
		return err
	}
	if !out.Success {
		return &FastForwardError{Branch: ref, Message: strings.TrimSpace(out.Stderr)}
	}
	return nil
}

// Merge merges ref into the current branch without opening an editor.
// Conflicts yield a MergeConflictError.
func (r *Runner) Merge(ctx context.Context, dir, ref string) error {
	out, err := r.run(ctx, dir, "merge", ref, "--no-edit")
	if err != nil {
		return err
	}
	if !out.Success {
		return &MergeConflictError{Branch: ref, Message: strings.TrimSpace(out.Stderr)}
	}
	return nil
}

// Rebase replays the current branch onto ref. On conflict the rebase
// is aborted so the worktree is left clean, and a MergeConflictError
// is returned.
func (r *Runner) Rebase(ctx context.Context, dir, ref string) error {
	out, err := r.run(ctx, dir, "rebase", ref)
	if err != nil {
		return err
	}
	if !out.Success {
		_, _ = r.run(ctx, dir, "rebase", "--abort")
		return &MergeConflictError{Branch: ref, Message: strings.TrimSpace(out.Stderr)}
	}
	return nil
}

// ResetHard moves the current branch and worktree to ref, discarding
// local changes.
func (r *Runner) ResetHard(ctx context.Context, dir, ref string) error {
	_, err := r.runOK(ctx, dir, "reset", "--hard", ref)
	return err
}

// Push pushes branch to remote.
func (r *Runner) Push(ctx context.Context, dir, remote, branch string) error {
	_, err := r.runOK(ctx, dir, "push", remote, branch)
	return err
}

// RemoteAdd registers a remote. Adding a name that already exists is
// treated as success.
func (r *Runner) RemoteAdd(ctx context.Context, dir, name, url string) error {
	args := []string{"remote", "add", name, url}
	out, err := r.run(ctx, dir, args...)
	if err != nil {
		return err
	}
	if out.Success || strings.Contains(out.Stderr, "already exists") {
		return nil
	}
	return &CommandError{Args: args, Stderr: strings.TrimSpace(out.Stderr)}
}

// RemoteList returns the names of the configured remotes.
func (r *Runner) RemoteList(ctx context.Context, dir string) ([]string, error) {
	out, err := r.runOK(ctx, dir, "remote")
	if err != nil {
		return nil, err
	}
	var remotes []string
	for _, line := range strings.Split(out.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// RevListCount counts commits reachable from b but not from a.
// Output that does not parse as a number counts as zero.
func (r *Runner) RevListCount(ctx context.Context, dir, a, b string) (int, error) {
	out, err := r.runOK(ctx, dir, "rev-list", "--count", fmt.Sprintf("%s..%s", a, b))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out.Stdout))
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// CurrentBranch returns the name of the checked-out branch.
func (r *Runner) CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := r.runOK(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Stdout), nil
}

// RevParse resolves ref to a commit SHA, or "" when it does not
// resolve.
func (r *Runner) RevParse(ctx context.Context, dir, ref string) string {
	out, err := r.run(ctx, dir, "rev-parse", ref)
	if err != nil || !out.Success {
		return ""
	}
	return strings.TrimSpace(out.Stdout)
}
