package git

import (
	"errors"
	"fmt"
	"strings"
)

// CommandError reports a git command that exited non-zero.
type CommandError struct {
	// Args are the arguments git was invoked with.
	Args []string

	// Stderr is the trimmed stderr output.
	Stderr string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s failed: %s", strings.Join(e.Args, " "), e.Stderr)
}

// FastForwardError reports a fast-forward merge that stopped because
// the branch and ref have diverged.
type FastForwardError struct {
	// Branch is the ref the merge targeted.
	Branch string

	// Message is the trimmed stderr from git.
	Message string
}

func (e *FastForwardError) Error() string {
	return fmt.Sprintf("fast-forward failed on branch %s: %s", e.Branch, e.Message)
}

// MergeConflictError reports a merge or rebase stopped by conflicting
// changes. The worktree has been restored to its pre-merge state.
type MergeConflictError struct {
	// Branch is the ref being merged or rebased onto.
	Branch string

	// Message is the trimmed stderr from git.
	Message string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict on branch %s: %s", e.Branch, e.Message)
}

// IsFastForwardFailure reports whether err is a failed fast-forward.
func IsFastForwardFailure(err error) bool {
	var ffErr *FastForwardError
	return errors.As(err, &ffErr)
}

// IsMergeConflict reports whether err is a conflict-stopped merge or
// rebase.
func IsMergeConflict(err error) bool {
	var mcErr *MergeConflictError
	return errors.As(err, &mcErr)
}
