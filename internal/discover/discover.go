package discover

import (
	"context"
	"os"

	"github.com/forkmate/forkmate/internal/host"
)

// RepoLister is the slice of a host provider that discovery needs.
type RepoLister interface {
	ListRepos(ctx context.Context) ([]host.RemoteRepo, error)
}

// Discover scans scanPaths for local repos, lists the host's repos
// through lister, and reconciles the two. Scan paths that do not exist
// are silently skipped.
func Discover(ctx context.Context, lister RepoLister, hostLabel string, scanPaths []string, maxDepth int) (*Result, error) {
	var local []ScannedRepo
	for _, p := range scanPaths {
		if _, err := os.Stat(p); err == nil {
			local = append(local, ScanDirectory(p, maxDepth)...)
		}
	}

	remote, err := lister.ListRepos(ctx)
	if err != nil {
		return nil, err
	}

	return Reconcile(local, remote, hostLabel), nil
}
