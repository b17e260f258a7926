// Package host talks to git hosting service APIs.
//
// A Provider exposes the capability set forkmate needs from a host:
// credential validation, repo and branch listing, fork sync status,
// and rate limit queries. GitHub has a working implementation; other
// kinds are stubbed until someone needs them.
package host

import (
	"context"
	"time"

	"github.com/forkmate/forkmate/internal/model"
)

// RemoteRepo is a repo as returned by a hosting API.
type RemoteRepo struct {
	FullName         string
	Owner            string
	Name             string
	CloneURL         string
	SSHURL           string
	DefaultBranch    string
	IsFork           bool
	UpstreamFullName string
	UpstreamCloneURL string
	Description      string
	IsPrivate        bool
	IsArchived       bool
	UpdatedAt        *time.Time
}

// RemoteBranch is a branch as returned by a hosting API.
type RemoteBranch struct {
	Name      string
	SHA       string
	IsDefault bool
}

// ForkSyncStatus reports how far a fork branch is from its upstream.
type ForkSyncStatus struct {
	Branch   string
	BehindBy int
	AheadBy  int
}

// RateLimitInfo is the caller's current API quota.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Provider is a client for one git hosting service.
type Provider interface {
	// ValidateCredentials reports whether the stored token works.
	ValidateCredentials(ctx context.Context) (bool, error)

	// ListRepos lists all repos for the configured user, following
	// pagination.
	ListRepos(ctx context.Context) ([]RemoteRepo, error)

	// GetRepo fetches one repo. It returns (nil, nil) when the host
	// does not have it.
	GetRepo(ctx context.Context, owner, name string) (*RemoteRepo, error)

	// ListBranches lists a repo's branches.
	ListBranches(ctx context.Context, owner, name string) ([]RemoteBranch, error)

	// ForkSyncStatus reports behind/ahead counts for a fork relative
	// to its upstream. Non-forks yield no statuses.
	ForkSyncStatus(ctx context.Context, owner, name string) ([]ForkSyncStatus, error)

	// RateLimitStatus returns the current rate limit.
	RateLimitStatus(ctx context.Context) (RateLimitInfo, error)

	// Kind identifies the hosting service this provider talks to.
	Kind() model.Kind
}

// NewProvider builds a Provider for kind. Only GitHub has a working
// implementation; every other kind gets a Stub whose calls fail with a
// NotImplementedError.
func NewProvider(kind model.Kind, apiURL, token, username string) Provider {
	switch kind {
	case model.KindGitHub:
		return NewGitHub(apiURL, token, username)
	default:
		return NewStub(kind)
	}
}
