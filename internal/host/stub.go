package host

import (
	"context"

	"github.com/forkmate/forkmate/internal/model"
)

// Stub stands in for host kinds without a working provider. Every
// capability fails with a NotImplementedError naming the kind, which
// keeps "unsupported" distinguishable from "queried and empty".
type Stub struct {
	kind model.Kind
}

// NewStub returns a stub provider for kind.
func NewStub(kind model.Kind) *Stub { return &Stub{kind: kind} }

func (s *Stub) err() error { return &NotImplementedError{Kind: s.kind} }

// ValidateCredentials implements Provider.
func (s *Stub) ValidateCredentials(context.Context) (bool, error) { return false, s.err() }

// ListRepos implements Provider.
func (s *Stub) ListRepos(context.Context) ([]RemoteRepo, error) { return nil, s.err() }

// GetRepo implements Provider.
func (s *Stub) GetRepo(context.Context, string, string) (*RemoteRepo, error) {
	return nil, s.err()
}

// ListBranches implements Provider.
func (s *Stub) ListBranches(context.Context, string, string) ([]RemoteBranch, error) {
	return nil, s.err()
}

// ForkSyncStatus implements Provider.
func (s *Stub) ForkSyncStatus(context.Context, string, string) ([]ForkSyncStatus, error) {
	return nil, s.err()
}

// RateLimitStatus implements Provider.
func (s *Stub) RateLimitStatus(context.Context) (RateLimitInfo, error) {
	return RateLimitInfo{}, s.err()
}

// Kind implements Provider.
func (s *Stub) Kind() model.Kind { return s.kind }
