// Package model defines the domain types shared across forkmate:
// hosts, repos, sync links, sync history, and collections.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// RepoID uniquely identifies a tracked repository.
type RepoID struct{ uuid.UUID }

// NewRepoID returns a fresh time-ordered repo ID.
func NewRepoID() RepoID { return RepoID{uuid.Must(uuid.NewV7())} }

// ParseRepoID parses the canonical string form of a repo ID.
func ParseRepoID(s string) (RepoID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RepoID{}, fmt.Errorf("invalid repo id %q: %w", s, err)
	}
	return RepoID{u}, nil
}

// IsZero reports whether the ID is unset.
func (id RepoID) IsZero() bool { return id.UUID == uuid.Nil }

// HostID uniquely identifies a registered host.
type HostID struct{ uuid.UUID }

// NewHostID returns a fresh time-ordered host ID.
func NewHostID() HostID { return HostID{uuid.Must(uuid.NewV7())} }

// ParseHostID parses the canonical string form of a host ID.
func ParseHostID(s string) (HostID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return HostID{}, fmt.Errorf("invalid host id %q: %w", s, err)
	}
	return HostID{u}, nil
}

// IsZero reports whether the ID is unset.
func (id HostID) IsZero() bool { return id.UUID == uuid.Nil }

// CollectionID uniquely identifies a collection.
type CollectionID struct{ uuid.UUID }

// NewCollectionID returns a fresh time-ordered collection ID.
func NewCollectionID() CollectionID { return CollectionID{uuid.Must(uuid.NewV7())} }

// ParseCollectionID parses the canonical string form of a collection ID.
func ParseCollectionID(s string) (CollectionID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CollectionID{}, fmt.Errorf("invalid collection id %q: %w", s, err)
	}
	return CollectionID{u}, nil
}

// SyncLinkID uniquely identifies a sync link.
type SyncLinkID struct{ uuid.UUID }

// NewSyncLinkID returns a fresh time-ordered sync link ID.
func NewSyncLinkID() SyncLinkID { return SyncLinkID{uuid.Must(uuid.NewV7())} }

// ParseSyncLinkID parses the canonical string form of a sync link ID.
func ParseSyncLinkID(s string) (SyncLinkID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return SyncLinkID{}, fmt.Errorf("invalid sync link id %q: %w", s, err)
	}
	return SyncLinkID{u}, nil
}
