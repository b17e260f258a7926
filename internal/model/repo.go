package model

import (
	"fmt"
	"strings"
	"time"
)

// DiscoverySource records how a repo entered the catalog.
type DiscoverySource string

const (
	// SourceAPI marks repos found by querying a host API.
	SourceAPI DiscoverySource = "api"
	// SourceFilesystem marks repos found by scanning local disk.
	SourceFilesystem DiscoverySource = "filesystem"
	// SourceManual marks repos added explicitly by the user.
	SourceManual DiscoverySource = "manual"
)

// ParseDiscoverySource parses the string form of a discovery source.
func ParseDiscoverySource(s string) (DiscoverySource, error) {
	switch s {
	case "api":
		return SourceAPI, nil
	case "filesystem":
		return SourceFilesystem, nil
	case "manual":
		return SourceManual, nil
	default:
		return "", fmt.Errorf("unknown discovery source: %s", s)
	}
}

// Repo is a tracked repository. A repo may exist remotely, locally, or
// both; LocalPath is empty until a local checkout is known.
type Repo struct {
	ID               RepoID          `json:"id"`
	FullName         string          `json:"full_name"`
	Owner            string          `json:"owner"`
	Name             string          `json:"name"`
	HostID           HostID          `json:"host_id"`
	CloneURL         string          `json:"clone_url"`
	LocalPath        string          `json:"local_path,omitempty"`
	IsFork           bool            `json:"is_fork"`
	UpstreamRepoID   *RepoID         `json:"upstream_repo_id,omitempty"`
	UpstreamFullName string          `json:"upstream_full_name,omitempty"`
	DefaultBranch    string          `json:"default_branch"`
	DiscoverySource  DiscoverySource `json:"discovery_source"`
	LastSyncedAt     *time.Time      `json:"last_synced_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewRepo builds a repo with a fresh ID. A fullName of the form
// "owner/name" is split on the first slash; a bare name leaves the
// owner empty.
func NewRepo(fullName string, hostID HostID, cloneURL, defaultBranch string, source DiscoverySource) *Repo {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok {
		owner, name = "", fullName
	}
	return &Repo{
		ID:              NewRepoID(),
		FullName:        fullName,
		Owner:           owner,
		Name:            name,
		HostID:          hostID,
		CloneURL:        cloneURL,
		DefaultBranch:   defaultBranch,
		DiscoverySource: source,
		CreatedAt:       time.Now().UTC(),
	}
}
