package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the outcome of a sync operation.
type SyncStatus string

const (
	StatusSuccess        SyncStatus = "success"
	StatusPartialSuccess SyncStatus = "partial_success"
	StatusFailed         SyncStatus = "failed"
	StatusSkipped        SyncStatus = "skipped"
)

// ParseSyncStatus parses the string form of a sync status.
func ParseSyncStatus(s string) (SyncStatus, error) {
	switch s {
	case "success":
		return StatusSuccess, nil
	case "partial_success":
		return StatusPartialSuccess, nil
	case "failed":
		return StatusFailed, nil
	case "skipped":
		return StatusSkipped, nil
	default:
		return "", fmt.Errorf("unknown sync status: %s", s)
	}
}

// SyncRecord is the stored outcome of one sync run against one repo.
type SyncRecord struct {
	ID                 uuid.UUID   `json:"id"`
	RepoID             RepoID      `json:"repo_id"`
	SyncLinkID         *SyncLinkID `json:"sync_link_id,omitempty"`
	BranchesSynced     int         `json:"branches_synced"`
	BranchesFailed     int         `json:"branches_failed"`
	CommitsTransferred int         `json:"commits_transferred"`
	Status             SyncStatus  `json:"status"`
	Errors             []string    `json:"errors,omitempty"`
	StartedAt          time.Time   `json:"started_at"`
	FinishedAt         time.Time   `json:"finished_at"`
}

// NewSyncRecord starts a record for a sync of repoID. The status begins
// as success and is downgraded as failures accumulate.
func NewSyncRecord(repoID RepoID) *SyncRecord {
	now := time.Now().UTC()
	return &SyncRecord{
		ID:         uuid.Must(uuid.NewV7()),
		RepoID:     repoID,
		Status:     StatusSuccess,
		StartedAt:  now,
		FinishedAt: now,
	}
}

// BranchSnapshot captures a branch's last observed position for
// behind/ahead tracking.
type BranchSnapshot struct {
	RepoID      RepoID    `json:"repo_id"`
	Branch      string    `json:"branch"`
	LocalSHA    string    `json:"local_sha,omitempty"`
	RemoteSHA   string    `json:"remote_sha,omitempty"`
	UpstreamSHA string    `json:"upstream_sha,omitempty"`
	BehindCount int       `json:"behind_count"`
	AheadCount  int       `json:"ahead_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}
