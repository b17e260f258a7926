package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forkmate/forkmate/internal/model"
)

const syncRecordCols = "id, repo_id, sync_link_id, branches_synced, " +
	"branches_failed, commits_transferred, status, errors, started_at, finished_at"

// InsertSyncRecord appends one sync outcome to the history.
func (db *DB) InsertSyncRecord(ctx context.Context, record *model.SyncRecord) error {
	errorsJSON, err := json.Marshal(record.Errors)
	if err != nil {
		errorsJSON = []byte("[]")
	}

	var linkID sql.NullString
	if record.SyncLinkID != nil {
		linkID = sql.NullString{String: record.SyncLinkID.String(), Valid: true}
	}

	_, err = db.conn.ExecContext(ctx,
		"INSERT INTO sync_history ("+syncRecordCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		record.ID.String(), record.RepoID.String(), linkID,
		record.BranchesSynced, record.BranchesFailed, record.CommitsTransferred,
		string(record.Status), string(errorsJSON),
		record.StartedAt.Format(time.RFC3339), record.FinishedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert sync record: %w", err)
	}
	return nil
}

// ListSyncHistory returns sync records newest first, capped at limit.
// A nil repoID returns history across all repos; a nil since applies
// no time floor.
func (db *DB) ListSyncHistory(ctx context.Context, repoID *model.RepoID, since *time.Time, limit int) ([]model.SyncRecord, error) {
	query := "SELECT " + syncRecordCols + " FROM sync_history"
	var where []string
	var args []any
	if repoID != nil {
		where = append(where, "repo_id = ?")
		args = append(args, repoID.String())
	}
	if since != nil {
		where = append(where, "started_at >= ?")
		args = append(args, since.UTC().Format(time.RFC3339))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync history: %w", err)
	}
	defer rows.Close()

	var records []model.SyncRecord
	for rows.Next() {
		r, err := scanSyncRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync history: %w", err)
	}
	return records, nil
}

func scanSyncRecord(s scanner) (*model.SyncRecord, error) {
	var (
		r                        model.SyncRecord
		id, repoID, status, errs string
		started, finished        string
		linkID                   sql.NullString
	)
	err := s.Scan(&id, &repoID, &linkID, &r.BranchesSynced, &r.BranchesFailed,
		&r.CommitsTransferred, &status, &errs, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan sync record: %w", err)
	}

	r.ID, _ = uuid.Parse(id)
	r.RepoID, _ = model.ParseRepoID(repoID)
	if linkID.Valid {
		if lid, err := model.ParseSyncLinkID(linkID.String); err == nil {
			r.SyncLinkID = &lid
		}
	}
	r.Status = parseOr(model.ParseSyncStatus, status, model.StatusFailed)
	_ = json.Unmarshal([]byte(errs), &r.Errors)
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return &r, nil
}

// UpsertBranchSnapshot records a branch's latest observed position,
// replacing any previous snapshot for the same repo and branch.
func (db *DB) UpsertBranchSnapshot(ctx context.Context, snap *model.BranchSnapshot) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO branch_snapshots (repo_id, branch, local_sha, remote_sha, upstream_sha, behind_count, ahead_count, updated_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		snap.RepoID.String(), snap.Branch, stringToNull(snap.LocalSHA),
		stringToNull(snap.RemoteSHA), stringToNull(snap.UpstreamSHA),
		snap.BehindCount, snap.AheadCount, snap.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert branch snapshot: %w", err)
	}
	return nil
}

// GetBranchSnapshots returns a repo's branch snapshots ordered by
// branch name.
func (db *DB) GetBranchSnapshots(ctx context.Context, repoID model.RepoID) ([]model.BranchSnapshot, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT repo_id, branch, local_sha, remote_sha, upstream_sha, behind_count, ahead_count, updated_at "+
			"FROM branch_snapshots WHERE repo_id = ? ORDER BY branch",
		repoID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query branch snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []model.BranchSnapshot
	for rows.Next() {
		var (
			snap                    model.BranchSnapshot
			id, updated             string
			local, remote, upstream sql.NullString
		)
		err := rows.Scan(&id, &snap.Branch, &local, &remote, &upstream,
			&snap.BehindCount, &snap.AheadCount, &updated)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch snapshot: %w", err)
		}
		snap.RepoID, _ = model.ParseRepoID(id)
		snap.LocalSHA = local.String
		snap.RemoteSHA = remote.String
		snap.UpstreamSHA = upstream.String
		snap.UpdatedAt = parseTime(updated)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branch snapshots: %w", err)
	}
	return snaps, nil
}
