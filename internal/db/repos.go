package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/forkmate/forkmate/internal/model"
)

const repoCols = "id, full_name, owner, name, host_id, clone_url, local_path, " +
	"is_fork, upstream_repo_id, upstream_full_name, default_branch, " +
	"discovery_source, last_synced_at, created_at"

// InsertRepo stores a newly tracked repo.
func (db *DB) InsertRepo(ctx context.Context, repo *model.Repo) error {
	var upstreamID sql.NullString
	if repo.UpstreamRepoID != nil {
		upstreamID = sql.NullString{String: repo.UpstreamRepoID.String(), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO repos ("+repoCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		repo.ID.String(), repo.FullName, repo.Owner, repo.Name,
		repo.HostID.String(), repo.CloneURL, stringToNull(repo.LocalPath),
		repo.IsFork, upstreamID, stringToNull(repo.UpstreamFullName),
		repo.DefaultBranch, string(repo.DiscoverySource),
		timeToNullString(repo.LastSyncedAt), repo.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert repo %s: %w", repo.FullName, err)
	}
	return nil
}

// GetRepoByID returns the repo with the given ID, or nil when there is
// none.
func (db *DB) GetRepoByID(ctx context.Context, id model.RepoID) (*model.Repo, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+repoCols+" FROM repos WHERE id = ?", id.String())
	return scanRepo(row)
}

// GetRepoByFullName returns the repo tracked under fullName on the
// given host, or nil when there is none.
func (db *DB) GetRepoByFullName(ctx context.Context, hostID model.HostID, fullName string) (*model.Repo, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+repoCols+" FROM repos WHERE host_id = ? AND full_name = ?",
		hostID.String(), fullName)
	return scanRepo(row)
}

// ListRepos returns every tracked repo ordered by full name.
func (db *DB) ListRepos(ctx context.Context) ([]model.Repo, error) {
	return db.queryRepos(ctx, "")
}

// ListReposForHost returns the tracked repos of one host.
func (db *DB) ListReposForHost(ctx context.Context, hostID model.HostID) ([]model.Repo, error) {
	return db.queryRepos(ctx, "host_id = ?", hostID.String())
}

// ListForkRepos returns the tracked repos that are forks.
func (db *DB) ListForkRepos(ctx context.Context) ([]model.Repo, error) {
	return db.queryRepos(ctx, "is_fork = 1")
}

// UpdateRepoLocalPath records where a repo is checked out. An empty
// path clears the stored value.
func (db *DB) UpdateRepoLocalPath(ctx context.Context, id model.RepoID, localPath string) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE repos SET local_path = ? WHERE id = ?",
		stringToNull(localPath), id.String())
	if err != nil {
		return fmt.Errorf("failed to update repo local path: %w", err)
	}
	return nil
}

// UpdateRepoLastSynced records when a repo last synced.
func (db *DB) UpdateRepoLastSynced(ctx context.Context, id model.RepoID, ts time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE repos SET last_synced_at = ? WHERE id = ?",
		ts.Format(time.RFC3339), id.String())
	if err != nil {
		return fmt.Errorf("failed to update repo last synced: %w", err)
	}
	return nil
}

// DeleteRepo stops tracking a repo. Sync links, history, and snapshots
// referencing it go with it.
func (db *DB) DeleteRepo(ctx context.Context, id model.RepoID) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM repos WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete repo: %w", err)
	}
	return nil
}

func (db *DB) queryRepos(ctx context.Context, where string, args ...any) ([]model.Repo, error) {
	query := "SELECT " + repoCols + " FROM repos"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY full_name"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query repos: %w", err)
	}
	defer rows.Close()

	var repos []model.Repo
	for rows.Next() {
		r, err := scanRepo(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repos: %w", err)
	}
	return repos, nil
}

func scanRepo(s scanner) (*model.Repo, error) {
	var (
		r                           model.Repo
		id, hostID, source, created string
		localPath, upstreamID       sql.NullString
		upstreamFN, lastSynced      sql.NullString
	)
	err := s.Scan(&id, &r.FullName, &r.Owner, &r.Name, &hostID, &r.CloneURL,
		&localPath, &r.IsFork, &upstreamID, &upstreamFN, &r.DefaultBranch,
		&source, &lastSynced, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan repo: %w", err)
	}

	r.ID, _ = model.ParseRepoID(id)
	r.HostID, _ = model.ParseHostID(hostID)
	r.LocalPath = localPath.String
	if upstreamID.Valid {
		if uid, err := model.ParseRepoID(upstreamID.String); err == nil {
			r.UpstreamRepoID = &uid
		}
	}
	r.UpstreamFullName = upstreamFN.String
	r.DiscoverySource = parseOr(model.ParseDiscoverySource, source, model.SourceAPI)
	r.LastSyncedAt = nullStringToTime(lastSynced)
	r.CreatedAt = parseTime(created)
	return &r, nil
}
