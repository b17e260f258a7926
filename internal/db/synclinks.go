package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/forkmate/forkmate/internal/model"
)

const syncLinkCols = "id, source_repo_id, target_repo_id, direction, " +
	"merge_strategy, trigger, instructions, enabled"

// InsertSyncLink stores a sync link. Instructions are serialized to
// JSON.
func (db *DB) InsertSyncLink(ctx context.Context, link *model.SyncLink) error {
	instructions, err := json.Marshal(link.Instructions)
	if err != nil {
		instructions = []byte("{}")
	}

	_, err = db.conn.ExecContext(ctx,
		"INSERT INTO sync_links ("+syncLinkCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		link.ID.String(), link.SourceRepoID.String(), link.TargetRepoID.String(),
		string(link.Direction), string(link.MergeStrategy), string(link.Trigger),
		string(instructions), link.Enabled)
	if err != nil {
		return fmt.Errorf("failed to insert sync link: %w", err)
	}
	return nil
}

// ListSyncLinks returns all sync links ordered by ID, which for
// time-ordered IDs is creation order.
func (db *DB) ListSyncLinks(ctx context.Context) ([]model.SyncLink, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+syncLinkCols+" FROM sync_links ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sync links: %w", err)
	}
	defer rows.Close()

	var links []model.SyncLink
	for rows.Next() {
		l, err := scanSyncLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync links: %w", err)
	}
	return links, nil
}

// ListSyncLinksForRepo returns the links where the repo is source or
// target.
func (db *DB) ListSyncLinksForRepo(ctx context.Context, repoID model.RepoID) ([]model.SyncLink, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+syncLinkCols+" FROM sync_links WHERE source_repo_id = ? OR target_repo_id = ? ORDER BY id",
		repoID.String(), repoID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list sync links for repo: %w", err)
	}
	defer rows.Close()

	var links []model.SyncLink
	for rows.Next() {
		l, err := scanSyncLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync links: %w", err)
	}
	return links, nil
}

// DeleteSyncLink removes a sync link.
func (db *DB) DeleteSyncLink(ctx context.Context, id model.SyncLinkID) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM sync_links WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete sync link: %w", err)
	}
	return nil
}

func scanSyncLink(s scanner) (*model.SyncLink, error) {
	var (
		l                                  model.SyncLink
		id, source, target                 string
		direction, strategy, trigger, inst string
	)
	err := s.Scan(&id, &source, &target, &direction, &strategy, &trigger,
		&inst, &l.Enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan sync link: %w", err)
	}

	l.ID, _ = model.ParseSyncLinkID(id)
	l.SourceRepoID, _ = model.ParseRepoID(source)
	l.TargetRepoID, _ = model.ParseRepoID(target)
	l.Direction = parseOr(model.ParseSyncDirection, direction, model.DirectionPull)
	l.MergeStrategy = parseOr(model.ParseMergeStrategy, strategy, model.StrategyFastForward)
	l.Trigger = parseOr(model.ParseSyncTrigger, trigger, model.TriggerManual)
	_ = json.Unmarshal([]byte(inst), &l.Instructions)
	return &l, nil
}
