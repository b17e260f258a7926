package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/forkmate/forkmate/internal/model"
)

// InsertCollection stores a new collection. The name must be unique.
func (db *DB) InsertCollection(ctx context.Context, col *model.Collection) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO collections (id, name, description) VALUES (?, ?, ?)",
		col.ID.String(), col.Name, stringToNull(col.Description))
	if err != nil {
		return fmt.Errorf("failed to insert collection %s: %w", col.Name, err)
	}
	return nil
}

// GetCollectionByName returns the collection with the given name, or
// nil when there is none.
func (db *DB) GetCollectionByName(ctx context.Context, name string) (*model.Collection, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, name, description FROM collections WHERE name = ?", name)
	return scanCollection(row)
}

// ListCollections returns all collections ordered by name.
func (db *DB) ListCollections(ctx context.Context) ([]model.Collection, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, name, description FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var cols []model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collections: %w", err)
	}
	return cols, nil
}

// DeleteCollection removes a collection and its memberships. The repos
// themselves stay tracked.
func (db *DB) DeleteCollection(ctx context.Context, id model.CollectionID) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM collections WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// AddCollectionMember adds a repo to a collection. Adding a repo that
// is already a member is a no-op.
func (db *DB) AddCollectionMember(ctx context.Context, member model.CollectionMember) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO collection_members (collection_id, repo_id) VALUES (?, ?)",
		member.CollectionID.String(), member.RepoID.String())
	if err != nil {
		return fmt.Errorf("failed to add collection member: %w", err)
	}
	return nil
}

// RemoveCollectionMember takes a repo out of a collection.
func (db *DB) RemoveCollectionMember(ctx context.Context, collectionID model.CollectionID, repoID model.RepoID) error {
	_, err := db.conn.ExecContext(ctx,
		"DELETE FROM collection_members WHERE collection_id = ? AND repo_id = ?",
		collectionID.String(), repoID.String())
	if err != nil {
		return fmt.Errorf("failed to remove collection member: %w", err)
	}
	return nil
}

// ListCollectionRepos returns the repos in a collection ordered by
// full name.
func (db *DB) ListCollectionRepos(ctx context.Context, id model.CollectionID) ([]model.Repo, error) {
	query := "SELECT " + repoCols + " FROM repos " +
		"JOIN collection_members ON collection_members.repo_id = repos.id " +
		"WHERE collection_members.collection_id = ? ORDER BY full_name"

	rows, err := db.conn.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list collection repos: %w", err)
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
		return nil, fmt.Errorf("error iterating collection repos: %w", err)
	}
	return repos, nil
}

func scanCollection(s scanner) (*model.Collection, error) {
	var (
		c           model.Collection
		id          string
		description sql.NullString
	)
	err := s.Scan(&id, &c.Name, &description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}
	c.ID, _ = model.ParseCollectionID(id)
	c.Description = description.String
	return &c, nil
}
