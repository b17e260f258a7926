package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/forkmate/forkmate/internal/model"
)

const hostCols = "id, label, kind, api_url, username, credential_key"

// InsertHost stores a new host registration. The label must be unique.
func (db *DB) InsertHost(ctx context.Context, host *model.Host) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO hosts ("+hostCols+") VALUES (?, ?, ?, ?, ?, ?)",
		host.ID.String(), host.Label, string(host.Kind), host.APIURL,
		host.Username, host.CredentialKey)
	if err != nil {
		return fmt.Errorf("failed to insert host %s: %w", host.Label, err)
	}
	return nil
}

// GetHostByLabel returns the host registered under label, or nil when
// there is none.
func (db *DB) GetHostByLabel(ctx context.Context, label string) (*model.Host, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+hostCols+" FROM hosts WHERE label = ?", label)
	return scanHost(row)
}

// GetHostByID returns the host with the given ID, or nil when there is
// none.
func (db *DB) GetHostByID(ctx context.Context, id model.HostID) (*model.Host, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+hostCols+" FROM hosts WHERE id = ?", id.String())
	return scanHost(row)
}

// ListHosts returns all registered hosts ordered by label.
func (db *DB) ListHosts(ctx context.Context) ([]model.Host, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+hostCols+" FROM hosts ORDER BY label")
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []model.Host
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hosts: %w", err)
	}
	return hosts, nil
}

// DeleteHost removes a host. Its repos go with it.
func (db *DB) DeleteHost(ctx context.Context, id model.HostID) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM hosts WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete host: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHost(s scanner) (*model.Host, error) {
	var (
		h        model.Host
		id, kind string
	)
	err := s.Scan(&id, &h.Label, &kind, &h.APIURL, &h.Username, &h.CredentialKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan host: %w", err)
	}
	h.ID, _ = model.ParseHostID(id)
	h.Kind = parseOr(model.ParseKind, kind, model.KindGitHub)
	return &h, nil
}
