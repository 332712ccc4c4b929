// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"errors"
)

// SaveSnapshot appends a snapshot row and returns it with its id set.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	m := snapshotToModel(snap)
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return Snapshot{}, MapError(err)
	}
	return snapshotModelToSnapshot(m), nil
}

// LatestSnapshot returns the most recent snapshot, or nil when there is none.
func (s *Store) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	var m snapshotModel
	err := s.bun.NewSelect().Model(&m).OrderExpr("id DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap := snapshotModelToSnapshot(m)
	return &snap, nil
}
