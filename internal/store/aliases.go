// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"time"

	"github.com/uptrace/bun/dialect"
)

// Aliases returns every stored alias keyed by node id.
func (s *Store) Aliases(ctx context.Context) (map[string]Alias, error) {
	var rows []aliasModel
	if err := s.bun.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]Alias, len(rows))
	for _, r := range rows {
		out[r.NodeID] = aliasModelToAlias(r)
	}
	return out, nil
}

// SaveAliases inserts aliases or refreshes the stored ones.
func (s *Store) SaveAliases(ctx context.Context, aliases []Alias) error {
	if len(aliases) == 0 {
		return nil
	}
	rows := make([]aliasModel, 0, len(aliases))
	for _, a := range aliases {
		updated := a.UpdatedAt
		if updated.IsZero() {
			updated = time.Now()
		}
		rows = append(rows, aliasModel{NodeID: a.NodeID, Alias: a.Alias, Color: a.Color, UpdatedAt: updated.UTC()})
	}

	q := s.bun.NewInsert().Model(&rows)
	if s.bun.Dialect().Name() == dialect.MySQL {
		q = q.On("DUPLICATE KEY UPDATE").
			Set("alias = VALUES(alias)").
			Set("color = VALUES(color)").
			Set("updated_at = VALUES(updated_at)")
	} else {
		q = q.On("CONFLICT (node_id) DO UPDATE").
			Set("alias = EXCLUDED.alias").
			Set("color = EXCLUDED.color").
			Set("updated_at = EXCLUDED.updated_at")
	}
	_, err := q.Exec(ctx)
	return MapError(err)
}

// StaleAliases returns the ids among ids that have no alias or whose alias
// was refreshed more than maxAge before now.
func (s *Store) StaleAliases(ctx context.Context, ids []string, maxAge time.Duration, now time.Time) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	known, err := s.Aliases(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-maxAge)
	var stale []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, ok := known[id]
		if !ok || a.UpdatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale, nil
}
