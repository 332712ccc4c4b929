// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"time"
)

// RecordRelays stores relays that are not stored yet and reports how many
// were new. Relays already present are skipped silently.
func (s *Store) RecordRelays(ctx context.Context, relays []Relay) (int, error) {
	if len(relays) == 0 {
		return 0, nil
	}
	rows := make([]relayModel, 0, len(relays))
	for _, r := range relays {
		rows = append(rows, relayToModel(r))
	}
	res, err := s.bun.NewInsert().Model(&rows).Ignore().Exec(ctx)
	if err != nil {
		return 0, MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// RelaysSince returns relays at or after since, oldest first.
func (s *Store) RelaysSince(ctx context.Context, since time.Time) ([]Relay, error) {
	var rows []relayModel
	err := s.bun.NewSelect().Model(&rows).
		Where("relayed_at >= ?", since.UnixMilli()).
		OrderExpr("relayed_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Relay, 0, len(rows))
	for _, r := range rows {
		out = append(out, relayModelToRelay(r))
	}
	return out, nil
}

// PruneRelays deletes relays older than before.
func (s *Store) PruneRelays(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.bun.NewDelete().Model((*relayModel)(nil)).
		Where("relayed_at < ?", before.UnixMilli()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
