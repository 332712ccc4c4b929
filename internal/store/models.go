// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"time"

	"github.com/uptrace/bun"
)

// Alias is the announced name of a peer node.
type Alias struct {
	NodeID    string
	Alias     string
	Color     string
	UpdatedAt time.Time
}

// Relay is one forwarded payment. Amounts are msat.
type Relay struct {
	PaymentHash   string
	FromChannelID string
	ToChannelID   string
	AmountIn      uint64
	AmountOut     uint64
	RelayedAt     time.Time
}

// Snapshot is the persisted summary of one refresh. Amounts are msat.
type Snapshot struct {
	ID            int64
	TakenAt       time.Time
	ActiveMsat    uint64
	PendingMsat   uint64
	SleepingMsat  uint64
	RelayedDay    uint64
	RelayedMonth  uint64
	FeeDay        uint64
	FeeMonth      uint64
	ActiveChans   int
	PendingChans  int
	SleepingChans int
}

// aliasModel maps node_aliases.
type aliasModel struct {
	bun.BaseModel `bun:"table:node_aliases"`
	NodeID        string    `bun:"node_id,pk"`
	Alias         string    `bun:"alias"`
	Color         string    `bun:"color"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// relayModel maps relays. relayed_at is unix milliseconds so the unique
// key compares exactly on every engine.
type relayModel struct {
	bun.BaseModel `bun:"table:relays"`
	ID            int64  `bun:"id,pk,autoincrement"`
	PaymentHash   string `bun:"payment_hash"`
	FromChannelID string `bun:"from_channel_id"`
	ToChannelID   string `bun:"to_channel_id"`
	AmountIn      int64  `bun:"amount_in"`
	AmountOut     int64  `bun:"amount_out"`
	RelayedAt     int64  `bun:"relayed_at"`
}

// snapshotModel maps snapshots. The *_sats columns hold msat.
type snapshotModel struct {
	bun.BaseModel `bun:"table:snapshots"`
	ID            int64     `bun:"id,pk,autoincrement"`
	TakenAt       time.Time `bun:"taken_at"`
	ActiveSats    int64     `bun:"active_sats"`
	PendingSats   int64     `bun:"pending_sats"`
	SleepingSats  int64     `bun:"sleeping_sats"`
	RelayedDay    int64     `bun:"relayed_day"`
	RelayedMonth  int64     `bun:"relayed_month"`
	FeeDay        int64     `bun:"fee_day"`
	FeeMonth      int64     `bun:"fee_month"`
	ActiveChans   int       `bun:"active_chans"`
	PendingChans  int       `bun:"pending_chans"`
	SleepingChans int       `bun:"sleeping_chans"`
}

func aliasModelToAlias(m aliasModel) Alias {
	return Alias{NodeID: m.NodeID, Alias: m.Alias, Color: m.Color, UpdatedAt: m.UpdatedAt.UTC()}
}

func relayToModel(r Relay) relayModel {
	return relayModel{
		PaymentHash:   r.PaymentHash,
		FromChannelID: r.FromChannelID,
		ToChannelID:   r.ToChannelID,
		AmountIn:      int64(r.AmountIn),
		AmountOut:     int64(r.AmountOut),
		RelayedAt:     r.RelayedAt.UnixMilli(),
	}
}

func relayModelToRelay(m relayModel) Relay {
	return Relay{
		PaymentHash:   m.PaymentHash,
		FromChannelID: m.FromChannelID,
		ToChannelID:   m.ToChannelID,
		AmountIn:      uint64(m.AmountIn),
		AmountOut:     uint64(m.AmountOut),
		RelayedAt:     time.UnixMilli(m.RelayedAt).UTC(),
	}
}

func snapshotToModel(s Snapshot) snapshotModel {
	return snapshotModel{
		TakenAt:       s.TakenAt.UTC(),
		ActiveSats:    int64(s.ActiveMsat),
		PendingSats:   int64(s.PendingMsat),
		SleepingSats:  int64(s.SleepingMsat),
		RelayedDay:    int64(s.RelayedDay),
		RelayedMonth:  int64(s.RelayedMonth),
		FeeDay:        int64(s.FeeDay),
		FeeMonth:      int64(s.FeeMonth),
		ActiveChans:   s.ActiveChans,
		PendingChans:  s.PendingChans,
		SleepingChans: s.SleepingChans,
	}
}

func snapshotModelToSnapshot(m snapshotModel) Snapshot {
	return Snapshot{
		ID:            m.ID,
		TakenAt:       m.TakenAt.UTC(),
		ActiveMsat:    uint64(m.ActiveSats),
		PendingMsat:   uint64(m.PendingSats),
		SleepingMsat:  uint64(m.SleepingSats),
		RelayedDay:    uint64(m.RelayedDay),
		RelayedMonth:  uint64(m.RelayedMonth),
		FeeDay:        uint64(m.FeeDay),
		FeeMonth:      uint64(m.FeeMonth),
		ActiveChans:   m.ActiveChans,
		PendingChans:  m.PendingChans,
		SleepingChans: m.SleepingChans,
	}
}
