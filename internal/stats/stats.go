// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package stats derives liquidity and routing figures from Eclair replies.
// Everything here is a pure function of its inputs; amounts are msat.
package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/tortoise-ln/tortoise/internal/eclair"
)

const (
	Day   = 24 * time.Hour
	Month = 30 * Day
)

// Liquidity groups channels by state.
type Liquidity struct {
	ActiveCount   int
	PendingCount  int
	SleepingCount int
	ActiveMsat    uint64
	PendingMsat   uint64
	SleepingMsat  uint64
}

// LocalVolume is our balance over all three groups.
func (l Liquidity) LocalVolume() uint64 {
	return l.ActiveMsat + l.PendingMsat + l.SleepingMsat
}

func (l *Liquidity) add(state eclair.ChannelState, local uint64) {
	switch {
	case state.IsNormal():
		l.ActiveCount++
		l.ActiveMsat += local
	case state.IsPending():
		l.PendingCount++
		l.PendingMsat += local
	case state.IsSleeping():
		l.SleepingCount++
		l.SleepingMsat += local
	}
}

// Buckets sums our side of every channel per state group. Closed and
// unknown states are left out.
func Buckets(chans []eclair.Channel) Liquidity {
	var l Liquidity
	for _, c := range chans {
		l.add(c.State, c.Local())
	}
	return l
}

// BucketsOf does the same as Buckets for already computed channel stats.
func BucketsOf(stats []ChannelStats) Liquidity {
	var l Liquidity
	for _, s := range stats {
		l.add(s.State, s.Local)
	}
	return l
}

// RelayTotals are relay counts, volumes (amount in) and fees per window.
type RelayTotals struct {
	CountDay    int
	CountMonth  int
	VolumeDay   uint64
	VolumeMonth uint64
	FeeDay      uint64
	FeeMonth    uint64
}

// Relays totals the relays of the last day and of the last 30 days.
func Relays(relayed []eclair.Relayed, now time.Time) RelayTotals {
	var t RelayTotals
	dayStart, monthStart := now.Add(-Day), now.Add(-Month)
	for _, r := range relayed {
		at := r.At()
		if !at.After(monthStart) {
			continue
		}
		t.CountMonth++
		t.VolumeMonth += r.AmountIn
		t.FeeMonth += r.Fee()
		if at.After(dayStart) {
			t.CountDay++
			t.VolumeDay += r.AmountIn
			t.FeeDay += r.Fee()
		}
	}
	return t
}

// RelayedPercent is the monthly relay volume relative to our liquidity.
func RelayedPercent(monthVolume, localVolume uint64) float64 {
	if localVolume == 0 {
		return 0
	}
	return 100 * float64(monthVolume) / float64(localVolume)
}

// ReturnRate annualises the monthly fee income against our liquidity, in
// percent.
func ReturnRate(monthFee, localVolume uint64) float64 {
	if localVolume == 0 {
		return 0
	}
	return 100 * float64(monthFee*12) / float64(localVolume)
}

// ChannelStats is what a channel card shows.
type ChannelStats struct {
	ChannelID   string
	NodeID      string
	Alias       string
	State       eclair.ChannelState
	Local       uint64
	Remote      uint64
	RelayCount  int
	RelayVolume uint64
	Fees        uint64
}

func (s ChannelStats) Capacity() uint64 { return s.Local + s.Remote }

// LocalRatio is the share of the capacity on our side, 0 for an empty
// channel.
func (s ChannelStats) LocalRatio() float64 {
	c := s.Capacity()
	if c == 0 {
		return 0
	}
	return float64(s.Local) / float64(c)
}

// aliasOr returns the known alias of id or a shortened id.
func aliasOr(aliases map[string]string, id string) string {
	if a := aliases[id]; a != "" {
		return a
	}
	return eclair.ShortNodeID(id)
}

type relayAcc struct {
	count  int
	volume uint64
	fees   uint64
}

// perChannelRelays counts a relay for both channels it touched. The fee is
// credited to the outgoing channel only.
func perChannelRelays(relayed []eclair.Relayed) map[string]relayAcc {
	acc := make(map[string]relayAcc)
	for _, r := range relayed {
		in := acc[r.FromChannelID]
		in.count++
		in.volume += r.AmountIn
		acc[r.FromChannelID] = in

		out := acc[r.ToChannelID]
		if r.ToChannelID != r.FromChannelID {
			out.count++
			out.volume += r.AmountIn
		}
		out.fees += r.Fee()
		acc[r.ToChannelID] = out
	}
	return acc
}

// PerChannel builds one ChannelStats per channel, in channel order.
// aliases maps node ids to their announced alias.
func PerChannel(chans []eclair.Channel, relayed []eclair.Relayed, aliases map[string]string) []ChannelStats {
	acc := perChannelRelays(relayed)
	out := make([]ChannelStats, 0, len(chans))
	for _, c := range chans {
		a := acc[c.ChannelID]
		out = append(out, ChannelStats{
			ChannelID:   c.ChannelID,
			NodeID:      c.NodeID,
			Alias:       aliasOr(aliases, c.NodeID),
			State:       c.State,
			Local:       c.Local(),
			Remote:      c.Remote(),
			RelayCount:  a.count,
			RelayVolume: a.volume,
			Fees:        a.fees,
		})
	}
	return out
}

// Hosted builds stats for plugin channels, ordered by channel id. Balances
// come from the next local spec and the alias from the remote node.
func Hosted(pc eclair.PluginChannels, relayed []eclair.Relayed, aliases map[string]string) []ChannelStats {
	acc := perChannelRelays(relayed)
	out := make([]ChannelStats, 0, len(pc.Channels))
	for id, c := range pc.Channels {
		remote := c.Data.Commitments.RemoteNodeID
		a := acc[id]
		out = append(out, ChannelStats{
			ChannelID:   id,
			NodeID:      remote,
			Alias:       aliasOr(aliases, remote),
			State:       c.State,
			Local:       c.Local(),
			Remote:      c.Remote(),
			RelayCount:  a.count,
			RelayVolume: a.volume,
			Fees:        a.fees,
		})
	}
	slices.SortFunc(out, func(a, b ChannelStats) int { return cmp.Compare(a.ChannelID, b.ChannelID) })
	return out
}

// SortByRelayVolume orders stats by relay volume, largest first. Ties keep
// their order.
func SortByRelayVolume(stats []ChannelStats) {
	slices.SortStableFunc(stats, func(a, b ChannelStats) int { return cmp.Compare(b.RelayVolume, a.RelayVolume) })
}

// SortByCapacity orders stats by capacity, largest first.
func SortByCapacity(stats []ChannelStats) {
	slices.SortStableFunc(stats, func(a, b ChannelStats) int { return cmp.Compare(b.Capacity(), a.Capacity()) })
}

// Peer aggregates the channels we have with one node.
type Peer struct {
	NodeID   string
	Alias    string
	Channels int
	Capacity uint64
}

// Peers groups channels by node, largest capacity first.
func Peers(chans []eclair.Channel, aliases map[string]string) []Peer {
	idx := make(map[string]int)
	var out []Peer
	for _, c := range chans {
		i, ok := idx[c.NodeID]
		if !ok {
			i = len(out)
			idx[c.NodeID] = i
			out = append(out, Peer{NodeID: c.NodeID, Alias: aliasOr(aliases, c.NodeID)})
		}
		out[i].Channels++
		out[i].Capacity += c.Volume()
	}
	slices.SortStableFunc(out, func(a, b Peer) int { return cmp.Compare(b.Capacity, a.Capacity) })
	return out
}

// ChannelAliases maps channel ids to the alias of the peer on the other end.
func ChannelAliases(chans []eclair.Channel, aliases map[string]string) map[string]string {
	out := make(map[string]string, len(chans))
	for _, c := range chans {
		out[c.ChannelID] = aliasOr(aliases, c.NodeID)
	}
	return out
}

// Paginate returns the [start, end) window of page for n items. Negative
// pages and pages past the end give an empty window.
func Paginate(n, page, perPage int) (start, end int) {
	if perPage <= 0 || page < 0 {
		return 0, 0
	}
	start = min(page*perPage, n)
	end = min(start+perPage, n)
	return start, end
}

// Pages is the number of pages needed for n items, at least one.
func Pages(n, perPage int) int {
	if perPage <= 0 || n <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}
