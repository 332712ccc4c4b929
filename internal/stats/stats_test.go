// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package stats

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tortoise-ln/tortoise/internal/eclair"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func channel(id, node string, state eclair.ChannelState, local, remote uint64) eclair.Channel {
	return eclair.Channel{
		NodeID:    node,
		ChannelID: id,
		State:     state,
		Data: &eclair.ChannelData{Commitments: eclair.Commitments{
			ChannelID:   id,
			LocalCommit: eclair.LocalCommit{Spec: eclair.CommitSpec{ToLocal: local, ToRemote: remote}},
		}},
	}
}

func relay(from, to string, in, out uint64, ago time.Duration) eclair.Relayed {
	return eclair.Relayed{
		AmountIn:      in,
		AmountOut:     out,
		PaymentHash:   from + to,
		FromChannelID: from,
		ToChannelID:   to,
		Timestamp:     eclair.Timestamp{Unix: now.Add(-ago).Unix()},
	}
}

func TestBuckets(t *testing.T) {
	chans := []eclair.Channel{
		channel("a", "n1", eclair.StateNormal, 1000, 1),
		channel("b", "n2", eclair.StateNormal, 2000, 1),
		channel("c", "n3", eclair.StateOpening, 300, 0),
		channel("d", "n4", eclair.StateWaitForFundingConfirmed, 400, 0),
		channel("e", "n5", eclair.StateOffline, 50, 0),
		channel("f", "n6", eclair.StateClosed, 999999, 0),
		{NodeID: "n7", ChannelID: "g", State: eclair.StateSyncing},
	}
	got := Buckets(chans)
	want := Liquidity{
		ActiveCount: 2, PendingCount: 3, SleepingCount: 1,
		ActiveMsat: 3000, PendingMsat: 700, SleepingMsat: 50,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Buckets mismatch (-want +got):\n%s", diff)
	}
	if got.LocalVolume() != 3750 {
		t.Fatalf("LocalVolume = %d", got.LocalVolume())
	}
}

func TestRelaysWindows(t *testing.T) {
	relayed := []eclair.Relayed{
		relay("a", "b", 1_001_000, 1_000_000, time.Hour),
		relay("b", "a", 2_000_500, 2_000_000, 23*time.Hour),
		relay("a", "b", 5_000_100, 5_000_000, 3*Day),
		relay("a", "b", 9_000_000, 8_000_000, 31*Day),
	}
	got := Relays(relayed, now)
	want := RelayTotals{
		CountDay: 2, CountMonth: 3,
		VolumeDay: 3_001_500, VolumeMonth: 8_001_600,
		FeeDay: 1500, FeeMonth: 1600,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Relays mismatch (-want +got):\n%s", diff)
	}
}

func TestPercentAndReturnRate(t *testing.T) {
	if got := RelayedPercent(50, 200); got != 25 {
		t.Fatalf("RelayedPercent = %v", got)
	}
	if got := RelayedPercent(50, 0); got != 0 {
		t.Fatalf("RelayedPercent with no liquidity = %v", got)
	}
	if got := ReturnRate(1000, 1_200_000); math.Abs(got-1) > 1e-9 {
		t.Fatalf("ReturnRate = %v, want 1", got)
	}
	if got := ReturnRate(1000, 0); got != 0 {
		t.Fatalf("ReturnRate with no liquidity = %v", got)
	}
}

func TestPerChannel(t *testing.T) {
	chans := []eclair.Channel{
		channel("a", "n1", eclair.StateNormal, 600, 400),
		channel("b", "0312345678901234567890", eclair.StateOffline, 10, 0),
	}
	relayed := []eclair.Relayed{
		relay("a", "b", 1100, 1000, time.Hour),
		relay("b", "a", 2050, 2000, time.Hour),
		relay("a", "a", 300, 290, time.Hour),
	}
	got := PerChannel(chans, relayed, map[string]string{"n1": "alice"})
	want := []ChannelStats{
		{ChannelID: "a", NodeID: "n1", Alias: "alice", State: eclair.StateNormal, Local: 600, Remote: 400,
			RelayCount: 3, RelayVolume: 3450, Fees: 60},
		{ChannelID: "b", NodeID: "0312345678901234567890", Alias: "03123456…34567890", State: eclair.StateOffline, Local: 10,
			RelayCount: 2, RelayVolume: 3150, Fees: 100},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("PerChannel mismatch (-want +got):\n%s", diff)
	}
	if r := got[0].LocalRatio(); r != 0.6 {
		t.Fatalf("LocalRatio = %v", r)
	}
	if r := (ChannelStats{}).LocalRatio(); r != 0 {
		t.Fatalf("empty channel ratio = %v", r)
	}

	SortByRelayVolume(got)
	if got[0].ChannelID != "a" {
		t.Fatalf("sort by relay volume: %v", got[0].ChannelID)
	}
	SortByCapacity(got)
	if got[0].ChannelID != "a" || got[1].ChannelID != "b" {
		t.Fatalf("sort by capacity: %v", got)
	}
}

func TestPeersAndChannelAliases(t *testing.T) {
	chans := []eclair.Channel{
		channel("a", "n1", eclair.StateNormal, 100, 100),
		channel("b", "n2", eclair.StateNormal, 1000, 0),
		channel("c", "n1", eclair.StateOffline, 50, 50),
	}
	aliases := map[string]string{"n1": "alice", "n2": "bob"}
	got := Peers(chans, aliases)
	want := []Peer{
		{NodeID: "n2", Alias: "bob", Channels: 1, Capacity: 1000},
		{NodeID: "n1", Alias: "alice", Channels: 2, Capacity: 300},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Peers mismatch (-want +got):\n%s", diff)
	}
	ca := ChannelAliases(chans, aliases)
	if ca["c"] != "alice" || ca["b"] != "bob" {
		t.Fatalf("ChannelAliases = %v", ca)
	}
}

func TestPaginate(t *testing.T) {
	cases := []struct {
		n, page, per, start, end int
	}{
		{10, 0, 4, 0, 4},
		{10, 1, 4, 4, 8},
		{10, 2, 4, 8, 10},
		{10, 3, 4, 10, 10},
		{0, 0, 4, 0, 0},
		{10, -1, 4, 0, 0},
		{10, 0, 0, 0, 0},
	}
	for _, tc := range cases {
		s, e := Paginate(tc.n, tc.page, tc.per)
		if s != tc.start || e != tc.end {
			t.Errorf("Paginate(%d,%d,%d) = [%d,%d), want [%d,%d)", tc.n, tc.page, tc.per, s, e, tc.start, tc.end)
		}
	}
	if Pages(0, 4) != 1 || Pages(9, 4) != 3 || Pages(8, 4) != 2 {
		t.Fatalf("Pages wrong")
	}
}
