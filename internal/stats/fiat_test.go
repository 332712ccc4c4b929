// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tortoise-ln/tortoise/internal/eclair"
)

func pluginChannel(state eclair.ChannelState, remote string, local uint64, data eclair.PluginData) eclair.PluginChannel {
	data.Commitments.RemoteNodeID = remote
	return eclair.PluginChannel{
		State:         state,
		Data:          data,
		NextLocalSpec: eclair.CommitSpec{ToLocal: local, ToRemote: 1000},
	}
}

func TestRateSources(t *testing.T) {
	oracle := uint64(3_000_000)
	cases := []struct {
		name string
		data eclair.PluginData
		want uint64
	}{
		{"margin first", eclair.PluginData{
			MarginProposal:   &eclair.MarginProposal{NewRate: 1_000_000},
			OverrideProposal: &eclair.OverrideProposal{Rate: 2_000_000},
			LastOracleState:  &oracle,
		}, 1_000_000},
		{"override next", eclair.PluginData{
			OverrideProposal: &eclair.OverrideProposal{Rate: 2_000_000},
			LastOracleState:  &oracle,
		}, 2_000_000},
		{"oracle last", eclair.PluginData{LastOracleState: &oracle}, 3_000_000},
		{"nothing", eclair.PluginData{}, 0},
	}
	for _, tc := range cases {
		if got := Rate(tc.data); got != tc.want {
			t.Errorf("%s: Rate = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestFiatStats(t *testing.T) {
	oracle := uint64(4_000_000)
	pc := eclair.PluginChannels{Channels: map[string]eclair.PluginChannel{
		"f2": pluginChannel(eclair.StateOffline, "n2", 8_000_000, eclair.PluginData{LastOracleState: &oracle}),
		"f1": pluginChannel(eclair.StateNormal, "n1", 20_000_000, eclair.PluginData{LastOracleState: &oracle}),
		"f3": pluginChannel(eclair.StateNormal, "n3", 5_000_000, eclair.PluginData{}),
	}}
	got := Fiat(pc, nil, map[string]string{"n1": "alice"})
	if len(got) != 3 || got[0].ChannelID != "f1" || got[1].ChannelID != "f2" {
		t.Fatalf("fiat stats are ordered by channel id: %+v", got)
	}
	if got[0].Alias != "alice" || got[0].Local != 20_000_000 || got[0].Remote != 1000 {
		t.Fatalf("fiat base stats: %+v", got[0].ChannelStats)
	}
	if got[0].FiatBalance() != 5 {
		t.Fatalf("FiatBalance = %v", got[0].FiatBalance())
	}
	if got[0].ReverseRate() != 25_000 {
		t.Fatalf("ReverseRate = %v", got[0].ReverseRate())
	}
	if got[2].FiatBalance() != 0 || got[2].ReverseRate() != 0 {
		t.Fatalf("a channel without a rate has no fiat value")
	}

	if v := FiatBalanceBy(got, eclair.ChannelState.IsNormal); v != 5 {
		t.Fatalf("active fiat balance = %v", v)
	}
	if v := FiatBalanceBy(got, eclair.ChannelState.IsSleeping); v != 2 {
		t.Fatalf("offline fiat balance = %v", v)
	}
	if v := TotalFiatBalance(got); math.Abs(v-7) > 1e-9 {
		t.Fatalf("total fiat balance = %v", v)
	}

	l := BucketsOf(FiatChannelStats(got))
	want := Liquidity{ActiveCount: 2, SleepingCount: 1, ActiveMsat: 25_000_000, SleepingMsat: 8_000_000}
	if diff := cmp.Diff(want, l); diff != "" {
		t.Fatalf("fiat buckets (-want +got):\n%s", diff)
	}
}

func TestHostedRelays(t *testing.T) {
	pc := eclair.PluginChannels{Channels: map[string]eclair.PluginChannel{
		"h1": pluginChannel(eclair.StateNormal, "n1", 500, eclair.PluginData{}),
	}}
	relayed := []eclair.Relayed{relay("x", "h1", 1200, 1000, 0)}
	got := Hosted(pc, relayed, nil)
	want := []ChannelStats{{
		ChannelID: "h1", NodeID: "n1", Alias: "n1", State: eclair.StateNormal,
		Local: 500, Remote: 1000, RelayCount: 1, RelayVolume: 1200, Fees: 200,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Hosted mismatch (-want +got):\n%s", diff)
	}
}
