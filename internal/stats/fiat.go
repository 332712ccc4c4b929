// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package stats

import (
	"github.com/tortoise-ln/tortoise/internal/eclair"
)

// msatPerBTC is 10^11.
const msatPerBTC = 1e11

// FiatStats is a fiat channel with the rate it is pegged at, in msat per
// fiat unit.
type FiatStats struct {
	ChannelStats
	Rate uint64
}

// FiatBalance is our local balance in fiat units.
func (f FiatStats) FiatBalance() float64 {
	if f.Rate == 0 {
		return 0
	}
	return float64(f.Local) / float64(f.Rate)
}

// ReverseRate is the fiat price of one bitcoin.
func (f FiatStats) ReverseRate() float64 {
	if f.Rate == 0 {
		return 0
	}
	return msatPerBTC / float64(f.Rate)
}

// Rate picks the most recent rate a fiat channel knows: a pending margin
// proposal, then an override, then the last oracle reading.
func Rate(d eclair.PluginData) uint64 {
	switch {
	case d.MarginProposal != nil && d.MarginProposal.NewRate > 0:
		return d.MarginProposal.NewRate
	case d.OverrideProposal != nil && d.OverrideProposal.Rate > 0:
		return d.OverrideProposal.Rate
	case d.LastOracleState != nil:
		return *d.LastOracleState
	}
	return 0
}

// Fiat builds FiatStats for every fiat channel, ordered by channel id.
func Fiat(pc eclair.PluginChannels, relayed []eclair.Relayed, aliases map[string]string) []FiatStats {
	base := Hosted(pc, relayed, aliases)
	out := make([]FiatStats, 0, len(base))
	for _, s := range base {
		out = append(out, FiatStats{ChannelStats: s, Rate: Rate(pc.Channels[s.ChannelID].Data)})
	}
	return out
}

// FiatBalanceBy sums the fiat balance of channels whose state matches.
func FiatBalanceBy(stats []FiatStats, match func(eclair.ChannelState) bool) float64 {
	var total float64
	for _, s := range stats {
		if match(s.State) {
			total += s.FiatBalance()
		}
	}
	return total
}

// TotalFiatBalance sums the fiat balance of every channel.
func TotalFiatBalance(stats []FiatStats) float64 {
	return FiatBalanceBy(stats, func(eclair.ChannelState) bool { return true })
}

// FiatChannelStats strips the fiat part, for bucketing.
func FiatChannelStats(stats []FiatStats) []ChannelStats {
	out := make([]ChannelStats, len(stats))
	for i, s := range stats {
		out[i] = s.ChannelStats
	}
	return out
}
