// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/i18n"
	"github.com/tortoise-ln/tortoise/internal/stats"
)

// pluginActivityRows shows channel counts the way the plugins name their
// states: pending channels are suspended, sleeping ones offline.
func pluginActivityRows(l stats.Liquidity) []statRow {
	return []statRow{
		heading(i18n.T("stats.activity")),
		row(i18n.T("stats.active"), i18n.Number(l.ActiveCount), activeStyle),
		row(i18n.T("stats.suspended"), i18n.Number(l.PendingCount), pendingStyle),
		row(i18n.T("stats.offline"), i18n.Number(l.SleepingCount), sleepingStyle),
	}
}

func (m Model) hostedView() string {
	l := stats.BucketsOf(m.snap.HostedStats)
	rows := pluginActivityRows(l)
	rows = append(rows,
		statRow{},
		heading(i18n.T("stats.volumes")),
		row(i18n.T("stats.active"), satsText(l.ActiveMsat), activeStyle),
		row(i18n.T("stats.suspended"), satsText(l.PendingMsat), pendingStyle),
		row(i18n.T("stats.offline"), satsText(l.SleepingMsat), sleepingStyle),
	)
	rows = append(rows, m.relayRows()...)

	cards := slices.Clone(m.snap.HostedStats)
	stats.SortByRelayVolume(cards)
	return m.cardLayout(rows, len(cards), func(i, width int) string {
		return m.channelCard(cards[i], width, m.relayLine(cards[i]))
	})
}

func fiatText(v float64) string { return i18n.Printer().Sprintf("%.2f", v) }

func (m Model) fiatView() string {
	fs := m.snap.FiatStats
	l := stats.BucketsOf(stats.FiatChannelStats(fs))
	rows := pluginActivityRows(l)
	rows = append(rows,
		statRow{},
		heading(i18n.T("fiat.balance")),
		row(i18n.T("stats.active"), fiatText(stats.FiatBalanceBy(fs, eclair.ChannelState.IsNormal)), activeStyle),
		row(i18n.T("stats.suspended"), fiatText(stats.FiatBalanceBy(fs, eclair.ChannelState.IsPending)), pendingStyle),
		row(i18n.T("stats.offline"), fiatText(stats.FiatBalanceBy(fs, eclair.ChannelState.IsSleeping)), sleepingStyle),
		row(i18n.T("fiat.total"), fiatText(stats.TotalFiatBalance(fs)), lipgloss.NewStyle().Bold(true)),
	)

	cards := slices.Clone(fs)
	slices.SortStableFunc(cards, func(a, b stats.FiatStats) int {
		return compareRelayVolume(a.ChannelStats, b.ChannelStats)
	})
	return m.cardLayout(rows, len(cards), func(i, width int) string {
		return m.channelCard(cards[i].ChannelStats, width, fiatLine(cards[i]))
	})
}

func compareRelayVolume(a, b stats.ChannelStats) int {
	switch {
	case a.RelayVolume > b.RelayVolume:
		return -1
	case a.RelayVolume < b.RelayVolume:
		return 1
	}
	return 0
}

func fiatLine(f stats.FiatStats) string {
	return i18n.T("card.rate") + satsText(f.Rate) +
		"  " + i18n.T("card.balance") + fiatText(f.FiatBalance()) +
		"  " + i18n.T("card.reverse_rate") + i18n.Number(uint64(f.ReverseRate()+0.5))
}
