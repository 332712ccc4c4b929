// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tortoise-ln/tortoise/internal/i18n"
	"github.com/tortoise-ln/tortoise/internal/stats"
)

const (
	statsWidth  = 38
	cardHeight  = 5
	sparkHeight = 4
)

// sparkGlyphs are the eight block levels; a zero slot stays blank.
var sparkGlyphs = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// renderSparkline draws up to width points scaled 0..100.
func renderSparkline(points []uint64, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range points {
		if i >= width {
			break
		}
		level := (min(p, 100)*8 + 99) / 100
		b.WriteRune(sparkGlyphs[level])
	}
	return b.String()
}

// sparklines computes both 24h lines for the current width. The bordered
// panel leaves width-2 columns, which is what Sparkline yields for width-1.
func (m Model) sparklines() (count, volume stats.Line) {
	w := m.innerWidth()
	if !m.snap.Ready() || w <= stats.LineMargins {
		return stats.Line{}, stats.Line{}
	}
	relayed := m.snap.Audit.Relayed
	count = stats.Sparkline(relayed, m.snap.TakenAt, w-1, stats.CountWeight)
	volume = stats.Sparkline(relayed, m.snap.TakenAt, w-1, stats.VolumeWeight)
	return count, volume
}

func (m Model) sparklinesView() string {
	w := m.innerWidth()
	count := sparkPanel(i18n.T("spark.count", i18n.Number(m.countLine.Max)), m.countLine, w)
	volume := sparkPanel(i18n.T("spark.volume", i18n.Sats(m.volumeLine.Max)), m.volumeLine, w)
	return lipgloss.JoinVertical(lipgloss.Left, count, volume)
}

func sparkPanel(title string, line stats.Line, width int) string {
	inner := max(width-2, 0)
	content := titleStyle.Render(truncate(title, inner)) + "\n" +
		activeStyle.Render(renderSparkline(line.Points, inner))
	return panelStyle.Width(inner).Render(content)
}

// statRow is one label/value line of a stats panel. A row without value
// is a section heading; an empty row is a spacer.
type statRow struct {
	label string
	value string
	style lipgloss.Style
}

func heading(s string) statRow { return statRow{label: titleStyle.Render(s)} }

func row(label, value string, style lipgloss.Style) statRow {
	return statRow{label: label, value: value, style: style}
}

func statsPanel(rows []statRow, width, height int) string {
	inner := max(width-2, 0)
	lines := []string{titleStyle.Render(i18n.T("stats.title"))}
	for _, r := range rows {
		if r.value == "" {
			lines = append(lines, r.label)
			continue
		}
		lines = append(lines, AlignFooter(r.label, r.style.Render(r.value), inner))
	}
	return panelStyle.
		Width(inner).
		Height(max(height-2, 0)).
		MaxHeight(max(height, 0)).
		Render(strings.Join(lines, "\n"))
}

func satsText(msat uint64) string { return i18n.T("unit.sats", i18n.Sats(msat)) }

func percentText(v float64) string { return i18n.Printer().Sprintf("%.2f %%", v) }

// activityText renders active/pending/sleeping counts in their colors.
func activityText(l stats.Liquidity) string {
	return activeStyle.Render(i18n.Number(l.ActiveCount)) + "/" +
		pendingStyle.Render(i18n.Number(l.PendingCount)) + "/" +
		sleepingStyle.Render(i18n.Number(l.SleepingCount))
}

// relayRows are the relay and fee sections shared by the dashboard and
// the plugin tabs.
func (m Model) relayRows() []statRow {
	s := m.snap
	plain := lipgloss.NewStyle()
	return []statRow{
		{},
		heading(i18n.T("stats.relayed")),
		row(i18n.T("stats.per_day"), i18n.Number(s.Relays.CountDay), activeStyle),
		row(i18n.T("stats.per_month"), i18n.Number(s.Relays.CountMonth), activeStyle),
		row(i18n.T("stats.per_day"), satsText(s.Relays.VolumeDay), activeStyle),
		row(i18n.T("stats.per_month"), satsText(s.Relays.VolumeMonth), activeStyle),
		row(i18n.T("stats.percent"), percentText(s.RelayedPercent), plain),
		{},
		heading(i18n.T("stats.fees")),
		row(i18n.T("stats.per_day"), satsText(s.Relays.FeeDay), activeStyle),
		row(i18n.T("stats.per_month"), satsText(s.Relays.FeeMonth), activeStyle),
		row(i18n.T("stats.apr"), percentText(s.ReturnRate), specialStyle),
	}
}

func (m Model) dashboardView() string {
	s := m.snap
	l := s.Liquidity
	rows := []statRow{
		row(i18n.T("stats.node"), s.Node.Alias, titleStyle),
		row(i18n.T("stats.network"), s.Node.Network.String(), lipgloss.NewStyle()),
		row(i18n.T("stats.activity"), activityText(l), lipgloss.NewStyle()),
		{},
		heading(i18n.T("stats.volumes")),
		row(i18n.T("stats.active"), satsText(l.ActiveMsat), activeStyle),
		row(i18n.T("stats.pending"), satsText(l.PendingMsat), pendingStyle),
		row(i18n.T("stats.sleeping"), satsText(l.SleepingMsat), sleepingStyle),
	}
	rows = append(rows, m.relayRows()...)

	cards := slices.Clone(s.ChannelStats)
	stats.SortByRelayVolume(cards)
	return m.cardLayout(rows, len(cards), func(i, width int) string {
		return m.channelCard(cards[i], width, m.relayLine(cards[i]))
	})
}

// cardLayout places the stats column left of the current page of cards,
// with the sparklines underneath.
func (m Model) cardLayout(rows []statRow, n int, card func(i, width int) string) string {
	top := max(m.bodyHeight()-2*sparkHeight, cardHeight)
	left := statsPanel(rows, statsWidth, top)

	width := max(m.innerWidth()-statsWidth, 0)
	start, end := stats.Paginate(n, m.pages[m.current()], m.cardsPerPage())
	var cards []string
	if n == 0 {
		cards = append(cards, helpStyle.Render(i18n.T("channels.empty")))
	}
	for i := start; i < end; i++ {
		cards = append(cards, panelStyle.Width(max(width-2, 0)).Render(card(i, max(width-2, 0))))
	}
	right := lipgloss.JoinVertical(lipgloss.Left, cards...)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.sparklinesView(),
	)
}

// channelCard renders the alias, a local/remote gauge and one line of
// figures inside width columns.
func (m Model) channelCard(cs stats.ChannelStats, width int, figures string) string {
	label := fmt.Sprintf("%s/%s", i18n.Sats(cs.Local), i18n.Sats(cs.Remote))
	g := m.gauge
	g.Width = max(width-lipgloss.Width(label)-1, 1)
	return strings.Join([]string{
		titleStyle.Render(truncate(cs.Alias, width)),
		g.ViewAs(cs.LocalRatio()) + " " + label,
		truncate(figures, width),
	}, "\n")
}

func (m Model) relayLine(cs stats.ChannelStats) string {
	return i18n.T("card.relays") + i18n.Number(cs.RelayCount) +
		"  " + i18n.T("card.fees") + satsText(cs.Fees) +
		"  " + i18n.T("card.volume") + satsText(cs.RelayVolume)
}

func (m Model) paged() bool {
	switch m.current() {
	case dashboardTab, hostedTab, fiatTab:
		return true
	}
	return false
}

func (m Model) cardCount() int { return m.cardCountOf(m.current()) }

func (m Model) cardCountOf(id tabID) int {
	switch id {
	case dashboardTab:
		return len(m.snap.ChannelStats)
	case hostedTab:
		return len(m.snap.HostedStats)
	case fiatTab:
		return len(m.snap.FiatStats)
	}
	return 0
}

func (m Model) cardsPerPage() int {
	return max((m.bodyHeight()-2*sparkHeight)/cardHeight, 1)
}

// truncate cuts s to width printed columns, marking the cut with an
// ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
