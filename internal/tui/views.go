// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/i18n"
	"github.com/tortoise-ln/tortoise/internal/monitor"
	"github.com/tortoise-ln/tortoise/internal/stats"
)

// channelsView lists channels in three columns by state group, largest
// first.
func (m Model) channelsView() string {
	all := slices.Clone(m.snap.ChannelStats)
	stats.SortByCapacity(all)

	groups := []struct {
		title string
		style lipgloss.Style
		match func(eclair.ChannelState) bool
	}{
		{i18n.T("channels.active"), activeStyle, eclair.ChannelState.IsNormal},
		{i18n.T("channels.pending"), pendingStyle, eclair.ChannelState.IsPending},
		{i18n.T("channels.sleeping"), sleepingStyle, eclair.ChannelState.IsSleeping},
	}

	colWidth := max(m.innerWidth()/len(groups), 2)
	inner := colWidth - 2
	height := max(m.bodyHeight()-2, 1)
	cols := make([]string, 0, len(groups))
	for _, g := range groups {
		lines := []string{g.style.Bold(true).Render(g.title)}
		for _, cs := range all {
			if !g.match(cs.State) {
				continue
			}
			amount := i18n.Sats(cs.Capacity())
			lines = append(lines, AlignFooter(truncate(cs.Alias, max(inner-lipgloss.Width(amount)-1, 1)), g.style.Render(amount), inner))
		}
		if len(lines) == 1 {
			lines = append(lines, helpStyle.Render(i18n.T("channels.empty")))
		}
		cols = append(cols, panelStyle.
			Width(inner).
			Height(height).
			MaxHeight(height+2).
			Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) onchainView() string {
	b := m.snap.Onchain
	width := min(statsWidth+10, m.innerWidth())
	inner := max(width-2, 0)
	sats := func(v uint64) string { return i18n.T("unit.sats", i18n.Number(v)) }
	lines := []string{
		titleStyle.Render(i18n.T("onchain.title")),
		AlignFooter(i18n.T("onchain.confirmed"), activeStyle.Render(sats(b.Confirmed)), inner),
		AlignFooter(i18n.T("onchain.unconfirmed"), pendingStyle.Render(sats(b.Unconfirmed)), inner),
		AlignFooter(i18n.T("onchain.total"), sats(b.Total()), inner),
	}
	return panelStyle.Width(inner).Render(strings.Join(lines, "\n"))
}

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)

	// d and f switch tabs, so the half-page and page-down bindings move to
	// keys nothing else uses.
	km := table.DefaultKeyMap()
	km.PageDown = key.NewBinding(key.WithKeys("pgdown", "n", " "))
	km.PageUp = key.NewBinding(key.WithKeys("pgup", "b"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	t.KeyMap = km
	return t
}

func peerColumns() []table.Column {
	return []table.Column{
		{Title: i18n.T("peers.alias"), Width: 24},
		{Title: i18n.T("peers.node"), Width: 66},
		{Title: i18n.T("peers.channels"), Width: 9},
		{Title: i18n.T("peers.capacity"), Width: 16},
	}
}

func peerRows(s monitor.Snapshot) []table.Row {
	rows := make([]table.Row, 0, len(s.Peers))
	for _, p := range s.Peers {
		rows = append(rows, table.Row{p.Alias, p.NodeID, i18n.Number(p.Channels), i18n.Sats(p.Capacity)})
	}
	return rows
}

func routingColumns() []table.Column {
	return []table.Column{
		{Title: i18n.T("routing.time"), Width: 17},
		{Title: i18n.T("routing.from"), Width: 22},
		{Title: i18n.T("routing.to"), Width: 22},
		{Title: i18n.T("routing.amount"), Width: 14},
		{Title: i18n.T("routing.fee"), Width: 10},
	}
}

// channelNames maps channel ids of regular and plugin channels to the
// alias of the peer.
func channelNames(s monitor.Snapshot) map[string]string {
	names := stats.ChannelAliases(s.Channels, s.Aliases)
	for _, cs := range s.HostedStats {
		names[cs.ChannelID] = cs.Alias
	}
	for _, fs := range s.FiatStats {
		names[fs.ChannelID] = fs.Alias
	}
	return names
}

// routingRows lists the relays of the audit window, newest first.
func routingRows(s monitor.Snapshot) []table.Row {
	relayed := slices.Clone(s.Audit.Relayed)
	slices.SortStableFunc(relayed, func(a, b eclair.Relayed) int {
		return cmp.Compare(b.At().UnixMilli(), a.At().UnixMilli())
	})
	names := channelNames(s)
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return eclair.ShortNodeID(id)
	}
	rows := make([]table.Row, 0, len(relayed))
	for _, r := range relayed {
		rows = append(rows, table.Row{
			r.At().Local().Format("2006-01-02 15:04"),
			name(r.FromChannelID),
			name(r.ToChannelID),
			i18n.Sats(r.AmountIn),
			i18n.Sats(r.Fee()),
		})
	}
	return rows
}

// errorsView centers a box over 80% of the width and half the height
// listing every error not yet dismissed.
func (m Model) errorsView() string {
	w := max(m.width*8/10, 10)
	h := max(m.height/2, 5)
	inner := max(w-dialogBoxStyle.GetHorizontalFrameSize(), 1)

	lines := []string{errorStyle.Bold(true).Render(i18n.T("errors.title")), ""}
	for _, e := range m.snap.Errors {
		lines = append(lines, lipgloss.NewStyle().Width(inner).Render(e.String()))
	}
	lines = append(lines, "", helpStyle.Render(i18n.T("errors.dismiss")))

	box := dialogBoxStyle.
		Width(inner + dialogBoxStyle.GetHorizontalPadding()).
		Height(max(h-dialogBoxStyle.GetVerticalFrameSize(), 1)).
		MaxHeight(h).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
