// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Tortoise.
// This file, tui.go, holds the top-level model: the tab bar, key handling
// and the subscription to the poller's snapshots. The tabs render
// themselves from the latest snapshot in the sibling files.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/i18n"
	"github.com/tortoise-ln/tortoise/internal/logging"
	"github.com/tortoise-ln/tortoise/internal/monitor"
	"github.com/tortoise-ln/tortoise/internal/stats"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// tabID identifies a tab independently of its position in the bar.
type tabID int

const (
	dashboardTab tabID = iota
	channelsTab
	peersTab
	onchainTab
	routingTab
	hostedTab
	fiatTab
)

type tabDef struct {
	id       tabID
	titleKey string
	hotkey   string
}

var allTabs = []tabDef{
	{dashboardTab, "tab.dashboard", "d"},
	{channelsTab, "tab.channels", "c"},
	{peersTab, "tab.peers", "p"},
	{onchainTab, "tab.onchain", "o"},
	{routingTab, "tab.routing", "r"},
	{hostedTab, "tab.hosted", "s"},
	{fiatTab, "tab.fiat", "f"},
}

// snapshotMsg carries a snapshot published by the poller.
type snapshotMsg struct {
	snap monitor.Snapshot
}

// feedClosedMsg signals that the poller stopped publishing.
type feedClosedMsg struct{}

type tickMsg time.Time

// waitForSnapshot blocks on the poller channel for the next snapshot.
func waitForSnapshot(ch <-chan monitor.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

// Options tune the UI.
type Options struct {
	// Dismiss clears accumulated errors at their source, usually
	// monitor.Poller.Dismiss.
	Dismiss func()
	// Tick is how often the "updated ... ago" status is redrawn.
	Tick time.Duration
	Now  func() time.Time
}

// Model is the top-level bubbletea model.
type Model struct {
	snaps   <-chan monitor.Snapshot
	dismiss func()
	tick    time.Duration
	now     func() time.Time
	clock   time.Time

	keys keyMap
	help help.Model

	tabs   []tabDef
	active int
	pages  map[tabID]int

	width  int
	height int

	snap       monitor.Snapshot
	countLine  stats.Line
	volumeLine stats.Line

	gauge   progress.Model
	peers   table.Model
	routing table.Model

	status string
	closed bool
}

// New builds the model reading snapshots from snaps.
func New(snaps <-chan monitor.Snapshot, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	m := Model{
		snaps:   snaps,
		dismiss: opts.Dismiss,
		tick:    tick,
		now:     now,
		clock:   now(),
		keys:    newKeyMap(),
		help:    help.New(),
		pages:   map[tabID]int{},
		gauge: progress.New(
			progress.WithSolidFill(string(colorSuccess)),
			progress.WithoutPercentage(),
		),
		peers:   newTable(peerColumns()),
		routing: newTable(routingColumns()),
	}
	m.tabs = visibleTabs(nil)
	return m
}

// Run shows the UI until the user quits or ctx is done.
func Run(ctx context.Context, snaps <-chan monitor.Snapshot, opts Options) error {
	p := tea.NewProgram(New(snaps, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(i18n.T("app.title")), waitForSnapshot(m.snaps), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// visibleTabs returns the base tabs plus those of the supported plugins.
func visibleTabs(plugins eclair.PluginSet) []tabDef {
	var out []tabDef
	for _, t := range allTabs {
		switch t.id {
		case hostedTab:
			if !plugins.Has(eclair.PluginHostedChannels) {
				continue
			}
		case fiatTab:
			if !plugins.Has(eclair.PluginFiatChannels) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func (m Model) current() tabID {
	if m.active < 0 || m.active >= len(m.tabs) {
		return dashboardTab
	}
	return m.tabs[m.active].id
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case snapshotMsg:
		m.setSnapshot(msg.snap)
		return m, waitForSnapshot(m.snaps)

	case feedClosedMsg:
		m.closed = true
		return m, nil

	case tickMsg:
		m.clock = time.Time(msg)
		return m, m.tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	// The error popup takes all input until it is dismissed.
	if m.showErrors() {
		if key.Matches(msg, m.keys.Dismiss) {
			m.dismissErrors()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.selectTab((m.active + 1) % len(m.tabs))
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.selectTab((m.active - 1 + len(m.tabs)) % len(m.tabs))
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case m.paged() && key.Matches(msg, m.keys.NextPage):
		id := m.current()
		m.pages[id] = min(m.pages[id]+1, stats.Pages(m.cardCount(), m.cardsPerPage())-1)
		return m, nil
	case m.paged() && key.Matches(msg, m.keys.PrevPage):
		id := m.current()
		m.pages[id] = max(m.pages[id]-1, 0)
		return m, nil
	case m.current() == peersTab && key.Matches(msg, m.keys.Copy):
		m.copySelectedPeer()
		return m, nil
	}

	for i, t := range m.tabs {
		if msg.String() == t.hotkey {
			m.selectTab(i)
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.current() {
	case peersTab:
		m.peers, cmd = m.peers.Update(msg)
	case routingTab:
		m.routing, cmd = m.routing.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectTab(i int) {
	m.active = i
	m.status = ""
	switch m.current() {
	case peersTab:
		m.peers.Focus()
		m.routing.Blur()
	case routingTab:
		m.routing.Focus()
		m.peers.Blur()
	default:
		m.peers.Blur()
		m.routing.Blur()
	}
}

func (m Model) showErrors() bool { return len(m.snap.Errors) > 0 }

func (m *Model) dismissErrors() {
	m.snap.Errors = nil
	if m.dismiss != nil {
		m.dismiss()
	}
}

func (m *Model) copySelectedPeer() {
	row := m.peers.SelectedRow()
	if len(row) < 2 {
		return
	}
	id := row[1]
	if err := writeClipboard(id); err != nil {
		logging.Warnf("tui: clipboard: %v", err)
		m.status = errorStyle.Render(i18n.T("peers.copy_failed", err))
		return
	}
	m.status = statusMessageStyle.Render(i18n.T("peers.copied", eclair.ShortNodeID(id)))
}

// setSnapshot adopts snap, keeping the selected tab when it still exists.
func (m *Model) setSnapshot(snap monitor.Snapshot) {
	prev := m.current()
	m.snap = snap
	m.tabs = visibleTabs(snap.Plugins)
	m.active = 0
	for i, t := range m.tabs {
		if t.id == prev {
			m.active = i
		}
	}
	for id, p := range m.pages {
		m.pages[id] = min(p, stats.Pages(m.cardCountOf(id), m.cardsPerPage())-1)
	}
	m.peers.SetRows(peerRows(snap))
	m.routing.SetRows(routingRows(snap))
	m.layout()
}

// layout recomputes everything that depends on the window size.
func (m *Model) layout() {
	h := max(m.bodyHeight()-1, 1)
	m.peers.SetHeight(h)
	m.routing.SetHeight(h)
	m.peers.SetWidth(m.innerWidth())
	m.routing.SetWidth(m.innerWidth())
	m.countLine, m.volumeLine = m.sparklines()
}

func (m Model) innerWidth() int {
	return max(m.width-docStyle.GetHorizontalFrameSize(), 0)
}

// bodyHeight is what is left between the tab bar and the footer.
func (m Model) bodyHeight() int {
	footer := 1
	if m.help.ShowAll {
		footer += lipgloss.Height(m.help.View(m.keys))
	}
	return max(m.height-1-footer, 0)
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.showErrors() {
		return m.errorsView()
	}

	var body string
	switch {
	case !m.snap.Ready():
		body = helpStyle.Render(i18n.T("status.waiting"))
	default:
		switch m.current() {
		case dashboardTab:
			body = m.dashboardView()
		case channelsTab:
			body = m.channelsView()
		case peersTab:
			body = m.peers.View()
		case onchainTab:
			body = m.onchainView()
		case routingTab:
			body = m.routing.View()
		case hostedTab:
			body = m.hostedView()
		case fiatTab:
			body = m.fiatView()
		}
	}
	body = lipgloss.NewStyle().
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight()).
		Render(body)

	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.footer())
	return docStyle.Render(b.String())
}

// tabBar renders the titles with each tab's hotkey highlighted.
func (m Model) tabBar() string {
	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		style := tabStyle
		if i == m.active {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(highlightHotkey(i18n.T(t.titleKey), t.hotkey, style)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// highlightHotkey colors the first occurrence of hotkey in title.
func highlightHotkey(title, hotkey string, base lipgloss.Style) string {
	i := strings.Index(strings.ToLower(title), hotkey)
	if i < 0 {
		return title
	}
	hk := hotkeyStyle.Inherit(base).UnsetPadding()
	rest := base.UnsetPadding()
	return rest.Render(title[:i]) + hk.Render(title[i:i+len(hotkey)]) + rest.Render(title[i+len(hotkey):])
}

func (m Model) footer() string {
	var left string
	switch {
	case m.closed:
		left = errorStyle.Render(i18n.T("status.stopped"))
	case !m.snap.Ready():
		left = helpStyle.Render(i18n.T("status.waiting"))
	default:
		ago := m.clock.Sub(m.snap.TakenAt).Round(time.Second)
		left = helpStyle.Render(i18n.T("status.updated", max(ago, 0)))
	}
	if m.paged() {
		page := m.pages[m.current()]
		left += helpStyle.Render(fmt.Sprintf("  %s", i18n.T("status.page", page+1, stats.Pages(m.cardCount(), m.cardsPerPage()))))
	}
	if m.status != "" {
		left += "  " + m.status
	}
	if m.help.ShowAll {
		return left + "\n" + m.help.View(m.keys)
	}
	return AlignFooter(left, m.help.View(m.keys), m.innerWidth())
}
