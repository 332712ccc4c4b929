// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/i18n"
	"github.com/tortoise-ln/tortoise/internal/monitor"
	"github.com/tortoise-ln/tortoise/internal/stats"
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
		PaymentHash:   from + to + ago.String(),
		FromChannelID: from,
		ToChannelID:   to,
		Timestamp:     eclair.Timestamp{Unix: now.Add(-ago).Unix()},
	}
}

// testSnapshot builds a snapshot of n normal channels the way the poller
// would, with two relays between the first two channels.
func testSnapshot(n int) monitor.Snapshot {
	aliases := map[string]string{}
	var chans []eclair.Channel
	for i := 0; i < n; i++ {
		node := fmt.Sprintf("node%02d", i)
		chans = append(chans, channel(fmt.Sprintf("chan%02d", i), node, eclair.StateNormal, uint64(i+1)*1_000_000, 500_000))
		aliases[node] = fmt.Sprintf("peer-%02d", i)
	}
	relayed := []eclair.Relayed{
		relay("chan00", "chan01", 10_000_000, 9_990_000, 2*time.Hour),
		relay("chan01", "chan00", 5_000_000, 4_995_000, time.Hour),
	}
	snap := monitor.Snapshot{
		TakenAt:  now,
		Node:     eclair.NodeInfo{Alias: "tortoise-node", Network: eclair.Mainnet},
		Channels: chans,
		Audit:    eclair.Audit{Relayed: relayed},
		Aliases:  aliases,
	}
	snap.Liquidity = stats.Buckets(chans)
	snap.Relays = stats.Relays(relayed, now)
	snap.ChannelStats = stats.PerChannel(chans, relayed, aliases)
	snap.Peers = stats.Peers(chans, aliases)
	return snap
}

func newTestModel(t *testing.T, width, height int) Model {
	t.Helper()
	i18n.Init("en")
	m := New(nil, Options{Now: func() time.Time { return now.Add(5 * time.Second) }})
	return update(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestWaitForSnapshot(t *testing.T) {
	ch := make(chan monitor.Snapshot, 1)
	ch <- monitor.Snapshot{TakenAt: now}
	msg := waitForSnapshot(ch)()
	sm, ok := msg.(snapshotMsg)
	if !ok || !sm.snap.TakenAt.Equal(now) {
		t.Fatalf("expected snapshotMsg at %v, got %#v", now, msg)
	}

	close(ch)
	if _, ok := waitForSnapshot(ch)().(feedClosedMsg); !ok {
		t.Fatalf("expected feedClosedMsg after close")
	}
}

func TestSnapshotKeepsWaiting(t *testing.T) {
	m := newTestModel(t, 120, 40)
	_, cmd := m.Update(snapshotMsg{snap: testSnapshot(2)})
	if cmd == nil {
		t.Fatalf("expected a command waiting for the next snapshot")
	}
}

func TestTabsCycleAndHotkeys(t *testing.T) {
	m := newTestModel(t, 120, 40)
	m = update(t, m, snapshotMsg{snap: testSnapshot(3)})
	if len(m.tabs) != 5 {
		t.Fatalf("expected 5 tabs without plugins, got %d", len(m.tabs))
	}

	for i := 0; i < 5; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if m.current() != dashboardTab {
		t.Fatalf("right should wrap back to dashboard, got %v", m.current())
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.current() != routingTab {
		t.Fatalf("left from dashboard should wrap to routing, got %v", m.current())
	}
	m = update(t, m, runes("l"))
	if m.current() != dashboardTab {
		t.Fatalf("l should move right, got %v", m.current())
	}

	for key, want := range map[string]tabID{"c": channelsTab, "p": peersTab, "o": onchainTab, "r": routingTab, "d": dashboardTab} {
		m = update(t, m, runes(key))
		if m.current() != want {
			t.Fatalf("hotkey %q: got tab %v, want %v", key, m.current(), want)
		}
	}

	// Hosted is not available without the plugin.
	m = update(t, m, runes("s"))
	if m.current() != dashboardTab {
		t.Fatalf("s without hosted plugin changed tab to %v", m.current())
	}
}

func TestPluginTabs(t *testing.T) {
	m := newTestModel(t, 120, 40)
	snap := testSnapshot(2)
	snap.Plugins = eclair.PluginSet{eclair.PluginHostedChannels: {}, eclair.PluginFiatChannels: {}}
	m = update(t, m, snapshotMsg{snap: snap})
	if len(m.tabs) != 7 {
		t.Fatalf("expected 7 tabs with both plugins, got %d", len(m.tabs))
	}
	m = update(t, m, runes("s"))
	if m.current() != hostedTab {
		t.Fatalf("s should open hosted, got %v", m.current())
	}
	if !strings.Contains(m.View(), "Suspended:") {
		t.Fatalf("hosted view should show plugin state labels")
	}
	m = update(t, m, runes("f"))
	if m.current() != fiatTab {
		t.Fatalf("f should open fiat, got %v", m.current())
	}
	if !strings.Contains(m.View(), "Fiat balance:") {
		t.Fatalf("fiat view should show the fiat balance section")
	}

	// The plugin disappears: fall back to the first tab.
	m = update(t, m, snapshotMsg{snap: testSnapshot(2)})
	if m.current() != dashboardTab {
		t.Fatalf("expected dashboard after fiat tab vanished, got %v", m.current())
	}
}

func TestTabSurvivesRefresh(t *testing.T) {
	m := newTestModel(t, 120, 40)
	m = update(t, m, snapshotMsg{snap: testSnapshot(2)})
	m = update(t, m, runes("o"))
	m = update(t, m, snapshotMsg{snap: testSnapshot(3)})
	if m.current() != onchainTab {
		t.Fatalf("refresh moved away from onchain to %v", m.current())
	}
}

func TestPagingIsClamped(t *testing.T) {
	m := newTestModel(t, 120, 30)
	m = update(t, m, snapshotMsg{snap: testSnapshot(30)})

	per := m.cardsPerPage()
	pages := stats.Pages(30, per)
	if pages < 2 {
		t.Fatalf("test needs several pages, got %d (per page %d)", pages, per)
	}

	m = update(t, m, runes("b"))
	if got := m.pages[dashboardTab]; got != 0 {
		t.Fatalf("paging up from the first page went to %d", got)
	}
	m = update(t, m, runes("n"))
	if got := m.pages[dashboardTab]; got != 1 {
		t.Fatalf("expected page 1, got %d", got)
	}
	for i := 0; i < pages+3; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	}
	if got := m.pages[dashboardTab]; got != pages-1 {
		t.Fatalf("expected last page %d, got %d", pages-1, got)
	}
	if !strings.Contains(m.View(), fmt.Sprintf("page %d/%d", pages, pages)) {
		t.Fatalf("footer should show the page indicator")
	}
}

func TestErrorPopupAndDismiss(t *testing.T) {
	m := newTestModel(t, 120, 40)
	dismissed := 0
	m.dismiss = func() { dismissed++ }

	snap := testSnapshot(2)
	snap.Errors = []monitor.ErrorEntry{{At: now, Err: errors.New("connection reset")}}
	m = update(t, m, snapshotMsg{snap: snap})

	view := m.View()
	if !strings.Contains(view, "Errors occurred") {
		t.Fatalf("expected error popup, got:\n%s", view)
	}
	if !strings.Contains(view, "App worker failed at 1792152000 with: connection reset") {
		t.Fatalf("expected the error line in the popup, got:\n%s", view)
	}

	// Other keys are swallowed while the popup is open.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.current() != dashboardTab {
		t.Fatalf("tab changed behind the popup")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if dismissed != 1 {
		t.Fatalf("expected dismiss to be called once, got %d", dismissed)
	}
	if strings.Contains(m.View(), "Errors occurred") {
		t.Fatalf("popup still shown after enter")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
		runes("q"),
	} {
		m := newTestModel(t, 80, 24)
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", msg)
		}
	}
}

func TestCopySelectedPeer(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error { copied = s; return nil }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, 160, 40)
	m = update(t, m, snapshotMsg{snap: testSnapshot(3)})
	m = update(t, m, runes("p"))
	m = update(t, m, runes("y"))

	// Peers are ordered by capacity, so the last channel comes first.
	if copied != "node02" {
		t.Fatalf("expected node02 on the clipboard, got %q", copied)
	}
	if !strings.Contains(m.status, "Copied") {
		t.Fatalf("expected a copied status, got %q", m.status)
	}

	writeClipboard = func(string) error { return errors.New("no display") }
	m = update(t, m, runes("y"))
	if !strings.Contains(m.status, "no display") {
		t.Fatalf("expected clipboard failure in status, got %q", m.status)
	}
}

func TestCopyOnlyOnPeersTab(t *testing.T) {
	called := false
	orig := writeClipboard
	writeClipboard = func(string) error { called = true; return nil }
	defer func() { writeClipboard = orig }()

	m := newTestModel(t, 120, 40)
	m = update(t, m, snapshotMsg{snap: testSnapshot(2)})
	update(t, m, runes("y"))
	if called {
		t.Fatalf("y copied outside the peers tab")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := renderSparkline([]uint64{0, 1, 50, 100}, 10); got != " ▁▄█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := renderSparkline([]uint64{100, 100, 100}, 2); got != "██" {
		t.Fatalf("expected truncation to width, got %q", got)
	}
	if got := renderSparkline([]uint64{100}, 0); got != "" {
		t.Fatalf("expected empty line for zero width, got %q", got)
	}
}

func TestResizeRecomputesSparklines(t *testing.T) {
	m := newTestModel(t, 40, 30)
	m = update(t, m, snapshotMsg{snap: testSnapshot(2)})
	if got, want := len(m.countLine.Points), m.innerWidth()-2; got != want {
		t.Fatalf("expected %d points at width 40, got %d", want, got)
	}
	if m.countLine.Max != 1 {
		t.Fatalf("expected a count max of 1, got %d", m.countLine.Max)
	}
	if m.volumeLine.Max != 10_000_000 {
		t.Fatalf("expected a volume max of 10000000 msat, got %d", m.volumeLine.Max)
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if got, want := len(m.countLine.Points), m.innerWidth()-2; got != want {
		t.Fatalf("expected %d points after resize, got %d", want, got)
	}
}

func TestDashboardView(t *testing.T) {
	m := newTestModel(t, 140, 45)
	if !strings.Contains(m.View(), "waiting for first refresh") {
		t.Fatalf("expected waiting message before the first snapshot")
	}

	m = update(t, m, snapshotMsg{snap: testSnapshot(2)})
	view := m.View()
	for _, want := range []string{"tortoise-node", "Mainnet", "Stats", "peer-00", "APR year:", "24h relay count (max: 1)", "updated 5s ago"} {
		if !strings.Contains(view, want) {
			t.Fatalf("dashboard missing %q:\n%s", want, view)
		}
	}
}

func TestChannelsAndOnchainViews(t *testing.T) {
	m := newTestModel(t, 120, 40)
	snap := testSnapshot(2)
	snap.Onchain = eclair.Balance{Confirmed: 1_500_000, Unconfirmed: 20_000}
	m = update(t, m, snapshotMsg{snap: snap})

	m = update(t, m, runes("c"))
	view := m.View()
	for _, want := range []string{"Active", "Pending", "Sleeping", "peer-01", "no channels"} {
		if !strings.Contains(view, want) {
			t.Fatalf("channels view missing %q:\n%s", want, view)
		}
	}

	m = update(t, m, runes("o"))
	view = m.View()
	for _, want := range []string{"1,500,000 sats", "20,000 sats", "1,520,000 sats"} {
		if !strings.Contains(view, want) {
			t.Fatalf("onchain view missing %q:\n%s", want, view)
		}
	}
}

func TestRoutingRowsNewestFirst(t *testing.T) {
	i18n.Init("en")
	rows := routingRows(testSnapshot(2))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// The relay one hour ago went from chan01 to chan00.
	if rows[0][1] != "peer-01" || rows[0][2] != "peer-00" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[0][3] != "5,000" || rows[0][4] != "5" {
		t.Fatalf("unexpected amounts in %v", rows[0])
	}
}

func TestRoutingRowsUnknownChannel(t *testing.T) {
	i18n.Init("en")
	snap := testSnapshot(1)
	long := strings.Repeat("ab", 32)
	snap.Audit.Relayed = []eclair.Relayed{relay(long, "chan00", 1000, 1000, time.Minute)}
	rows := routingRows(snap)
	if rows[0][1] != eclair.ShortNodeID(long) {
		t.Fatalf("expected shortened id for unknown channel, got %q", rows[0][1])
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, 120, 40)
	short := m.bodyHeight()
	m = update(t, m, runes("?"))
	if !m.help.ShowAll {
		t.Fatalf("? should show full help")
	}
	if m.bodyHeight() >= short {
		t.Fatalf("full help should take room from the body")
	}
}

func TestAlignFooter(t *testing.T) {
	if got := AlignFooter("left", "right", 15); got != "left      right" {
		t.Fatalf("unexpected footer %q", got)
	}
	if got := AlignFooter("left", "right", 3); got != "left right" {
		t.Fatalf("expected single space when too narrow, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("short strings must stay, got %q", got)
	}
}
