// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package monitor polls an Eclair node and publishes immutable snapshots of
// its state and derived statistics.
package monitor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/logging"
	"github.com/tortoise-ln/tortoise/internal/stats"
	"github.com/tortoise-ln/tortoise/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultAliasMaxAge is how long a peer alias is trusted before it is
// fetched again.
const DefaultAliasMaxAge = 24 * time.Hour

// API is the part of the Eclair client the poller uses.
type API interface {
	GetInfo(ctx context.Context) (eclair.NodeInfo, error)
	Channels(ctx context.Context) ([]eclair.Channel, error)
	Audit(ctx context.Context, from, to time.Time) (eclair.Audit, error)
	Nodes(ctx context.Context, ids []string) ([]eclair.NetworkNode, error)
	OnchainBalance(ctx context.Context) (eclair.Balance, error)
	SupportedPlugins(ctx context.Context) (eclair.PluginSet, error)
	HostedChannels(ctx context.Context) (eclair.PluginChannels, error)
	FiatChannels(ctx context.Context) (eclair.PluginChannels, error)
}

// Store is the part of the state database the poller uses.
type Store interface {
	Aliases(ctx context.Context) (map[string]store.Alias, error)
	SaveAliases(ctx context.Context, aliases []store.Alias) error
	StaleAliases(ctx context.Context, ids []string, maxAge time.Duration, now time.Time) ([]string, error)
	RecordRelays(ctx context.Context, relays []store.Relay) (int, error)
	SaveSnapshot(ctx context.Context, snap store.Snapshot) (store.Snapshot, error)
}

type Options struct {
	// Node is the getinfo reply obtained at startup, if any.
	Node *eclair.NodeInfo
	// Now replaces time.Now, for tests.
	Now         func() time.Time
	AliasMaxAge time.Duration
}

// Poller refreshes node state. Refresh and Run are meant for one goroutine;
// Dismiss and Latest may be called from any.
type Poller struct {
	api         API
	store       Store
	now         func() time.Time
	aliasMaxAge time.Duration

	mu            sync.Mutex
	node          eclair.NodeInfo
	plugins       eclair.PluginSet
	aliases       map[string]string
	aliasesLoaded bool
	errors        []ErrorEntry
	last          Snapshot
}

// NewPoller creates a poller. st may be nil, in which case nothing is
// persisted and aliases are cached in memory only.
func NewPoller(api API, st Store, opts Options) *Poller {
	p := &Poller{
		api:         api,
		store:       st,
		now:         opts.Now,
		aliasMaxAge: opts.AliasMaxAge,
		aliases:     map[string]string{},
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.aliasMaxAge <= 0 {
		p.aliasMaxAge = DefaultAliasMaxAge
	}
	if opts.Node != nil {
		p.node = *opts.Node
	}
	return p
}

// Latest returns the most recently published snapshot.
func (p *Poller) Latest() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Dismiss clears the accumulated errors.
func (p *Poller) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = nil
	p.last.Errors = nil
}

// Run refreshes immediately and then every interval until ctx is done,
// sending each snapshot to out. A failed refresh sends the previous
// snapshot with the failure added to its errors.
func (p *Poller) Run(ctx context.Context, interval time.Duration, out chan<- Snapshot) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		snap, err := p.Refresh(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Warnf("monitor: refresh failed: %v", err)
			snap = p.fail(ErrorEntry{At: p.now(), Err: err})
		}
		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) fail(e ErrorEntry) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, e)
	p.last.Errors = slices.Clone(p.errors)
	return p.last
}

// partial collects failures of optional parts of one refresh.
type partial struct {
	at   time.Time
	errs []ErrorEntry
}

func (pe *partial) add(source string, err error) {
	logging.Warnf("monitor: %s: %v", source, err)
	pe.errs = append(pe.errs, ErrorEntry{At: pe.at, Source: source, Err: err})
}

// Refresh fetches the node state once and computes a snapshot. Only a failed
// channels or audit fetch fails the refresh; other failures are recorded in
// the snapshot errors.
func (p *Poller) Refresh(ctx context.Context) (Snapshot, error) {
	now := p.now()
	pe := &partial{at: now}

	var (
		chans      []eclair.Channel
		audit      eclair.Audit
		onchain    eclair.Balance
		onchainErr error
		node       eclair.NodeInfo
		nodeErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chans, err = p.api.Channels(gctx)
		if err != nil {
			return fmt.Errorf("channels: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		audit, err = p.api.Audit(gctx, now.Add(-stats.Month), now)
		if err != nil {
			return fmt.Errorf("audit: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		onchain, onchainErr = p.api.OnchainBalance(gctx)
		return nil
	})
	g.Go(func() error {
		node, nodeErr = p.api.GetInfo(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if onchainErr != nil {
		pe.add("onchain balance", onchainErr)
	}

	p.mu.Lock()
	if nodeErr != nil {
		node = p.node
	} else {
		p.node = node
	}
	plugins := p.plugins
	p.mu.Unlock()
	if nodeErr != nil {
		pe.add("node info", nodeErr)
	}

	if plugins == nil {
		detected, err := p.api.SupportedPlugins(ctx)
		if err != nil {
			pe.add("plugins", err)
		} else {
			logging.Infof("monitor: supported plugins: %s", detected)
			plugins = detected
			p.mu.Lock()
			p.plugins = detected
			p.mu.Unlock()
		}
	}

	var hosted, fiat eclair.PluginChannels
	if plugins.Has(eclair.PluginHostedChannels) {
		var err error
		if hosted, err = p.api.HostedChannels(ctx); err != nil {
			pe.add("hosted channels", err)
		}
	}
	if plugins.Has(eclair.PluginFiatChannels) {
		var err error
		if fiat, err = p.api.FiatChannels(ctx); err != nil {
			pe.add("fiat channels", err)
		}
	}

	aliases := p.resolveAliases(ctx, now, peerIDs(chans, hosted, fiat), pe)
	p.recordRelays(ctx, audit.Relayed, pe)

	snap := Snapshot{
		TakenAt:  now,
		Node:     node,
		Channels: chans,
		Audit:    audit,
		Aliases:  aliases,
		Plugins:  plugins,
		Hosted:   hosted,
		Fiat:     fiat,
		Onchain:  onchain,
	}
	snap.Liquidity = stats.Buckets(chans)
	snap.Relays = stats.Relays(audit.Relayed, now)
	local := snap.Liquidity.LocalVolume()
	snap.RelayedPercent = stats.RelayedPercent(snap.Relays.VolumeMonth, local)
	snap.ReturnRate = stats.ReturnRate(snap.Relays.FeeMonth, local)
	snap.ChannelStats = stats.PerChannel(chans, audit.Relayed, aliases)
	snap.HostedStats = stats.Hosted(hosted, audit.Relayed, aliases)
	snap.FiatStats = stats.Fiat(fiat, audit.Relayed, aliases)
	snap.Peers = stats.Peers(chans, aliases)

	p.saveSnapshot(ctx, snap, pe)

	p.mu.Lock()
	p.errors = append(p.errors, pe.errs...)
	snap.Errors = slices.Clone(p.errors)
	p.last = snap
	p.mu.Unlock()
	return snap, nil
}

// peerIDs lists every remote node id once, in first-seen order.
func peerIDs(chans []eclair.Channel, plugin ...eclair.PluginChannels) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range chans {
		add(c.NodeID)
	}
	for _, pc := range plugin {
		keys := make([]string, 0, len(pc.Channels))
		for k := range pc.Channels {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			add(pc.Channels[k].Data.Commitments.RemoteNodeID)
		}
	}
	return ids
}

// resolveAliases returns a copy of the alias cache after fetching the
// aliases that are missing or stale.
func (p *Poller) resolveAliases(ctx context.Context, now time.Time, ids []string, pe *partial) map[string]string {
	p.mu.Lock()
	loaded := p.aliasesLoaded
	p.mu.Unlock()

	if !loaded && p.store != nil {
		stored, err := p.store.Aliases(ctx)
		if err != nil {
			pe.add("stored aliases", err)
		} else {
			p.mu.Lock()
			for id, a := range stored {
				p.aliases[id] = a.Alias
			}
			p.aliasesLoaded = true
			p.mu.Unlock()
		}
	}

	var stale []string
	if p.store != nil {
		var err error
		if stale, err = p.store.StaleAliases(ctx, ids, p.aliasMaxAge, now); err != nil {
			pe.add("stale aliases", err)
			stale = nil
		}
	} else {
		p.mu.Lock()
		for _, id := range ids {
			if _, ok := p.aliases[id]; !ok {
				stale = append(stale, id)
			}
		}
		p.mu.Unlock()
	}

	if len(stale) > 0 {
		nodes, err := p.api.Nodes(ctx, stale)
		if err != nil {
			pe.add("node aliases", err)
		} else {
			fresh := make([]store.Alias, 0, len(stale))
			announced := make(map[string]bool, len(nodes))
			p.mu.Lock()
			for _, n := range nodes {
				announced[n.NodeID] = true
				p.aliases[n.NodeID] = n.Alias
				fresh = append(fresh, store.Alias{NodeID: n.NodeID, Alias: n.Alias, Color: n.RGBColor, UpdatedAt: now})
			}
			// Peers without an announcement get an empty alias, so they are
			// asked for again only once it goes stale.
			for _, id := range stale {
				if !announced[id] {
					p.aliases[id] = ""
					fresh = append(fresh, store.Alias{NodeID: id, UpdatedAt: now})
				}
			}
			p.mu.Unlock()
			if p.store != nil {
				if err := p.store.SaveAliases(ctx, fresh); err != nil {
					pe.add("saving aliases", err)
				}
			}
			logging.Debugf("monitor: resolved %d of %d aliases", len(nodes), len(stale))
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.aliases))
	for k, v := range p.aliases {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func (p *Poller) recordRelays(ctx context.Context, relayed []eclair.Relayed, pe *partial) {
	if p.store == nil || len(relayed) == 0 {
		return
	}
	rows := make([]store.Relay, 0, len(relayed))
	for _, r := range relayed {
		rows = append(rows, store.Relay{
			PaymentHash:   r.PaymentHash,
			FromChannelID: r.FromChannelID,
			ToChannelID:   r.ToChannelID,
			AmountIn:      r.AmountIn,
			AmountOut:     r.AmountOut,
			RelayedAt:     r.At(),
		})
	}
	n, err := p.store.RecordRelays(ctx, rows)
	if err != nil {
		pe.add("recording relays", err)
		return
	}
	if n > 0 {
		logging.Debugf("monitor: recorded %d new relays", n)
	}
}

func (p *Poller) saveSnapshot(ctx context.Context, snap Snapshot, pe *partial) {
	if p.store == nil {
		return
	}
	l, r := snap.Liquidity, snap.Relays
	_, err := p.store.SaveSnapshot(ctx, store.Snapshot{
		TakenAt:       snap.TakenAt,
		ActiveMsat:    l.ActiveMsat,
		PendingMsat:   l.PendingMsat,
		SleepingMsat:  l.SleepingMsat,
		RelayedDay:    r.VolumeDay,
		RelayedMonth:  r.VolumeMonth,
		FeeDay:        r.FeeDay,
		FeeMonth:      r.FeeMonth,
		ActiveChans:   l.ActiveCount,
		PendingChans:  l.PendingCount,
		SleepingChans: l.SleepingCount,
	})
	if err != nil {
		pe.add("saving snapshot", err)
	}
}
