// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tortoise-ln/tortoise/buildvars"
	"github.com/tortoise-ln/tortoise/internal/config"
	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/i18n"
	"github.com/tortoise-ln/tortoise/internal/logging"
	"github.com/tortoise-ln/tortoise/internal/monitor"
	"github.com/tortoise-ln/tortoise/internal/store"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Refresh once and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			s, err := openSession(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			// Read before refreshing, which stores a new snapshot.
			prev, err := s.store.LatestSnapshot(ctx)
			if err != nil {
				logging.Warnf("reading previous snapshot: %v", err)
			}
			snap, err := s.poller.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			relays, err := s.store.RelaysSince(ctx, snap.TakenAt.Add(-historyDays*24*time.Hour))
			if err != nil {
				logging.Warnf("reading relay history: %v", err)
			}

			rep := newStatusReport(snap)
			rep.Previous = sinceLastRun(prev, snap)
			if err == nil {
				rep.History = relayHistoryOf(relays)
			}
			if asJSON {
				return writeStatusJSON(cmd.OutOrStdout(), rep)
			}
			return writeStatus(cmd.OutOrStdout(), snap, rep)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

// statusReport is the JSON form of a snapshot summary. Amounts are sats.
type statusReport struct {
	Version        string        `json:"version"`
	TakenAt        time.Time     `json:"taken_at"`
	NodeID         string        `json:"node_id"`
	Alias          string        `json:"alias"`
	Network        string        `json:"network"`
	BlockHeight    uint64        `json:"block_height"`
	Plugins        string        `json:"plugins"`
	ActiveChans    int           `json:"active_channels"`
	PendingChans   int           `json:"pending_channels"`
	SleepingChans  int           `json:"sleeping_channels"`
	ActiveSats     uint64        `json:"active_sats"`
	PendingSats    uint64        `json:"pending_sats"`
	SleepingSats   uint64        `json:"sleeping_sats"`
	RelayedDay     int           `json:"relayed_count_day"`
	RelayedMonth   int           `json:"relayed_count_month"`
	VolumeDay      uint64        `json:"relayed_sats_day"`
	VolumeMonth    uint64        `json:"relayed_sats_month"`
	FeeDay         uint64        `json:"fee_sats_day"`
	FeeMonth       uint64        `json:"fee_sats_month"`
	RelayedPercent float64       `json:"relayed_percent"`
	ReturnRate     float64       `json:"return_rate_percent"`
	OnchainConf    uint64        `json:"onchain_confirmed_sats"`
	OnchainUnconf  uint64        `json:"onchain_unconfirmed_sats"`
	Previous       *runDelta     `json:"since_last_run,omitempty"`
	History        *relayHistory `json:"relay_history,omitempty"`
	Errors         []string      `json:"errors,omitempty"`
}

// historyDays is how far back status sums the stored relays. It exceeds
// the 30 days the node's audit covers.
const historyDays = 90

// runDelta compares this refresh with the snapshot stored by the previous
// run. Amounts are sats.
type runDelta struct {
	Since        time.Time `json:"since"`
	Channels     int       `json:"channels"`
	ActiveSats   int64     `json:"active_sats"`
	RelayedMonth int64     `json:"relayed_sats_month"`
	FeeMonth     int64     `json:"fee_sats_month"`
}

func sinceLastRun(prev *store.Snapshot, snap monitor.Snapshot) *runDelta {
	if prev == nil {
		return nil
	}
	l, r := snap.Liquidity, snap.Relays
	diff := func(cur, old uint64) int64 { return int64(cur/1000) - int64(old/1000) }
	return &runDelta{
		Since:        prev.TakenAt.UTC(),
		Channels:     l.ActiveCount + l.PendingCount + l.SleepingCount - prev.ActiveChans - prev.PendingChans - prev.SleepingChans,
		ActiveSats:   diff(l.ActiveMsat, prev.ActiveMsat),
		RelayedMonth: diff(r.VolumeMonth, prev.RelayedMonth),
		FeeMonth:     diff(r.FeeMonth, prev.FeeMonth),
	}
}

// relayHistory sums the relays kept in the state database.
type relayHistory struct {
	Days       int    `json:"days"`
	Count      int    `json:"count"`
	VolumeSats uint64 `json:"volume_sats"`
	FeeSats    uint64 `json:"fee_sats"`
}

func relayHistoryOf(relays []store.Relay) *relayHistory {
	h := &relayHistory{Days: historyDays, Count: len(relays)}
	var volume, fees uint64
	for _, r := range relays {
		volume += r.AmountIn
		if r.AmountIn > r.AmountOut {
			fees += r.AmountIn - r.AmountOut
		}
	}
	h.VolumeSats, h.FeeSats = volume/1000, fees/1000
	return h
}

func newStatusReport(snap monitor.Snapshot) statusReport {
	l, r := snap.Liquidity, snap.Relays
	rep := statusReport{
		Version:        buildvars.Describe(),
		TakenAt:        snap.TakenAt.UTC(),
		NodeID:         snap.Node.NodeID,
		Alias:          snap.Node.Alias,
		Network:        snap.Node.Network.String(),
		BlockHeight:    snap.Node.BlockHeight,
		Plugins:        snap.Plugins.String(),
		ActiveChans:    l.ActiveCount,
		PendingChans:   l.PendingCount,
		SleepingChans:  l.SleepingCount,
		ActiveSats:     l.ActiveMsat / 1000,
		PendingSats:    l.PendingMsat / 1000,
		SleepingSats:   l.SleepingMsat / 1000,
		RelayedDay:     r.CountDay,
		RelayedMonth:   r.CountMonth,
		VolumeDay:      r.VolumeDay / 1000,
		VolumeMonth:    r.VolumeMonth / 1000,
		FeeDay:         r.FeeDay / 1000,
		FeeMonth:       r.FeeMonth / 1000,
		RelayedPercent: snap.RelayedPercent,
		ReturnRate:     snap.ReturnRate,
		OnchainConf:    snap.Onchain.Confirmed,
		OnchainUnconf:  snap.Onchain.Unconfirmed,
	}
	for _, e := range snap.Errors {
		rep.Errors = append(rep.Errors, e.String())
	}
	return rep
}

func writeStatusJSON(w io.Writer, rep statusReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeStatus(w io.Writer, snap monitor.Snapshot, rep statusReport) error {
	l, r := snap.Liquidity, snap.Relays
	sats := func(msat uint64) string { return i18n.T("unit.sats", i18n.Sats(msat)) }
	p := i18n.Printer()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	line := func(label, value string) { fmt.Fprintf(tw, "%s\t%s\n", label, value) }
	line(i18n.T("stats.node"), fmt.Sprintf("%s (%s)", snap.Node.Alias, eclair.ShortNodeID(snap.Node.NodeID)))
	line(i18n.T("stats.network"), snap.Node.Network.String())
	line(i18n.T("stats.activity"), fmt.Sprintf("%d/%d/%d", l.ActiveCount, l.PendingCount, l.SleepingCount))
	line(i18n.T("stats.active"), sats(l.ActiveMsat))
	line(i18n.T("stats.pending"), sats(l.PendingMsat))
	line(i18n.T("stats.sleeping"), sats(l.SleepingMsat))
	line(i18n.T("stats.relayed")+" "+i18n.T("stats.per_day"), fmt.Sprintf("%s / %s", i18n.Number(r.CountDay), sats(r.VolumeDay)))
	line(i18n.T("stats.relayed")+" "+i18n.T("stats.per_month"), fmt.Sprintf("%s / %s", i18n.Number(r.CountMonth), sats(r.VolumeMonth)))
	line(i18n.T("stats.relayed")+" "+i18n.T("stats.percent"), p.Sprintf("%.2f %%", snap.RelayedPercent))
	line(i18n.T("stats.fees")+" "+i18n.T("stats.per_day"), sats(r.FeeDay))
	line(i18n.T("stats.fees")+" "+i18n.T("stats.per_month"), sats(r.FeeMonth))
	line(i18n.T("stats.apr"), p.Sprintf("%.2f %%", snap.ReturnRate))
	line(i18n.T("onchain.confirmed"), i18n.T("unit.sats", i18n.Number(snap.Onchain.Confirmed)))
	line(i18n.T("onchain.unconfirmed"), i18n.T("unit.sats", i18n.Number(snap.Onchain.Unconfirmed)))
	if h := rep.History; h != nil {
		line(i18n.T("status.history", h.Days), fmt.Sprintf("%s / %s / %s",
			i18n.Number(h.Count), i18n.T("unit.sats", i18n.Number(h.VolumeSats)), i18n.T("unit.sats", i18n.Number(h.FeeSats))))
	}
	if d := rep.Previous; d != nil {
		signed := func(n int64) string { return p.Sprintf("%+d", n) }
		line(i18n.T("status.previous", d.Since.Local().Format(time.DateTime)), fmt.Sprintf("%s / %s / %s / %s",
			signed(int64(d.Channels)), i18n.T("unit.sats", signed(d.ActiveSats)),
			i18n.T("unit.sats", signed(d.RelayedMonth)), i18n.T("unit.sats", signed(d.FeeMonth))))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, e := range snap.Errors {
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the tortoise configuration file",
	}
	var system, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the current settings",
		Long: `Writes tortoise.yaml to the user config directory, or to the system
location with --system. Flags and environment variables given to this
command end up in the file. The API password is never written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path, err := config.DefaultConfigPath(system)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			cfg.Node.Password = ""
			written, err := config.WriteConfigFile(&cfg, system)
			if err != nil {
				return fmt.Errorf("could not write config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&system, "system", false, "write the system-wide file instead of the user one")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

// parseAge accepts Go durations plus a day suffix, as in 90d.
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid age %q", s)
	}
	return d, nil
}

// stateCommand runs fn against the state database only; the node is not
// contacted.
func stateCommand(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logging.SetOutput(cmd.ErrOrStderr(), cfg.Log.Level); err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	s := &session{cfg: cfg, store: st}
	defer s.Close()
	return fn(ctx, s)
}

func newPruneCmd() *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete relay history older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := parseAge(olderThan)
			if err != nil {
				return err
			}
			return stateCommand(cmd, func(ctx context.Context, s *session) error {
				n, err := s.store.PruneRelays(ctx, time.Now().Add(-age))
				if err != nil {
					return fmt.Errorf("prune relays: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d relays older than %s\n", n, olderThan)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "90d", "age of the relays to delete, e.g. 90d or 720h")
	return cmd
}

func newMaintainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Run database maintenance (vacuum, optimize)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return stateCommand(cmd, func(ctx context.Context, s *session) error {
				start := time.Now()
				if err := s.store.Maintain(ctx); err != nil {
					return fmt.Errorf("maintenance: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s maintenance done in %s\n", s.store.Type(), time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}
