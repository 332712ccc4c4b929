// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/tortoise-ln/tortoise/internal/logging"
	"github.com/tortoise-ln/tortoise/internal/metrics"
	"github.com/tortoise-ln/tortoise/internal/monitor"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor the node headlessly and serve Prometheus metrics",
		Long: `Polls the node like the dashboard does, logs refresh failures to stderr
and exports the statistics on /metrics. /healthz turns healthy after the
first successful refresh. Runs until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	cmd.Flags().String("listen", "", "metrics listen address (default 127.0.0.1:9737)")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	s, err := openSession(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	exp := metrics.NewExporter(reg)

	ln, err := net.Listen("tcp", s.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	srv := &http.Server{
		Handler:           exp.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logging.Infof("serving metrics on http://%s/metrics", ln.Addr())

	snaps := make(chan monitor.Snapshot)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.poller.Run(gctx, s.cfg.Refresh.Interval, snaps)
		return nil
	})
	g.Go(func() error {
		observe(gctx, snaps, exp, s.poller.Dismiss)
		return nil
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	err = g.Wait()
	logging.Infof("watch stopped")
	return err
}

// observe feeds snapshots to the exporter until ctx is done. Errors are
// logged once and then dismissed, so each is counted a single time.
func observe(ctx context.Context, snaps <-chan monitor.Snapshot, exp *metrics.Exporter, dismiss func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			for _, e := range snap.Errors {
				logging.Warnf("%s", e)
			}
			exp.Observe(snap)
			if len(snap.Errors) > 0 {
				dismiss()
			}
			if snap.Ready() {
				logging.Debugf("refreshed: %d channels, %d relays in 24h", len(snap.Channels), snap.Relays.CountDay)
			}
		}
	}
}
