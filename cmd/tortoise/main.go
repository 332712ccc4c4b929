// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for tortoise using Cobra. The
// root command runs the interactive dashboard; subcommands cover headless
// monitoring and state database housekeeping.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tortoise-ln/tortoise/buildvars"
	"github.com/tortoise-ln/tortoise/internal/config"
	"github.com/tortoise-ln/tortoise/internal/eclair"
	"github.com/tortoise-ln/tortoise/internal/i18n"
	"github.com/tortoise-ln/tortoise/internal/logging"
	"github.com/tortoise-ln/tortoise/internal/monitor"
	"github.com/tortoise-ln/tortoise/internal/store"
	"github.com/tortoise-ln/tortoise/internal/tui"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// isTerminal is replaced in tests.
var isTerminal = term.IsTerminal

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree, so tests never share flag state.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tortoise",
		Short: "Tortoise is a terminal monitor for Eclair Lightning nodes.",
		Long: `Tortoise polls an Eclair node over its HTTP API and shows channel
liquidity, routing activity and fees in a terminal dashboard.

Running without a subcommand launches the interactive TUI. Use 'watch'
for headless monitoring with Prometheus metrics.

The API password is best supplied through TORTOISE_NODE_PASSWORD.`,
		Version:       buildvars.VersionOrDefault("dev"),
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          runDashboard,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default is the user config dir, /etc/tortoise or ./tortoise.yaml)")
	pf.StringP("url", "u", "", "Eclair API url (default http://127.0.0.1:8080)")
	pf.String("user", "", "Eclair API user")
	pf.String("password", "", "Eclair API password (prefer TORTOISE_NODE_PASSWORD)")
	pf.String("dump-dir", "", "write gzip copies of API replies here when logging at debug level")
	pf.StringP("state", "s", "", "state database DSN (default ./tortoise.db)")
	pf.String("state-type", "", `state database type ("sqlite", "postgres", "mysql")`)
	pf.StringP("level", "l", "", "log level (trace, debug, info, warn, error)")
	pf.String("logfile", "", "log file (default ./eclair-tortoise.log)")
	pf.Duration("interval", 0, "refresh interval (default 20s)")
	pf.String("lang", "", `UI language ("en", "de")`)

	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newPruneCmd())
	cmd.AddCommand(newMaintainCmd())
	return cmd
}

// loadConfig reads settings for cmd. A missing config file is fine.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var explicit *string
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		explicit = &p
	}
	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), explicit)
	if err != nil && !config.IsNotFound(err) {
		return cfg, fmt.Errorf("error loading config: %w", err)
	}
	i18n.Init(cfg.Language)
	return cfg, nil
}

// openStore opens the state database named by cfg.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.State.Type, cfg.State.DSN)
	if err != nil {
		return nil, fmt.Errorf("state database: %w", err)
	}
	return st, nil
}

func newClient(cfg config.Config) *eclair.Client {
	return eclair.New(eclair.Options{
		URL:      cfg.Node.URL,
		User:     cfg.Node.User,
		Password: cfg.Node.Password,
		Timeout:  cfg.Node.Timeout,
		DumpDir:  cfg.Node.DumpDir,
	})
}

// connect checks that the node answers before anything else starts.
func connect(ctx context.Context, client *eclair.Client) (eclair.NodeInfo, error) {
	info, err := client.GetInfo(ctx)
	if err != nil {
		return info, fmt.Errorf("cannot reach eclair node at %s: %w", client.URL(), err)
	}
	logging.Infof("connected to %s (%s) on %s, eclair %s", info.Alias, eclair.ShortNodeID(info.NodeID), info.Network, info.Version)
	return info, nil
}

// session bundles what every node-facing command needs.
type session struct {
	cfg    config.Config
	store  *store.Store
	client *eclair.Client
	poller *monitor.Poller
	logs   io.Closer
}

// openSession loads config, sets up logging, opens the state database and
// verifies the node. toFile sends logs to the configured log file instead
// of stderr.
func openSession(ctx context.Context, cmd *cobra.Command, toFile bool) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	if toFile {
		s.logs, err = logging.Setup(cfg.Log.File, cfg.Log.Level)
	} else {
		err = logging.SetOutput(cmd.ErrOrStderr(), cfg.Log.Level)
	}
	if err != nil {
		return nil, err
	}

	s.store, err = openStore(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.client = newClient(cfg)
	node, err := connect(ctx, s.client)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.poller = monitor.NewPoller(s.client, s.store, monitor.Options{Node: &node})
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logging.Warnf("closing state database: %v", err)
		}
	}
	if s.logs != nil {
		_ = s.logs.Close()
	}
}

// signalContext is cancelled on SIGINT and SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	if !isTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use 'tortoise watch' for headless monitoring")
	}
	ctx, stop := signalContext(cmd)
	defer stop()

	s, err := openSession(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	snaps := make(chan monitor.Snapshot)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.poller.Run(gctx, s.cfg.Refresh.Interval, snaps)
		return nil
	})
	g.Go(func() error {
		// Leaving the UI stops the poller.
		defer cancel()
		return tui.Run(gctx, snaps, tui.Options{Dismiss: s.poller.Dismiss, Tick: s.cfg.UI.Tick})
	})
	return g.Wait()
}
