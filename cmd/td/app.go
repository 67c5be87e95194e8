package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/config"
	"github.com/talentdesk/talentdesk/internal/logging"
	"github.com/talentdesk/talentdesk/internal/metrics"
	"github.com/talentdesk/talentdesk/internal/rules"
	"github.com/talentdesk/talentdesk/internal/store"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
	"github.com/talentdesk/talentdesk/internal/ui"
)

// app is the wiring shared by every command that touches the store.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    store.Store
	svc      *syncsvc.Service
	roster   *rules.Roster
	registry *prometheus.Registry

	out         io.Writer
	interactive bool
	yes         bool
	closeLog    func() error
}

// appMode selects which background work the sync service runs.
type appMode int

const (
	// oneShot runs a single command against the store.
	oneShot appMode = iota
	// background arms periodic refresh and the store watcher.
	background
	// repair is oneShot without the automatic reconcile on Init.
	repair
)

// runApp loads configuration, opens the store and an initialized sync
// service, runs fn, and tears everything down again.
func runApp(cmd *cobra.Command, opts *rootOptions, mode appMode, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd, opts, mode)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.svc.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize sync service: %w", err)
	}
	return fn(ctx, a)
}

func openApp(cmd *cobra.Command, opts *rootOptions, mode appMode) (*app, error) {
	cfg, err := config.Load(opts.dir)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.File = cfg.LogFile()
	if logCfg.File == "" && mode == oneShot && opts.logLevel == "" {
		// Keep one-shot command output clean unless asked.
		logCfg.Level = "warn"
	}
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store.Driver, cfg.StorePath())
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	syncCfg := syncsvc.DefaultConfig()
	syncCfg.Logger = logger
	syncCfg.Metrics = metrics.NewSync(registry)
	if cfg.Sync.Reconcile && mode != repair {
		syncCfg.Reconcile = rules.Reconcile
	}
	if mode == background {
		syncCfg.Interval = cfg.Sync.Interval
		syncCfg.Watch = cfg.Sync.Watch && cfg.Store.Driver != store.DriverMemory
	} else {
		syncCfg.Interval = 0
		syncCfg.Watch = false
	}

	svc, err := syncsvc.New(st, syncCfg)
	if err != nil {
		_ = st.Close()
		_ = closeLog()
		return nil, err
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		store:       st,
		svc:         svc,
		roster:      rules.NewRoster(svc, cfg.TeamMembers(), logger),
		registry:    registry,
		out:         cmd.OutOrStdout(),
		interactive: !opts.yes && ui.IsTerminal(os.Stdin) && ui.IsTerminal(stdoutFile(cmd)),
		yes:         opts.yes,
		closeLog:    closeLog,
	}, nil
}

func (a *app) close() {
	if err := a.svc.Destroy(); err != nil {
		a.logger.Warn("failed to stop sync service", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
	_ = a.closeLog()
}

// stdoutFile returns the command's output as a file when it is one.
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}

// errCancelled is returned when the user declines a confirmation.
var errCancelled = errors.New("cancelled")
