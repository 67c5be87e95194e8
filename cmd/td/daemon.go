package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentdesk/talentdesk/internal/dashboard"
	"github.com/talentdesk/talentdesk/internal/metrics"
	"github.com/talentdesk/talentdesk/internal/status"
	"github.com/talentdesk/talentdesk/internal/ui"
)

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	var (
		port        int
		noDashboard bool
	)
	cmd := &cobra.Command{
		Use:     "daemon",
		GroupID: "sync",
		Short:   "Run the sync service and live dashboard (foreground)",
		Long: `Run the sync service in the foreground.

The daemon refreshes both collections every sync.interval, watches the
store file for writes made by other td processes, and serves a WebSocket
dashboard that broadcasts every change:

  influencers_updated     influencer collection changed
  collaborations_updated  collaboration collection changed
  stats                   roster totals
  sync_status             sync indicator state

Endpoints: ws://localhost:<port>/ws, /health, /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			cmd.SetContext(ctx)

			return runApp(cmd, opts, background, func(ctx context.Context, a *app) error {
				if !cmd.Flags().Changed("port") {
					port = a.cfg.Dashboard.Port
				}

				var handler *dashboard.Handler
				indCfg := status.DefaultConfig()
				indCfg.OnChange = func(s status.Snapshot) {
					a.logger.Debug("sync status", zap.String("state", s.State.String()))
					if handler != nil {
						handler.OnSyncStatus(s)
					}
				}

				if !noDashboard {
					server := dashboard.NewServer(&dashboard.Config{
						Port:     port,
						Logger:   a.logger,
						Metrics:  metrics.NewDashboard(a.registry),
						Gatherer: a.registry,
					})
					if err := server.Start(); err != nil {
						return fmt.Errorf("failed to start dashboard: %w", err)
					}
					defer func() {
						if err := server.Stop(); err != nil {
							a.logger.Warn("dashboard shutdown failed", zap.Error(err))
						}
					}()

					handler = dashboard.NewHandler(server, a.roster, a.logger)
					handler.Attach(ctx, a.svc)
					defer handler.Close()

					fmt.Fprintf(a.out, "%s Dashboard on http://%s\n", ui.RenderAccent("•"), server.Addr())
				}

				indicator := status.New(ctx, a.svc, indCfg)
				defer indicator.Close()

				fmt.Fprintf(a.out, "%s Syncing %s every %s\n", ui.RenderAccent("•"), a.cfg.StorePath(), a.cfg.Sync.Interval)
				fmt.Fprintln(a.out, "\nPress Ctrl+C to stop")

				<-ctx.Done()
				fmt.Fprintln(a.out, "\nShutting down...")
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Dashboard port (default from dashboard.port)")
	cmd.Flags().BoolVar(&noDashboard, "no-dashboard", false, "Run without the WebSocket dashboard")
	return cmd
}
