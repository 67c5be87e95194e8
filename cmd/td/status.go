package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/status"
	"github.com/talentdesk/talentdesk/internal/ui"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "status",
		GroupID: "sync",
		Short:   "Show store location, sync freshness and roster totals",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				meta, err := a.svc.Metadata(ctx)
				if err != nil {
					return err
				}
				summary := a.roster.Summary(ctx)
				if asJSON {
					return writeJSON(a, map[string]any{
						"store":    a.cfg.StorePath(),
						"driver":   a.cfg.Store.Driver,
						"metadata": meta,
						"summary":  summary,
					})
				}

				now := time.Now()
				last := time.Time{}
				if meta.LastSync > 0 {
					last = time.UnixMilli(meta.LastSync)
				}

				fmt.Fprintf(a.out, "\n%s\n\n", ui.RenderAccent("talentdesk status"))
				fmt.Fprintf(a.out, "Store:      %s (%s)\n", a.cfg.StorePath(), a.cfg.Store.Driver)
				if info, err := os.Stat(a.cfg.StorePath()); err == nil {
					fmt.Fprintf(a.out, "Size:       %s\n", humanize.Bytes(uint64(info.Size())))
				}
				fmt.Fprintf(a.out, "Device:     %s\n", meta.DeviceID)
				fmt.Fprintf(a.out, "Last sync:  %s (%s)\n", status.FormatLastSync(last, now), ui.Ago(last, now))
				fmt.Fprintln(a.out)

				fmt.Fprintf(a.out, "Influencers:    %d (%d with jobs)\n", summary.Influencers, summary.ActiveInfluencers)
				fmt.Fprintf(a.out, "Collaborations: %d\n", summary.Collaborations)
				for _, s := range schema.Statuses {
					fmt.Fprintf(a.out, "  %-12s %d\n", ui.RenderStatus(s), summary.ByStatus[s])
				}
				fmt.Fprintf(a.out, "Total fees:     %s (completed %s)\n\n", ui.Money(summary.TotalFee), ui.Money(summary.CompletedFee))

				rows := make([][]string, 0, len(summary.Members))
				for _, m := range summary.Members {
					rows = append(rows, []string{m.Member, strconv.Itoa(m.Jobs), ui.Money(m.Fee)})
				}
				fmt.Fprintln(a.out, ui.Table([]string{"Team member", "Jobs", "Fees"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "reconcile",
		GroupID: "sync",
		Short:   "Recompute job counts and influencer names on collaborations",
		Long: `Recompute every influencer's job count from the collaborations that
reference it, and refresh the influencer name stored on each collaboration.
This repairs drift left by an interrupted write. It runs automatically on
start when sync.reconcile is enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, repair, func(ctx context.Context, a *app) error {
				changed, err := a.roster.Reconcile(ctx)
				if err != nil {
					return err
				}
				if changed {
					ui.Fprintf(a.out, ui.RenderPass("✓"), "Repaired derived fields")
				} else {
					ui.Fprintf(a.out, ui.RenderPass("✓"), "Everything is consistent")
				}
				return nil
			})
		},
	}
}
