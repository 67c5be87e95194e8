package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talentdesk/talentdesk/internal/config"
	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
	"github.com/talentdesk/talentdesk/internal/ui"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		GroupID: "sync",
		Short:   "Create the local store, seeding it with sample data",
		Long: `Create the workspace store. Empty collections are seeded with a small
sample roster; existing data is never overwritten. A talentdesk.toml with
default settings is written if none exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := filepath.Join(opts.dir, config.FileName)
			if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
				if err := config.WriteFile(cfgPath, config.Default(opts.dir), false); err != nil {
					return err
				}
				ui.Fprintf(cmd.OutOrStdout(), ui.RenderPass("✓"), "Wrote %s", cfgPath)
			}

			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				meta, err := a.svc.Metadata(ctx)
				if err != nil {
					return err
				}
				influencers := syncsvc.Get[schema.Influencer](ctx, a.svc)
				collabs := syncsvc.Get[schema.Collaboration](ctx, a.svc)
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Store ready at %s", a.cfg.StorePath())
				ui.Fprintf(a.out, " ", "%d influencer(s), %d collaboration(s), device %s",
					len(influencers), len(collabs), meta.DeviceID)
				return nil
			})
		},
	}
}
