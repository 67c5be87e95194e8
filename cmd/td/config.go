package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talentdesk/talentdesk/internal/config"
	"github.com/talentdesk/talentdesk/internal/ui"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create configuration",
	}
	cmd.AddCommand(newConfigInitCmd(opts), newConfigShowCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write talentdesk.toml with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(opts.dir, config.FileName)
			if err := config.WriteFile(path, config.Default(opts.dir), force); err != nil {
				return err
			}
			ui.Fprintf(cmd.OutOrStdout(), ui.RenderPass("✓"), "Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "store.driver      %s\n", cfg.Store.Driver)
			fmt.Fprintf(out, "store.path        %s\n", cfg.StorePath())
			fmt.Fprintf(out, "sync.interval     %s\n", cfg.Sync.Interval)
			fmt.Fprintf(out, "sync.reconcile    %t\n", cfg.Sync.Reconcile)
			fmt.Fprintf(out, "sync.watch        %t\n", cfg.Sync.Watch)
			fmt.Fprintf(out, "log.level         %s\n", cfg.Log.Level)
			fmt.Fprintf(out, "log.format        %s\n", cfg.Log.Format)
			fmt.Fprintf(out, "log.file          %s\n", cfg.LogFile())
			fmt.Fprintf(out, "dashboard.port    %d\n", cfg.Dashboard.Port)
			fmt.Fprintf(out, "team.members      %s\n", strings.Join(cfg.Team.Members, ", "))
			return nil
		},
	}
}
