package main

import (
	"github.com/spf13/cobra"

	"github.com/talentdesk/talentdesk/internal/ui"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	dir      string
	noColor  bool
	yes      bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "td",
		Short: "Local-first influencer roster and collaboration tracker",
		Long: `td keeps the agency's influencers and brand collaborations in a local
store and keeps derived counts consistent across both.

Data lives in .talentdesk/ under the workspace directory. Settings are read
from talentdesk.toml, a .env file and TD_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(stdoutFile(cmd), opts.noColor)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", ".", "Workspace directory")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "Skip prompts and confirmations")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	cmd.AddGroup(
		&cobra.Group{ID: "roster", Title: "Roster:"},
		&cobra.Group{ID: "data", Title: "Import and export:"},
		&cobra.Group{ID: "sync", Title: "Sync:"},
	)

	cmd.AddCommand(
		newInitCmd(opts),
		newInfluencerCmd(opts),
		newCollabCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newTemplateCmd(opts),
		newStatusCmd(opts),
		newReconcileCmd(opts),
		newDaemonCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}
