package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/talentdesk/talentdesk/internal/query"
	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
	"github.com/talentdesk/talentdesk/internal/ui"
)

func newCollabCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collab",
		Aliases: []string{"job", "jobs"},
		GroupID: "roster",
		Short:   "List and manage brand collaborations",
	}
	cmd.AddCommand(
		newCollabListCmd(opts),
		newCollabAddCmd(opts),
		newCollabEditCmd(opts),
		newCollabRmCmd(opts),
	)
	return cmd
}

func newCollabListCmd(opts *rootOptions) *cobra.Command {
	var (
		filter                          query.CollaborationFilter
		status, from, to, sortKey, infl string
		desc, asJSON                    bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List collaborations",
		Example: `  td collab list --assigned "CAN AYDIN" --status completed
  td collab list --from "last month" --sort fee --desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if status != "" {
				if filter.Status, err = schema.ParseStatus(status); err != nil {
					return err
				}
			}
			now := time.Now()
			if from != "" {
				if filter.From, err = schema.ParseDate(from, now); err != nil {
					return err
				}
			}
			if to != "" {
				if filter.To, err = schema.ParseDate(to, now); err != nil {
					return err
				}
			}
			key, err := query.ParseSortKey(sortKey)
			if err != nil {
				return err
			}

			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				ds := a.roster.Dataset(ctx)
				if infl != "" {
					inf, err := resolveInfluencer(ds.Influencers, infl)
					if err != nil {
						return err
					}
					filter.InfluencerID = inf.ID
				}
				list := query.Collaborations(ds.Collaborations, filter)
				query.SortCollaborations(list, key, desc)
				if asJSON {
					return writeJSON(a, list)
				}
				printCollaborations(a, list)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Match brand, assignee or influencer")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&filter.AssignedTo, "assigned", "", "Filter by team member")
	cmd.Flags().StringVar(&filter.Brand, "brand", "", "Filter by brand")
	cmd.Flags().StringVar(&infl, "influencer", "", "Filter by influencer id or name")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (inclusive)")
	cmd.Flags().StringVar(&sortKey, "sort", "date", "Sort by name, brand, fee, date or count")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printCollaborations(a *app, list []schema.Collaboration) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, ui.RenderMuted("No collaborations found."))
		return
	}
	var total float64
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		influencer := c.InfluencerName
		if influencer == "" {
			influencer = "-"
		}
		rows = append(rows, []string{
			shortID(c.ID), c.Date, c.Brand, influencer, ui.Money(c.Fee),
			strconv.Itoa(c.CollaborationCount), c.AssignedTo, ui.RenderStatus(c.Status),
		})
		total += c.Fee
	}
	fmt.Fprintln(a.out, ui.Table([]string{"ID", "Date", "Brand", "Influencer", "Fee", "Count", "Assigned", "Status"}, rows))
	fmt.Fprintf(a.out, "%d collaboration(s), total %s\n", len(list), ui.Money(total))
}

// collabFlags are the editable collaboration fields as flags.
type collabFlags struct {
	brand, influencer, date, fee, count, assigned, status string
}

func (f *collabFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&f.influencer, "influencer", "", `Influencer id or name ("" to detach)`)
	cmd.Flags().StringVar(&f.date, "date", "", `Date: YYYY-MM-DD, DD.MM.YYYY or e.g. "next friday"`)
	cmd.Flags().StringVar(&f.fee, "fee", "", "Fee in lira")
	cmd.Flags().StringVar(&f.count, "count", "", "Number of deliverables")
	cmd.Flags().StringVar(&f.assigned, "assigned", "", "Team member")
	cmd.Flags().StringVar(&f.status, "status", "", "Pending, Approved or Completed")
}

func (f *collabFlags) apply(cmd *cobra.Command, c *schema.Collaboration, influencers []schema.Influencer) error {
	set := cmd.Flags().Changed
	if set("brand") {
		c.Brand = f.brand
	}
	if set("influencer") {
		c.InfluencerID = ""
		if strings.TrimSpace(f.influencer) != "" {
			inf, err := resolveInfluencer(influencers, f.influencer)
			if err != nil {
				return err
			}
			c.InfluencerID = inf.ID
		}
	}
	if set("date") {
		d, err := schema.ParseDate(f.date, time.Now())
		if err != nil {
			return err
		}
		c.Date = d
	}
	if set("fee") {
		fee, err := parseFee(f.fee)
		if err != nil {
			return err
		}
		c.Fee = fee
	}
	if set("count") {
		n, err := strconv.Atoi(strings.TrimSpace(f.count))
		if err != nil {
			return fmt.Errorf("count %q is not a whole number", f.count)
		}
		c.CollaborationCount = n
	}
	if set("assigned") {
		c.AssignedTo = f.assigned
	}
	if set("status") {
		s, err := schema.ParseStatus(f.status)
		if err != nil {
			return err
		}
		c.Status = s
	}
	return nil
}

func newCollabAddCmd(opts *rootOptions) *cobra.Command {
	flags := &collabFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a collaboration",
		Long: `Add a collaboration. Linking it to an influencer increments that
influencer's job count. Without --brand an interactive form is shown when
running in a terminal.`,
		Example: `  td collab add --brand Nike --influencer "Ayşe Yılmaz" --fee 5000 --assigned "CAN AYDIN" --date tomorrow`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				influencers := syncsvc.Get[schema.Influencer](ctx, a.svc)
				var c schema.Collaboration
				if err := flags.apply(cmd, &c, influencers); err != nil {
					return err
				}
				if a.interactive && c.Brand == "" {
					if err := collaborationForm(&c, a.roster.Team(), influencers); err != nil {
						return err
					}
				}

				created, err := a.roster.AddCollaboration(ctx, c)
				if err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Added %s job on %s (%s)", created.Brand, created.Date, created.ID)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newCollabEditCmd(opts *rootOptions) *cobra.Command {
	flags := &collabFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a collaboration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				ds := a.roster.Dataset(ctx)
				c, err := resolveCollaboration(ds.Collaborations, args[0])
				if err != nil {
					return err
				}

				if !anyChanged(cmd) {
					if !a.interactive {
						return fmt.Errorf("nothing to change: pass field flags or run in a terminal")
					}
					if err := collaborationForm(&c, a.roster.Team(), ds.Influencers); err != nil {
						return err
					}
				} else if err := flags.apply(cmd, &c, ds.Influencers); err != nil {
					return err
				}

				updated, err := a.roster.UpdateCollaboration(ctx, c)
				if err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Updated %s job on %s", updated.Brand, updated.Date)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newCollabRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a collaboration",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				c, err := resolveCollaboration(syncsvc.Get[schema.Collaboration](ctx, a.svc), args[0])
				if err != nil {
					return err
				}
				ok, err := confirm(a, fmt.Sprintf("Delete %s job on %s?", c.Brand, c.Date))
				if err != nil {
					return err
				}
				if !ok {
					return errCancelled
				}

				if _, err := a.roster.DeleteCollaboration(ctx, c.ID); err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Deleted %s job on %s", c.Brand, c.Date)
				return nil
			})
		},
	}
}

// resolveCollaboration finds a collaboration by exact id or a unique id
// prefix or suffix.
func resolveCollaboration(list []schema.Collaboration, ref string) (schema.Collaboration, error) {
	ref = strings.TrimSpace(ref)
	var matches []schema.Collaboration
	for _, c := range list {
		if c.ID == ref {
			return c, nil
		}
		if matchesID(c.ID, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return schema.Collaboration{}, fmt.Errorf("collaboration %q not found", ref)
	case 1:
		return matches[0], nil
	}
	return schema.Collaboration{}, fmt.Errorf("%q matches %d collaborations, use the full id", ref, len(matches))
}
