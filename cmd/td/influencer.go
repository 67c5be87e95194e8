package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/talentdesk/talentdesk/internal/query"
	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
	"github.com/talentdesk/talentdesk/internal/ui"
)

func newInfluencerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "influencer",
		Aliases: []string{"inf"},
		GroupID: "roster",
		Short:   "List and manage influencers",
	}
	cmd.AddCommand(
		newInfluencerListCmd(opts),
		newInfluencerShowCmd(opts),
		newInfluencerAddCmd(opts),
		newInfluencerEditCmd(opts),
		newInfluencerRmCmd(opts),
	)
	return cmd
}

func newInfluencerListCmd(opts *rootOptions) *cobra.Command {
	var (
		search, category, status, sortKey string
		desc, asJSON                      bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List influencers",
		Example: `  td influencer list --status approved --sort fee --desc
  td influencer list --search nike`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := query.InfluencerFilter{Search: search}
			var err error
			if filter.Category, err = schema.ParseCategory(category); err != nil {
				return err
			}
			if status != "" {
				if filter.Status, err = schema.ParseStatus(status); err != nil {
					return err
				}
			}
			key, err := query.ParseSortKey(sortKey)
			if err != nil {
				return err
			}

			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				list := query.Influencers(syncsvc.Get[schema.Influencer](ctx, a.svc), filter)
				query.SortInfluencers(list, key, desc)
				if asJSON {
					return writeJSON(a, list)
				}
				printInfluencers(a, list)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name, brand or category")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&sortKey, "sort", "name", "Sort by name, brand, fee, date or count")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printInfluencers(a *app, list []schema.Influencer) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, ui.RenderMuted("No influencers found."))
		return
	}
	rows := make([][]string, 0, len(list))
	for _, inf := range list {
		rows = append(rows, []string{
			shortID(inf.ID), inf.Name, inf.Brand, string(inf.Category),
			ui.Money(inf.Fee), ui.RenderStatus(inf.Status), strconv.Itoa(inf.CollaborationCount),
		})
	}
	fmt.Fprintln(a.out, ui.Table([]string{"ID", "Name", "Brand", "Category", "Fee", "Status", "Jobs"}, rows))
	fmt.Fprintf(a.out, "%d influencer(s)\n", len(list))
}

func newInfluencerShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show an influencer and their collaborations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				ds := a.roster.Dataset(ctx)
				inf, err := resolveInfluencer(ds.Influencers, args[0])
				if err != nil {
					return err
				}

				fmt.Fprintf(a.out, "\n%s %s\n\n", ui.RenderAccent(inf.Name), ui.RenderMuted(inf.ID))
				field := func(label, value string) {
					if value != "" {
						fmt.Fprintf(a.out, "  %-14s %s\n", label+":", value)
					}
				}
				field("Brand", inf.Brand)
				field("Fee", ui.Money(inf.Fee))
				field("Status", ui.RenderStatus(inf.Status))
				field("Category", string(inf.Category))
				field("Phone", inf.Phone)
				field("Email", inf.Email)
				field("Instagram", inf.Instagram)
				field("TikTok", inf.TikTok)
				field("Image", inf.Image)
				field("Jobs", strconv.Itoa(inf.CollaborationCount))
				fmt.Fprintln(a.out)

				jobs := query.Collaborations(ds.Collaborations, query.CollaborationFilter{InfluencerID: inf.ID})
				query.SortCollaborations(jobs, query.SortByDate, true)
				if len(jobs) > 0 {
					printCollaborations(a, jobs)
				}
				return nil
			})
		},
	}
}

// influencerFlags are the editable influencer fields as flags.
type influencerFlags struct {
	name, brand, fee, status, category     string
	phone, email, instagram, tiktok, image string
}

func (f *influencerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Name")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&f.fee, "fee", "", "Fee in lira")
	cmd.Flags().StringVar(&f.status, "status", "", "Pending, Approved or Completed")
	cmd.Flags().StringVar(&f.category, "category", "", "Content category")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.instagram, "instagram", "", "Instagram handle")
	cmd.Flags().StringVar(&f.tiktok, "tiktok", "", "TikTok handle")
	cmd.Flags().StringVar(&f.image, "image", "", "Profile image URL")
}

// apply copies every flag the user set onto inf.
func (f *influencerFlags) apply(cmd *cobra.Command, inf *schema.Influencer) error {
	set := cmd.Flags().Changed
	if set("name") {
		inf.Name = f.name
	}
	if set("brand") {
		inf.Brand = f.brand
	}
	if set("fee") {
		fee, err := parseFee(f.fee)
		if err != nil {
			return err
		}
		inf.Fee = fee
	}
	if set("status") {
		s, err := schema.ParseStatus(f.status)
		if err != nil {
			return err
		}
		inf.Status = s
	}
	if set("category") {
		c, err := schema.ParseCategory(f.category)
		if err != nil {
			return err
		}
		inf.Category = c
	}
	if set("phone") {
		inf.Phone = f.phone
	}
	if set("email") {
		inf.Email = f.email
	}
	if set("instagram") {
		inf.Instagram = f.instagram
	}
	if set("tiktok") {
		inf.TikTok = f.tiktok
	}
	if set("image") {
		inf.Image = f.image
	}
	return nil
}

func newInfluencerAddCmd(opts *rootOptions) *cobra.Command {
	flags := &influencerFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an influencer",
		Long: `Add an influencer. Without --name and --brand an interactive form is
shown when running in a terminal.`,
		Example: `  td influencer add --name "Deniz Ak" --brand Nike --fee 2000 --category sports`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var inf schema.Influencer
			if err := flags.apply(cmd, &inf); err != nil {
				return err
			}
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				if a.interactive && (inf.Name == "" || inf.Brand == "") {
					if err := influencerForm(&inf); err != nil {
						return err
					}
				}
				created, err := a.roster.AddInfluencer(ctx, inf)
				if err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Added %s (%s)", created.Name, created.ID)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newInfluencerEditCmd(opts *rootOptions) *cobra.Command {
	flags := &influencerFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id|name>",
		Short: "Edit an influencer",
		Long: `Edit an influencer. Only the given flags change; with no flags an
interactive form is shown when running in a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				inf, err := resolveInfluencer(syncsvc.Get[schema.Influencer](ctx, a.svc), args[0])
				if err != nil {
					return err
				}
				if !anyChanged(cmd) {
					if !a.interactive {
						return fmt.Errorf("nothing to change: pass field flags or run in a terminal")
					}
					if err := influencerForm(&inf); err != nil {
						return err
					}
				} else if err := flags.apply(cmd, &inf); err != nil {
					return err
				}

				updated, err := a.roster.UpdateInfluencer(ctx, inf)
				if err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Updated %s", updated.Name)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newInfluencerRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|name>",
		Aliases: []string{"delete"},
		Short:   "Delete an influencer and their collaborations",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				ds := a.roster.Dataset(ctx)
				inf, err := resolveInfluencer(ds.Influencers, args[0])
				if err != nil {
					return err
				}
				jobs := len(query.Collaborations(ds.Collaborations, query.CollaborationFilter{InfluencerID: inf.ID}))

				ok, err := confirm(a, fmt.Sprintf("Delete %s and %d collaboration(s)?", inf.Name, jobs))
				if err != nil {
					return err
				}
				if !ok {
					return errCancelled
				}

				removed, err := a.roster.DeleteInfluencer(ctx, inf.ID)
				if err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Deleted %s and %d collaboration(s)", inf.Name, removed)
				return nil
			})
		},
	}
}

// anyChanged reports whether a local (non-persistent) flag was set.
func anyChanged(cmd *cobra.Command) bool {
	changed := false
	cmd.LocalNonPersistentFlags().Visit(func(*pflag.Flag) { changed = true })
	return changed
}

// resolveInfluencer finds an influencer by exact id, a unique id prefix or
// suffix (as printed by list), or case-insensitive name.
func resolveInfluencer(list []schema.Influencer, ref string) (schema.Influencer, error) {
	ref = strings.TrimSpace(ref)
	var byPrefix, byName []schema.Influencer
	for _, inf := range list {
		switch {
		case inf.ID == ref:
			return inf, nil
		case matchesID(inf.ID, ref):
			byPrefix = append(byPrefix, inf)
		case schema.Fold(inf.Name) == schema.Fold(ref):
			byName = append(byName, inf)
		}
	}
	for _, matches := range [][]schema.Influencer{byPrefix, byName} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return schema.Influencer{}, fmt.Errorf("%q matches %d influencers, use the id", ref, len(matches))
		}
	}
	return schema.Influencer{}, fmt.Errorf("influencer %q not found", ref)
}

// shortID abbreviates an id for tables. Ids are time-ordered, so the
// random tail is the distinguishing part.
func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func matchesID(id, ref string) bool {
	return len(ref) >= 4 && (strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref))
}

func writeJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
