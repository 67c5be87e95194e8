package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/talentdesk/talentdesk/internal/importer"
	"github.com/talentdesk/talentdesk/internal/query"
	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
	"github.com/talentdesk/talentdesk/internal/ui"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "import <file>",
		GroupID: "data",
		Short:   "Bulk-add influencers from xlsx, CSV or JSONL",
		Long: `Bulk-add influencers from a spreadsheet.

Headers may use the English field names (name, brand, fee, status, ...) or
the Turkish column titles (İsim, Marka, Ücret, Durum, ...). Every row is
validated first; a single bad row aborts the import and nothing is saved.
Job counts in the file are ignored since they are derived. Use
'td template' for a starting workbook.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := importer.ReadInfluencersFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ui.Fprintf(out, ui.RenderAccent("•"), "%d valid row(s) in %s", len(rows), filepath.Base(args[0]))
			if dryRun {
				return nil
			}

			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				ok, err := confirm(a, fmt.Sprintf("Import %d influencer(s)?", len(rows)))
				if err != nil {
					return err
				}
				if !ok {
					return errCancelled
				}
				added, err := a.roster.ImportInfluencers(ctx, rows)
				if err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Imported %d influencer(s)", len(added))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without saving")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		collection, format, out string
		filter                  query.CollaborationFilter
		status                  string
	)
	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "data",
		Short:   "Export collaborations or influencers to xlsx or JSONL",
		Example: `  td export                                   # collaborations as isbirlikleri-<date>.xlsx
  td export --assigned "CAN AYDIN" --status completed
  td export --collection influencers --format jsonl --out backup.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := schema.ParseCollection(collection)
			if err != nil {
				return err
			}
			if status != "" {
				if filter.Status, err = schema.ParseStatus(status); err != nil {
					return err
				}
			}

			fmtName := importer.Format(format)
			if out == "" {
				if fmtName == "" {
					fmtName = importer.FormatXLSX
				}
				out = defaultExportName(c, fmtName, time.Now())
			} else if fmtName == "" {
				if fmtName, err = importer.DetectFormat(out); err != nil {
					return err
				}
			}
			if !filepath.IsAbs(out) {
				out = filepath.Join(opts.dir, out)
			}
			if fmtName == importer.FormatCSV {
				return fmt.Errorf("%w: export supports xlsx and jsonl", importer.ErrUnknownFormat)
			}

			return runApp(cmd, opts, oneShot, func(ctx context.Context, a *app) error {
				var n int
				write := func(w io.Writer) error {
					switch c {
					case schema.Collaborations:
						list := query.Collaborations(syncsvc.Get[schema.Collaboration](ctx, a.svc), filter)
						query.SortCollaborations(list, query.SortByDate, true)
						n = len(list)
						if fmtName == importer.FormatJSONL {
							return importer.WriteJSONL(w, list)
						}
						return importer.WriteCollaborations(w, list)
					default:
						list := syncsvc.Get[schema.Influencer](ctx, a.svc)
						query.SortInfluencers(list, query.SortByName, false)
						n = len(list)
						if fmtName == importer.FormatJSONL {
							return importer.WriteJSONL(w, list)
						}
						return importer.WriteInfluencers(w, list)
					}
				}
				if err := importer.WriteFileAtomic(out, write); err != nil {
					return err
				}
				ui.Fprintf(a.out, ui.RenderPass("✓"), "Wrote %d %s to %s", n, c, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&collection, "collection", string(schema.Collaborations), "influencers or collaborations")
	cmd.Flags().StringVar(&format, "format", "", "xlsx or jsonl (default from --out, else xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	cmd.Flags().StringVar(&filter.AssignedTo, "assigned", "", "Only collaborations assigned to this member")
	cmd.Flags().StringVar(&filter.Brand, "brand", "", "Only collaborations for this brand")
	cmd.Flags().StringVar(&status, "status", "", "Only collaborations with this status")
	return cmd
}

func defaultExportName(c schema.Collection, f importer.Format, now time.Time) string {
	base := "isbirlikleri"
	if c == schema.Influencers {
		base = "influencerlar"
	}
	return fmt.Sprintf("%s-%s.%s", base, now.Format(schema.DateLayout), f)
}

func newTemplateCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:     "template",
		GroupID: "data",
		Short:   "Write an example influencer import workbook",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !filepath.IsAbs(out) {
				out = filepath.Join(opts.dir, out)
			}
			if err := importer.WriteFileAtomic(out, importer.WriteTemplate); err != nil {
				return err
			}
			ui.Fprintf(cmd.OutOrStdout(), ui.RenderPass("✓"), "Wrote template to %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "influencer-sablonu.xlsx", "Output file")
	return cmd
}
