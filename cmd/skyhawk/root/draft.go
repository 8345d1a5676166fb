package root

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/models"
)

func newDraftCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Show the plan being built",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			d := a.draftStore().Load()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", models.FormatDate(d.Date), d.Title)
			for i, in := range d.Instances {
				fmt.Fprintf(out, "%2d. %s (%d min)\n", i+1, in.Title, in.DurationMinutes)
			}
			fmt.Fprintf(out, "Total: %d drills, %d min\n", d.Len(), d.TotalMinutes())
			return nil
		},
	}

	cmd.AddCommand(newDraftSaveCmd(opts), newDraftClearCmd(opts))
	return cmd
}

func newDraftSaveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the plan being built as a practice and start a new one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.committer().CommitDraft(cmd.Context(), a.draftStore())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved %q: %d drills, %d min (%s)\n", res.Practice.Title, len(res.Items), res.TotalMinutes, res.Practice.ID)
			for _, adv := range res.Advisories {
				if adv == builder.AdvisoryLongSession {
					fmt.Fprintf(out, "Note: longer than %d minutes\n", a.cfg.LongSessionMinutes)
				}
			}
			return nil
		},
	}
}

func newDraftClearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard the plan being built",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.draftStore().Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Plan cleared.")
			return nil
		},
	}
}
