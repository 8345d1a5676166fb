package root

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tgienger/skyhawk/internal/models"
)

func newPracticesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practices",
		Short: "List saved practices, latest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			practices, err := a.db.ListPractices(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(practices) == 0 {
				fmt.Fprintln(out, "No saved practices.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, p := range practices {
				fmt.Fprintf(w, "%s\t%s\t%s\n", models.FormatDate(p.Date), p.Title, p.ID)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(newPracticeShowCmd(opts))
	return cmd
}

func newPracticeShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <practice-id>",
		Short: "Show a practice with its drills in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.db.GetPracticeWithItems(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printPractice(cmd, p)
			return nil
		},
	}
}

func printPractice(cmd *cobra.Command, p *models.PracticeWithItems) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", models.FormatDate(p.Date), p.Title)
	if p.Notes != "" {
		fmt.Fprintln(out, p.Notes)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	elapsed := 0
	for i, it := range p.Items {
		elapsed += it.Drill.DurationMinutes
		fmt.Fprintf(w, "%d.\t%s\t%d min\t%s\t@%d\n", i+1, it.Drill.Title, it.Drill.DurationMinutes, it.Drill.Category, elapsed)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "Total: %d drills, %d min\n", len(p.Items), p.TotalMinutes())
}
