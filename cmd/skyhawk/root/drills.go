package root

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tgienger/skyhawk/internal/builder"
	"github.com/tgienger/skyhawk/internal/models"
)

func newDrillsCmd(opts *options) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "drills",
		Short: "List the drill library by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			var drills []models.Drill
			if search != "" {
				drills, err = a.db.SearchDrills(cmd.Context(), search)
			} else {
				drills, err = a.db.ListDrills(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(drills) == 0 {
				fmt.Fprintln(out, "No drills.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, sec := range builder.GroupByCategory(drills) {
				fmt.Fprintf(w, "%s\n", strings.ToUpper(string(sec.Category)))
				for _, d := range sec.Drills {
					fmt.Fprintf(w, "  %s\t%d min\t%s\t%s\t%s\n", d.Title, d.DurationMinutes, d.Difficulty, strings.Join(d.Tags, ","), d.ID)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only drills whose title or description contains this text")
	cmd.AddCommand(newDrillsAddCmd(opts))
	return cmd
}

func newDrillsAddCmd(opts *options) *cobra.Command {
	var f models.DrillFields
	var difficulty, category, tags string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a drill to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			f.Title = args[0]
			f.Difficulty = models.Difficulty(difficulty)
			f.Category = models.Category(category)
			f.Tags = models.ParseTags(tags)
			d, err := a.db.CreateDrill(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s, %d min) %s\n", d.Title, d.Category, d.DurationMinutes, d.ID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&f.DurationMinutes, "minutes", "m", 10, "Duration in minutes")
	cmd.Flags().StringVarP(&f.Description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(models.Beginner), "Beginner|Intermediate|Advanced")
	cmd.Flags().StringVarP(&category, "category", "c", string(models.Passing), "Passing|Attacking|Setting|Serving|Defense|Blocking|Competition")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "Comma separated tags")
	cmd.Flags().StringVar(&f.DiagramURL, "diagram", "", "Diagram URL")
	return cmd
}
