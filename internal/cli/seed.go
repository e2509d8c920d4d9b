package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/backoffice/internal/app"
	"github.com/josh-kwaku/backoffice/internal/chart"
	"github.com/josh-kwaku/backoffice/internal/metrics"
)

func newSeedChartCommand() *cobra.Command {
	var file, operator string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed-chart",
		Short: "Create a chart of accounts from a YAML template",
		Long: "Creates every account of the template parent-first. Without --file the " +
			"built-in small-business chart is used.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadChart(file)
			if err != nil {
				return err
			}
			if dryRun {
				return printChart(cmd.OutOrStdout(), c)
			}

			db, _, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			svc := app.NewServices(db, metrics.NoOp{})
			created, err := chart.Seed(cmd.Context(), svc.Accounts, c, operator)
			if err != nil {
				return fmt.Errorf("seeded %d accounts before failing: %w", len(created), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d accounts from %q\n", len(created), c.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "chart YAML file (default: built-in small-business chart)")
	cmd.Flags().StringVar(&operator, "operator", "backofficectl", "recorded as created_by")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the accounts without creating them")
	return cmd
}

func loadChart(file string) (*chart.Chart, error) {
	if file == "" {
		return chart.Default()
	}
	return chart.Load(file)
}

func printChart(w io.Writer, c *chart.Chart) error {
	entries, err := c.Flatten()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tTYPE\tPARENT\tAGGREGATOR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", e.Code, e.Name, e.Type, e.ParentCode, e.IsParent)
	}
	return tw.Flush()
}
