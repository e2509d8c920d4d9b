package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/backoffice/internal/app"
	"github.com/josh-kwaku/backoffice/internal/metrics"
)

// errDrift makes the process exit non-zero without cobra printing usage.
var errDrift = fmt.Errorf("aggregator balances drifted from their children")

func newRollupCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollup-check",
		Short: "Compare every aggregator balance with the sum of its children",
		Long: "Read-only. Reports aggregators whose running balance differs from the " +
			"sum of their direct children, which can happen when concurrent postings " +
			"race on a shared ancestor.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			drifts, err := app.NewServices(db, metrics.NoOp{}).Accounts.CheckRollups(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(drifts) == 0 {
				fmt.Fprintln(out, "all aggregator balances match their children")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tSTORED\tEXPECTED\tDRIFT")
			for _, d := range drifts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					d.Account.Code, d.Account.Name, d.Account.Balance().StringFixed(2),
					d.Expected.StringFixed(2), d.Drift.StringFixed(2))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return errDrift
		},
	}
}
