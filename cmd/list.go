// =============================================================================
// Sales Report Engine - List Command
// =============================================================================
//
// COMMAND USAGE:
//   salesreport list [--limit N] [--month YYYY-MM]
//
// Prints the most recent sales with a quantity and revenue footer, the quick
// check done at the counter before printing a report.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/salesreport/internal/format"
	"github.com/ginjaninja78/salesreport/internal/period"
	"github.com/ginjaninja78/salesreport/internal/types"
)

var (
	listLimit int
	listMonth string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent sales",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		loc := location()

		profile, err := selectProfile("")
		if err != nil {
			return err
		}
		printer := format.NewPrinter(profile.Locale)

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		var records []types.SaleRecord
		if listMonth != "" {
			month, err := period.ParseMonth(listMonth, loc)
			if err != nil {
				return err
			}
			records, err = s.QueryByRange(ctx, month.StartMillis(), month.EndMillis())
			if err != nil {
				return err
			}
		} else {
			records, err = s.QueryAll(ctx)
			if err != nil {
				return err
			}
		}

		total := len(records)
		if listLimit > 0 && len(records) > listLimit {
			records = records[:listLimit]
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tBRAND\tMODEL\tVARIANT\tQTY\tPRICE\tTOTAL\tSEGMENT")

		var qty int64
		sum := decimal.Zero
		for _, r := range records {
			qty += int64(r.Quantity)
			sum = sum.Add(r.LineTotal())
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				r.ID,
				r.Time(loc).Format("2006-01-02 15:04"),
				r.Brand,
				r.Model,
				r.Variant,
				r.Quantity,
				printer.Currency(r.UnitPrice),
				printer.Currency(r.LineTotal()),
				r.Segment,
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nShowing %d of %d sale(s): %s unit(s), %s\n",
			len(records), total, printer.Count(qty), printer.Currency(sum))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum sales to show (0 shows all)")
	listCmd.Flags().StringVar(&listMonth, "month", "", "Only sales in this month, YYYY-MM")
}
