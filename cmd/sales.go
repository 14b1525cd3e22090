// =============================================================================
// Sales Report Engine - Record Entry Commands
// =============================================================================
//
// This file defines the counter commands that change stored sales:
//
//   salesreport add    --brand B --model M [--variant V] --qty N --price P [--at T]
//   salesreport edit   ID [--brand B] [--model M] [--variant V] [--qty N] [--price P] [--at T]
//   salesreport delete ID [ID...]
//
// The segment is always derived from the price at entry time, so editing a
// price also moves the sale to its new segment.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/salesreport/internal/segment"
	"github.com/ginjaninja78/salesreport/internal/types"
	"github.com/ginjaninja78/salesreport/internal/validation"
)

// entryTimeLayout is the --at format, read in the configured timezone.
const entryTimeLayout = "2006-01-02 15:04"

var (
	saleBrand   string
	saleModel   string
	saleVariant string
	saleQty     int
	salePrice   string
	saleAt      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a sale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		price, err := decimal.NewFromString(salePrice)
		if err != nil {
			return fmt.Errorf("invalid --price %q: %w", salePrice, err)
		}
		at, err := entryTime(saleAt)
		if err != nil {
			return err
		}

		rec := types.NewSaleRecord(saleBrand, saleModel, saleVariant, saleQty, price, at)
		if err := checkRecord(rec); err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.Insert(ctx, rec)
		if err != nil {
			return err
		}
		cmdLogger(cmd).Info().Int64("id", id).Str("brand", rec.Brand).Str("segment", rec.Segment).Msg("sale recorded")
		fmt.Printf("Recorded sale #%d: %s %s x%d (%s)\n", id, rec.Brand, rec.Model, rec.Quantity, rec.Segment)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Correct a recorded sale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sale id %q", args[0])
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		all, err := s.QueryAll(ctx)
		if err != nil {
			return err
		}
		var rec *types.SaleRecord
		for i := range all {
			if all[i].ID == id {
				rec = &all[i]
				break
			}
		}
		if rec == nil {
			return fmt.Errorf("sale #%d not found", id)
		}

		flags := cmd.Flags()
		if flags.Changed("brand") {
			rec.Brand = saleBrand
		}
		if flags.Changed("model") {
			rec.Model = saleModel
		}
		if flags.Changed("variant") {
			rec.Variant = saleVariant
		}
		if flags.Changed("qty") {
			rec.Quantity = saleQty
		}
		if flags.Changed("price") {
			price, err := decimal.NewFromString(salePrice)
			if err != nil {
				return fmt.Errorf("invalid --price %q: %w", salePrice, err)
			}
			rec.UnitPrice = price
			rec.Segment = segment.Rolling10k(price)
		}
		if flags.Changed("at") {
			at, err := entryTime(saleAt)
			if err != nil {
				return err
			}
			rec.Timestamp = types.Millis(at)
		}

		if err := checkRecord(*rec); err != nil {
			return err
		}
		if err := s.Update(ctx, *rec); err != nil {
			return err
		}
		fmt.Printf("Updated sale #%d\n", id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID [ID...]",
	Short: "Remove recorded sales",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sale id %q", arg)
			}
			if err := s.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted sale #%d\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd, editCmd, deleteCmd)

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&saleBrand, "brand", "", "Brand, e.g. Samsung")
		c.Flags().StringVar(&saleModel, "model", "", "Model name")
		c.Flags().StringVar(&saleVariant, "variant", "", "Variant, e.g. 8/256")
		c.Flags().IntVar(&saleQty, "qty", 1, "Units sold")
		c.Flags().StringVar(&salePrice, "price", "", "Unit price")
		c.Flags().StringVar(&saleAt, "at", "", "Sale time as YYYY-MM-DD HH:MM (default now)")
	}
	addCmd.MarkFlagRequired("brand")
	addCmd.MarkFlagRequired("model")
	addCmd.MarkFlagRequired("price")
}

// entryTime parses --at in the configured timezone. Empty means now.
func entryTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(entryTimeLayout, s, location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q (want %s): %w", s, entryTimeLayout, err)
	}
	return t, nil
}

// checkRecord rejects records with validation errors and prints warnings.
func checkRecord(rec types.SaleRecord) error {
	problems := validation.NewValidator().ValidateRecord(rec, 0)

	var errs []*validation.ValidationError
	for _, p := range problems {
		if p.Severity == validation.SeverityError {
			errs = append(errs, p)
		} else {
			fmt.Printf("warning: %s: %s\n", p.Field, p.Message)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid sale:\n%s", validation.FormatErrors(errs))
	}
	return nil
}
