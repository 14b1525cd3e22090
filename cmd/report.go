// =============================================================================
// Sales Report Engine - Report Command
// =============================================================================
//
// This file defines the 'report' command, which loads the stored sales and
// renders one or more report variants.
//
// COMMAND USAGE:
//   salesreport report [flags]
//
// FLAGS:
//   --variant  : daily, segment, ledger, brands, comparison, a comma list,
//                or "all"
//   --format   : pdf or xlsx (default from config)
//   --mode     : value, quantity or compact (daily matrix)
//   --month    : YYYY-MM; restricts records, selects the comparison month
//   --profile  : report profile name (default from config)
//   --out      : output directory (default from config)
//   --dry-run  : lay reports out without writing files
//
// PROCESSING PIPELINE:
//   1. Resolve variants, format, mode, month and profile
//   2. Load one snapshot of records from the store
//   3. Generate every variant concurrently (bounded by max_concurrency)
//   4. Write each document atomically, archiving a replaced file
//   5. Write a run summary and prune old archives
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/salesreport/internal/period"
	"github.com/ginjaninja78/salesreport/internal/render"
	"github.com/ginjaninja78/salesreport/internal/report"
	"github.com/ginjaninja78/salesreport/internal/types"
	"github.com/ginjaninja78/salesreport/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	reportVariants string
	reportFormat   string
	reportMode     string
	reportMonth    string
	reportProfile  string
	reportOutDir   string
	reportDryRun   bool
)

// =============================================================================
// REPORT COMMAND DEFINITION
// =============================================================================

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate sales reports as PDF or XLSX",
	Long: `The report command renders the stored sales into printable reports.

Variants:
  daily       date x brand matrix with sales logs and brand summaries
  segment     price segment x brand volume matrix
  ledger      every sale, newest first
  brands      brand performance summary with grand total
  comparison  month-to-date vs last-month-to-date by brand

All variants of one run read the same snapshot of records. A variant that
fails does not stop the others unless continue_on_error is false.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportVariants, "variant", string(report.DailyMatrix),
		`Report variant(s): daily, segment, ledger, brands, comparison, comma list or "all"`)
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "Output format: pdf or xlsx (default from config)")
	reportCmd.Flags().StringVar(&reportMode, "mode", "", "Matrix cells: value, quantity or compact (default from config)")
	reportCmd.Flags().StringVar(&reportMonth, "month", "", "Month to report, YYYY-MM")
	reportCmd.Flags().StringVar(&reportProfile, "profile", "", "Report profile name (default from config)")
	reportCmd.Flags().StringVar(&reportOutDir, "out", "", "Output directory (default from config)")
	reportCmd.Flags().BoolVar(&reportDryRun, "dry-run", false, "Lay reports out and print the draw calls without writing files")
}

// =============================================================================
// MAIN REPORT FUNCTION
// =============================================================================

func runReport(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := cmdLogger(cmd)
	start := time.Now()

	// =========================================================================
	// STEP 1: RESOLVE OPTIONS
	// =========================================================================

	variants, err := parseVariantList(reportVariants)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(firstNonEmpty(reportFormat, appConfig.DefaultFormat))
	if err != nil {
		return err
	}
	mode, err := report.ParseMode(firstNonEmpty(reportMode, appConfig.DefaultMode))
	if err != nil {
		return err
	}
	profile, err := selectProfile(reportProfile)
	if err != nil {
		return err
	}

	loc := location()
	var month *period.Range
	if reportMonth != "" {
		r, err := period.ParseMonth(reportMonth, loc)
		if err != nil {
			return err
		}
		month = &r
	}

	// =========================================================================
	// STEP 2: LOAD ONE SNAPSHOT
	// =========================================================================

	records, err := loadSnapshot(ctx, variants, month)
	if err != nil {
		return err
	}
	log.Info().Int("records", len(records)).Int("variants", len(variants)).Msg("generating reports")

	fm := fileManager(reportOutDir)
	if !reportDryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: GENERATE CONCURRENTLY
	// =========================================================================

	summary := utils.RunSummary{StartTime: start}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(appConfig.MaxConcurrency)

	for _, v := range variants {
		g.Go(func() error {
			// Set once an earlier variant failed without continue_on_error.
			if err := gctx.Err(); err != nil {
				return err
			}

			opts := report.Options{
				Format:   format,
				Mode:     mode,
				Location: loc,
				Profile:  profile,
				Period:   month,
				Now:      start,
			}
			var rec *render.Recorder
			if reportDryRun {
				rec = render.NewRecorder()
				opts.Canvas = rec
			}

			doc, err := report.Generate(gctx, v, records, opts)
			if err == nil && !reportDryRun {
				var path string
				path, err = writeDocument(fm, doc, profile.Name, start)
				if err == nil {
					mu.Lock()
					summary.Generated = append(summary.Generated, utils.GeneratedReport{
						Variant: string(v), Path: path, RunID: doc.RunID, Pages: doc.PageCount, Rows: doc.Rows,
					})
					mu.Unlock()
					fmt.Printf("  ✓ %s -> %s (%d page(s))\n", v, path, doc.PageCount)
				}
			}
			if err == nil && reportDryRun {
				mu.Lock()
				fmt.Printf("=== %s: %d row(s), %d page(s) ===\n", v, doc.Rows, doc.PageCount)
				if rec != nil && format == report.PDF {
					os.Stdout.Write(doc.Bytes)
				}
				mu.Unlock()
			}

			if err != nil {
				mu.Lock()
				summary.Failed = append(summary.Failed, utils.FailedReport{Variant: string(v), ErrorMessage: err.Error()})
				mu.Unlock()
				fmt.Printf("  ✗ %s: %v\n", v, err)
				log.Error().Err(err).Str("variant", string(v)).Msg("report failed")
				if !appConfig.ContinueOnError {
					return fmt.Errorf("%s report: %w", v, err)
				}
			}
			return nil
		})
	}

	waitErr := g.Wait()
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 4: SUMMARY AND HOUSEKEEPING
	// =========================================================================

	if !reportDryRun {
		if len(variants) > 1 {
			if path, err := utils.WriteSummaryLog(summary, fm.OutputDir); err != nil {
				log.Warn().Err(err).Msg("failed to write run summary")
			} else {
				log.Debug().Str("path", path).Msg("run summary written")
			}
		}
		if appConfig.ArchiveRetentionDays > 0 {
			maxAge := time.Duration(appConfig.ArchiveRetentionDays) * 24 * time.Hour
			if n, err := utils.CleanOldArchives(appConfig.ArchiveDir, maxAge); err != nil {
				log.Warn().Err(err).Msg("failed to prune archives")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("old archives pruned")
			}
		}
	}

	if waitErr != nil {
		return waitErr
	}
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d report(s) failed", len(summary.Failed), len(variants))
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// parseVariantList accepts "all" or a comma separated list of variants.
func parseVariantList(s string) ([]report.Variant, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return report.Variants(), nil
	}

	var out []report.Variant
	seen := make(map[report.Variant]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := report.ParseVariant(part)
		if err != nil {
			return nil, err
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no report variant given")
	}
	return out, nil
}

// loadSnapshot reads only the selected month unless the comparison variant
// needs the previous month as well.
func loadSnapshot(ctx context.Context, variants []report.Variant, month *period.Range) ([]types.SaleRecord, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	needsAll := month == nil
	for _, v := range variants {
		if v == report.PeriodComparison {
			needsAll = true
		}
	}
	if needsAll {
		return s.QueryAll(ctx)
	}
	return s.QueryByRange(ctx, month.StartMillis(), month.EndMillis())
}

// writeDocument names and writes one finished report.
func writeDocument(fm *utils.FileManager, doc *report.Document, profileName string, now time.Time) (string, error) {
	name := utils.GenerateOutputFileName(appConfig.OutputNameFormat, "."+string(doc.Format), now, map[string]string{
		"variant": string(doc.Variant),
		"profile": profileName,
		"run":     doc.RunID,
	})
	return fm.WriteOutput(name, doc.Bytes)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
