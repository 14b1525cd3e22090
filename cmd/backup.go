// =============================================================================
// Sales Report Engine - Backup and Import Commands
// =============================================================================
//
// COMMAND USAGE:
//   salesreport backup [--out DIR]
//   salesreport import FILE [--replace] [--dry-run] [--keep]
//
// BACKUP:
//   Writes every stored sale to a "Master Backup" workbook in the output
//   directory.
//
// IMPORT:
//   Reads a master backup, a legacy export or a CSV file. Rows that cannot
//   be read are skipped and listed; they never abort the import. With
//   --replace the store is swapped for the file contents in one
//   transaction, which is how a backup is restored.
//
// =============================================================================

package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/salesreport/internal/backup"
	"github.com/ginjaninja78/salesreport/internal/validation"
	"github.com/ginjaninja78/salesreport/pkg/utils"
)

// maxPrintedProblems caps the problems echoed to the terminal; the full
// list goes to the problem log.
const maxPrintedProblems = 20

var (
	backupOutDir  string
	importReplace bool
	importDryRun  bool
	importKeep    bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export every sale to a master backup workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.QueryAll(ctx)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := backup.Export(&buf, records); err != nil {
			return err
		}

		fm := fileManager(backupOutDir)
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		name := utils.GenerateOutputFileName("sales_backup_{timestamp}", ".xlsx", time.Now(), nil)
		path, err := fm.WriteOutput(name, buf.Bytes())
		if err != nil {
			return err
		}

		cmdLogger(cmd).Info().Str("path", path).Int("records", len(records)).Msg("backup written")
		fmt.Printf("Backed up %d sale(s) to %s\n", len(records), path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import sales from a backup workbook or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		res, err := backup.ImportFile(ctx, path, backup.Options{
			CSV:      appConfig.Import,
			Location: location(),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Read %d row(s): %d valid, %d skipped\n", res.RowsRead, len(res.Records), res.Skipped)
		if res.Positional {
			fmt.Println("Headers not recognized; legacy column order assumed.")
		}
		printProblems(res.Problems)

		fm := fileManager("")
		if len(res.Problems) > 0 && !importDryRun {
			if logPath, err := writeProblemLog(fm, path, res.Problems); err != nil {
				cmdLogger(cmd).Warn().Err(err).Msg("failed to write problem log")
			} else {
				fmt.Printf("Problems logged to %s\n", logPath)
			}
		}

		if importDryRun {
			return nil
		}
		if len(res.Records) == 0 {
			return fmt.Errorf("no valid rows in %s", filepath.Base(path))
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		var n int
		if importReplace {
			n, err = s.Replace(ctx, res.Records)
		} else {
			n, err = s.InsertBatch(ctx, res.Records)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d sale(s)\n", n)

		if !importKeep {
			if err := fm.EnsureDirectories(); err != nil {
				return err
			}
			archived, err := fm.ArchiveImportFile(path)
			if err != nil {
				return err
			}
			cmdLogger(cmd).Info().Str("archived", archived).Msg("import file archived")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd, importCmd)

	backupCmd.Flags().StringVar(&backupOutDir, "out", "", "Output directory (default from config)")

	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Replace all stored sales with the file contents")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Read and check the file without storing anything")
	importCmd.Flags().BoolVar(&importKeep, "keep", false, "Leave the file in place instead of archiving it")
}

func printProblems(problems []*validation.ValidationError) {
	for i, p := range problems {
		if i == maxPrintedProblems {
			fmt.Printf("  ... %d more\n", len(problems)-maxPrintedProblems)
			break
		}
		fmt.Printf("  %s\n", p)
	}
}

// writeProblemLog writes every problem next to the reports, named after
// the imported file.
func writeProblemLog(fm *utils.FileManager, source string, problems []*validation.ValidationError) (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name := utils.GenerateOutputFileName("import_problems_{source}_{timestamp}", ".txt", time.Now(),
		map[string]string{"source": base})
	path := filepath.Join(fm.OutputDir, name)
	if err := validation.WriteErrorLog(problems, path); err != nil {
		return "", err
	}
	return path, nil
}
