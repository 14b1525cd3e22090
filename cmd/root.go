// =============================================================================
// Sales Report Engine - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesreport)
//   ├── reportCmd  (salesreport report)
//   ├── addCmd     (salesreport add)
//   ├── listCmd    (salesreport list)
//   ├── importCmd  (salesreport import)
//   ├── backupCmd  (salesreport backup)
//   └── versionCmd (salesreport version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads config.yaml (or --config) through viper, with SALESREPORT_*
//      environment overrides
//   2. Builds the zerolog logger and stores it in the command context
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/salesreport/internal/config"
	"github.com/ginjaninja78/salesreport/internal/logging"
	"github.com/ginjaninja78/salesreport/internal/report"
	"github.com/ginjaninja78/salesreport/internal/store"
	"github.com/ginjaninja78/salesreport/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file. Empty searches
// ./config.yaml and falls back to defaults.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig is loaded once in PersistentPreRunE.
var appConfig *config.MainConfig

// closeLog closes the optional log file after the command finishes.
var closeLog = func() error { return nil }

// newLogger builds the application logger.
var newLogger = logging.New

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "Sales Report Engine - record counter sales and print paginated reports",
	Long: `Sales Report Engine records handset sales at the counter and turns them
into printable reports: a daily brand matrix, a price segment matrix, a
detailed sales log, a brand performance summary and a month-to-date
comparison. Reports are written as PDF or XLSX.

Example Usage:
  salesreport add --brand Samsung --model S24 --variant 8/256 --qty 1 --price 54999
  salesreport report --variant daily --month 2024-01
  salesreport report --variant all --format xlsx
  salesreport import ./backup.xlsx --replace
  salesreport backup`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. Interrupts cancel the command context so a long
// report run stops between variants.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run executes the root command with args. The log file is closed whether
// or not the command succeeded.
func run(ctx context.Context, args []string) error {
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
		closeLog = func() error { return nil }
	}()

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the main configuration file (default ./config.yaml if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initApp loads configuration and attaches the logger to the context.
func initApp(cmd *cobra.Command) error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, closer, err := newLogger(logging.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}

	appConfig = cfg
	closeLog = closer

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx))

	logger.Debug().Str("config", cfgFile).Str("database", cfg.DatabasePath).Msg("configuration loaded")
	return nil
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// openStore opens the configured database, creating its directory.
func openStore(ctx context.Context) (*store.SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(appConfig.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return store.Open(ctx, appConfig.DatabasePath)
}

// selectProfile loads the profiles directory and picks name, or the
// configured default profile when name is empty.
func selectProfile(name string) (report.Profile, error) {
	profiles, err := config.LoadProfiles(appConfig.ProfilesDir)
	if err != nil {
		return report.Profile{}, fmt.Errorf("failed to load profiles: %w", err)
	}
	if name == "" {
		name = appConfig.Profile
	}
	return config.SelectProfile(profiles, name)
}

// location resolves the configured timezone.
func location() *time.Location {
	loc, err := appConfig.Location()
	if err != nil {
		// Validated at load time.
		return time.UTC
	}
	return loc
}

// fileManager builds the output file manager from configuration.
func fileManager(outDir string) *utils.FileManager {
	if outDir == "" {
		outDir = appConfig.OutputDir
	}
	return utils.NewFileManager(outDir, appConfig.ArchiveDir, appConfig.ImportArchiveDir)
}

// cmdLogger returns the logger carried by the command context.
func cmdLogger(cmd *cobra.Command) *zerolog.Logger {
	return zerolog.Ctx(cmd.Context())
}
