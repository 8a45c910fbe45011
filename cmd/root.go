// =============================================================================
// Donation Receipts - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI.
//
// COBRA CLI STRUCTURE:
//   rootCmd (receipts)
//   ├── generateCmd (receipts generate)
//   ├── validateCmd (receipts validate)
//   └── versionCmd  (receipts version)
//
// CONFIGURATION:
//   The root command loads .env and the YAML configuration and sets up the
//   logger before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/donation-receipts/internal/config"
	"github.com/ginjaninja78/donation-receipts/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// envFile holds the path to an optional .env file.
var envFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the loaded configuration, available to every subcommand.
var appConfig *config.Config

// logger is the process-wide logger.
var logger = zerolog.Nop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Donation receipts - Generate Zuwendungsbestätigungen from a donation ledger",
	Long: `receipts reads a semicolon separated donation ledger and produces one
donation receipt per donor: a single receipt for donors with one donation and a
consolidated receipt (Sammelbestätigung) for donors with several.

Ledger format (one donation per row):
  Nachname;Vorname;Straße;Adresszusatz;PLZ Ort;Betrag;Spendendatum

Example Usage:
  receipts generate spenden.csv                  # Issue dated today
  receipts generate spenden.csv -d 05.12.2025    # Explicit issue date
  receipts validate spenden.csv                  # Check the ledger only`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command and exits non-zero on error.
// Ctrl-C cancels the command context, which also stops a running typesetter.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultFile,
		"Path to the configuration file (optional unless given explicitly)",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file with RECEIPTS_* overrides",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig loads .env and the configuration file and builds the logger.
func initConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, verbose)

	return nil
}
