// =============================================================================
// Donation Receipts - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a ledger without
// producing any receipt.
//
// COMMAND USAGE:
//   receipts validate <ledger> [--strict] [--warnings-as-errors]
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/donation-receipts/internal/ledger"
	"github.com/ginjaninja78/donation-receipts/internal/validation"
)

var warningsAsErrors bool

var validateCmd = &cobra.Command{
	Use:   "validate <ledger>",
	Short: "Check a ledger for problems before generating receipts",
	Long: `The validate command parses the ledger and reports rows the generator
would handle permissively: malformed amounts (counted as 0,00), unparseable
dates (sorted first), missing names or addresses, and donors whose donations
use different addresses or span several years.

Exits non-zero when errors are found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("strict") {
			appConfig.Strict = strictAmounts
		}
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictAmounts, "strict", false, "Report malformed amounts as errors")
	validateCmd.Flags().BoolVar(&warningsAsErrors, "warnings-as-errors", false, "Fail on warnings too")
}

func runValidate(cmd *cobra.Command, ledgerPath string) error {
	out := cmd.OutOrStdout()

	opts := ledger.DefaultOptions()
	opts.Delimiter = appConfig.DelimiterRune()

	records, err := ledger.ParseFile(ledgerPath, opts)
	if errors.Is(err, ledger.ErrEmptyLedger) {
		fmt.Fprintln(out, "No donations in ledger, nothing to validate")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to parse ledger: %w", err)
	}

	validator := validation.NewValidator(validation.Options{
		Strict:                appConfig.Strict,
		TreatWarningsAsErrors: warningsAsErrors,
	})
	result := validator.Validate(records)

	for _, finding := range result.Findings {
		fmt.Fprintln(out, finding.Error())
	}

	fmt.Fprintf(out, "\n%d record(s), %d donor(s): %d error(s), %d warning(s)\n",
		result.RecordsValidated, result.DonorsValidated, result.ErrorCount, result.WarningCount)

	if !result.IsValid {
		return fmt.Errorf("ledger validation failed")
	}

	return nil
}
