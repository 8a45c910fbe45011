// =============================================================================
// Donation Receipts - Main Entry Point
// =============================================================================
//
// This is the main entry point for the donation receipt generator CLI. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   receipts generate <ledger>  - Generate receipts for every donor in the ledger
//   receipts validate <ledger>  - Check a ledger without generating anything
//   receipts version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Ledger parsing, amounts, number words, receipt building
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/donation-receipts/cmd"
)

func main() {
	cmd.Execute()
}
