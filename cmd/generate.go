// =============================================================================
// Donation Receipts - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which produces the receipts.
//
// COMMAND USAGE:
//   receipts generate <ledger> [flags]
//
// FLAGS:
//   --template             : Single receipt template
//   --collective-template  : Consolidated receipt template
//   --keep-tex             : Keep .tex, .aux and .log files
//   --ausstellungsdatum/-d : Issue date (DD.MM.YYYY, DD.MM.YY or YYYY-MM-DD)
//   --output-dir           : Directory for the finished receipts
//   --strict               : Fail receipts with malformed amounts
//   --register             : Write an XML register of issued receipts
//   --summary-log          : Write a text summary into the output directory
//   --dry-run              : Build everything, write and compile nothing
//
// PROCESSING PIPELINE:
//   1. Check that the number-words backend for the locale exists
//   2. Pre-flight: ledger and both templates exist, issue date parses
//   3. Parse and group the ledger
//   4. Build, write and compile one receipt per donor
//   5. Print the summary; optionally write register and summary files
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/donation-receipts/internal/amount"
	"github.com/ginjaninja78/donation-receipts/internal/compiler"
	"github.com/ginjaninja78/donation-receipts/internal/config"
	"github.com/ginjaninja78/donation-receipts/internal/converter"
	"github.com/ginjaninja78/donation-receipts/internal/ledger"
	"github.com/ginjaninja78/donation-receipts/internal/numwords"
	"github.com/ginjaninja78/donation-receipts/internal/receipt"
	"github.com/ginjaninja78/donation-receipts/internal/xmlwriter"
	"github.com/ginjaninja78/donation-receipts/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	singleTemplate     string
	collectiveTemplate string
	keepTex            bool
	issueDateFlag      string
	outputDir          string
	strictAmounts      bool
	writeRegister      bool
	writeSummaryLog    bool
	dryRun             bool
)

// newCompiler builds the typesetter for a run. Tests replace it.
var newCompiler = func(cfg *config.Config) compiler.Compiler {
	return compiler.NewPDFLaTeX(cfg.Compiler.Command, cfg.Compiler.Args)
}

// now is the clock used for the default issue date.
var now = time.Now

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate <ledger>",
	Short: "Generate donation receipts from a ledger",
	Long: `The generate command reads the ledger, groups donations by donor (case
insensitive on last and first name) and produces one receipt per donor.

Donors with one donation get a single receipt named
  <Nachname>_<Vorname>_<Spendendatum>.pdf
Donors with several donations get a consolidated receipt named
  <Nachname>_<Vorname>_sammel.pdf

Malformed amounts count as 0,00 and are logged, unless --strict is set.
A failure for one donor does not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyGenerateFlags(cmd, appConfig)
		return runGenerate(cmd, appConfig, args[0])
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringVar(&singleTemplate, "template", "", "Single receipt template (default from config)")
	flags.StringVar(&collectiveTemplate, "collective-template", "", "Consolidated receipt template (default from config)")
	flags.BoolVar(&keepTex, "keep-tex", false, "Keep intermediate .tex, .aux and .log files")
	flags.StringVarP(&issueDateFlag, "ausstellungsdatum", "d", "", "Issue date, e.g. 05.12.2025 or 2025-12-05 (default: today)")
	flags.StringVar(&outputDir, "output-dir", "", "Directory for the finished receipts (default from config)")
	flags.BoolVar(&strictAmounts, "strict", false, "Fail receipts with malformed amounts instead of counting them as 0,00")
	flags.BoolVar(&writeRegister, "register", false, "Write an XML register of the issued receipts")
	flags.BoolVar(&writeSummaryLog, "summary-log", false, "Write a text summary into the output directory")
	flags.BoolVar(&dryRun, "dry-run", false, "Build every receipt but write and compile nothing")
}

// applyGenerateFlags lets explicitly set flags override the configuration.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("template") {
		cfg.Templates.Single = singleTemplate
	}
	if flags.Changed("collective-template") {
		cfg.Templates.Collective = collectiveTemplate
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("keep-tex") {
		cfg.KeepIntermediate = keepTex
	}
	if flags.Changed("strict") {
		cfg.Strict = strictAmounts
	}
	if flags.Changed("register") {
		cfg.Register = writeRegister
	}
	if flags.Changed("summary-log") {
		cfg.SummaryLog = writeSummaryLog
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runGenerate(cmd *cobra.Command, cfg *config.Config, ledgerPath string) error {
	startTime := now()
	out := cmd.OutOrStdout()
	runID := uuid.New().String()
	log := logger.With().Str("run_id", runID).Logger()

	// =========================================================================
	// STEP 1: NUMBER WORDS BACKEND
	// =========================================================================

	speller, err := numwords.Lookup(cfg.Locale)
	if err != nil {
		return fmt.Errorf("number words unavailable, set locale to one of %v: %w", numwords.Locales(), err)
	}

	// =========================================================================
	// STEP 2: PRE-FLIGHT
	// =========================================================================

	if !utils.FileExists(ledgerPath) {
		return fmt.Errorf("ledger not found: %s", ledgerPath)
	}

	templates, err := receipt.LoadTemplates(cfg.Templates.Single, cfg.Templates.Collective)
	if err != nil {
		return err
	}
	if !strings.Contains(templates.Consolidated, receipt.TokenRows) {
		log.Warn().
			Str("template", cfg.Templates.Collective).
			Msg("consolidated template has no " + receipt.TokenRows + " token, donations will not be listed")
	}

	issueDate, err := resolveIssueDate(issueDateFlag, now())
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: PARSE AND GROUP
	// =========================================================================

	fmt.Fprintln(out, "=== Donation Receipts ===")

	opts := ledger.DefaultOptions()
	opts.Delimiter = cfg.DelimiterRune()
	opts.Logger = log

	records, err := ledger.ParseFile(ledgerPath, opts)
	if errors.Is(err, ledger.ErrEmptyLedger) {
		fmt.Fprintln(out, "No donations in ledger, nothing to do")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to parse ledger: %w", err)
	}

	groups := ledger.Group(records)
	fmt.Fprintf(out, "Read %d donation(s) from %d donor(s)\n", len(records), len(groups))

	if !dryRun {
		if err := utils.EnsureDirectory(cfg.OutputDir); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 4: BUILD AND COMPILE
	// =========================================================================

	normalizer := amount.NewNormalizer(log)
	normalizer.Strict = cfg.Strict

	builder := receipt.NewBuilder(
		templates,
		numwords.NewConverter(speller, cfg.Currency),
		normalizer,
		receipt.Options{
			IssueDate:    issueDate,
			DonationKind: cfg.Rows.DonationKind,
			Waiver:       cfg.Rows.Waiver,
			Currency:     cfg.Currency,
			RowSeparator: cfg.Rows.Separator,
			Logger:       log,
		},
	)

	conv := converter.New(builder, newCompiler(cfg), converter.Options{
		OutputDir:        cfg.OutputDir,
		KeepIntermediate: cfg.KeepIntermediate,
		DryRun:           dryRun,
		Logger:           log,
	})

	results := conv.Run(cmd.Context(), groups)

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		LedgerFile: ledgerPath,
		IssueDate:  issueDate.Format(receipt.IssueDateLayout),
		Records:    len(records),
		Donors:     len(groups),
	}
	register := &xmlwriter.Register{RunID: runID, Issued: summary.IssueDate}

	for _, result := range results {
		if !result.Success {
			summary.Failed++
			summary.Failures = append(summary.Failures, utils.FailureInfo{
				Donor:        result.Key,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", result.Key, result.Error)
			continue
		}

		doc := result.Document
		file := filepath.Base(result.OutputFile)
		switch doc.Kind {
		case receipt.KindConsolidated:
			summary.Consolidated++
			fmt.Fprintf(out, "  ✓ Sammel: %s (%d Spenden) -> %s\n", doc.DonorName, doc.Donations, file)
		default:
			summary.Single++
			fmt.Fprintf(out, "  ✓ Einzel: %s -> %s\n", doc.DonorName, file)
		}
		if !result.Compiled && !dryRun {
			summary.MissingPDFs++
		}

		summary.Documents = append(summary.Documents, utils.DocumentInfo{
			Kind:      string(doc.Kind),
			Donor:     doc.DonorName,
			File:      file,
			Donations: doc.Donations,
			Total:     amount.Format(doc.Total),
		})
		register.Add(xmlwriter.Entry{
			Kind:      string(doc.Kind),
			Year:      doc.Year,
			Donor:     doc.DonorName,
			File:      file,
			Donations: doc.Donations,
			Total:     amount.Format(doc.Total),
		})
	}

	summary.EndTime = now()

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Single:          %d\n", summary.Single)
	fmt.Fprintf(out, "Consolidated:    %d\n", summary.Consolidated)
	fmt.Fprintf(out, "Failed:          %d\n", summary.Failed)
	if !dryRun {
		fmt.Fprintf(out, "Missing PDFs:    %d\n", summary.MissingPDFs)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if !dryRun {
		if cfg.Register {
			path, err := xmlwriter.Write(register, cfg.OutputDir)
			if err != nil {
				log.Error().Err(err).Msg("register not written")
			} else {
				fmt.Fprintf(out, "Register:        %s\n", path)
			}
		}
		if cfg.SummaryLog {
			path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
			if err != nil {
				log.Error().Err(err).Msg("summary not written")
			} else {
				fmt.Fprintf(out, "Summary:         %s\n", path)
			}
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d receipt(s) failed", summary.Failed, len(groups))
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// errInvalidIssueDate is returned for an issue date in no supported format.
var errInvalidIssueDate = errors.New("invalid issue date, expected DD.MM.YYYY or YYYY-MM-DD")

// resolveIssueDate parses the explicit issue date or falls back to today.
func resolveIssueDate(value string, today time.Time) (time.Time, error) {
	if value == "" {
		return today, nil
	}

	date := ledger.ParseDate(value)
	if date == nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidIssueDate, value)
	}

	return *date, nil
}
