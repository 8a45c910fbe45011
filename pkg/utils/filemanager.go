// =============================================================================
// Donation Receipts - File Manager Utility
// =============================================================================
//
// This module provides the file handling the receipt generator needs around
// each document:
//   - Output directory management
//   - Removal of intermediate typesetting artifacts (.tex, .aux, .log)
//   - Processing summary files
//
// CLEANUP STRATEGY:
//   Intermediate files are removed after each compile unless the user asked
//   to keep them. Removal is best-effort: files that are already gone are
//   not an error, and other failures are reported but never stop the run.
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IntermediateExtensions are removed after compiling unless kept.
var IntermediateExtensions = []string{".tex", ".aux", ".log"}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectory creates dir and its parents if they don't exist.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a regular file or directory exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// ARTIFACT CLEANUP
// =============================================================================

// RemoveArtifacts deletes the files sharing sourcePath's base name with the
// given extensions. Missing files are skipped silently.
//
// RETURNS:
//   - The paths that were actually removed.
//   - The joined errors of removals that failed for other reasons.
func RemoveArtifacts(sourcePath string, extensions []string) ([]string, error) {
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))

	var (
		removed []string
		errs    []error
	)
	for _, ext := range extensions {
		path := base + ext
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = append(removed, path)
		case errors.Is(err, os.ErrNotExist):
		default:
			errs = append(errs, err)
		}
	}

	return removed, errors.Join(errs...)
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a generation run.
type ProcessingSummary struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	LedgerFile   string
	IssueDate    string
	Records      int
	Donors       int
	Single       int
	Consolidated int
	Failed       int
	MissingPDFs  int
	Documents    []DocumentInfo
	Failures     []FailureInfo
}

// DocumentInfo describes one produced receipt.
type DocumentInfo struct {
	Kind      string
	Donor     string
	File      string
	Donations int
	Total     string
}

// FailureInfo describes a donor whose receipt could not be produced.
type FailureInfo struct {
	Donor        string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Donation Receipts - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Ledger:         %s\n"+
		"  Issue Date:     %s\n"+
		"  Start Time:     %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Records:        %d\n"+
		"  Donors:         %d\n"+
		"  Single:         %d\n"+
		"  Consolidated:   %d\n"+
		"  Failed:         %d\n"+
		"  Missing PDFs:   %d\n\n",
		summary.RunID,
		summary.LedgerFile,
		summary.IssueDate,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.Records,
		summary.Donors,
		summary.Single,
		summary.Consolidated,
		summary.Failed,
		summary.MissingPDFs)

	if len(summary.Documents) > 0 {
		writer.WriteString("Receipts:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, doc := range summary.Documents {
			fmt.Fprintf(writer, "  %-13s %-30s %3d  %12s  %s\n",
				doc.Kind, doc.Donor, doc.Donations, doc.Total, doc.File)
		}
		writer.WriteString("\n")
	}

	if len(summary.Failures) > 0 {
		writer.WriteString("Failures:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Failures {
			fmt.Fprintf(writer, "  Donor: %s\n  Error: %s\n\n", f.Donor, f.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
