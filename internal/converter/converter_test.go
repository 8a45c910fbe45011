package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/donation-receipts/internal/amount"
	"github.com/ginjaninja78/donation-receipts/internal/compiler"
	"github.com/ginjaninja78/donation-receipts/internal/ledger"
	"github.com/ginjaninja78/donation-receipts/internal/numwords"
	"github.com/ginjaninja78/donation-receipts/internal/receipt"
	"github.com/ginjaninja78/donation-receipts/internal/types"
	"github.com/ginjaninja78/donation-receipts/pkg/utils"
)

func newBuilder(strict bool) *receipt.Builder {
	normalizer := amount.NewNormalizer(zerolog.Nop())
	normalizer.Strict = strict

	return receipt.NewBuilder(
		receipt.Templates{Single: "EINZEL SPENDERNAME", Consolidated: "SAMMEL SPENDERNAME DONATION_ROWS"},
		numwords.NewConverter(numwords.German{}, "Euro"),
		normalizer,
		receipt.Options{IssueDate: time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)},
	)
}

// fakePDF writes an empty PDF next to the source and leaves .aux and .log
// files behind like the real typesetter does.
func fakePDF(calls *int) compiler.Compiler {
	return compiler.Func(func(_ context.Context, source string) (string, error) {
		*calls++
		base := source[:len(source)-len(filepath.Ext(source))]
		for _, ext := range []string{".aux", ".log", ".pdf"} {
			if err := os.WriteFile(base+ext, nil, 0o644); err != nil {
				return "", err
			}
		}
		return base + ".pdf", nil
	})
}

func groups(rows ...[]string) []types.DonorGroup {
	records := make([]types.DonationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ledger.NewRecord(row))
	}
	return ledger.Group(records)
}

func Test_Run_SingleAndConsolidated(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	conv := New(newBuilder(false), fakePDF(&calls), Options{OutputDir: dir, Logger: zerolog.Nop()})

	results := conv.Run(context.Background(), groups(
		[]string{"Schmidt", "Anna", "", "", "", "50,00", "15.03.2024"},
		[]string{"Meier", "Max", "", "", "", "10,00", "01.02.2024"},
		[]string{"schmidt", "anna", "", "", "", "75,25", "30.11.2024"},
	))

	require.Len(t, results, 2)
	assert.Equal(t, 2, calls)

	for _, r := range results {
		require.True(t, r.Success, r.Error)
		assert.True(t, r.Compiled)
		assert.True(t, utils.FileExists(r.OutputFile))
	}

	assert.Equal(t, filepath.Join(dir, "Schmidt_Anna_sammel.pdf"), results[0].OutputFile)
	assert.Equal(t, receipt.KindConsolidated, results[0].Document.Kind)
	assert.Equal(t, filepath.Join(dir, "Meier_Max_01-02-2024.pdf"), results[1].OutputFile)
	assert.Equal(t, receipt.KindSingle, results[1].Document.Kind)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "only the PDFs remain")
}

func Test_Run_KeepIntermediate(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	conv := New(newBuilder(false), fakePDF(&calls), Options{OutputDir: dir, KeepIntermediate: true})

	results := conv.Run(context.Background(), groups(
		[]string{"Meier", "Max", "", "", "", "10,00", "01.02.2024"},
	))
	require.Len(t, results, 1)

	for _, ext := range []string{".tex", ".aux", ".log", ".pdf"} {
		assert.True(t, utils.FileExists(filepath.Join(dir, "Meier_Max_01-02-2024"+ext)), ext)
	}

	text, err := os.ReadFile(filepath.Join(dir, "Meier_Max_01-02-2024.tex"))
	require.NoError(t, err)
	assert.Equal(t, "EINZEL Max Meier", string(text))
}

func Test_Run_MissingPDFIsNotAFailure(t *testing.T) {
	dir := t.TempDir()
	failing := compiler.Func(func(context.Context, string) (string, error) {
		return "", compiler.ErrNoArtifact
	})
	conv := New(newBuilder(false), failing, Options{OutputDir: dir})

	results := conv.Run(context.Background(), groups(
		[]string{"Meier", "Max", "", "", "", "10,00", "01.02.2024"},
	))
	require.Len(t, results, 1)

	assert.True(t, results[0].Success)
	assert.False(t, results[0].Compiled)
	assert.False(t, utils.FileExists(filepath.Join(dir, "Meier_Max_01-02-2024.tex")))
}

func Test_Run_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	conv := New(newBuilder(false), fakePDF(&calls), Options{OutputDir: dir, DryRun: true})

	results := conv.Run(context.Background(), groups(
		[]string{"Meier", "Max", "", "", "", "10,00", "01.02.2024"},
	))
	require.Len(t, results, 1)

	assert.True(t, results[0].Success)
	assert.Equal(t, "EINZEL Max Meier", results[0].Document.Text)
	assert.Zero(t, calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func Test_Run_UniqueNamesWithinRun(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	conv := New(newBuilder(false), fakePDF(&calls), Options{OutputDir: dir})

	// Different donors that map to the same safe file name.
	results := conv.Run(context.Background(), groups(
		[]string{"Müller", "Hans", "", "", "", "1,00", "01.01.2024"},
		[]string{"Mueller", "Hans", "", "", "", "2,00", "01.01.2024"},
		[]string{"Mü ller", "Hans", "", "", "", "3,00", "01.01.2024"},
	))
	require.Len(t, results, 3)

	assert.Equal(t, filepath.Join(dir, "Mueller_Hans_01-01-2024.pdf"), results[0].OutputFile)
	assert.Equal(t, filepath.Join(dir, "Mueller_Hans_01-01-2024_2.pdf"), results[1].OutputFile)
	assert.Equal(t, filepath.Join(dir, "Mue_ller_Hans_01-01-2024.pdf"), results[2].OutputFile)
}

func Test_Run_StrictFailureContinuesBatch(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	conv := New(newBuilder(true), fakePDF(&calls), Options{OutputDir: dir})

	results := conv.Run(context.Background(), groups(
		[]string{"Meier", "Max", "", "", "", "zehn", "01.02.2024"},
		[]string{"Schmidt", "Anna", "", "", "", "50,00", "15.03.2024"},
	))
	require.Len(t, results, 2)

	assert.False(t, results[0].Success)
	require.ErrorIs(t, results[0].Error, amount.ErrMalformed)
	assert.True(t, results[1].Success)
	assert.Equal(t, 1, calls)
}

func Test_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	conv := New(newBuilder(false), fakePDF(&calls), Options{OutputDir: t.TempDir()})

	results := conv.Run(ctx, groups(
		[]string{"Meier", "Max", "", "", "", "10,00", "01.02.2024"},
	))
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	assert.True(t, errors.Is(results[0].Error, context.Canceled))
	assert.Zero(t, calls)
}

func Test_UniqueName_NeverRepeats(t *testing.T) {
	conv := New(newBuilder(false), nil, Options{})

	var names []string
	for _, name := range []string{"A_2", "A", "A", "A", "A_3"} {
		names = append(names, conv.uniqueName(name))
	}

	assert.Equal(t, []string{"A_2", "A", "A_3", "A_4", "A_3_2"}, names)
}
