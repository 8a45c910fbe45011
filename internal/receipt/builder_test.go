package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/donation-receipts/internal/amount"
	"github.com/ginjaninja78/donation-receipts/internal/ledger"
	"github.com/ginjaninja78/donation-receipts/internal/numwords"
	"github.com/ginjaninja78/donation-receipts/internal/types"
)

const (
	singleTemplate = `SPENDERNAME, SPENDERSTRASSE, SPENDERZUSATZ, SPENDERORT
BETRAGZIFFERN (BETRAGBUCHSTABEN) am SPENDENDATUM, ausgestellt AUSSTELLUNGSDATUM`

	consolidatedTemplate = `SPENDERVORNAME SPENDERNACHNAME, SPENDERORT
Jahr SPENDENJAHR
DONATION_ROWS
Summe BETRAGZIFFERN (GESAMTBETRAGSWORTE), ausgestellt AUSSTELLUNGSDATUM`
)

var issueDate = time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)

func newTestBuilder(strict bool, logs *bytes.Buffer) *Builder {
	logger := zerolog.Nop()
	if logs != nil {
		logger = zerolog.New(logs)
	}

	normalizer := amount.NewNormalizer(logger)
	normalizer.Strict = strict

	return NewBuilder(
		Templates{Single: singleTemplate, Consolidated: consolidatedTemplate},
		numwords.NewConverter(numwords.German{}, "Euro"),
		normalizer,
		Options{IssueDate: issueDate, Logger: logger},
	)
}

func donation(last, first, value, date string) types.DonationRecord {
	return ledger.NewRecord([]string{last, first, "Hauptstr. 1", "", "12345 Berlin", value, date})
}

func group(records ...types.DonationRecord) types.DonorGroup {
	groups := ledger.Group(records)
	if len(groups) != 1 {
		panic("records belong to more than one donor")
	}
	return groups[0]
}

func Test_Build_Single(t *testing.T) {
	b := newTestBuilder(false, nil)

	doc, err := b.Build(group(donation("Schmidt", "Anna", "50,5", "15.03.2024")))
	require.NoError(t, err)

	assert.Equal(t, KindSingle, doc.Kind)
	assert.Equal(t, "Schmidt_Anna_15-03-2024", doc.Name)
	assert.Equal(t, "Anna Schmidt", doc.DonorName)
	assert.Equal(t, 1, doc.Donations)
	assert.True(t, decimal.RequireFromString("50.5").Equal(doc.Total))

	assert.Equal(t, "50,5", doc.Context[TokenAmount])
	assert.Equal(t, "Fünfzig Euro und 50/100", doc.Context[TokenAmountWords])
	assert.Equal(t, "Anna Schmidt, Hauptstr. 1, , 12345 Berlin\n50,5 (Fünfzig Euro und 50/100) am 15.03.2024, ausgestellt 05.12.2024", doc.Text)
}

func Test_Build_SingleMalformedAmountFallsBackToDigits(t *testing.T) {
	var logs bytes.Buffer
	b := newTestBuilder(false, &logs)

	doc, err := b.Build(group(donation("Schmidt", "Anna", "fünfzig", "15.03.2024")))
	require.NoError(t, err)

	assert.Equal(t, "fünfzig", doc.Context[TokenAmountWords])
	assert.True(t, doc.Total.IsZero())
	assert.Contains(t, logs.String(), "malformed amount")
}

func Test_Build_SingleStrictRejectsMalformedAmount(t *testing.T) {
	b := newTestBuilder(true, nil)

	_, err := b.Build(group(donation("Schmidt", "Anna", "abc", "15.03.2024")))
	require.ErrorIs(t, err, amount.ErrMalformed)
}

func Test_Build_Consolidated(t *testing.T) {
	b := newTestBuilder(false, nil)

	doc, err := b.Build(group(
		donation("Schmidt", "Anna", "75,25", "30.11.2024"),
		donation("schmidt", "anna", "50,00", "15.03.2024"),
	))
	require.NoError(t, err)

	assert.Equal(t, KindConsolidated, doc.Kind)
	assert.Equal(t, "Schmidt_Anna_sammel", doc.Name)
	assert.Equal(t, 2, doc.Donations)
	assert.Equal(t, 2024, doc.Year)

	assert.Equal(t, "125,25", doc.Context[TokenAmount])
	assert.Equal(t, "Einhundertfünfundzwanzig Euro und 25/100", doc.Context[TokenTotalWords])
	assert.Equal(t, "2024", doc.Context[TokenYear])

	rows := strings.Split(doc.Context[TokenRows], "\n")
	require.Len(t, rows, 2)
	assert.Equal(t, `15.03.2024 & Spende & Nein & --50,00 Euro -- \\ \hline`, rows[0])
	assert.Equal(t, `30.11.2024 & Spende & Nein & --75,25 Euro -- \\ \hline`, rows[1])

	assert.True(t, strings.HasPrefix(doc.Text, "Anna Schmidt, 12345 Berlin\nJahr 2024\n"))
	assert.NotContains(t, doc.Text, "DONATION_ROWS")
}

func Test_Build_ConsolidatedExactSum(t *testing.T) {
	b := newTestBuilder(false, nil)

	doc, err := b.Build(group(
		donation("Schmidt", "Anna", "0,10", "01.01.2024"),
		donation("Schmidt", "Anna", "0,20", "02.01.2024"),
	))
	require.NoError(t, err)

	assert.Equal(t, "0,30", doc.Context[TokenAmount])
	assert.Equal(t, "Null Euro und 30/100", doc.Context[TokenTotalWords])
}

func Test_Build_ConsolidatedUndatedSortsFirst(t *testing.T) {
	b := newTestBuilder(false, nil)

	doc, err := b.Build(group(
		donation("Schmidt", "Anna", "10,00", "02.01.2024"),
		donation("Schmidt", "Anna", "20,00", "irgendwann"),
		donation("Schmidt", "Anna", "30,00", "01.01.2024"),
	))
	require.NoError(t, err)

	rows := strings.Split(doc.Context[TokenRows], "\n")
	require.Len(t, rows, 3)
	assert.True(t, strings.HasPrefix(rows[0], "irgendwann &"))
	assert.True(t, strings.HasPrefix(rows[1], "01.01.2024 &"))
	assert.True(t, strings.HasPrefix(rows[2], "02.01.2024 &"))
	assert.Equal(t, 2024, doc.Year)
}

func Test_Build_ConsolidatedMalformedAmountCountsAsZero(t *testing.T) {
	b := newTestBuilder(false, nil)

	doc, err := b.Build(group(
		donation("Schmidt", "Anna", "10,00", "01.01.2024"),
		donation("Schmidt", "Anna", "zehn", "02.01.2024"),
	))
	require.NoError(t, err)

	assert.Equal(t, "10,00", doc.Context[TokenAmount])
	assert.Contains(t, doc.Context[TokenRows], "--0,00 Euro --")
}

func Test_Build_ConsolidatedWithoutDatesUsesIssueYear(t *testing.T) {
	b := newTestBuilder(false, nil)

	doc, err := b.Build(group(
		donation("Schmidt", "Anna", "1,00", ""),
		donation("Schmidt", "Anna", "2,00", "unbekannt"),
	))
	require.NoError(t, err)
	assert.Equal(t, issueDate.Year(), doc.Year)
}

func Test_Build_ConsolidatedYearFromLatestDonation(t *testing.T) {
	b := newTestBuilder(false, nil)

	doc, err := b.Build(group(
		donation("Schmidt", "Anna", "1,00", "31.12.2023"),
		donation("Schmidt", "Anna", "2,00", "2024-01-02"),
	))
	require.NoError(t, err)
	assert.Equal(t, 2024, doc.Year)
}

func Test_Build_EmptyGroup(t *testing.T) {
	b := newTestBuilder(false, nil)

	_, err := b.Build(types.DonorGroup{Key: "x|y"})
	require.Error(t, err)
}

func Test_SortChronologically_DoesNotMutateInput(t *testing.T) {
	records := []types.DonationRecord{
		donation("A", "B", "1", "02.01.2024"),
		donation("A", "B", "2", "01.01.2024"),
	}

	sorted := SortChronologically(records)

	assert.Equal(t, "1", records[0].Amount)
	assert.Equal(t, "2", sorted[0].Amount)
}
