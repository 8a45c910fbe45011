// =============================================================================
// Donation Receipts - Document Builder
// =============================================================================
//
// This module turns one donor group into the text of one receipt document.
//
// DOCUMENT KINDS:
//   Single        one donation -> "Bestätigung über Geldzuwendungen". The
//                 amount is shown as written in the ledger and spelled out.
//   Consolidated  two or more donations -> "Sammelbestätigung". Donations
//                 are listed chronologically as table rows, summed exactly
//                 and the total is spelled out.
//
// ORDERING:
//   Donations without a parseable date sort before all dated donations and
//   keep their ledger order among themselves.
//
// =============================================================================

package receipt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/donation-receipts/internal/amount"
	"github.com/ginjaninja78/donation-receipts/internal/numwords"
	"github.com/ginjaninja78/donation-receipts/internal/types"
)

// IssueDateLayout formats the issue date on every receipt.
const IssueDateLayout = "02.01.2006"

// Kind distinguishes single from consolidated receipts.
type Kind string

const (
	KindSingle       Kind = "single"
	KindConsolidated Kind = "consolidated"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a populated receipt, ready to be written and compiled.
type Document struct {
	Kind Kind

	// Name is the file base name without extension.
	Name string

	// Key is the donor identity key of the source group.
	Key string

	// DonorName is "first last", used in logs and the register.
	DonorName string

	// Text is the template after substitution.
	Text string

	Context   Context
	Total     decimal.Decimal
	Donations int

	// Year is the receipt year of consolidated receipts; zero for single ones.
	Year int
}

// =============================================================================
// BUILDER
// =============================================================================

// Options configures the builder.
type Options struct {
	// IssueDate is printed on every receipt of the run.
	IssueDate time.Time

	// DonationKind and Waiver fill the fixed classification columns of a
	// consolidated row ("Art der Zuwendung", "Verzicht auf Erstattung").
	DonationKind string
	Waiver       string

	// Currency is printed after each row amount. Default: "Euro"
	Currency string

	// RowSeparator joins the rendered rows. Default: "\n"
	RowSeparator string

	Logger zerolog.Logger
}

// Builder produces receipt documents from donor groups.
type Builder struct {
	templates Templates
	words     *numwords.Converter
	amounts   *amount.Normalizer
	opts      Options
	issueDate string
}

// NewBuilder creates a Builder. Empty option strings get their defaults.
func NewBuilder(templates Templates, words *numwords.Converter, amounts *amount.Normalizer, opts Options) *Builder {
	if opts.DonationKind == "" {
		opts.DonationKind = "Spende"
	}
	if opts.Waiver == "" {
		opts.Waiver = "Nein"
	}
	if opts.Currency == "" {
		opts.Currency = "Euro"
	}
	if opts.RowSeparator == "" {
		opts.RowSeparator = "\n"
	}

	return &Builder{
		templates: templates,
		words:     words,
		amounts:   amounts,
		opts:      opts,
		issueDate: opts.IssueDate.Format(IssueDateLayout),
	}
}

// Build dispatches on group size: one record gives a single receipt, more
// give a consolidated receipt.
func (b *Builder) Build(group types.DonorGroup) (Document, error) {
	if len(group.Records) == 0 {
		return Document{}, fmt.Errorf("donor group %q has no records", group.Key)
	}
	if group.Consolidated() {
		return b.Consolidated(group)
	}
	return b.Single(group)
}

// Single builds the receipt for a group with exactly one record.
func (b *Builder) Single(group types.DonorGroup) (Document, error) {
	record := group.First()
	log := b.opts.Logger.With().Int("line", record.Line).Str("donor", group.Key).Logger()

	total, err := b.amounts.Value(record.Amount, record.Line)
	if err != nil {
		return Document{}, err
	}

	words, err := b.words.FromDisplay(record.Amount)
	if err != nil {
		log.Warn().Err(err).Msg("amount in words unavailable, using digits")
		words = record.Amount
	}

	ctx := b.donorContext(record, record)
	ctx[TokenAmount] = amount.Display(record.Amount)
	ctx[TokenAmountWords] = words
	ctx[TokenDonationDate] = record.DonationDate

	return Document{
		Kind:      KindSingle,
		Name:      SingleName(record.LastName, record.FirstName, record.DonationDate),
		Key:       group.Key,
		DonorName: displayName(record),
		Text:      Substitute(b.templates.Single, ctx),
		Context:   ctx,
		Total:     total,
		Donations: 1,
	}, nil
}

// Consolidated builds the receipt for a group with two or more records.
func (b *Builder) Consolidated(group types.DonorGroup) (Document, error) {
	sorted := SortChronologically(group.Records)
	log := b.opts.Logger.With().Str("donor", group.Key).Logger()

	rows := make([]string, 0, len(sorted))
	values := make([]decimal.Decimal, 0, len(sorted))
	for _, record := range sorted {
		value, err := b.amounts.Value(record.Amount, record.Line)
		if err != nil {
			return Document{}, err
		}
		values = append(values, value)
		rows = append(rows, b.row(record, value))
	}

	total := amount.Sum(values)

	totalWords, err := b.words.FromDecimal(total)
	if err != nil {
		log.Warn().Err(err).Msg("total in words unavailable, leaving it empty")
		totalWords = ""
	}

	last := sorted[len(sorted)-1]
	year := b.opts.IssueDate.Year()
	if last.HasDate() {
		year = last.Date.Year()
	} else {
		log.Warn().Int("year", year).Msg("no dated donation, using the issue year as receipt year")
	}

	first := group.First()
	ctx := b.donorContext(first, sorted[0])
	ctx[TokenAmount] = amount.Format(total)
	ctx[TokenRows] = strings.Join(rows, b.opts.RowSeparator)
	ctx[TokenTotalWords] = totalWords
	ctx[TokenYear] = strconv.Itoa(year)

	return Document{
		Kind:      KindConsolidated,
		Name:      ConsolidatedName(first.LastName, first.FirstName),
		Key:       group.Key,
		DonorName: displayName(first),
		Text:      Substitute(b.templates.Consolidated, ctx),
		Context:   ctx,
		Total:     total,
		Donations: len(sorted),
		Year:      year,
	}, nil
}

// row renders one table row: "<date> & Spende & Nein & --<amount> Euro -- \\ \hline".
func (b *Builder) row(record types.DonationRecord, value decimal.Decimal) string {
	return fmt.Sprintf("%s & %s & %s & --%s %s -- \\\\ \\hline",
		record.DonationDate,
		b.opts.DonationKind,
		b.opts.Waiver,
		amount.Format(value),
		b.opts.Currency,
	)
}

// donorContext fills the tokens shared by both templates. Names come from
// name, the postal address from address.
func (b *Builder) donorContext(name, address types.DonationRecord) Context {
	return Context{
		TokenLastName:     name.LastName,
		TokenFirstName:    name.FirstName,
		TokenFullName:     displayName(name),
		TokenStreet:       address.Street,
		TokenAddressExtra: address.AddressExtra,
		TokenCity:         address.City,
		TokenIssueDate:    b.issueDate,
	}
}

func displayName(r types.DonationRecord) string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// SortChronologically returns a copy of records ordered by donation date.
// Undated records come first, in their original order.
func SortChronologically(records []types.DonationRecord) []types.DonationRecord {
	sorted := make([]types.DonationRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sortTime(sorted[i]).Before(sortTime(sorted[j]))
	})

	return sorted
}

func sortTime(r types.DonationRecord) time.Time {
	if r.Date == nil {
		return time.Time{}
	}
	return *r.Date
}
