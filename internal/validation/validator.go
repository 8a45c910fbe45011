// =============================================================================
// Donation Receipts - Ledger Validation
// =============================================================================
//
// The generator is permissive: malformed amounts count as zero
// and unparseable dates sort first. This module reports those cases up front
// so the treasurer can fix the ledger before receipts are issued.
//
// VALIDATION LEVELS:
//   1. Record-level: name, address, amount and date of each row
//   2. Group-level:  consistency across the donations of one donor
//
// SEVERITY:
//   "error"   the receipt would be wrong or could not be addressed
//   "warning" the receipt is produced but should be checked
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/donation-receipts/internal/amount"
	"github.com/ginjaninja78/donation-receipts/internal/ledger"
	"github.com/ginjaninja78/donation-receipts/internal/types"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION FINDINGS
// =============================================================================

// Finding is a single validation result.
type Finding struct {
	Severity string

	// Line is the ledger row; zero for group-level findings.
	Line int

	// Donor is the identity key of the affected donor.
	Donor string

	Field   string
	Value   string
	Rule    string
	Message string
}

// Error implements the error interface.
func (f *Finding) Error() string {
	location := fmt.Sprintf("Donor '%s'", f.Donor)
	if f.Line > 0 {
		location = fmt.Sprintf("Line %d", f.Line)
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(f.Severity), location, f.Field, f.Message, f.Value)
}

// Result contains the results of validation.
type Result struct {
	// IsValid is true if there are no errors.
	IsValid bool

	Findings []*Finding

	ErrorCount   int
	WarningCount int

	RecordsValidated int
	DonorsValidated  int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// Strict reports malformed amounts as errors instead of warnings.
	Strict bool

	// TreatWarningsAsErrors makes any warning invalidate the result.
	TreatWarningsAsErrors bool
}

// Validator checks parsed ledgers.
type Validator struct {
	options Options
}

// NewValidator creates a new Validator.
func NewValidator(options Options) *Validator {
	return &Validator{options: options}
}

// Validate checks all records and their donor groups.
func (v *Validator) Validate(records []types.DonationRecord) *Result {
	result := &Result{IsValid: true, RecordsValidated: len(records)}

	for _, record := range records {
		v.collect(result, v.ValidateRecord(record))
	}

	groups := ledger.Group(records)
	result.DonorsValidated = len(groups)
	for _, group := range groups {
		v.collect(result, v.ValidateGroup(group))
	}

	return result
}

func (v *Validator) collect(result *Result, findings []*Finding) {
	for _, f := range findings {
		result.Findings = append(result.Findings, f)

		if f.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false
			continue
		}

		result.WarningCount++
		if v.options.TreatWarningsAsErrors {
			result.IsValid = false
		}
	}
}

// ValidateRecord checks a single ledger row.
func (v *Validator) ValidateRecord(r types.DonationRecord) []*Finding {
	var findings []*Finding
	donor := ledger.IdentityKey(r.LastName, r.FirstName)

	add := func(severity, field, value, rule, message string) {
		findings = append(findings, &Finding{
			Severity: severity,
			Line:     r.Line,
			Donor:    donor,
			Field:    field,
			Value:    value,
			Rule:     rule,
			Message:  message,
		})
	}

	// =========================================================================
	// DONOR
	// =========================================================================

	if r.LastName == "" && r.FirstName == "" {
		add(SeverityError, "name", "", "required", "donor name is empty")
	}
	if r.Street == "" || r.City == "" {
		add(SeverityWarning, "address", r.Street+" / "+r.City, "required", "postal address is incomplete")
	}

	// =========================================================================
	// AMOUNT
	// =========================================================================

	value, err := amount.Parse(r.Amount)
	switch {
	case err != nil:
		severity := SeverityWarning
		if v.options.Strict {
			severity = SeverityError
		}
		add(severity, "amount", r.Amount, "decimal", "amount is not a number and will count as 0,00")
	case value.IsNegative():
		add(SeverityWarning, "amount", r.Amount, "positive", "amount is negative")
	case value.IsZero():
		add(SeverityWarning, "amount", r.Amount, "positive", "amount is zero")
	}

	// =========================================================================
	// DATE
	// =========================================================================

	switch {
	case r.DonationDate == "":
		add(SeverityWarning, "date", "", "required", "donation date is empty")
	case !r.HasDate():
		add(SeverityWarning, "date", r.DonationDate, "date", "donation date is not DD.MM.YYYY, DD.MM.YY or YYYY-MM-DD and will sort first")
	}

	return findings
}

// ValidateGroup checks consistency across the donations of one donor.
func (v *Validator) ValidateGroup(g types.DonorGroup) []*Finding {
	if !g.Consolidated() {
		return nil
	}

	var findings []*Finding
	first := g.First()

	for _, r := range g.Records[1:] {
		if r.Street != first.Street || r.City != first.City || r.AddressExtra != first.AddressExtra {
			findings = append(findings, &Finding{
				Severity: SeverityWarning,
				Line:     r.Line,
				Donor:    g.Key,
				Field:    "address",
				Value:    r.Street + " / " + r.City,
				Rule:     "consistent",
				Message:  "address differs from other donations; the earliest donation's address is printed",
			})
		}
	}

	years := make(map[int]bool)
	for _, r := range g.Records {
		if r.HasDate() {
			years[r.Date.Year()] = true
		}
	}
	if len(years) > 1 {
		findings = append(findings, &Finding{
			Severity: SeverityWarning,
			Donor:    g.Key,
			Field:    "date",
			Value:    fmt.Sprintf("%d years", len(years)),
			Rule:     "single_year",
			Message:  "donations span several years; the receipt year is taken from the latest donation",
		})
	}

	return findings
}
