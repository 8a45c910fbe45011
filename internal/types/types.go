// =============================================================================
// Donation Receipts - Shared Types
// =============================================================================
//
// This package contains the types shared by the ledger, receipt and
// validation packages. Keeping them here avoids import cycles between the
// parser and the document builder.
//
// =============================================================================

package types

import "time"

// FieldCount is the number of logical columns in a ledger row:
// last name, first name, street, address supplement, city, amount, date.
const FieldCount = 7

// =============================================================================
// DONATION RECORD
// =============================================================================

// DonationRecord is a single parsed ledger row.
// Records are never modified after the parser created them.
type DonationRecord struct {
	LastName  string
	FirstName string
	Street    string

	// AddressExtra is the optional second address line (c/o, apartment).
	// Older ledgers do not carry this column; short rows are padded.
	AddressExtra string

	// City holds the postal code and city, e.g. "12345 Berlin".
	City string

	// Amount is the raw amount as written in the ledger ("1.234,56").
	Amount string

	// DonationDate is the raw date string as written in the ledger.
	DonationDate string

	// Date is the parsed DonationDate. Nil when no supported format matched.
	Date *time.Time

	// Line is the 1-based row number in the source file, used in diagnostics.
	Line int
}

// Fields returns the record in ledger column order.
func (r DonationRecord) Fields() []string {
	return []string{
		r.LastName,
		r.FirstName,
		r.Street,
		r.AddressExtra,
		r.City,
		r.Amount,
		r.DonationDate,
	}
}

// HasDate reports whether the donation date could be parsed.
func (r DonationRecord) HasDate() bool {
	return r.Date != nil
}

// =============================================================================
// DONOR GROUP
// =============================================================================

// DonorGroup holds every record of one donor.
// All records share the same Key and there is always at least one record.
type DonorGroup struct {
	// Key is the lowercased "last|first" identity.
	Key string

	// Records in input order. The receipt builder sorts consolidated groups.
	Records []DonationRecord
}

// Consolidated reports whether the group needs a consolidated receipt.
func (g DonorGroup) Consolidated() bool {
	return len(g.Records) > 1
}

// First returns the first record of the group.
func (g DonorGroup) First() DonationRecord {
	return g.Records[0]
}
