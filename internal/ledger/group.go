package ledger

import (
	"strings"

	"github.com/ginjaninja78/donation-receipts/internal/types"
)

// =============================================================================
// DONOR GROUPING
// =============================================================================

// IdentityKey builds the case-insensitive donor identity from last and first name.
func IdentityKey(lastName, firstName string) string {
	return strings.ToLower(lastName) + "|" + strings.ToLower(firstName)
}

// Group buckets records by donor identity.
//
// Groups are returned in order of first occurrence, and records keep their
// input order inside a group. A group with one record gets a single receipt,
// a group with more gets a consolidated receipt.
func Group(records []types.DonationRecord) []types.DonorGroup {
	index := make(map[string]int)
	var groups []types.DonorGroup

	for _, record := range records {
		key := IdentityKey(record.LastName, record.FirstName)

		i, exists := index[key]
		if !exists {
			i = len(groups)
			index[key] = i
			groups = append(groups, types.DonorGroup{Key: key})
		}

		groups[i].Records = append(groups[i].Records, record)
	}

	return groups
}
