package receipt

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// =============================================================================
// TEMPLATE TOKENS
// =============================================================================
// Templates are plain LaTeX files with literal placeholder words. Both
// templates share the donor and date tokens; the amount tokens differ.

const (
	TokenLastName     = "SPENDERNACHNAME"
	TokenFirstName    = "SPENDERVORNAME"
	TokenFullName     = "SPENDERNAME"
	TokenStreet       = "SPENDERSTRASSE"
	TokenAddressExtra = "SPENDERZUSATZ"
	TokenCity         = "SPENDERORT"
	TokenAmount       = "BETRAGZIFFERN"
	TokenIssueDate    = "AUSSTELLUNGSDATUM"

	// Single receipts only.
	TokenAmountWords  = "BETRAGBUCHSTABEN"
	TokenDonationDate = "SPENDENDATUM"

	// Consolidated receipts only.
	TokenRows       = "DONATION_ROWS"
	TokenTotalWords = "GESAMTBETRAGSWORTE"
	TokenYear       = "SPENDENJAHR"
)

// ErrTemplateNotFound is returned by LoadTemplates for a missing template file.
var ErrTemplateNotFound = errors.New("template not found")

// Templates holds the text of both receipt templates.
type Templates struct {
	Single       string
	Consolidated string
}

// LoadTemplates reads both templates from disk.
func LoadTemplates(singlePath, consolidatedPath string) (Templates, error) {
	single, err := readTemplate(singlePath)
	if err != nil {
		return Templates{}, fmt.Errorf("single receipt template: %w", err)
	}

	consolidated, err := readTemplate(consolidatedPath)
	if err != nil {
		return Templates{}, fmt.Errorf("consolidated receipt template: %w", err)
	}

	return Templates{Single: single, Consolidated: consolidated}, nil
}

func readTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// =============================================================================
// SUBSTITUTION
// =============================================================================

// Context maps template tokens to their replacement text.
type Context map[string]string

// Substitute replaces every occurrence of every token in ctx.
//
// The text is scanned once and the longest token wins at each position, so
// the result does not depend on map order and replacement values are never
// substituted again. Tokens missing from ctx are left as they are.
func Substitute(template string, ctx Context) string {
	tokens := make([]string, 0, len(ctx))
	for token := range ctx {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return template
	}

	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	pairs := make([]string, 0, 2*len(tokens))
	for _, token := range tokens {
		pairs = append(pairs, token, ctx[token])
	}

	return strings.NewReplacer(pairs...).Replace(template)
}
