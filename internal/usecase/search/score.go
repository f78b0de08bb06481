package search

import (
	"strings"

	"github.com/kailas-cloud/complydex/internal/domain/record"
)

// Field weights.
const (
	weightName           = 10
	weightVendor         = 8
	weightContractNumber = 8
	weightDescription    = 5
	weightAnyField       = 2
)

// Score rates rec against query. Matching is case-insensitive containment.
// A field hit counts twice: once with its own weight and once with the
// generic per-field weight, so a contract-name-only hit scores 12.
func Score(rec *record.Record, query string) int {
	q := strings.ToLower(query)
	if q == "" {
		return 0
	}

	score := 0
	if contains(rec.ContractName, q) || contains(rec.Name, q) {
		score += weightName
	}
	if contains(rec.Vendor, q) {
		score += weightVendor
	}
	if contains(rec.ContractNumber, q) {
		score += weightContractNumber
	}
	if contains(rec.Description, q) {
		score += weightDescription
	}

	for _, f := range []string{rec.ContractName, rec.Name, rec.Vendor, rec.Description} {
		if contains(f, q) {
			score += weightAnyField
		}
	}
	return score
}

// contains reports whether field holds the lowercased query. Empty fields never match.
func contains(field, lowerQuery string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), lowerQuery)
}
