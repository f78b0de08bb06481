package search

import (
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/complydex/internal/domain/record"
)

// matchesQuery reports whether any searchable field of rec contains the
// lowercased query. Description is scored but not searched.
func matchesQuery(rec *record.Record, lowerQuery string) bool {
	fields := [...]string{
		rec.ContractName,
		rec.Name,
		rec.ContractNumber,
		rec.Vendor,
		rec.ContractType,
		rec.Department,
		rec.Status,
		rec.Priority,
		rec.ContractExpiryDate,
	}
	for _, f := range fields {
		if contains(f, lowerQuery) {
			return true
		}
	}
	for _, m := range rec.AssignedManagers {
		if contains(m, lowerQuery) {
			return true
		}
	}
	for _, c := range rec.Compliance {
		if contains(c, lowerQuery) {
			return true
		}
	}
	if rec.Amount != nil && contains(formatAmount(*rec.Amount), lowerQuery) {
		return true
	}
	return false
}

// formatAmount renders v the way users type numbers: no trailing zeros,
// no exponent except for very large or very small magnitudes.
func formatAmount(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		// 1e-07 -> 1e-7
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
