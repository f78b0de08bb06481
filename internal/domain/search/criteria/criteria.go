package criteria

import (
	"slices"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/record"
	"github.com/kailas-cloud/complydex/internal/domain/search/filter"
)

// Index schema aliases the fetch expression refers to.
const (
	FieldDepartment       = "department"
	FieldStatus           = "status"
	FieldPriority         = "priority"
	FieldVendor           = "vendor"
	FieldContractType     = "contractType"
	FieldAmount           = "amount"
	FieldCreatedAt        = "createdAtMs"
	FieldUpdatedAt        = "updatedAtMs"
	FieldExpiry           = "expiryMs"
	FieldAssignedManagers = "assignedManagers"
	FieldCompliance       = "compliance"
)

// Filters is the structured part of a search. Every field is optional.
// Dates are RFC 3339 or YYYY-MM-DD; bounds are inclusive and a date-only
// upper bound covers the whole day.
type Filters struct {
	Types            []record.Kind `json:"type,omitempty"`
	Department       string        `json:"department,omitempty"`
	Status           string        `json:"status,omitempty"`
	Priority         string        `json:"priority,omitempty"`
	Vendor           string        `json:"vendor,omitempty"`
	ContractType     string        `json:"contractType,omitempty"`
	AmountMin        *float64      `json:"amountMin,omitempty"`
	AmountMax        *float64      `json:"amountMax,omitempty"`
	StartDate        string        `json:"startDate,omitempty"`
	EndDate          string        `json:"endDate,omitempty"`
	ExpiryDateStart  string        `json:"expiryDateStart,omitempty"`
	ExpiryDateEnd    string        `json:"expiryDateEnd,omitempty"`
	AssignedManagers []string      `json:"assignedManagers,omitempty"`
	Compliance       []string      `json:"compliance,omitempty"`
}

// Validate rejects filters that cannot be translated into predicates.
// The returned error is a *domain.ValidationError naming the parameter.
func (f *Filters) Validate() error {
	for _, k := range f.Types {
		if !k.IsValid() {
			return domain.NewValidation("type", "unknown record type %q", k)
		}
	}
	if f.AmountMin != nil && *f.AmountMin < 0 {
		return domain.NewValidation("amountMin", "must not be negative")
	}
	if f.AmountMax != nil && *f.AmountMax < 0 {
		return domain.NewValidation("amountMax", "must not be negative")
	}
	if f.AmountMin != nil && f.AmountMax != nil && *f.AmountMin > *f.AmountMax {
		return domain.NewValidation("amountMin", "must not exceed amountMax")
	}
	if err := validateWindow("startDate", f.StartDate, "endDate", f.EndDate); err != nil {
		return err
	}
	if err := validateWindow("expiryDateStart", f.ExpiryDateStart, "expiryDateEnd", f.ExpiryDateEnd); err != nil {
		return err
	}
	if slices.Contains(f.AssignedManagers, "") {
		return domain.NewValidation("assignedManagers", "must not contain empty values")
	}
	if slices.Contains(f.Compliance, "") {
		return domain.NewValidation("compliance", "must not contain empty values")
	}
	if len(f.AssignedManagers) > filter.MaxValuesPerCondition {
		return domain.NewValidation("assignedManagers", "too many values (max %d)", filter.MaxValuesPerCondition)
	}
	if len(f.Compliance) > filter.MaxValuesPerCondition {
		return domain.NewValidation("compliance", "too many values (max %d)", filter.MaxValuesPerCondition)
	}
	return nil
}

func validateWindow(fromParam, from, toParam, to string) error {
	lo, hi, err := window(fromParam, from, toParam, to)
	if err != nil {
		return err
	}
	if lo != nil && hi != nil && lo.After(*hi) {
		return domain.NewValidation(fromParam, "must not be after %s", toParam)
	}
	return nil
}

// window parses an inclusive date window. A date-only upper bound is
// widened to the last instant of that day.
func window(fromParam, from, toParam, to string) (lo, hi *time.Time, err error) {
	if from != "" {
		t, perr := record.ParseTime(from)
		if perr != nil {
			return nil, nil, domain.NewValidation(fromParam, "%v", perr)
		}
		lo = &t
	}
	if to != "" {
		t, perr := record.ParseTime(to)
		if perr != nil {
			return nil, nil, domain.NewValidation(toParam, "%v", perr)
		}
		if record.IsDateOnly(to) {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		hi = &t
	}
	return lo, hi, nil
}

// Includes reports whether the type filter admits kind. No type filter admits every kind.
func (f *Filters) Includes(kind record.Kind) bool {
	return len(f.Types) == 0 || slices.Contains(f.Types, kind)
}

// Expression translates the present filters into fetch-layer predicates:
// equality as tag matches, amounts and dates as numeric ranges, sets as any-of tags.
// The type filter is not part of it; callers skip excluded collections instead.
func (f *Filters) Expression() (filter.Expression, error) {
	if err := f.Validate(); err != nil {
		return filter.Expression{}, err
	}

	var conds []filter.Condition
	for _, eq := range []struct{ key, val string }{
		{FieldDepartment, f.Department},
		{FieldStatus, f.Status},
		{FieldPriority, f.Priority},
		{FieldVendor, f.Vendor},
		{FieldContractType, f.ContractType},
	} {
		if eq.val == "" {
			continue
		}
		c, err := filter.NewMatch(eq.key, eq.val)
		if err != nil {
			return filter.Expression{}, domain.NewValidation(eq.key, "%v", err)
		}
		conds = append(conds, c)
	}

	if f.AmountMin != nil || f.AmountMax != nil {
		c, err := rangeCondition(FieldAmount, f.AmountMin, f.AmountMax)
		if err != nil {
			return filter.Expression{}, domain.NewValidation("amountMin", "%v", err)
		}
		conds = append(conds, c)
	}

	created, err := dateCondition(FieldCreatedAt, "startDate", f.StartDate, "endDate", f.EndDate)
	if err != nil {
		return filter.Expression{}, err
	}
	expiry, err := dateCondition(FieldExpiry, "expiryDateStart", f.ExpiryDateStart, "expiryDateEnd", f.ExpiryDateEnd)
	if err != nil {
		return filter.Expression{}, err
	}
	conds = append(conds, created...)
	conds = append(conds, expiry...)

	for _, set := range []struct {
		key  string
		vals []string
	}{
		{FieldAssignedManagers, f.AssignedManagers},
		{FieldCompliance, f.Compliance},
	} {
		if len(set.vals) == 0 {
			continue
		}
		c, err := filter.NewMatchAny(set.key, set.vals...)
		if err != nil {
			return filter.Expression{}, domain.NewValidation(set.key, "%v", err)
		}
		conds = append(conds, c)
	}

	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return filter.Expression{}, domain.NewValidation("filters", "%v", err)
	}
	return expr, nil
}

func rangeCondition(key string, lo, hi *float64) (filter.Condition, error) {
	r, err := filter.Between(lo, hi)
	if err != nil {
		return filter.Condition{}, err
	}
	return filter.NewRange(key, r)
}

func dateCondition(key, fromParam, from, toParam, to string) ([]filter.Condition, error) {
	lo, hi, err := window(fromParam, from, toParam, to)
	if err != nil {
		return nil, err
	}
	if lo == nil && hi == nil {
		return nil, nil
	}
	c, err := rangeCondition(key, millis(lo), millis(hi))
	if err != nil {
		return nil, domain.NewValidation(fromParam, "%v", err)
	}
	return []filter.Condition{c}, nil
}

func millis(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	v := float64(t.UnixMilli())
	return &v
}

// Matches evaluates the filters against rec in memory with the same
// semantics the fetch layer applies. Invalid filters match nothing.
func (f *Filters) Matches(rec *record.Record) bool {
	if f.Validate() != nil {
		return false
	}
	if !f.Includes(rec.Kind) {
		return false
	}
	for _, eq := range []struct{ want, got string }{
		{f.Department, rec.Department},
		{f.Status, rec.Status},
		{f.Priority, rec.Priority},
		{f.Vendor, rec.Vendor},
		{f.ContractType, rec.ContractType},
	} {
		if eq.want != "" && eq.want != eq.got {
			return false
		}
	}
	if f.AmountMin != nil || f.AmountMax != nil {
		if rec.Amount == nil {
			return false
		}
		if f.AmountMin != nil && *rec.Amount < *f.AmountMin {
			return false
		}
		if f.AmountMax != nil && *rec.Amount > *f.AmountMax {
			return false
		}
	}
	lo, hi, _ := window("startDate", f.StartDate, "endDate", f.EndDate)
	if !inWindow(rec.CreatedAt, true, lo, hi) {
		return false
	}
	lo, hi, _ = window("expiryDateStart", f.ExpiryDateStart, "expiryDateEnd", f.ExpiryDateEnd)
	expiry, ok := rec.ExpiryTime()
	if !inWindow(expiry, ok, lo, hi) {
		return false
	}
	if len(f.AssignedManagers) > 0 && !overlaps(f.AssignedManagers, rec.AssignedManagers) {
		return false
	}
	if len(f.Compliance) > 0 && !overlaps(f.Compliance, rec.Compliance) {
		return false
	}
	return true
}

func inWindow(t time.Time, present bool, lo, hi *time.Time) bool {
	if lo == nil && hi == nil {
		return true
	}
	if !present {
		return false
	}
	ms := t.UnixMilli()
	if lo != nil && ms < lo.UnixMilli() {
		return false
	}
	if hi != nil && ms > hi.UnixMilli() {
		return false
	}
	return true
}

func overlaps(want, have []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
