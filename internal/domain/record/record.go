package record

import (
	"fmt"
	"regexp"
	"slices"
	"time"
)

// Kind identifies the collection a record belongs to.
type Kind string

// Record kinds.
const (
	KindContract Kind = "contract"
	KindFile     Kind = "file"
)

// Kinds lists every collection in fetch order.
var Kinds = []Kind{KindContract, KindFile}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	return k == KindContract || k == KindFile
}

// Collection returns the plural collection name used in errors and metrics.
func (k Kind) Collection() string {
	return string(k) + "s"
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown record type %q", s)
	}
	return k, nil
}

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxIDLength bounds record identifiers.
const MaxIDLength = 256

// DateLayout is the date-only form accepted alongside RFC 3339.
const DateLayout = time.DateOnly

// Record is a contract or file indexed by the search engine.
// Optional string attributes are empty when absent.
type Record struct {
	ID                 string
	Kind               Kind
	Name               string
	ContractName       string
	ContractNumber     string
	Description        string
	Vendor             string
	Department         string
	Status             string
	Priority           string
	ContractType       string
	Amount             *float64
	ContractExpiryDate string
	AssignedManagers   []string
	Compliance         []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks identity, amounts, timestamps and the expiry date format.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record ID is required")
	}
	if len(r.ID) > MaxIDLength {
		return fmt.Errorf("record ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(r.ID) {
		return fmt.Errorf("record ID must contain only letters, digits, '.', '_' and '-'")
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("unknown record type %q", r.Kind)
	}
	if r.Amount != nil && *r.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if !r.CreatedAt.IsZero() && !r.UpdatedAt.IsZero() && r.UpdatedAt.Before(r.CreatedAt) {
		return fmt.Errorf("updatedAt must not precede createdAt")
	}
	if r.ContractExpiryDate != "" {
		if _, err := ParseTime(r.ContractExpiryDate); err != nil {
			return fmt.Errorf("contractExpiryDate: %w", err)
		}
	}
	return nil
}

// Stamp fills missing timestamps: UpdatedAt defaults to now and CreatedAt
// to UpdatedAt. Present values are kept.
func (r *Record) Stamp(now time.Time) {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = now
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.UpdatedAt
	}
}

// DisplayName returns the contract name when set, otherwise the plain name.
func (r *Record) DisplayName() string {
	if r.ContractName != "" {
		return r.ContractName
	}
	return r.Name
}

// ExpiryTime parses ContractExpiryDate. ok is false when it is absent or malformed.
func (r *Record) ExpiryTime() (time.Time, bool) {
	if r.ContractExpiryDate == "" {
		return time.Time{}, false
	}
	t, err := ParseTime(r.ContractExpiryDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clone returns a deep copy.
func (r *Record) Clone() Record {
	c := *r
	if r.Amount != nil {
		a := *r.Amount
		c.Amount = &a
	}
	c.AssignedManagers = slices.Clone(r.AssignedManagers)
	c.Compliance = slices.Clone(r.Compliance)
	return c
}

// ParseTime accepts RFC 3339 timestamps and plain dates (UTC midnight).
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want RFC 3339 or YYYY-MM-DD)", s)
	}
	return t, nil
}

// IsDateOnly reports whether s is a plain YYYY-MM-DD date.
func IsDateOnly(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
