package ordering

import (
	"cmp"
	"strings"

	"github.com/kailas-cloud/complydex/internal/domain/record"
)

// Field is a record attribute results can be sorted by.
type Field string

// Sortable fields.
const (
	CreatedAt          Field = "createdAt"
	UpdatedAt          Field = "updatedAt"
	Amount             Field = "amount"
	ContractExpiryDate Field = "contractExpiryDate"
	Name               Field = "name"
)

// IsValid checks if the field is one of the supported values.
func (f Field) IsValid() bool {
	switch f {
	case CreatedAt, UpdatedAt, Amount, ContractExpiryDate, Name:
		return true
	}
	return false
}

// IndexAlias returns the sortable schema field backing f.
func (f Field) IndexAlias() string {
	switch f {
	case UpdatedAt:
		return "updatedAtMs"
	case Amount:
		return "amount"
	case ContractExpiryDate:
		return "expiryMs"
	case Name:
		return "displayName"
	default:
		return "createdAtMs"
	}
}

// Compare orders a and b ascending by f. Records missing the attribute sort first.
func (f Field) Compare(a, b *record.Record) int {
	switch f {
	case UpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case Amount:
		return compareOptional(a.Amount, b.Amount)
	case ContractExpiryDate:
		ta, okA := a.ExpiryTime()
		tb, okB := b.ExpiryTime()
		if okA != okB {
			if okA {
				return 1
			}
			return -1
		}
		return ta.Compare(tb)
	case Name:
		return strings.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName()))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

// Order is the sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks if the order is one of the supported values.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}

// Apply flips c for descending order.
func (o Order) Apply(c int) int {
	if o == Desc {
		return -c
	}
	return c
}
