package complydex

import "github.com/kailas-cloud/complydex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrValidation    = domain.ErrValidation
	ErrUpstreamFetch = domain.ErrUpstreamFetch
	ErrDuplicateName = domain.ErrDuplicateName
	ErrUnauthorized  = domain.ErrUnauthorized
)

// Typed errors. Use errors.As() to read their fields.
type (
	ValidationError    = domain.ValidationError
	UpstreamFetchError = domain.UpstreamFetchError
	DuplicateNameError = domain.DuplicateNameError
	UnauthorizedError  = domain.UnauthorizedError
)
