package domain

import (
	"context"
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key complydex writes to the store.
const KeyPrefix = "complydex:"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrUpstreamFetch signals a failed read from the record store.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrDuplicateName signals a saved-search name collision for one user.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrUnauthorized signals an operation attempted by a non-owner.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError names the offending request parameter.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Param, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error for param.
func NewValidation(param, format string, args ...any) error {
	return &ValidationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// UpstreamKind classifies an upstream fetch failure so callers can choose retry or abort.
type UpstreamKind string

const (
	// UpstreamTimeout means the fetch hit a deadline.
	UpstreamTimeout UpstreamKind = "timeout"
	// UpstreamCanceled means the caller went away.
	UpstreamCanceled UpstreamKind = "canceled"
	// UpstreamUnavailable means the store could not be reached.
	UpstreamUnavailable UpstreamKind = "unavailable"
	// UpstreamStorage means the store answered with an error.
	UpstreamStorage UpstreamKind = "storage"
)

// Retryable reports whether repeating the call may succeed.
func (k UpstreamKind) Retryable() bool {
	return k == UpstreamTimeout || k == UpstreamUnavailable
}

// UpstreamFetchError carries the collection whose read failed and the failure kind.
type UpstreamFetchError struct {
	Collection string
	Kind       UpstreamKind
	Err        error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", ErrUpstreamFetch.Error(), e.Collection, e.Kind, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *UpstreamFetchError) Unwrap() []error { return []error{ErrUpstreamFetch, e.Err} }

// NewUpstreamFetch wraps err for collection. Context errors override fallback.
func NewUpstreamFetch(collection string, fallback UpstreamKind, err error) error {
	kind := fallback
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = UpstreamTimeout
	case errors.Is(err, context.Canceled):
		kind = UpstreamCanceled
	}
	return &UpstreamFetchError{Collection: collection, Kind: kind, Err: err}
}

// DuplicateNameError reports a saved-search name already taken by the same user.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateName.Error(), e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// UnauthorizedError reports an attempt to change a resource owned by someone else.
type UnauthorizedError struct {
	Resource string
	ID       string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s %s belongs to another user", ErrUnauthorized.Error(), e.Resource, e.ID)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }
