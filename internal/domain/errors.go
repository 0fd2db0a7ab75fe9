package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals an invalid weight table, blend policy, or
	// schema mismatch. Detected at load time, fatal before any query runs.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidQuery signals a malformed per-query input.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidFilter signals an unrecognized metadata field or malformed range.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrModelUnavailable signals a semantic clause requested without a
	// deployed embedding model identifier.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrEngineDispatch signals a transport or engine-side failure during dispatch.
	ErrEngineDispatch = errors.New("engine dispatch failed")
)

// DispatchError wraps ErrEngineDispatch with the failing engine operation and
// the original failure detail, surfaced to the caller unmodified.
type DispatchError struct {
	Op  string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrEngineDispatch.Error(), e.Op, e.Err.Error())
}

func (e *DispatchError) Unwrap() error { return ErrEngineDispatch }

// Cause returns the original engine failure.
func (e *DispatchError) Cause() error { return e.Err }

// NewDispatchError wraps an engine failure with its operation name.
func NewDispatchError(op string, err error) error {
	return &DispatchError{Op: op, Err: err}
}
