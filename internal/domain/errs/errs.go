// Package errs holds the error taxonomy shared by storage, network and use-case code.
// Callers wrap these sentinels with context and test them with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Storage errors.
var (
	ErrStorageOpen  = errors.New("storage open failed")
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")
	ErrStorageQuery = errors.New("storage query failed")
	ErrNotFound     = errors.New("not found")
)

// Network errors.
var (
	ErrNetwork          = errors.New("network request failed")
	ErrDecode           = errors.New("failed to decode response")
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrRateLimited      = errors.New("rate limited")
)

// Use-case errors.
var (
	ErrUnknownSymbol        = errors.New("unknown asset symbol")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrInvalidOperationKind = errors.New("invalid operation kind")
)

// StatusError carries the status and body of a non-200 API response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", ErrUnexpectedStatus, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// IsNetwork reports whether err belongs to the network family.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrUnexpectedStatus) ||
		errors.Is(err, ErrRateLimited)
}

// IsStorage reports whether err belongs to the storage family.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorageOpen) ||
		errors.Is(err, ErrStorageRead) ||
		errors.Is(err, ErrStorageWrite) ||
		errors.Is(err, ErrStorageQuery)
}
