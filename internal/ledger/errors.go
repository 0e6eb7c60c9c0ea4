// =================================
// File: internal/ledger/errors.go
// =================================
package ledger

import "errors"

var (
	// ErrInvalidAmount is returned for zero or negative transfer amounts.
	ErrInvalidAmount = errors.New("ledger: amount must be greater than zero")

	// ErrInsufficientBalance is returned when the sender holds less than the
	// requested amount.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrInsufficientAllowance is returned when a delegated transfer exceeds
	// the approved allowance.
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")

	// ErrZeroAddress is returned when a party address is empty.
	ErrZeroAddress = errors.New("ledger: zero address")
)
