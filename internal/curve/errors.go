// =============================
// File: internal/curve/errors.go
// =============================
package curve

import "errors"

var (
	// ErrCurveNotActive rejects trades against a completed curve; the market
	// has moved to the external exchange.
	ErrCurveNotActive = errors.New("curve: bonding curve is not active")

	// ErrZeroAmount rejects trades with no input.
	ErrZeroAmount = errors.New("curve: amount must be greater than zero")

	// ErrInvalidAmount rejects degenerate trades whose quote rounds to zero.
	ErrInvalidAmount = errors.New("curve: amount too small to fill")

	// ErrInsufficientCurveBalance guards the curve's own token balance.
	// Unreachable while the reserve invariant holds; checked anyway so a
	// violation hard-fails instead of under-delivering.
	ErrInsufficientCurveBalance = errors.New("curve: insufficient curve token balance")

	// ErrInsufficientLiquidity guards payouts against the virtual reserve
	// and the curve's settled balance. Unreachable under the invariant.
	ErrInsufficientLiquidity = errors.New("curve: insufficient liquidity")

	// ErrExternalCallFailed wraps a failed token transfer, payout or
	// liquidity-provisioning call. The enclosing trade is fully reverted.
	ErrExternalCallFailed = errors.New("curve: external call failed")

	// ErrInvalidConfig rejects a curve configuration with zero reserves or
	// an out-of-range fee.
	ErrInvalidConfig = errors.New("curve: invalid configuration")
)
