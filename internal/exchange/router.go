// =================================
// File: internal/exchange/router.go
// =================================
package exchange

import (
	"errors"
	"math/big"

	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/types"
)

var (
	// ErrInvalidLiquidity is returned when either side of the deposit is zero.
	ErrInvalidLiquidity = errors.New("exchange: liquidity amounts must be greater than zero")

	// ErrPoolNotFound is returned by lookups for unknown pools.
	ErrPoolNotFound = errors.New("exchange: pool not found")
)

// Position is the pool share received for a liquidity deposit.
type Position struct {
	Pool   types.Address
	Shares *big.Int
}

// Router is the external-exchange entry point the curve calls exactly once,
// at migration. The Completed-state guard upstream enforces the at-most-once
// contract.
type Router interface {
	AddLiquidity(from types.Address, token ledger.Token, ethAmount, tokenAmount *big.Int) (*Position, error)
}
