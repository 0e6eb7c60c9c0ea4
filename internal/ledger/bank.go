// =================================
// File: internal/ledger/bank.go
// =================================
package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/pumpforge/launchpad/internal/types"
)

// Bank is the native-coin ledger the curves trade against. Buys debit the
// buyer here, migration payouts and sell proceeds credit out of it.
type Bank struct {
	mu       sync.RWMutex
	balances map[types.Address]*big.Int
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[types.Address]*big.Int)}
}

// Mint credits amount to an account. Trading never mints; this is the entry
// point for funding accounts from outside the system (tests, dev faucet).
func (b *Bank) Mint(to types.Address, amount *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	dst, ok := b.balances[to]
	if !ok {
		dst = new(big.Int)
		b.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

// Transfer moves native coin from -> to.
func (b *Bank) Transfer(from, to types.Address, amount *big.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balance, ok := b.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, balance, amount)
	}

	balance.Sub(balance, amount)
	dst, ok := b.balances[to]
	if !ok {
		dst = new(big.Int)
		b.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

// BalanceOf returns the native-coin balance of addr; zero for unknown
// addresses.
func (b *Bank) BalanceOf(addr types.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, ok := b.balances[addr]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}
