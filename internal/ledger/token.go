// =================================
// File: internal/ledger/token.go
// =================================
package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/pumpforge/launchpad/internal/types"
)

// Token is the view of a fungible-token ledger the launchpad needs: the full
// supply is minted to one owner at creation, balances move by transfer, and
// delegated transfers go through approve/allowance.
type Token interface {
	Address() types.Address
	Name() string
	Symbol() string
	MetadataURI() string
	TotalSupply() *big.Int
	BalanceOf(owner types.Address) *big.Int
	Transfer(from, to types.Address, amount *big.Int) error
	Approve(owner, spender types.Address, amount *big.Int) error
	Allowance(owner, spender types.Address) *big.Int
	TransferFrom(spender, from, to types.Address, amount *big.Int) error
}

// FixedSupplyToken is an in-process fixed-supply ledger. The entire supply is
// minted to the initial owner; no later mint or burn exists.
type FixedSupplyToken struct {
	mu sync.RWMutex

	address     types.Address
	name        string
	symbol      string
	metadataURI string
	totalSupply *big.Int

	balances   map[types.Address]*big.Int
	allowances map[types.Address]map[types.Address]*big.Int
}

var _ Token = (*FixedSupplyToken)(nil)

// NewFixedSupplyToken mints totalSupply units to owner and returns the ledger.
func NewFixedSupplyToken(name, symbol, metadataURI string, totalSupply *big.Int, owner types.Address) (*FixedSupplyToken, error) {
	if owner.IsZero() {
		return nil, ErrZeroAddress
	}
	if totalSupply == nil || totalSupply.Sign() <= 0 {
		return nil, fmt.Errorf("%w: total supply", ErrInvalidAmount)
	}

	t := &FixedSupplyToken{
		address:     types.NewAddress(),
		name:        name,
		symbol:      symbol,
		metadataURI: metadataURI,
		totalSupply: new(big.Int).Set(totalSupply),
		balances:    make(map[types.Address]*big.Int),
		allowances:  make(map[types.Address]map[types.Address]*big.Int),
	}
	t.balances[owner] = new(big.Int).Set(totalSupply)
	return t, nil
}

func (t *FixedSupplyToken) Address() types.Address { return t.address }
func (t *FixedSupplyToken) Name() string           { return t.name }
func (t *FixedSupplyToken) Symbol() string         { return t.symbol }
func (t *FixedSupplyToken) MetadataURI() string    { return t.metadataURI }

// TotalSupply returns the fixed supply minted at creation.
func (t *FixedSupplyToken) TotalSupply() *big.Int {
	return new(big.Int).Set(t.totalSupply)
}

// BalanceOf returns the balance of owner; zero for unknown addresses.
func (t *FixedSupplyToken) BalanceOf(owner types.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Transfer moves amount from -> to.
func (t *FixedSupplyToken) Transfer(from, to types.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferLocked(from, to, amount)
}

// Approve sets spender's allowance over owner's balance to amount.
func (t *FixedSupplyToken) Approve(owner, spender types.Address, amount *big.Int) error {
	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[types.Address]*big.Int)
		t.allowances[owner] = m
	}
	m[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns the remaining amount spender may move from owner.
func (t *FixedSupplyToken) Allowance(owner, spender types.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// TransferFrom moves amount from -> to on behalf of spender, consuming
// allowance.
func (t *FixedSupplyToken) TransferFrom(spender, from, to types.Address, amount *big.Int) error {
	if spender.IsZero() {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	allowance := new(big.Int)
	if m, ok := t.allowances[from]; ok {
		if a, ok := m[spender]; ok {
			allowance = a
		}
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s allowed, %s requested", ErrInsufficientAllowance, allowance, amount)
	}

	if err := t.transferLocked(from, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

func (t *FixedSupplyToken) transferLocked(from, to types.Address, amount *big.Int) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	balance, ok := t.balances[from]
	if !ok || balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: token %s, have %s, need %s", ErrInsufficientBalance, t.symbol, balance, amount)
	}

	balance.Sub(balance, amount)
	dst, ok := t.balances[to]
	if !ok {
		dst = new(big.Int)
		t.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}
