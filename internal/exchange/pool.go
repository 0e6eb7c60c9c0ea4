// =================================
// File: internal/exchange/pool.go
// =================================
package exchange

import (
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/types"
)

// Pool is one constant-product token/native-coin pool.
type Pool struct {
	Address      types.Address
	Token        types.Address
	EthReserve   *big.Int
	TokenReserve *big.Int
	LPSupply     *big.Int
}

// Quote returns the output for swapping inputAmount against the pool
// reserves. ethToToken selects the direction. Read-only; reserves are not
// mutated.
func (p *Pool) Quote(inputAmount *big.Int, ethToToken bool) *big.Int {
	if inputAmount == nil || inputAmount.Sign() <= 0 {
		return new(big.Int)
	}
	in, out := p.EthReserve, p.TokenReserve
	if !ethToToken {
		in, out = p.TokenReserve, p.EthReserve
	}
	// outputAmount = out * a / (in + a)
	num := new(big.Int).Mul(out, inputAmount)
	den := new(big.Int).Add(in, inputAmount)
	return num.Div(num, den)
}

// ConstantProductRouter provisions constant-product pools on demand. It
// plays the part of the external exchange: one pool per migrated token,
// funds pulled from the depositor into the pool's own address.
type ConstantProductRouter struct {
	mu     sync.RWMutex
	bank   *ledger.Bank
	logger *zap.Logger
	pools  map[types.Address]*Pool // keyed by token address
}

var _ Router = (*ConstantProductRouter)(nil)

// NewConstantProductRouter creates a router settling native coin through bank.
func NewConstantProductRouter(bank *ledger.Bank, logger *zap.Logger) *ConstantProductRouter {
	return &ConstantProductRouter{
		bank:   bank,
		logger: logger.Named("exchange_router"),
		pools:  make(map[types.Address]*Pool),
	}
}

// AddLiquidity creates (or tops up) the pool for token, pulling ethAmount
// from the depositor's bank balance and tokenAmount from its token balance.
// The initial LP mint is the geometric mean of the two deposits; later
// deposits mint proportionally.
func (r *ConstantProductRouter) AddLiquidity(from types.Address, token ledger.Token, ethAmount, tokenAmount *big.Int) (*Position, error) {
	if ethAmount == nil || ethAmount.Sign() <= 0 || tokenAmount == nil || tokenAmount.Sign() <= 0 {
		return nil, ErrInvalidLiquidity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[token.Address()]
	if !ok {
		pool = &Pool{
			Address:      types.NewAddress(),
			Token:        token.Address(),
			EthReserve:   new(big.Int),
			TokenReserve: new(big.Int),
			LPSupply:     new(big.Int),
		}
	}

	var minted *big.Int
	if pool.LPSupply.Sign() == 0 {
		minted = new(big.Int).Sqrt(new(big.Int).Mul(ethAmount, tokenAmount))
	} else {
		// proportional: min(eth*supply/ethReserve, token*supply/tokenReserve)
		mEth := new(big.Int).Div(new(big.Int).Mul(ethAmount, pool.LPSupply), pool.EthReserve)
		mTok := new(big.Int).Div(new(big.Int).Mul(tokenAmount, pool.LPSupply), pool.TokenReserve)
		minted = mEth
		if mTok.Cmp(mEth) < 0 {
			minted = mTok
		}
	}
	if minted.Sign() <= 0 {
		return nil, fmt.Errorf("%w: deposit too small to mint shares", ErrInvalidLiquidity)
	}

	// Pull funds into the pool address. Token pull first; the bank transfer
	// is undone if the deposit cannot complete.
	if err := r.bank.Transfer(from, pool.Address, ethAmount); err != nil {
		return nil, fmt.Errorf("exchange: pull native coin: %w", err)
	}
	if err := token.Transfer(from, pool.Address, tokenAmount); err != nil {
		if rbErr := r.bank.Transfer(pool.Address, from, ethAmount); rbErr != nil {
			r.logger.Error("Failed to return native coin after token pull failure",
				zap.String("pool", pool.Address.String()),
				zap.Error(rbErr))
		}
		return nil, fmt.Errorf("exchange: pull tokens: %w", err)
	}

	pool.EthReserve.Add(pool.EthReserve, ethAmount)
	pool.TokenReserve.Add(pool.TokenReserve, tokenAmount)
	pool.LPSupply.Add(pool.LPSupply, minted)
	r.pools[token.Address()] = pool

	r.logger.Info("Liquidity added",
		zap.String("pool", pool.Address.String()),
		zap.String("token", token.Address().String()),
		zap.String("eth_amount", ethAmount.String()),
		zap.String("token_amount", tokenAmount.String()),
		zap.String("lp_minted", minted.String()))

	return &Position{Pool: pool.Address, Shares: minted}, nil
}

// PoolFor returns a snapshot of the pool backing token, or ErrPoolNotFound.
func (r *ConstantProductRouter) PoolFor(token types.Address) (*Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[token]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return &Pool{
		Address:      pool.Address,
		Token:        pool.Token,
		EthReserve:   new(big.Int).Set(pool.EthReserve),
		TokenReserve: new(big.Int).Set(pool.TokenReserve),
		LPSupply:     new(big.Int).Set(pool.LPSupply),
	}, nil
}
