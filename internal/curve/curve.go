// =============================
// File: internal/curve/curve.go
// =============================
package curve

import (
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/events"
	"github.com/pumpforge/launchpad/internal/exchange"
	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/types"
)

// Status is the curve lifecycle state. The only transition is
// Active -> Completed, taken at most once, from inside the buy that crosses
// the funding target.
type Status uint8

const (
	StatusActive Status = iota
	StatusCompleted
)

func (s Status) String() string {
	if s == StatusCompleted {
		return "completed"
	}
	return "active"
}

// Config is the immutable per-curve configuration, snapshotted from the
// factory template at creation. Later template edits never reach an
// existing curve.
type Config struct {
	TokenTotalSupply     *big.Int
	SwapFeeBps           uint64
	VirtualTokenReserve0 *big.Int
	VirtualEthReserve0   *big.Int
	EthForLiquidity      *big.Int
	EthForLiquidityFee   *big.Int
	EthForCreatorReward  *big.Int
	FeeRecipient         types.Address
	TokenCreator         types.Address
}

// TotalTarget returns the funding sum that triggers migration.
func (c Config) TotalTarget() *big.Int {
	total := new(big.Int).Add(c.EthForLiquidity, c.EthForLiquidityFee)
	return total.Add(total, c.EthForCreatorReward)
}

func (c Config) validate() error {
	if c.TokenTotalSupply == nil || c.TokenTotalSupply.Sign() <= 0 {
		return fmt.Errorf("%w: token total supply must be positive", ErrInvalidConfig)
	}
	if c.SwapFeeBps > feeDenominatorBps {
		return fmt.Errorf("%w: swap fee %d bps exceeds 100%%", ErrInvalidConfig, c.SwapFeeBps)
	}
	if c.VirtualTokenReserve0 == nil || c.VirtualTokenReserve0.Sign() <= 0 ||
		c.VirtualEthReserve0 == nil || c.VirtualEthReserve0.Sign() <= 0 {
		return fmt.Errorf("%w: virtual reserves must be positive", ErrInvalidConfig)
	}
	for _, target := range []*big.Int{c.EthForLiquidity, c.EthForLiquidityFee, c.EthForCreatorReward} {
		if target == nil || target.Sign() < 0 {
			return fmt.Errorf("%w: target amounts must be non-negative", ErrInvalidConfig)
		}
	}
	if c.TotalTarget().Sign() <= 0 {
		return fmt.Errorf("%w: total funding target must be positive", ErrInvalidConfig)
	}
	if c.FeeRecipient.IsZero() || c.TokenCreator.IsZero() {
		return fmt.Errorf("%w: fee recipient and token creator required", ErrInvalidConfig)
	}
	return nil
}

func (c Config) clone() Config {
	cp := c
	cp.TokenTotalSupply = new(big.Int).Set(c.TokenTotalSupply)
	cp.VirtualTokenReserve0 = new(big.Int).Set(c.VirtualTokenReserve0)
	cp.VirtualEthReserve0 = new(big.Int).Set(c.VirtualEthReserve0)
	cp.EthForLiquidity = new(big.Int).Set(c.EthForLiquidity)
	cp.EthForLiquidityFee = new(big.Int).Set(c.EthForLiquidityFee)
	cp.EthForCreatorReward = new(big.Int).Set(c.EthForCreatorReward)
	return cp
}

// BondingCurve prices one token against the native coin on a
// constant-product curve over virtual reserves, accumulates the real coin
// collected, and migrates to the external exchange once the funding target
// is reached.
//
// All mutating calls serialize behind the mutex; within one call the effect
// order is fixed: fee deduction, reserve update, balance transfers,
// completion check, migration. State is finalized before any transfer runs
// and restored in full if one fails.
type BondingCurve struct {
	mu sync.Mutex

	address types.Address
	cfg     Config
	token   ledger.Token
	bank    *ledger.Bank
	router  exchange.Router
	bus     *events.Bus
	logger  *zap.Logger

	virtualTokenReserve *big.Int
	virtualEthReserve   *big.Int
	realEthCollected    *big.Int
	status              Status

	pool     types.Address // set at migration
	lpShares *big.Int      // held by the curve, never reclaimed
}

// BuyReceipt reports a filled buy.
type BuyReceipt struct {
	Curve     types.Address
	Token     types.Address
	Buyer     types.Address
	EthIn     *big.Int
	TokensOut *big.Int
	FeePaid   *big.Int
	Completed bool
	Pool      types.Address // zero unless this buy completed the curve
}

// SellReceipt reports a filled sell.
type SellReceipt struct {
	Curve    types.Address
	Token    types.Address
	Seller   types.Address
	TokensIn *big.Int
	EthOut   *big.Int
	FeePaid  *big.Int
}

// New creates an Active curve holding the full token supply.
func New(cfg Config, token ledger.Token, bank *ledger.Bank, router exchange.Router, bus *events.Bus, logger *zap.Logger) (*BondingCurve, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if token == nil || bank == nil || router == nil || bus == nil {
		return nil, fmt.Errorf("%w: missing collaborator", ErrInvalidConfig)
	}

	addr := types.NewAddress()
	return &BondingCurve{
		address:             addr,
		cfg:                 cfg.clone(),
		token:               token,
		bank:                bank,
		router:              router,
		bus:                 bus,
		logger:              logger.Named("bonding_curve").With(zap.String("curve", addr.String())),
		virtualTokenReserve: new(big.Int).Set(cfg.VirtualTokenReserve0),
		virtualEthReserve:   new(big.Int).Set(cfg.VirtualEthReserve0),
		realEthCollected:    new(big.Int),
		status:              StatusActive,
	}, nil
}

// Address returns the curve's own account address.
func (c *BondingCurve) Address() types.Address { return c.address }

// Token returns the paired token ledger.
func (c *BondingCurve) Token() ledger.Token { return c.token }

// Config returns a copy of the immutable configuration snapshot.
func (c *BondingCurve) Config() Config { return c.cfg.clone() }

// IsActive reports whether the curve still self-prices.
func (c *BondingCurve) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusActive
}

// Status returns the lifecycle state.
func (c *BondingCurve) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// VirtualReserves returns the current pricing reserves (token, eth).
func (c *BondingCurve) VirtualReserves() (*big.Int, *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.virtualTokenReserve), new(big.Int).Set(c.virtualEthReserve)
}

// RealEthCollected returns the cumulative net native coin retained.
func (c *BondingCurve) RealEthCollected() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.realEthCollected)
}

// Pool returns the liquidity pool address after completion, zero before.
func (c *BondingCurve) Pool() types.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pool
}

// RemainingEthToCompleteCurve returns max(0, target - realEthCollected),
// the exact net amount a completing buy must add. Callers size trades with
// this; excess payment is absorbed, not refunded.
func (c *BondingCurve) RemainingEthToCompleteCurve() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining := new(big.Int).Sub(c.cfg.TotalTarget(), c.realEthCollected)
	if remaining.Sign() < 0 {
		return new(big.Int)
	}
	return remaining
}

// Buy swaps ethIn native coin for tokens. The fee comes off the input and
// goes to the fee recipient; the net amount moves the virtual reserves and
// accrues toward the funding target. If this buy reaches the target the
// curve migrates before returning, inside the same call.
func (c *BondingCurve) Buy(buyer types.Address, ethIn *big.Int) (*BuyReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusActive {
		return nil, ErrCurveNotActive
	}
	if buyer.IsZero() {
		return nil, fmt.Errorf("%w: buyer address", ErrInvalidAmount)
	}
	if ethIn == nil || ethIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	fee := feeOf(ethIn, c.cfg.SwapFeeBps)
	netEthIn := new(big.Int).Sub(ethIn, fee)
	if netEthIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: input consumed entirely by fee", ErrInvalidAmount)
	}

	tokensOut := buyQuote(c.virtualTokenReserve, c.virtualEthReserve, netEthIn)
	if tokensOut.Sign() == 0 {
		return nil, fmt.Errorf("%w: quote rounds to zero tokens", ErrInvalidAmount)
	}
	if c.token.BalanceOf(c.address).Cmp(tokensOut) < 0 {
		return nil, ErrInsufficientCurveBalance
	}

	snap := c.snapshot()
	j := &journal{}

	// Effects before interactions.
	c.virtualEthReserve.Add(c.virtualEthReserve, netEthIn)
	c.virtualTokenReserve.Sub(c.virtualTokenReserve, tokensOut)
	c.realEthCollected.Add(c.realEthCollected, netEthIn)

	if err := c.bankTransfer(j, buyer, c.address, ethIn); err != nil {
		c.restore(snap)
		return nil, fmt.Errorf("%w: collect payment: %v", ErrExternalCallFailed, err)
	}
	if fee.Sign() > 0 {
		if err := c.bankTransfer(j, c.address, c.cfg.FeeRecipient, fee); err != nil {
			j.revert()
			c.restore(snap)
			return nil, fmt.Errorf("%w: pay swap fee: %v", ErrExternalCallFailed, err)
		}
	}
	if err := c.tokenTransfer(j, c.address, buyer, tokensOut); err != nil {
		j.revert()
		c.restore(snap)
		return nil, fmt.Errorf("%w: deliver tokens: %v", ErrExternalCallFailed, err)
	}

	receipt := &BuyReceipt{
		Curve:     c.address,
		Token:     c.token.Address(),
		Buyer:     buyer,
		EthIn:     new(big.Int).Set(ethIn),
		TokensOut: tokensOut,
		FeePaid:   fee,
	}
	pending := []events.Event{
		events.NewBoughtEvent(c.address, c.token.Address(), buyer, ethIn, tokensOut, fee),
	}

	// Completion check after the trade is fully committed locally.
	if c.realEthCollected.Cmp(c.cfg.TotalTarget()) >= 0 {
		completedEvt, err := c.migrateLocked(j)
		if err != nil {
			// Migration is all-or-nothing with the triggering buy.
			j.revert()
			c.restore(snap)
			return nil, err
		}
		pending = append(pending, completedEvt)
		receipt.Completed = true
		receipt.Pool = c.pool
	}

	for _, evt := range pending {
		_ = c.bus.Publish(evt)
	}

	c.logger.Debug("Buy filled",
		zap.String("buyer", buyer.String()),
		zap.String("eth_in", ethIn.String()),
		zap.String("tokens_out", tokensOut.String()),
		zap.String("fee", fee.String()),
		zap.Bool("completed", receipt.Completed))

	return receipt, nil
}

// Sell swaps tokenAmount tokens back for native coin. The fee comes off the
// output. The seller must have approved the curve for at least tokenAmount.
func (c *BondingCurve) Sell(seller types.Address, tokenAmount *big.Int) (*SellReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusActive {
		return nil, ErrCurveNotActive
	}
	if seller.IsZero() {
		return nil, fmt.Errorf("%w: seller address", ErrInvalidAmount)
	}
	if tokenAmount == nil || tokenAmount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	grossEthOut := sellQuote(c.virtualTokenReserve, c.virtualEthReserve, tokenAmount)
	if grossEthOut.Sign() == 0 {
		return nil, fmt.Errorf("%w: quote rounds to zero", ErrInvalidAmount)
	}
	if grossEthOut.Cmp(c.virtualEthReserve) >= 0 || c.bank.BalanceOf(c.address).Cmp(grossEthOut) < 0 {
		return nil, ErrInsufficientLiquidity
	}

	fee := feeOf(grossEthOut, c.cfg.SwapFeeBps)
	netEthOut := new(big.Int).Sub(grossEthOut, fee)
	if netEthOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: payout consumed entirely by fee", ErrInvalidAmount)
	}

	snap := c.snapshot()
	j := &journal{}

	c.virtualTokenReserve.Add(c.virtualTokenReserve, tokenAmount)
	c.virtualEthReserve.Sub(c.virtualEthReserve, grossEthOut)
	c.realEthCollected.Sub(c.realEthCollected, grossEthOut)
	if c.realEthCollected.Sign() < 0 {
		c.realEthCollected.SetInt64(0)
	}

	// Pull tokens from the seller via allowance, then pay out.
	if err := c.token.TransferFrom(c.address, seller, c.address, tokenAmount); err != nil {
		c.restore(snap)
		return nil, fmt.Errorf("%w: pull tokens: %v", ErrExternalCallFailed, err)
	}
	j.record(func() {
		if err := c.token.Transfer(c.address, seller, tokenAmount); err != nil {
			c.logger.Error("Revert of token pull failed", zap.Error(err))
		}
	})
	if fee.Sign() > 0 {
		if err := c.bankTransfer(j, c.address, c.cfg.FeeRecipient, fee); err != nil {
			j.revert()
			c.restore(snap)
			return nil, fmt.Errorf("%w: pay swap fee: %v", ErrExternalCallFailed, err)
		}
	}
	if err := c.bankTransfer(j, c.address, seller, netEthOut); err != nil {
		j.revert()
		c.restore(snap)
		return nil, fmt.Errorf("%w: pay seller: %v", ErrExternalCallFailed, err)
	}

	_ = c.bus.Publish(events.NewSoldEvent(c.address, c.token.Address(), seller, tokenAmount, netEthOut, fee))

	c.logger.Debug("Sell filled",
		zap.String("seller", seller.String()),
		zap.String("tokens_in", tokenAmount.String()),
		zap.String("eth_out", netEthOut.String()),
		zap.String("fee", fee.String()))

	return &SellReceipt{
		Curve:    c.address,
		Token:    c.token.Address(),
		Seller:   seller,
		TokensIn: new(big.Int).Set(tokenAmount),
		EthOut:   netEthOut,
		FeePaid:  fee,
	}, nil
}

// migrateLocked runs the one-shot graduation: pay the liquidity fee and the
// creator reward, seed the external pool with the liquidity target and the
// curve's remaining token balance, and freeze the curve. The router call
// runs last so the journaled payouts can be unwound if it fails; the caller
// reverts everything on error. Requires c.mu held and status Active.
func (c *BondingCurve) migrateLocked(j *journal) (events.Event, error) {
	ethLiquidity := c.cfg.EthForLiquidity
	tokenLiquidity := c.token.BalanceOf(c.address)
	if tokenLiquidity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: no token balance left for liquidity", ErrInsufficientCurveBalance)
	}

	if c.cfg.EthForLiquidityFee.Sign() > 0 {
		if err := c.bankTransfer(j, c.address, c.cfg.FeeRecipient, c.cfg.EthForLiquidityFee); err != nil {
			return nil, fmt.Errorf("%w: pay liquidity fee: %v", ErrExternalCallFailed, err)
		}
	}
	if c.cfg.EthForCreatorReward.Sign() > 0 {
		if err := c.bankTransfer(j, c.address, c.cfg.TokenCreator, c.cfg.EthForCreatorReward); err != nil {
			return nil, fmt.Errorf("%w: pay creator reward: %v", ErrExternalCallFailed, err)
		}
	}

	position, err := c.router.AddLiquidity(c.address, c.token, ethLiquidity, tokenLiquidity)
	if err != nil {
		return nil, fmt.Errorf("%w: provision liquidity: %v", ErrExternalCallFailed, err)
	}

	c.status = StatusCompleted
	c.pool = position.Pool
	c.lpShares = new(big.Int).Set(position.Shares)

	c.logger.Info("Curve completed",
		zap.String("pool", position.Pool.String()),
		zap.String("liquidity_eth", ethLiquidity.String()),
		zap.String("liquidity_tokens", tokenLiquidity.String()),
		zap.String("lp_shares", position.Shares.String()))

	return events.NewCurveCompletedEvent(c.address, c.token.Address(), position.Pool, ethLiquidity, tokenLiquidity), nil
}

type stateSnapshot struct {
	virtualTokenReserve *big.Int
	virtualEthReserve   *big.Int
	realEthCollected    *big.Int
	status              Status
}

func (c *BondingCurve) snapshot() stateSnapshot {
	return stateSnapshot{
		virtualTokenReserve: new(big.Int).Set(c.virtualTokenReserve),
		virtualEthReserve:   new(big.Int).Set(c.virtualEthReserve),
		realEthCollected:    new(big.Int).Set(c.realEthCollected),
		status:              c.status,
	}
}

func (c *BondingCurve) restore(s stateSnapshot) {
	c.virtualTokenReserve.Set(s.virtualTokenReserve)
	c.virtualEthReserve.Set(s.virtualEthReserve)
	c.realEthCollected.Set(s.realEthCollected)
	c.status = s.status
}

// journal collects compensating actions for applied transfers so a failed
// step unwinds everything already done, LIFO.
type journal struct {
	undo []func()
}

func (j *journal) record(f func()) {
	j.undo = append(j.undo, f)
}

func (j *journal) revert() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

func (c *BondingCurve) bankTransfer(j *journal, from, to types.Address, amount *big.Int) error {
	if err := c.bank.Transfer(from, to, amount); err != nil {
		return err
	}
	amt := new(big.Int).Set(amount)
	j.record(func() {
		if err := c.bank.Transfer(to, from, amt); err != nil {
			c.logger.Error("Revert of native transfer failed", zap.Error(err))
		}
	})
	return nil
}

func (c *BondingCurve) tokenTransfer(j *journal, from, to types.Address, amount *big.Int) error {
	if err := c.token.Transfer(from, to, amount); err != nil {
		return err
	}
	amt := new(big.Int).Set(amount)
	j.record(func() {
		if err := c.token.Transfer(to, from, amt); err != nil {
			c.logger.Error("Revert of token transfer failed", zap.Error(err))
		}
	})
	return nil
}
