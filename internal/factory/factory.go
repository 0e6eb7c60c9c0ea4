// =============================
// File: internal/factory/factory.go
// =============================
package factory

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/curve"
	"github.com/pumpforge/launchpad/internal/events"
	"github.com/pumpforge/launchpad/internal/exchange"
	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/registry"
	"github.com/pumpforge/launchpad/internal/types"
)

var (
	// ErrUnauthorized rejects gated calls from the wrong principal.
	ErrUnauthorized = errors.New("factory: unauthorized")

	// ErrInvalidTemplate rejects template updates with degenerate values.
	ErrInvalidTemplate = errors.New("factory: invalid template value")
)

// Template holds the factory's mutable launch defaults. It is copied by
// value into every new curve; edits only reach curves created afterwards.
type Template struct {
	TokenTotalSupply    *big.Int
	SwapFeeBps          uint64
	VirtualTokenReserve *big.Int
	VirtualEthReserve   *big.Int
	EthForLiquidity     *big.Int
	EthForLiquidityFee  *big.Int
	EthForCreatorReward *big.Int
}

func (t Template) clone() Template {
	cp := t
	cp.TokenTotalSupply = new(big.Int).Set(t.TokenTotalSupply)
	cp.VirtualTokenReserve = new(big.Int).Set(t.VirtualTokenReserve)
	cp.VirtualEthReserve = new(big.Int).Set(t.VirtualEthReserve)
	cp.EthForLiquidity = new(big.Int).Set(t.EthForLiquidity)
	cp.EthForLiquidityFee = new(big.Int).Set(t.EthForLiquidityFee)
	cp.EthForCreatorReward = new(big.Int).Set(t.EthForCreatorReward)
	return cp
}

// Options wires a PumpFactory.
type Options struct {
	Owner              types.Address
	FeeRecipient       types.Address
	FeeRecipientSetter types.Address
	Template           Template
	Bank               *ledger.Bank
	Router             exchange.Router
	Bus                *events.Bus
	Registry           registry.Registry
	Logger             *zap.Logger
}

// PumpFactory creates (token, bonding curve) pairs with a consistent
// configuration snapshot and tracks them in the registry. Parameter updates
// are gated: the owner controls the template, the fee-recipient setter
// rotates the fee recipient. The two principals are checked independently.
type PumpFactory struct {
	mu sync.RWMutex

	owner              types.Address
	feeRecipient       types.Address
	feeRecipientSetter types.Address
	template           Template

	bank   *ledger.Bank
	router exchange.Router
	bus    *events.Bus
	reg    registry.Registry
	logger *zap.Logger

	curves map[types.Address]*curve.BondingCurve // token address -> live curve
}

// New validates the options and returns a factory.
func New(opts Options) (*PumpFactory, error) {
	if opts.Owner.IsZero() || opts.FeeRecipient.IsZero() || opts.FeeRecipientSetter.IsZero() {
		return nil, fmt.Errorf("%w: owner, fee recipient and fee recipient setter required", ErrInvalidTemplate)
	}
	if opts.Bank == nil || opts.Router == nil || opts.Bus == nil || opts.Registry == nil || opts.Logger == nil {
		return nil, fmt.Errorf("%w: missing collaborator", ErrInvalidTemplate)
	}
	if err := validateTemplate(opts.Template); err != nil {
		return nil, err
	}

	return &PumpFactory{
		owner:              opts.Owner,
		feeRecipient:       opts.FeeRecipient,
		feeRecipientSetter: opts.FeeRecipientSetter,
		template:           opts.Template.clone(),
		bank:               opts.Bank,
		router:             opts.Router,
		bus:                opts.Bus,
		reg:                opts.Registry,
		logger:             opts.Logger.Named("pump_factory"),
		curves:             make(map[types.Address]*curve.BondingCurve),
	}, nil
}

func validateTemplate(t Template) error {
	if t.TokenTotalSupply == nil || t.TokenTotalSupply.Sign() <= 0 {
		return fmt.Errorf("%w: token total supply must be positive", ErrInvalidTemplate)
	}
	if t.SwapFeeBps > 10000 {
		return fmt.Errorf("%w: swap fee %d bps exceeds 100%%", ErrInvalidTemplate, t.SwapFeeBps)
	}
	if t.VirtualTokenReserve == nil || t.VirtualTokenReserve.Sign() <= 0 ||
		t.VirtualEthReserve == nil || t.VirtualEthReserve.Sign() <= 0 {
		return fmt.Errorf("%w: virtual reserves must be positive", ErrInvalidTemplate)
	}
	for _, v := range []*big.Int{t.EthForLiquidity, t.EthForLiquidityFee, t.EthForCreatorReward} {
		if v == nil || v.Sign() < 0 {
			return fmt.Errorf("%w: target amounts must be non-negative", ErrInvalidTemplate)
		}
	}
	return nil
}

// CreateToken mints a new fixed-supply token, deploys its bonding curve
// from the current template snapshot, registers the pair and emits
// TokenCreated. Name, symbol and URI are free-form; uniqueness is not
// enforced.
func (f *PumpFactory) CreateToken(creator types.Address, name, symbol, metadataURI string) (ledger.Token, *curve.BondingCurve, error) {
	if creator.IsZero() {
		return nil, nil, fmt.Errorf("%w: creator address required", ErrInvalidTemplate)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cfg := curve.Config{
		TokenTotalSupply:     new(big.Int).Set(f.template.TokenTotalSupply),
		SwapFeeBps:           f.template.SwapFeeBps,
		VirtualTokenReserve0: new(big.Int).Set(f.template.VirtualTokenReserve),
		VirtualEthReserve0:   new(big.Int).Set(f.template.VirtualEthReserve),
		EthForLiquidity:      new(big.Int).Set(f.template.EthForLiquidity),
		EthForLiquidityFee:   new(big.Int).Set(f.template.EthForLiquidityFee),
		EthForCreatorReward:  new(big.Int).Set(f.template.EthForCreatorReward),
		FeeRecipient:         f.feeRecipient,
		TokenCreator:         creator,
	}

	// The curve address does not exist until the curve does, so mint to a
	// staging owner and hand the supply over once the curve is live.
	staging := types.NewAddress()
	token, err := ledger.NewFixedSupplyToken(name, symbol, metadataURI, cfg.TokenTotalSupply, staging)
	if err != nil {
		return nil, nil, fmt.Errorf("factory: mint token: %w", err)
	}

	bc, err := curve.New(cfg, token, f.bank, f.router, f.bus, f.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("factory: deploy curve: %w", err)
	}
	if err := token.Transfer(staging, bc.Address(), cfg.TokenTotalSupply); err != nil {
		return nil, nil, fmt.Errorf("factory: seed curve supply: %w", err)
	}

	entry := registry.Entry{
		Token:       token.Address(),
		Curve:       bc.Address(),
		Name:        name,
		Symbol:      symbol,
		MetadataURI: metadataURI,
		Creator:     creator,
		CreatedAt:   time.Now().UTC(),
	}
	if err := f.reg.Put(entry); err != nil {
		return nil, nil, fmt.Errorf("factory: register launch: %w", err)
	}
	f.curves[token.Address()] = bc

	_ = f.bus.Publish(events.NewTokenCreatedEvent(
		token.Address(), bc.Address(), name, symbol, metadataURI, creator))

	f.logger.Info("Token created",
		zap.String("token", token.Address().String()),
		zap.String("curve", bc.Address().String()),
		zap.String("symbol", symbol),
		zap.String("creator", creator.String()))

	return token, bc, nil
}

// GetTokenBondingCurve returns the curve address paired with token, or the
// zero address if the token is unknown.
func (f *PumpFactory) GetTokenBondingCurve(token types.Address) types.Address {
	f.mu.RLock()
	bc, ok := f.curves[token]
	f.mu.RUnlock()
	if ok {
		return bc.Address()
	}
	entry, err := f.reg.Get(token)
	if err != nil {
		return types.ZeroAddress
	}
	return entry.Curve
}

// Curve returns the live curve instance for token, or nil.
func (f *PumpFactory) Curve(token types.Address) *curve.BondingCurve {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.curves[token]
}

// Tokens returns all launched token addresses in creation order.
func (f *PumpFactory) Tokens() ([]registry.Entry, error) {
	return f.reg.List()
}

// TokenTotalSupply returns the template's launch supply.
func (f *PumpFactory) TokenTotalSupply() *big.Int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return new(big.Int).Set(f.template.TokenTotalSupply)
}

// SwapFeePercentage returns the template's swap fee in basis points.
func (f *PumpFactory) SwapFeePercentage() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.template.SwapFeeBps
}

// FeeRecipient returns the current fee recipient for new curves.
func (f *PumpFactory) FeeRecipient() types.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.feeRecipient
}

// FeeRecipientSetter returns the principal allowed to rotate the fee
// recipient.
func (f *PumpFactory) FeeRecipientSetter() types.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.feeRecipientSetter
}

// Template returns a copy of the current launch defaults.
func (f *PumpFactory) Template() Template {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.template.clone()
}

// SetSwapFeePercentage updates the template fee. Owner only.
func (f *PumpFactory) SetSwapFeePercentage(caller types.Address, bps uint64) error {
	if bps > 10000 {
		return fmt.Errorf("%w: swap fee %d bps exceeds 100%%", ErrInvalidTemplate, bps)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.owner {
		return ErrUnauthorized
	}
	f.template.SwapFeeBps = bps
	f.logger.Info("Swap fee updated", zap.Uint64("bps", bps))
	return nil
}

// SetVirtualReserves updates the template's initial virtual reserves.
// Owner only.
func (f *PumpFactory) SetVirtualReserves(caller types.Address, tokenReserve, ethReserve *big.Int) error {
	if tokenReserve == nil || tokenReserve.Sign() <= 0 || ethReserve == nil || ethReserve.Sign() <= 0 {
		return fmt.Errorf("%w: virtual reserves must be positive", ErrInvalidTemplate)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.owner {
		return ErrUnauthorized
	}
	f.template.VirtualTokenReserve = new(big.Int).Set(tokenReserve)
	f.template.VirtualEthReserve = new(big.Int).Set(ethReserve)
	f.logger.Info("Virtual reserves updated",
		zap.String("token_reserve", tokenReserve.String()),
		zap.String("eth_reserve", ethReserve.String()))
	return nil
}

// SetTargetAmounts updates the template's migration targets. Owner only.
func (f *PumpFactory) SetTargetAmounts(caller types.Address, liquidity, liquidityFee, creatorReward *big.Int) error {
	for _, v := range []*big.Int{liquidity, liquidityFee, creatorReward} {
		if v == nil || v.Sign() < 0 {
			return fmt.Errorf("%w: target amounts must be non-negative", ErrInvalidTemplate)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.owner {
		return ErrUnauthorized
	}
	f.template.EthForLiquidity = new(big.Int).Set(liquidity)
	f.template.EthForLiquidityFee = new(big.Int).Set(liquidityFee)
	f.template.EthForCreatorReward = new(big.Int).Set(creatorReward)
	f.logger.Info("Target amounts updated",
		zap.String("liquidity", liquidity.String()),
		zap.String("liquidity_fee", liquidityFee.String()),
		zap.String("creator_reward", creatorReward.String()))
	return nil
}

// SetTokenTotalSupply updates the template's launch supply. Owner only.
func (f *PumpFactory) SetTokenTotalSupply(caller types.Address, supply *big.Int) error {
	if supply == nil || supply.Sign() <= 0 {
		return fmt.Errorf("%w: token total supply must be positive", ErrInvalidTemplate)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.owner {
		return ErrUnauthorized
	}
	f.template.TokenTotalSupply = new(big.Int).Set(supply)
	f.logger.Info("Token total supply updated", zap.String("supply", supply.String()))
	return nil
}

// SetFeeRecipient rotates the fee recipient for future curves. Gated on the
// fee-recipient setter, a principal distinct from the owner.
func (f *PumpFactory) SetFeeRecipient(caller, newRecipient types.Address) error {
	if newRecipient.IsZero() {
		return fmt.Errorf("%w: fee recipient required", ErrInvalidTemplate)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if caller != f.feeRecipientSetter {
		return ErrUnauthorized
	}
	f.feeRecipient = newRecipient
	f.logger.Info("Fee recipient rotated", zap.String("recipient", newRecipient.String()))
	return nil
}
