// =============================
// File: internal/factory/factory_test.go
// =============================
package factory

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/events"
	"github.com/pumpforge/launchpad/internal/exchange"
	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/registry"
	"github.com/pumpforge/launchpad/internal/types"
)

func testTemplate() Template {
	return Template{
		TokenTotalSupply:    big.NewInt(1000000),
		SwapFeeBps:          100,
		VirtualTokenReserve: big.NewInt(1000000),
		VirtualEthReserve:   big.NewInt(1000),
		EthForLiquidity:     big.NewInt(1500),
		EthForLiquidityFee:  big.NewInt(100),
		EthForCreatorReward: big.NewInt(100),
	}
}

type principals struct {
	owner, feeRecipient, feeRecipientSetter types.Address
}

func newTestFactory(t *testing.T) (*PumpFactory, principals) {
	t.Helper()

	log := zap.NewNop()
	bank := ledger.NewBank()
	bus := events.NewBus(log, 64)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })

	p := principals{
		owner:              types.NewAddress(),
		feeRecipient:       types.NewAddress(),
		feeRecipientSetter: types.NewAddress(),
	}

	f, err := New(Options{
		Owner:              p.owner,
		FeeRecipient:       p.feeRecipient,
		FeeRecipientSetter: p.feeRecipientSetter,
		Template:           testTemplate(),
		Bank:               bank,
		Router:             exchange.NewConstantProductRouter(bank, log),
		Bus:                bus,
		Registry:           registry.NewMemory(),
		Logger:             log,
	})
	require.NoError(t, err)
	return f, p
}

func TestNewRejectsBadOptions(t *testing.T) {
	log := zap.NewNop()
	bank := ledger.NewBank()
	bus := events.NewBus(log, 16)
	t.Cleanup(func() { _ = bus.Shutdown(context.Background()) })

	base := Options{
		Owner:              types.NewAddress(),
		FeeRecipient:       types.NewAddress(),
		FeeRecipientSetter: types.NewAddress(),
		Template:           testTemplate(),
		Bank:               bank,
		Router:             exchange.NewConstantProductRouter(bank, log),
		Bus:                bus,
		Registry:           registry.NewMemory(),
		Logger:             log,
	}

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"missing owner", func(o *Options) { o.Owner = types.ZeroAddress }},
		{"missing fee recipient", func(o *Options) { o.FeeRecipient = types.ZeroAddress }},
		{"missing setter", func(o *Options) { o.FeeRecipientSetter = types.ZeroAddress }},
		{"missing bank", func(o *Options) { o.Bank = nil }},
		{"missing registry", func(o *Options) { o.Registry = nil }},
		{"zero supply", func(o *Options) { o.Template.TokenTotalSupply = big.NewInt(0) }},
		{"fee over 100%", func(o *Options) { o.Template.SwapFeeBps = 10001 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			_, err := New(opts)
			assert.ErrorIs(t, err, ErrInvalidTemplate)
		})
	}
}

func TestCreateToken(t *testing.T) {
	f, _ := newTestFactory(t)
	creator := types.NewAddress()

	token, bc, err := f.CreateToken(creator, "My Token", "MTK", "ipfs://meta")
	require.NoError(t, err)

	assert.Equal(t, "My Token", token.Name())
	assert.Equal(t, "MTK", token.Symbol())
	assert.Equal(t, "ipfs://meta", token.MetadataURI())
	assert.Equal(t, int64(1000000), token.TotalSupply().Int64())

	// The curve starts holding the entire supply.
	assert.Equal(t, int64(1000000), token.BalanceOf(bc.Address()).Int64())
	assert.True(t, bc.IsActive())

	// Registered and resolvable both ways.
	assert.Equal(t, bc.Address(), f.GetTokenBondingCurve(token.Address()))
	assert.Same(t, bc, f.Curve(token.Address()))

	entries, err := f.Tokens()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, token.Address(), entries[0].Token)
	assert.Equal(t, creator, entries[0].Creator)
	assert.Equal(t, "MTK", entries[0].Symbol)
}

func TestCreateTokenRequiresCreator(t *testing.T) {
	f, _ := newTestFactory(t)
	_, _, err := f.CreateToken(types.ZeroAddress, "X", "X", "")
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestCreateTokenOrdering(t *testing.T) {
	f, _ := newTestFactory(t)
	creator := types.NewAddress()

	first, _, err := f.CreateToken(creator, "First", "ONE", "")
	require.NoError(t, err)
	second, _, err := f.CreateToken(creator, "Second", "TWO", "")
	require.NoError(t, err)

	entries, err := f.Tokens()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.Address(), entries[0].Token)
	assert.Equal(t, second.Address(), entries[1].Token)
}

func TestUnknownTokenResolvesToZero(t *testing.T) {
	f, _ := newTestFactory(t)
	assert.Equal(t, types.ZeroAddress, f.GetTokenBondingCurve(types.NewAddress()))
	assert.Nil(t, f.Curve(types.NewAddress()))
}

func TestTemplateSettersAreOwnerGated(t *testing.T) {
	f, p := newTestFactory(t)
	stranger := types.NewAddress()

	assert.ErrorIs(t, f.SetSwapFeePercentage(stranger, 200), ErrUnauthorized)
	assert.ErrorIs(t, f.SetTokenTotalSupply(stranger, big.NewInt(5)), ErrUnauthorized)
	assert.ErrorIs(t, f.SetVirtualReserves(stranger, big.NewInt(1), big.NewInt(1)), ErrUnauthorized)
	assert.ErrorIs(t, f.SetTargetAmounts(stranger, big.NewInt(1), big.NewInt(1), big.NewInt(1)), ErrUnauthorized)

	// The fee-recipient setter is a separate principal; the owner cannot
	// rotate the recipient and the setter cannot touch the template.
	assert.ErrorIs(t, f.SetFeeRecipient(p.owner, types.NewAddress()), ErrUnauthorized)
	assert.ErrorIs(t, f.SetSwapFeePercentage(p.feeRecipientSetter, 200), ErrUnauthorized)

	require.NoError(t, f.SetSwapFeePercentage(p.owner, 250))
	assert.Equal(t, uint64(250), f.SwapFeePercentage())

	newRecipient := types.NewAddress()
	require.NoError(t, f.SetFeeRecipient(p.feeRecipientSetter, newRecipient))
	assert.Equal(t, newRecipient, f.FeeRecipient())
}

func TestSettersValidateValues(t *testing.T) {
	f, p := newTestFactory(t)

	assert.ErrorIs(t, f.SetSwapFeePercentage(p.owner, 10001), ErrInvalidTemplate)
	assert.ErrorIs(t, f.SetTokenTotalSupply(p.owner, big.NewInt(0)), ErrInvalidTemplate)
	assert.ErrorIs(t, f.SetVirtualReserves(p.owner, big.NewInt(0), big.NewInt(1)), ErrInvalidTemplate)
	assert.ErrorIs(t, f.SetTargetAmounts(p.owner, big.NewInt(-1), big.NewInt(0), big.NewInt(0)), ErrInvalidTemplate)
	assert.ErrorIs(t, f.SetFeeRecipient(p.feeRecipientSetter, types.ZeroAddress), ErrInvalidTemplate)
}

func TestTemplateEditsOnlyReachNewCurves(t *testing.T) {
	f, p := newTestFactory(t)
	creator := types.NewAddress()

	_, before, err := f.CreateToken(creator, "Before", "B", "")
	require.NoError(t, err)

	require.NoError(t, f.SetSwapFeePercentage(p.owner, 500))
	require.NoError(t, f.SetVirtualReserves(p.owner, big.NewInt(2000000), big.NewInt(3000)))

	_, after, err := f.CreateToken(creator, "After", "A", "")
	require.NoError(t, err)

	assert.Equal(t, uint64(100), before.Config().SwapFeeBps)
	assert.Equal(t, uint64(500), after.Config().SwapFeeBps)

	vToken, vEth := after.VirtualReserves()
	assert.Equal(t, int64(2000000), vToken.Int64())
	assert.Equal(t, int64(3000), vEth.Int64())
}

func TestFeeRecipientRotationOnlyReachesNewCurves(t *testing.T) {
	f, p := newTestFactory(t)
	creator := types.NewAddress()

	_, before, err := f.CreateToken(creator, "Before", "B", "")
	require.NoError(t, err)

	rotated := types.NewAddress()
	require.NoError(t, f.SetFeeRecipient(p.feeRecipientSetter, rotated))

	_, after, err := f.CreateToken(creator, "After", "A", "")
	require.NoError(t, err)

	assert.Equal(t, p.feeRecipient, before.Config().FeeRecipient)
	assert.Equal(t, rotated, after.Config().FeeRecipient)
}

func TestTemplateAccessorReturnsCopy(t *testing.T) {
	f, _ := newTestFactory(t)

	tpl := f.Template()
	tpl.TokenTotalSupply.SetInt64(1)
	assert.Equal(t, int64(1000000), f.TokenTotalSupply().Int64())
}
