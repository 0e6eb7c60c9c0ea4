// =================================
// File: internal/exchange/pool_test.go
// =================================
package exchange

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/types"
)

func newRouterFixture(t *testing.T) (*ConstantProductRouter, *ledger.Bank, ledger.Token, types.Address) {
	t.Helper()
	bank := ledger.NewBank()
	router := NewConstantProductRouter(bank, zap.NewNop())

	depositor := types.NewAddress()
	token, err := ledger.NewFixedSupplyToken("Pooled", "POOL", "", big.NewInt(1000000), depositor)
	require.NoError(t, err)
	require.NoError(t, bank.Mint(depositor, big.NewInt(100000)))

	return router, bank, token, depositor
}

func TestAddLiquidityCreatesPool(t *testing.T) {
	router, bank, token, depositor := newRouterFixture(t)

	position, err := router.AddLiquidity(depositor, token, big.NewInt(40000), big.NewInt(90000))
	require.NoError(t, err)
	require.NotNil(t, position)
	assert.False(t, position.Pool.IsZero())

	// sqrt(40000 * 90000) = 60000 shares on the first deposit.
	assert.Equal(t, int64(60000), position.Shares.Int64())

	pool, err := router.PoolFor(token.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(40000), pool.EthReserve.Int64())
	assert.Equal(t, int64(90000), pool.TokenReserve.Int64())
	assert.Equal(t, int64(60000), pool.LPSupply.Int64())

	// Funds moved from the depositor into the pool's own account.
	assert.Equal(t, int64(60000), bank.BalanceOf(depositor).Int64())
	assert.Equal(t, int64(40000), bank.BalanceOf(pool.Address).Int64())
	assert.Equal(t, int64(910000), token.BalanceOf(depositor).Int64())
	assert.Equal(t, int64(90000), token.BalanceOf(pool.Address).Int64())
}

func TestAddLiquiditySecondDepositIsProportional(t *testing.T) {
	router, _, token, depositor := newRouterFixture(t)

	_, err := router.AddLiquidity(depositor, token, big.NewInt(40000), big.NewInt(90000))
	require.NoError(t, err)

	// A deposit of a quarter of each reserve mints a quarter of the supply.
	position, err := router.AddLiquidity(depositor, token, big.NewInt(10000), big.NewInt(22500))
	require.NoError(t, err)
	assert.Equal(t, int64(15000), position.Shares.Int64())

	pool, err := router.PoolFor(token.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(75000), pool.LPSupply.Int64())
}

func TestAddLiquidityRejectsZeroAmounts(t *testing.T) {
	router, _, token, depositor := newRouterFixture(t)

	_, err := router.AddLiquidity(depositor, token, big.NewInt(0), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidLiquidity)
	_, err = router.AddLiquidity(depositor, token, big.NewInt(1), nil)
	assert.ErrorIs(t, err, ErrInvalidLiquidity)
}

func TestAddLiquidityUnfundedDepositor(t *testing.T) {
	router, _, token, _ := newRouterFixture(t)
	broke := types.NewAddress()

	_, err := router.AddLiquidity(broke, token, big.NewInt(100), big.NewInt(100))
	assert.Error(t, err)
	_, err = router.PoolFor(token.Address())
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestAddLiquidityRollsBackBankOnTokenFailure(t *testing.T) {
	router, bank, token, depositor := newRouterFixture(t)

	// Enough native coin, not enough tokens.
	_, err := router.AddLiquidity(depositor, token, big.NewInt(100), big.NewInt(2000000))
	assert.Error(t, err)
	assert.Equal(t, int64(100000), bank.BalanceOf(depositor).Int64())
}

func TestPoolForUnknownToken(t *testing.T) {
	router, _, _, _ := newRouterFixture(t)
	_, err := router.PoolFor(types.NewAddress())
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestPoolForReturnsSnapshot(t *testing.T) {
	router, _, token, depositor := newRouterFixture(t)
	_, err := router.AddLiquidity(depositor, token, big.NewInt(100), big.NewInt(100))
	require.NoError(t, err)

	pool, err := router.PoolFor(token.Address())
	require.NoError(t, err)
	pool.EthReserve.SetInt64(0)

	again, err := router.PoolFor(token.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.EthReserve.Int64())
}

func TestPoolQuote(t *testing.T) {
	pool := &Pool{
		EthReserve:   big.NewInt(1000),
		TokenReserve: big.NewInt(1000000),
	}

	// eth -> token: 1000000 * 1000 / 2000 = 500000.
	assert.Equal(t, int64(500000), pool.Quote(big.NewInt(1000), true).Int64())
	// token -> eth: 1000 * 1000000 / 2000000 = 500.
	assert.Equal(t, int64(500), pool.Quote(big.NewInt(1000000), false).Int64())
	assert.Equal(t, int64(0), pool.Quote(nil, true).Int64())
	assert.Equal(t, int64(0), pool.Quote(big.NewInt(0), true).Int64())
}
