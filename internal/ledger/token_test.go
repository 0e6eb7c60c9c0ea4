// =================================
// File: internal/ledger/token_test.go
// =================================
package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumpforge/launchpad/internal/types"
)

func newTestToken(t *testing.T, supply int64) (*FixedSupplyToken, types.Address) {
	t.Helper()
	owner := types.NewAddress()
	token, err := NewFixedSupplyToken("Test", "TST", "ipfs://x", big.NewInt(supply), owner)
	require.NoError(t, err)
	return token, owner
}

func TestNewFixedSupplyToken(t *testing.T) {
	token, owner := newTestToken(t, 1000)

	assert.Equal(t, "Test", token.Name())
	assert.Equal(t, "TST", token.Symbol())
	assert.Equal(t, "ipfs://x", token.MetadataURI())
	assert.False(t, token.Address().IsZero())
	assert.Equal(t, int64(1000), token.TotalSupply().Int64())
	assert.Equal(t, int64(1000), token.BalanceOf(owner).Int64())
}

func TestNewFixedSupplyTokenRejections(t *testing.T) {
	_, err := NewFixedSupplyToken("X", "X", "", big.NewInt(100), types.ZeroAddress)
	assert.ErrorIs(t, err, ErrZeroAddress)

	_, err = NewFixedSupplyToken("X", "X", "", big.NewInt(0), types.NewAddress())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewFixedSupplyToken("X", "X", "", nil, types.NewAddress())
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTransfer(t *testing.T) {
	token, owner := newTestToken(t, 1000)
	recipient := types.NewAddress()

	require.NoError(t, token.Transfer(owner, recipient, big.NewInt(400)))
	assert.Equal(t, int64(600), token.BalanceOf(owner).Int64())
	assert.Equal(t, int64(400), token.BalanceOf(recipient).Int64())

	err := token.Transfer(owner, recipient, big.NewInt(601))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.ErrorIs(t, token.Transfer(owner, recipient, big.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, token.Transfer(owner, types.ZeroAddress, big.NewInt(1)), ErrZeroAddress)
}

func TestTransferFromUnknownAccount(t *testing.T) {
	token, _ := newTestToken(t, 1000)
	err := token.Transfer(types.NewAddress(), types.NewAddress(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestApproveAndTransferFrom(t *testing.T) {
	token, owner := newTestToken(t, 1000)
	spender := types.NewAddress()
	recipient := types.NewAddress()

	require.NoError(t, token.Approve(owner, spender, big.NewInt(300)))
	assert.Equal(t, int64(300), token.Allowance(owner, spender).Int64())

	require.NoError(t, token.TransferFrom(spender, owner, recipient, big.NewInt(200)))
	assert.Equal(t, int64(800), token.BalanceOf(owner).Int64())
	assert.Equal(t, int64(200), token.BalanceOf(recipient).Int64())
	assert.Equal(t, int64(100), token.Allowance(owner, spender).Int64())

	err := token.TransferFrom(spender, owner, recipient, big.NewInt(101))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestTransferFromWithoutApproval(t *testing.T) {
	token, owner := newTestToken(t, 1000)
	err := token.TransferFrom(types.NewAddress(), owner, types.NewAddress(), big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestApproveOverwrites(t *testing.T) {
	token, owner := newTestToken(t, 1000)
	spender := types.NewAddress()

	require.NoError(t, token.Approve(owner, spender, big.NewInt(300)))
	require.NoError(t, token.Approve(owner, spender, big.NewInt(50)))
	assert.Equal(t, int64(50), token.Allowance(owner, spender).Int64())
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	token, owner := newTestToken(t, 1000)
	token.BalanceOf(owner).SetInt64(0)
	assert.Equal(t, int64(1000), token.BalanceOf(owner).Int64())
}
