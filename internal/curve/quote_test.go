// =============================
// File: internal/curve/quote_test.go
// =============================
package curve

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func big64(v int64) *big.Int { return big.NewInt(v) }

func TestFeeOf(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    uint64
		want   int64
	}{
		{"one percent", 10000, 100, 100},
		{"rounds down", 999, 100, 9},
		{"zero fee", 10000, 0, 0},
		{"full fee", 10000, 10000, 10000},
		{"tiny amount", 1, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feeOf(big64(tt.amount), tt.bps)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestBuyQuote(t *testing.T) {
	tests := []struct {
		name             string
		vToken, vEth, in int64
		want             int64
	}{
		{"doubles eth side", 1000000, 1000, 1000, 500000},
		{"small input", 1000000, 1000, 1, 999},
		{"rounds down", 1000000, 990, 1000, 502512},
		{"dust rounds to zero", 1, 1000, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buyQuote(big64(tt.vToken), big64(tt.vEth), big64(tt.in))
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestSellQuote(t *testing.T) {
	tests := []struct {
		name             string
		vToken, vEth, in int64
		want             int64
	}{
		{"inverse of the doubling buy", 500000, 2000, 500000, 1000},
		{"rounds down", 1000000, 1000, 3, 0},
		{"half the tokens", 1000000, 1000, 1000000, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sellQuote(big64(tt.vToken), big64(tt.vEth), big64(tt.in))
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

// The payout never exceeds the reserve it draws from, whatever the input.
func TestQuoteBounds(t *testing.T) {
	vToken := big64(1000000)
	vEth := big64(1000)

	huge := new(big.Int).Mul(big64(1000000000), big64(1000000000))
	assert.True(t, buyQuote(vToken, vEth, huge).Cmp(vToken) < 0)
	assert.True(t, sellQuote(vToken, vEth, huge).Cmp(vEth) < 0)
}

// Floor rounding keeps the constant product from decreasing across a trade.
func TestBuyQuotePreservesProduct(t *testing.T) {
	vToken := big64(1000000)
	vEth := big64(997)
	k0 := new(big.Int).Mul(vToken, vEth)

	for _, in := range []int64{1, 7, 99, 1234, 100000} {
		out := buyQuote(vToken, vEth, big64(in))
		k1 := new(big.Int).Mul(
			new(big.Int).Sub(vToken, out),
			new(big.Int).Add(vEth, big64(in)),
		)
		assert.True(t, k1.Cmp(k0) >= 0, "input %d shrank the product", in)
	}
}
