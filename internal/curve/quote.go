// =============================
// File: internal/curve/quote.go
// =============================
package curve

import "math/big"

const feeDenominatorBps = 10000

// feeOf computes amount * bps / 10000, rounded down.
func feeOf(amount *big.Int, bps uint64) *big.Int {
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return fee.Div(fee, big.NewInt(feeDenominatorBps))
}

// buyQuote prices a buy against the virtual reserves:
//
//	tokensOut = vToken * netEthIn / (vEth + netEthIn)
//
// Floor division rounds the payout down, so the product vToken*vEth never
// decreases across a trade and tokensOut < vToken always holds.
func buyQuote(vToken, vEth, netEthIn *big.Int) *big.Int {
	num := new(big.Int).Mul(vToken, netEthIn)
	den := new(big.Int).Add(vEth, netEthIn)
	return num.Div(num, den)
}

// sellQuote prices a sell, the inverse direction:
//
//	grossEthOut = vEth * tokenIn / (vToken + tokenIn)
//
// Same rounding direction as buyQuote: the curve keeps the remainder.
func sellQuote(vToken, vEth, tokenIn *big.Int) *big.Int {
	num := new(big.Int).Mul(vEth, tokenIn)
	den := new(big.Int).Add(vToken, tokenIn)
	return num.Div(num, den)
}
