// =================================
// File: internal/server/handlers.go
// =================================
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/curve"
	"github.com/pumpforge/launchpad/internal/factory"
	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/registry"
	"github.com/pumpforge/launchpad/internal/types"
)

type tokenSummary struct {
	Token       string `json:"token"`
	Curve       string `json:"curve"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	MetadataURI string `json:"metadata_uri,omitempty"`
	Creator     string `json:"creator"`
	CreatedAt   string `json:"created_at"`
}

type tokenDetail struct {
	tokenSummary
	Status              string `json:"status,omitempty"`
	VirtualTokenReserve string `json:"virtual_token_reserve,omitempty"`
	VirtualEthReserve   string `json:"virtual_eth_reserve,omitempty"`
	RealEthCollected    string `json:"real_eth_collected,omitempty"`
	RemainingToComplete string `json:"remaining_to_complete,omitempty"`
	Pool                string `json:"pool,omitempty"`
}

func summarize(e registry.Entry) tokenSummary {
	return tokenSummary{
		Token:       e.Token.String(),
		Curve:       e.Curve.String(),
		Name:        e.Name,
		Symbol:      e.Symbol,
		MetadataURI: e.MetadataURI,
		Creator:     e.Creator.String(),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Creator     string `json:"creator"`
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		MetadataURI string `json:"metadata_uri"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	creator, err := types.ParseAddress(req.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid creator address")
		return
	}
	if req.Name == "" || req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "name and symbol are required")
		return
	}

	token, bc, err := s.factory.CreateToken(creator, req.Name, req.Symbol, req.MetadataURI)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"token":  token.Address().String(),
		"curve":  bc.Address().String(),
		"name":   token.Name(),
		"symbol": token.Symbol(),
	})
}

func (s *Server) handleListTokens(w http.ResponseWriter, _ *http.Request) {
	entries, err := s.factory.Tokens()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]tokenSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, summarize(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	_, bc, entry, ok := s.lookupToken(w, r)
	if !ok {
		return
	}

	detail := tokenDetail{tokenSummary: summarize(entry)}
	if bc != nil {
		vToken, vEth := bc.VirtualReserves()
		detail.Status = bc.Status().String()
		detail.VirtualTokenReserve = types.FormatAmount(vToken)
		detail.VirtualEthReserve = types.FormatAmount(vEth)
		detail.RealEthCollected = types.FormatAmount(bc.RealEthCollected())
		detail.RemainingToComplete = types.FormatAmount(bc.RemainingEthToCompleteCurve())
		if pool := bc.Pool(); !pool.IsZero() {
			detail.Pool = pool.String()
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	_, bc, _, ok := s.lookupToken(w, r)
	if !ok {
		return
	}
	if bc == nil {
		writeError(w, http.StatusConflict, "curve is not live in this process")
		return
	}

	var req struct {
		Buyer string `json:"buyer"`
		EthIn string `json:"eth_in"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	buyer, err := types.ParseAddress(req.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid buyer address")
		return
	}
	ethIn, err := types.ParseAmount(req.EthIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid eth_in amount")
		return
	}

	receipt, err := bc.Buy(buyer, ethIn)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := map[string]interface{}{
		"curve":      receipt.Curve.String(),
		"token":      receipt.Token.String(),
		"buyer":      receipt.Buyer.String(),
		"eth_in":     types.FormatAmount(receipt.EthIn),
		"tokens_out": types.FormatAmount(receipt.TokensOut),
		"fee_paid":   types.FormatAmount(receipt.FeePaid),
		"completed":  receipt.Completed,
	}
	if receipt.Completed {
		resp["pool"] = receipt.Pool.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	_, bc, _, ok := s.lookupToken(w, r)
	if !ok {
		return
	}
	if bc == nil {
		writeError(w, http.StatusConflict, "curve is not live in this process")
		return
	}

	var req struct {
		Seller      string `json:"seller"`
		TokenAmount string `json:"token_amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	seller, err := types.ParseAddress(req.Seller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid seller address")
		return
	}
	amount, err := types.ParseAmount(req.TokenAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token_amount")
		return
	}

	receipt, err := bc.Sell(seller, amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"curve":     receipt.Curve.String(),
		"token":     receipt.Token.String(),
		"seller":    receipt.Seller.String(),
		"tokens_in": types.FormatAmount(receipt.TokensIn),
		"eth_out":   types.FormatAmount(receipt.EthOut),
		"fee_paid":  types.FormatAmount(receipt.FeePaid),
	})
}

// handleApprove grants the curve an allowance over the caller's tokens so a
// later sell can pull them.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	token, bc, _, ok := s.lookupToken(w, r)
	if !ok {
		return
	}
	if bc == nil {
		writeError(w, http.StatusConflict, "curve is not live in this process")
		return
	}

	var req struct {
		Owner  string `json:"owner"`
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	owner, err := types.ParseAddress(req.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid owner address")
		return
	}
	amount, err := types.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := token.Approve(owner, bc.Address(), amount); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"owner":   owner.String(),
		"spender": bc.Address().String(),
		"amount":  types.FormatAmount(amount),
	})
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	token, _, _, ok := s.lookupToken(w, r)
	if !ok {
		return
	}
	if token == nil {
		writeError(w, http.StatusConflict, "curve is not live in this process")
		return
	}
	addr, err := types.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":   token.Address().String(),
		"address": addr.String(),
		"balance": types.FormatAmount(token.BalanceOf(addr)),
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := types.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address":     addr.String(),
		"eth_balance": types.FormatAmount(s.bank.BalanceOf(addr)),
	})
}

// handleFundAccount is the dev faucet: it mints native coin out of thin air.
func (s *Server) handleFundAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := types.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := types.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	if err := s.bank.Mint(addr, amount); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logger.Info("Account funded",
		zap.String("address", addr.String()),
		zap.String("amount", amount.String()))
	writeJSON(w, http.StatusOK, map[string]string{
		"address":     addr.String(),
		"eth_balance": types.FormatAmount(s.bank.BalanceOf(addr)),
	})
}

func (s *Server) handleSetSwapFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Bps    uint64 `json:"bps"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	caller, err := types.ParseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caller address")
		return
	}
	if err := s.factory.SetSwapFeePercentage(caller, req.Bps); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"bps": s.factory.SwapFeePercentage()})
}

func (s *Server) handleSetVirtualReserves(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller       string `json:"caller"`
		TokenReserve string `json:"token_reserve"`
		EthReserve   string `json:"eth_reserve"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	caller, err := types.ParseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caller address")
		return
	}
	tokenReserve, err := types.ParseAmount(req.TokenReserve)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token_reserve")
		return
	}
	ethReserve, err := types.ParseAmount(req.EthReserve)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid eth_reserve")
		return
	}
	if err := s.factory.SetVirtualReserves(caller, tokenReserve, ethReserve); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleSetTargetAmounts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller        string `json:"caller"`
		Liquidity     string `json:"liquidity"`
		LiquidityFee  string `json:"liquidity_fee"`
		CreatorReward string `json:"creator_reward"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	caller, err := types.ParseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caller address")
		return
	}
	liquidity, err := types.ParseAmount(req.Liquidity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid liquidity")
		return
	}
	liquidityFee, err := types.ParseAmount(req.LiquidityFee)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid liquidity_fee")
		return
	}
	creatorReward, err := types.ParseAmount(req.CreatorReward)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid creator_reward")
		return
	}
	if err := s.factory.SetTargetAmounts(caller, liquidity, liquidityFee, creatorReward); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleSetFeeRecipient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller    string `json:"caller"`
		Recipient string `json:"recipient"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	caller, err := types.ParseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid caller address")
		return
	}
	recipient, err := types.ParseAddress(req.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient address")
		return
	}
	if err := s.factory.SetFeeRecipient(caller, recipient); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"fee_recipient": s.factory.FeeRecipient().String(),
	})
}

// lookupToken resolves the {token} path variable to the registry entry and,
// when the curve was created in this process, the live ledger and curve. A
// false return means the response has been written.
func (s *Server) lookupToken(w http.ResponseWriter, r *http.Request) (ledger.Token, *curve.BondingCurve, registry.Entry, bool) {
	addr, err := types.ParseAddress(mux.Vars(r)["token"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token address")
		return nil, nil, registry.Entry{}, false
	}

	entries, err := s.factory.Tokens()
	if err != nil {
		s.writeDomainError(w, err)
		return nil, nil, registry.Entry{}, false
	}
	var entry registry.Entry
	found := false
	for _, e := range entries {
		if e.Token == addr {
			entry = e
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "token not found")
		return nil, nil, registry.Entry{}, false
	}

	bc := s.factory.Curve(addr)
	if bc != nil {
		return bc.Token(), bc, entry, true
	}
	return nil, nil, entry, true
}

// writeDomainError maps domain errors to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, factory.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, curve.ErrCurveNotActive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, curve.ErrZeroAmount),
		errors.Is(err, curve.ErrInvalidAmount),
		errors.Is(err, factory.ErrInvalidTemplate),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrZeroAddress):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, curve.ErrExternalCallFailed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("Request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
