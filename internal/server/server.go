// =================================
// File: internal/server/server.go
// =================================

// Package server exposes the launchpad over a JSON HTTP API. Amounts cross
// the wire as decimal strings in base units.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/factory"
	"github.com/pumpforge/launchpad/internal/ledger"
)

// Server wires the factory and bank behind HTTP handlers.
type Server struct {
	factory    *factory.PumpFactory
	bank       *ledger.Bank
	logger     *zap.Logger
	httpServer *http.Server
}

// New builds the server for addr.
func New(addr string, f *factory.PumpFactory, bank *ledger.Bank, logger *zap.Logger) *Server {
	s := &Server{
		factory: f,
		bank:    bank,
		logger:  logger.Named("http_server"),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the route table. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/tokens", s.handleCreateToken).Methods(http.MethodPost)
	v1.HandleFunc("/tokens", s.handleListTokens).Methods(http.MethodGet)
	v1.HandleFunc("/tokens/{token}", s.handleGetToken).Methods(http.MethodGet)
	v1.HandleFunc("/tokens/{token}/buy", s.handleBuy).Methods(http.MethodPost)
	v1.HandleFunc("/tokens/{token}/sell", s.handleSell).Methods(http.MethodPost)
	v1.HandleFunc("/tokens/{token}/approve", s.handleApprove).Methods(http.MethodPost)
	v1.HandleFunc("/tokens/{token}/balance/{address}", s.handleTokenBalance).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{address}", s.handleGetAccount).Methods(http.MethodGet)
	v1.HandleFunc("/accounts/{address}/fund", s.handleFundAccount).Methods(http.MethodPost)

	admin := v1.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/swap-fee", s.handleSetSwapFee).Methods(http.MethodPost)
	admin.HandleFunc("/virtual-reserves", s.handleSetVirtualReserves).Methods(http.MethodPost)
	admin.HandleFunc("/target-amounts", s.handleSetTargetAmounts).Methods(http.MethodPost)
	admin.HandleFunc("/fee-recipient", s.handleSetFeeRecipient).Methods(http.MethodPost)

	return r
}

// Start serves until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
