// =================================
// File: cmd/launchpadd/main.go
// =================================

// launchpadd runs the token launchpad daemon: a factory of bonding-curve
// markets behind a JSON HTTP API, with launches persisted in a bolt registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pumpforge/launchpad/internal/config"
	"github.com/pumpforge/launchpad/internal/events"
	"github.com/pumpforge/launchpad/internal/exchange"
	"github.com/pumpforge/launchpad/internal/factory"
	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/logger"
	"github.com/pumpforge/launchpad/internal/registry"
	"github.com/pumpforge/launchpad/internal/server"
	"github.com/pumpforge/launchpad/internal/types"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "launchpadd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	owner, err := types.ParseAddress(cfg.Owner)
	if err != nil {
		return fmt.Errorf("parse owner: %w", err)
	}
	feeRecipient, err := types.ParseAddress(cfg.FeeRecipient)
	if err != nil {
		return fmt.Errorf("parse fee recipient: %w", err)
	}
	feeRecipientSetter, err := types.ParseAddress(cfg.FeeRecipientSetter)
	if err != nil {
		return fmt.Errorf("parse fee recipient setter: %w", err)
	}
	template, err := cfg.Launch.Template()
	if err != nil {
		return fmt.Errorf("parse launch defaults: %w", err)
	}

	reg, err := registry.OpenBolt(ctx, cfg.RegistryPath)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	bank := ledger.NewBank()
	router := exchange.NewConstantProductRouter(bank, log.Logger)
	bus := events.NewBus(log.Logger, cfg.EventBuffer)

	pumpFactory, err := factory.New(factory.Options{
		Owner:              owner,
		FeeRecipient:       feeRecipient,
		FeeRecipientSetter: feeRecipientSetter,
		Template:           template,
		Bank:               bank,
		Router:             router,
		Bus:                bus,
		Registry:           reg,
		Logger:             log.Logger,
	})
	if err != nil {
		return fmt.Errorf("init factory: %w", err)
	}

	subscribeAuditLog(bus, log.WithComponent("audit"))

	srv := server.New(cfg.ListenAddr, pumpFactory, bank, log.Logger)

	log.Info("Launchpad starting",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("registry_path", cfg.RegistryPath),
		zap.String("owner", owner.String()),
		zap.String("fee_recipient", feeRecipient.String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP server shutdown failed", zap.Error(err))
		}
		if err := bus.Shutdown(shutdownCtx); err != nil {
			log.Warn("Event bus shutdown failed", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Launchpad stopped")
	return nil
}

// subscribeAuditLog mirrors every domain event into the log, in publish order.
func subscribeAuditLog(bus *events.Bus, log *zap.Logger) {
	logEvent := func(_ context.Context, event events.Event) error {
		switch e := event.(type) {
		case events.TokenCreatedEvent:
			log.Info("Token created",
				zap.String("token", e.Token.String()),
				zap.String("curve", e.Curve.String()),
				zap.String("symbol", e.Symbol),
				zap.String("creator", e.Creator.String()))
		case events.BoughtEvent:
			log.Info("Buy",
				zap.String("curve", e.Curve.String()),
				zap.String("buyer", e.Buyer.String()),
				zap.String("eth_in", e.EthIn.String()),
				zap.String("tokens_out", e.TokensOut.String()))
		case events.SoldEvent:
			log.Info("Sell",
				zap.String("curve", e.Curve.String()),
				zap.String("seller", e.Seller.String()),
				zap.String("tokens_in", e.TokensIn.String()),
				zap.String("eth_out", e.EthOut.String()))
		case events.CurveCompletedEvent:
			log.Info("Curve completed",
				zap.String("curve", e.Curve.String()),
				zap.String("token", e.Token.String()),
				zap.String("pool", e.Pool.String()))
		}
		return nil
	}

	for _, eventType := range []events.EventType{
		events.TokenCreated,
		events.Bought,
		events.Sold,
		events.CurveCompleted,
	} {
		bus.SubscribeFunc(eventType, logEvent)
	}
}
