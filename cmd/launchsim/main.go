// =================================
// File: cmd/launchsim/main.go
// =================================

// launchsim drives one full launch lifecycle in-process: create a token,
// trade it along the bonding curve and push it through graduation. Useful
// for eyeballing curve behavior without the daemon.
package main

import (
	"fmt"
	"math/big"
	"os"

	"go.uber.org/zap"

	"github.com/pumpforge/launchpad/internal/config"
	"github.com/pumpforge/launchpad/internal/events"
	"github.com/pumpforge/launchpad/internal/exchange"
	"github.com/pumpforge/launchpad/internal/factory"
	"github.com/pumpforge/launchpad/internal/ledger"
	"github.com/pumpforge/launchpad/internal/registry"
	"github.com/pumpforge/launchpad/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "launchsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	defaults := config.LaunchDefaults{
		TokenTotalSupply:    config.DefaultTokenTotalSupply,
		SwapFeeBps:          config.DefaultSwapFeeBps,
		VirtualTokenReserve: config.DefaultVirtualTokenReserve,
		VirtualEthReserve:   config.DefaultVirtualEthReserve,
		EthForLiquidity:     config.DefaultEthForLiquidity,
		EthForLiquidityFee:  config.DefaultEthForLiquidityFee,
		EthForCreatorReward: config.DefaultEthForCreatorReward,
	}
	template, err := defaults.Template()
	if err != nil {
		return err
	}

	bank := ledger.NewBank()
	router := exchange.NewConstantProductRouter(bank, log)
	bus := events.NewBus(log, 64)

	owner := types.NewAddress()
	feeRecipient := types.NewAddress()
	creator := types.NewAddress()

	pumpFactory, err := factory.New(factory.Options{
		Owner:              owner,
		FeeRecipient:       feeRecipient,
		FeeRecipientSetter: owner,
		Template:           template,
		Bank:               bank,
		Router:             router,
		Bus:                bus,
		Registry:           registry.NewMemory(),
		Logger:             log,
	})
	if err != nil {
		return err
	}

	token, bc, err := pumpFactory.CreateToken(creator, "Simulated Token", "SIM", "ipfs://sim")
	if err != nil {
		return err
	}

	trader := types.NewAddress()
	tenEth, _ := new(big.Int).SetString("10000000000000000000", 10)
	if err := bank.Mint(trader, tenEth); err != nil {
		return err
	}

	// A few small buys to walk the price up.
	buySize, _ := new(big.Int).SetString("500000000000000000", 10) // 0.5
	for i := 0; i < 3; i++ {
		receipt, err := bc.Buy(trader, buySize)
		if err != nil {
			return fmt.Errorf("buy %d: %w", i+1, err)
		}
		vToken, vEth := bc.VirtualReserves()
		fmt.Printf("buy %d: spent %s, received %s tokens (reserves %s / %s)\n",
			i+1, receipt.EthIn, receipt.TokensOut, vToken, vEth)
	}

	// Sell a slice back; the curve needs an allowance to pull the tokens.
	sellAmount := new(big.Int).Div(token.BalanceOf(trader), big.NewInt(10))
	if err := token.Approve(trader, bc.Address(), sellAmount); err != nil {
		return err
	}
	sellReceipt, err := bc.Sell(trader, sellAmount)
	if err != nil {
		return fmt.Errorf("sell: %w", err)
	}
	fmt.Printf("sell: returned %s tokens for %s (fee %s)\n",
		sellReceipt.TokensIn, sellReceipt.EthOut, sellReceipt.FeePaid)

	// One oversized buy to cross the funding target and trigger migration.
	remaining := bc.RemainingEthToCompleteCurve()
	finalBuy := new(big.Int).Mul(remaining, big.NewInt(2))
	receipt, err := bc.Buy(trader, finalBuy)
	if err != nil {
		return fmt.Errorf("graduating buy: %w", err)
	}
	if !receipt.Completed {
		return fmt.Errorf("expected graduating buy to complete the curve")
	}
	fmt.Printf("graduated: pool %s, curve status %s\n", receipt.Pool, bc.Status())

	pool, err := router.PoolFor(token.Address())
	if err != nil {
		return err
	}
	fmt.Printf("pool reserves: %s native / %s tokens, lp supply %s\n",
		pool.EthReserve, pool.TokenReserve, pool.LPSupply)

	// Trading against the curve is over; the pool owns the market now.
	if _, err := bc.Buy(trader, buySize); err == nil {
		return fmt.Errorf("expected post-graduation buy to be rejected")
	}

	fmt.Printf("fee recipient balance: %s\n", bank.BalanceOf(feeRecipient))
	fmt.Printf("creator balance:       %s\n", bank.BalanceOf(creator))
	return nil
}
