// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/pumpforge/launchpad/internal/factory"
	"github.com/pumpforge/launchpad/internal/types"
)

// LaunchDefaults is the factory template as configured: amounts are decimal
// strings in base units (18-decimals scale).
type LaunchDefaults struct {
	TokenTotalSupply    string `mapstructure:"token_total_supply"`
	SwapFeeBps          uint64 `mapstructure:"swap_fee_bps"`
	VirtualTokenReserve string `mapstructure:"virtual_token_reserve"`
	VirtualEthReserve   string `mapstructure:"virtual_eth_reserve"`
	EthForLiquidity     string `mapstructure:"eth_for_liquidity"`
	EthForLiquidityFee  string `mapstructure:"eth_for_liquidity_fee"`
	EthForCreatorReward string `mapstructure:"eth_for_creator_reward"`
}

// Config is the daemon configuration.
type Config struct {
	ListenAddr         string         `mapstructure:"listen_addr"`
	RegistryPath       string         `mapstructure:"registry_path"`
	LogFile            string         `mapstructure:"log_file"`
	DebugLogging       bool           `mapstructure:"debug_logging"`
	EventBuffer        int            `mapstructure:"event_buffer"`
	Owner              string         `mapstructure:"owner"`
	FeeRecipient       string         `mapstructure:"fee_recipient"`
	FeeRecipientSetter string         `mapstructure:"fee_recipient_setter"`
	Launch             LaunchDefaults `mapstructure:"launch"`
}

// Launch parameter defaults: 1e9 tokens at 18 decimals, 1% fee, 4.2 native
// units to graduate (4 liquidity + 0.1 liquidity fee + 0.1 creator reward),
// virtual reserves shaped so ~20% of supply remains for the pool.
const (
	DefaultListenAddr   = ":8080"
	DefaultRegistryPath = "data/registry.db"
	DefaultLogFile      = "launchpad.log"
	DefaultEventBuffer  = 256

	DefaultTokenTotalSupply    = "1000000000000000000000000000"
	DefaultSwapFeeBps          = 100
	DefaultVirtualTokenReserve = "1000000000000000000000000000"
	DefaultVirtualEthReserve   = "840000000000000000"
	DefaultEthForLiquidity     = "4000000000000000000"
	DefaultEthForLiquidityFee  = "100000000000000000"
	DefaultEthForCreatorReward = "100000000000000000"
)

// LoadConfig reads the configuration file at path, applies defaults and
// LAUNCHPAD_-prefixed environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":                   DefaultListenAddr,
		"registry_path":                 DefaultRegistryPath,
		"log_file":                      DefaultLogFile,
		"event_buffer":                  DefaultEventBuffer,
		"launch.token_total_supply":     DefaultTokenTotalSupply,
		"launch.swap_fee_bps":           DefaultSwapFeeBps,
		"launch.virtual_token_reserve":  DefaultVirtualTokenReserve,
		"launch.virtual_eth_reserve":    DefaultVirtualEthReserve,
		"launch.eth_for_liquidity":      DefaultEthForLiquidity,
		"launch.eth_for_liquidity_fee":  DefaultEthForLiquidityFee,
		"launch.eth_for_creator_reward": DefaultEthForCreatorReward,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return errors.New("missing listen_addr in configuration")
	}
	if cfg.RegistryPath == "" {
		return errors.New("missing registry_path in configuration")
	}
	if cfg.EventBuffer <= 0 {
		return errors.New("invalid event_buffer")
	}
	if cfg.Owner == "" {
		return errors.New("missing owner in configuration")
	}
	if cfg.FeeRecipient == "" {
		return errors.New("missing fee_recipient in configuration")
	}
	if cfg.FeeRecipientSetter == "" {
		return errors.New("missing fee_recipient_setter in configuration")
	}
	if _, err := cfg.Launch.Template(); err != nil {
		return err
	}
	return nil
}

// Template parses the configured launch defaults into a factory template.
func (l LaunchDefaults) Template() (factory.Template, error) {
	var t factory.Template
	var err error

	if l.SwapFeeBps > 10000 {
		return t, errors.New("launch.swap_fee_bps exceeds 10000")
	}
	t.SwapFeeBps = l.SwapFeeBps

	if t.TokenTotalSupply, err = types.ParseAmount(l.TokenTotalSupply); err != nil {
		return t, errors.New("invalid launch.token_total_supply")
	}
	if t.VirtualTokenReserve, err = types.ParseAmount(l.VirtualTokenReserve); err != nil {
		return t, errors.New("invalid launch.virtual_token_reserve")
	}
	if t.VirtualEthReserve, err = types.ParseAmount(l.VirtualEthReserve); err != nil {
		return t, errors.New("invalid launch.virtual_eth_reserve")
	}
	if t.EthForLiquidity, err = types.ParseAmount(l.EthForLiquidity); err != nil {
		return t, errors.New("invalid launch.eth_for_liquidity")
	}
	if t.EthForLiquidityFee, err = types.ParseAmount(l.EthForLiquidityFee); err != nil {
		return t, errors.New("invalid launch.eth_for_liquidity_fee")
	}
	if t.EthForCreatorReward, err = types.ParseAmount(l.EthForCreatorReward); err != nil {
		return t, errors.New("invalid launch.eth_for_creator_reward")
	}
	return t, nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if addr := v.GetString("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if path := v.GetString("REGISTRY_PATH"); path != "" {
		cfg.RegistryPath = path
	}
	if owner := v.GetString("OWNER"); owner != "" {
		cfg.Owner = owner
	}
}
