package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"swapquote/pkg/types"
)

// TokenConfig describes a token known on a configured network
type TokenConfig struct {
	Address  string `mapstructure:"address"`
	AssetID  string `mapstructure:"asset_id"`
	Decimals int    `mapstructure:"decimals"`
}

// NetworkConfig describes one tradable network
type NetworkConfig struct {
	Kind         string                 `mapstructure:"kind"` // "evm" or "solana"
	ChainID      int64                  `mapstructure:"chain_id"`
	QuoteBaseURL string                 `mapstructure:"quote_base_url"` // DEX quote endpoint root
	Tokens       map[string]TokenConfig `mapstructure:"tokens"`
}

// EngineConfig tunes the quote engine
type EngineConfig struct {
	DebounceMs       int `mapstructure:"debounce_ms"`
	SourceTimeoutSec int `mapstructure:"source_timeout_sec"`
	SlippageBps      int `mapstructure:"slippage_bps"`
}

// OneClickConfig configures the 1Click bridge-aggregator provider
type OneClickConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	JWTToken string `mapstructure:"jwt_token"`
	BaseURL  string `mapstructure:"base_url"`
}

// Config holds the application configuration
type Config struct {
	RegistryURL string                   `mapstructure:"registry_url"`
	Engine      EngineConfig             `mapstructure:"engine"`
	OneClick    OneClickConfig           `mapstructure:"oneclick"`
	Networks    map[string]NetworkConfig `mapstructure:"networks"`
	Prices      map[string]string        `mapstructure:"prices"` // static USD prices by symbol
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".swapquote")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("registry_url", "https://sources.swapquote.dev")
	viper.SetDefault("engine.debounce_ms", 550)
	viper.SetDefault("engine.source_timeout_sec", 8)
	viper.SetDefault("engine.slippage_bps", 100)
	viper.SetDefault("oneclick.base_url", "https://1click.chaindefuser.com")

	// Read from environment variables
	viper.SetEnvPrefix("SWAPQUOTE")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Env vars bound outside the nested structure
	if cfg.OneClick.JWTToken == "" {
		cfg.OneClick.JWTToken = viper.GetString("jwt_token")
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}

// Network resolves a configured network by id
func (c *Config) Network(id string) (types.Network, error) {
	nc, ok := c.Networks[id]
	if !ok {
		return types.Network{}, fmt.Errorf("network %q not configured", id)
	}
	kind := types.NetworkKind(nc.Kind)
	if kind != types.NetworkEVM && kind != types.NetworkSolana {
		return types.Network{}, fmt.Errorf("network %q has unsupported kind %q", id, nc.Kind)
	}
	return types.Network{ID: id, Kind: kind, ChainID: nc.ChainID}, nil
}

// Token resolves a token symbol against a configured network's token table
func (c *Config) Token(networkID, symbol string) (types.Token, error) {
	nc, ok := c.Networks[networkID]
	if !ok {
		return types.Token{}, fmt.Errorf("network %q not configured", networkID)
	}
	tc, ok := nc.Tokens[symbol]
	if !ok {
		return types.Token{}, fmt.Errorf("token %q not configured on network %q", symbol, networkID)
	}
	return types.Token{
		Symbol:   symbol,
		Address:  tc.Address,
		AssetID:  tc.AssetID,
		Decimals: tc.Decimals,
	}, nil
}
