package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"swapquote/config"
	"swapquote/pkg/engine"
	"swapquote/pkg/parser"
	"swapquote/pkg/pricing"
	"swapquote/pkg/provider"
	"swapquote/pkg/source"
	"swapquote/pkg/types"
)

// resolveTradeParams turns CLI args like "1 ETH to USDC" into fully
// resolved trade parameters for the configured network
func resolveTradeParams(cfg *config.Config, args []string, networkID, fromAddress string) (types.TradeParameters, error) {
	commandStr := strings.Join(args, " ")
	cmd, err := parser.ParseTradeCommand(commandStr)
	if err != nil {
		return types.TradeParameters{}, err
	}

	network, err := cfg.Network(networkID)
	if err != nil {
		return types.TradeParameters{}, err
	}

	payToken, err := cfg.Token(networkID, parser.NormalizeTokenSymbol(cmd.PaySymbol))
	if err != nil {
		return types.TradeParameters{}, err
	}
	receiveToken, err := cfg.Token(networkID, parser.NormalizeTokenSymbol(cmd.ReceiveSymbol))
	if err != nil {
		return types.TradeParameters{}, err
	}

	return types.TradeParameters{
		Network:      network,
		PayToken:     payToken,
		ReceiveToken: receiveToken,
		PayAmount:    cmd.Amount,
		FromAddress:  fromAddress,
	}, nil
}

// providerFactory builds the per-source provider factory for a network
func providerFactory(cfg *config.Config, networkID string) (provider.Factory, error) {
	netCfg, ok := cfg.Networks[networkID]
	if !ok {
		return nil, fmt.Errorf("network %q not configured", networkID)
	}

	return provider.FactoryFunc(func(src types.Source) (provider.QuoteProvider, error) {
		if src.Kind == types.SourceBridge {
			if !cfg.OneClick.Enabled || cfg.OneClick.JWTToken == "" {
				return nil, fmt.Errorf("bridge source %q requires oneclick configuration", src.ID)
			}
			return provider.NewOneClickProvider(src.ID, cfg.OneClick.JWTToken, cfg.Engine.SlippageBps), nil
		}
		if netCfg.QuoteBaseURL == "" {
			return nil, fmt.Errorf("no quote endpoint configured for network %q", networkID)
		}
		return provider.NewRESTProvider(netCfg.QuoteBaseURL, src.ID, nil), nil
	}), nil
}

// buildOracle layers the quote-derived oracle over the static price
// table: symbols missing from config get priced by probe-quoting against
// the network's stable token through the active source's endpoint.
func buildOracle(cfg *config.Config, params types.TradeParameters, activeSourceID string) pricing.Oracle {
	static := pricing.NewStaticOracle(cfg.Prices)

	netCfg, ok := cfg.Networks[params.Network.ID]
	if !ok || netCfg.QuoteBaseURL == "" || activeSourceID == "" {
		return static
	}
	stable, err := cfg.Token(params.Network.ID, "USDC")
	if err != nil {
		return static
	}

	probe := provider.NewRESTProvider(netCfg.QuoteBaseURL, activeSourceID, nil)
	return pricing.NewFallbackOracle(static, pricing.NewQuoteOracle(probe, params.Network, stable))
}

// buildEngine wires the registry, the per-source provider factory, and
// the engine from configuration
func buildEngine(cfg *config.Config, networkID string, verbose bool) (*engine.Engine, error) {
	factory, err := providerFactory(cfg, networkID)
	if err != nil {
		return nil, err
	}

	registry := source.NewRegistry(cfg.RegistryURL, nil)

	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	eng := engine.New(registry, factory, engine.Options{
		DebounceWindow: time.Duration(cfg.Engine.DebounceMs) * time.Millisecond,
		SourceTimeout:  time.Duration(cfg.Engine.SourceTimeoutSec) * time.Second,
		Logger:         logger,
	})

	return eng, nil
}
