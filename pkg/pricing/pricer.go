// Package pricing supplies USD token prices to the trade metrics layer.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"swapquote/pkg/provider"
	"swapquote/pkg/types"
)

// Oracle resolves a token's USD price
type Oracle interface {
	Price(ctx context.Context, token types.Token) (decimal.Decimal, error)
}

// StaticOracle serves prices from a fixed table keyed by symbol. Used
// as the config-backed fallback and in tests.
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

// NewStaticOracle builds an oracle from symbol -> usd price strings,
// skipping entries that do not parse
func NewStaticOracle(prices map[string]string) *StaticOracle {
	parsed := make(map[string]decimal.Decimal, len(prices))
	for symbol, raw := range prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		parsed[symbol] = p
	}
	return &StaticOracle{prices: parsed}
}

// Price implements Oracle
func (o *StaticOracle) Price(_ context.Context, token types.Token) (decimal.Decimal, error) {
	p, ok := o.prices[token.Symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price configured for %s", token.Symbol)
	}
	return p, nil
}

// FallbackOracle tries each oracle in turn and returns the first price
// found. Used to layer probe-quote pricing under the static table.
type FallbackOracle struct {
	oracles []Oracle
}

// NewFallbackOracle chains oracles in priority order
func NewFallbackOracle(oracles ...Oracle) *FallbackOracle {
	return &FallbackOracle{oracles: oracles}
}

// Price implements Oracle
func (o *FallbackOracle) Price(ctx context.Context, token types.Token) (decimal.Decimal, error) {
	var lastErr error
	for _, oracle := range o.oracles {
		p, err := oracle.Price(ctx, token)
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no oracle configured")
	}
	return decimal.Zero, lastErr
}

// QuoteOracle derives a token's USD price by quoting a small probe
// amount against a configured stable token through a quote provider.
type QuoteOracle struct {
	provider provider.QuoteProvider
	network  types.Network
	stable   types.Token // USD-pegged token the probe is priced against
	probe    string      // probe amount in the priced token's display units
}

// NewQuoteOracle creates a probe-quote oracle
func NewQuoteOracle(p provider.QuoteProvider, network types.Network, stable types.Token) *QuoteOracle {
	return &QuoteOracle{
		provider: p,
		network:  network,
		stable:   stable,
		probe:    "0.1",
	}
}

// Price quotes probe units of token against the stable token and scales
// the output back to one unit
func (o *QuoteOracle) Price(ctx context.Context, token types.Token) (decimal.Decimal, error) {
	if token.Symbol == o.stable.Symbol {
		return decimal.NewFromInt(1), nil
	}

	params := types.TradeParameters{
		Network:      o.network,
		PayToken:     token,
		ReceiveToken: o.stable,
		PayAmount:    o.probe,
	}

	quote, err := o.provider.Fetch(ctx, params)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price probe for %s failed: %w", token.Symbol, err)
	}

	in, err := decimal.NewFromString(o.probe)
	if err != nil || in.IsZero() {
		return decimal.Zero, fmt.Errorf("invalid probe amount %q", o.probe)
	}
	out := quote.ReceiveAmount(o.stable)

	return out.Div(in), nil
}
