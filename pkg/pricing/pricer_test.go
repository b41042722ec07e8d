package pricing

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapquote/pkg/types"
)

var (
	eth  = types.Token{Symbol: "ETH", Decimals: 18}
	usdc = types.Token{Symbol: "USDC", Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Decimals: 6}

	ethereum = types.Network{ID: "ethereum", Kind: types.NetworkEVM, ChainID: 1}
)

type probeProvider struct {
	calls int
	quote *types.Quote
	err   error
}

func (p *probeProvider) Name() string { return "probe" }

func (p *probeProvider) Fetch(ctx context.Context, params types.TradeParameters) (*types.Quote, error) {
	p.calls++
	return p.quote, p.err
}

func TestStaticOraclePrices(t *testing.T) {
	o := NewStaticOracle(map[string]string{
		"ETH":  "3000",
		"USDC": "1",
		"BAD":  "not a number", // skipped
	})

	p, err := o.Price(context.Background(), eth)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(3000)))

	_, err = o.Price(context.Background(), types.Token{Symbol: "BAD"})
	assert.Error(t, err, "unparsable entries are dropped at construction")

	_, err = o.Price(context.Background(), types.Token{Symbol: "SOL"})
	assert.Error(t, err)
}

func TestQuoteOraclePricesViaProbe(t *testing.T) {
	// 0.1 ETH probe returns 300 USDC: one ETH is $3000
	prov := &probeProvider{
		quote: &types.Quote{ReceiveAmountRaw: big.NewInt(300_000000)},
	}
	o := NewQuoteOracle(prov, ethereum, usdc)

	p, err := o.Price(context.Background(), eth)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(3000)), "got %s", p)
	assert.Equal(t, 1, prov.calls)
}

func TestQuoteOracleStableIsAlwaysOne(t *testing.T) {
	prov := &probeProvider{}
	o := NewQuoteOracle(prov, ethereum, usdc)

	p, err := o.Price(context.Background(), usdc)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 0, prov.calls, "the stable token needs no probe")
}

func TestQuoteOracleProbeFailure(t *testing.T) {
	prov := &probeProvider{err: errors.New("no route")}
	o := NewQuoteOracle(prov, ethereum, usdc)

	_, err := o.Price(context.Background(), eth)
	assert.Error(t, err)
}

func TestFallbackOracleLayersQuoteUnderStatic(t *testing.T) {
	static := NewStaticOracle(map[string]string{"USDC": "1"})
	prov := &probeProvider{
		quote: &types.Quote{ReceiveAmountRaw: big.NewInt(300_000000)},
	}
	o := NewFallbackOracle(static, NewQuoteOracle(prov, ethereum, usdc))

	// Known symbol short-circuits on the static table
	p, err := o.Price(context.Background(), usdc)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 0, prov.calls)

	// Missing symbol falls through to the probe
	p, err = o.Price(context.Background(), eth)
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 1, prov.calls)
}

func TestFallbackOracleAllMiss(t *testing.T) {
	static := NewStaticOracle(nil)
	prov := &probeProvider{err: errors.New("down")}
	o := NewFallbackOracle(static, NewQuoteOracle(prov, ethereum, usdc))

	_, err := o.Price(context.Background(), eth)
	assert.Error(t, err)

	_, err = NewFallbackOracle().Price(context.Background(), eth)
	assert.Error(t, err)
}
