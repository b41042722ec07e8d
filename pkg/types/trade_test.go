package types

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ethUSDC(amount string) TradeParameters {
	return TradeParameters{
		Network:      Network{ID: "ethereum", Kind: NetworkEVM, ChainID: 1},
		PayToken:     Token{Symbol: "ETH", Decimals: 18},
		ReceiveToken: Token{Symbol: "USDC", Decimals: 6},
		PayAmount:    amount,
	}
}

func TestTradeParametersActive(t *testing.T) {
	assert.True(t, ethUSDC("1").Active())
	assert.True(t, ethUSDC("0.000001").Active())

	assert.False(t, ethUSDC("").Active())
	assert.False(t, ethUSDC("0").Active())
	assert.False(t, ethUSDC("-1").Active())
	assert.False(t, ethUSDC("abc").Active())

	p := ethUSDC("1")
	p.ReceiveToken = Token{}
	assert.False(t, p.Active(), "incomplete pair is inactive")

	p = ethUSDC("1")
	p.Network = Network{}
	assert.False(t, p.Active())
}

func TestPayAmountRaw(t *testing.T) {
	raw, err := ethUSDC("1.5").PayAmountRaw()
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", raw.String())

	p := ethUSDC("2")
	p.PayToken.Decimals = 6
	raw, err = p.PayAmountRaw()
	require.NoError(t, err)
	assert.Equal(t, "2000000", raw.String())

	_, err = ethUSDC("").PayAmountRaw()
	assert.Error(t, err)

	_, err = ethUSDC("-1").PayAmountRaw()
	assert.Error(t, err)
}

func TestQuoteReceiveAmount(t *testing.T) {
	q := &Quote{ReceiveAmountRaw: big.NewInt(4200_000000)}
	got := q.ReceiveAmount(Token{Symbol: "USDC", Decimals: 6})
	assert.True(t, got.Equal(decimal.RequireFromString("4200")))

	var empty Quote
	assert.True(t, empty.ReceiveAmount(Token{Decimals: 6}).IsZero())
}
