package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"swapquote/pkg/pricing"
	"swapquote/pkg/types"
)

// TradeMetrics derives user-facing figures from the active quote. Pure
// data: recomputed on every observation, never cached across rounds.
type TradeMetrics struct {
	ReceiveAmount decimal.Decimal
	// MinReceived applies the slippage tolerance to the quoted output
	MinReceived decimal.Decimal
	// PriceImpactPercent is nil when the pay-side USD value is zero or
	// a price is unavailable
	PriceImpactPercent *decimal.Decimal
	// GasFeeUSD passes through the quote's estimate; nil when absent
	GasFeeUSD *decimal.Decimal
	// DurationLabel renders the provider's time estimate: seconds
	// under a minute, rounded-up minutes above
	DurationLabel string
}

// ComputeMetrics derives metrics for a quote using the supplied price
// oracle. Price lookups failing degrades PriceImpactPercent to nil
// rather than failing the computation.
func ComputeMetrics(ctx context.Context, quote *types.Quote, params types.TradeParameters, oracle pricing.Oracle, slippageBps int) (*TradeMetrics, error) {
	if quote == nil {
		return nil, fmt.Errorf("no quote to compute metrics for")
	}

	receive := quote.ReceiveAmount(params.ReceiveToken)

	slip := decimal.NewFromInt(int64(slippageBps)).Div(decimal.NewFromInt(10000))
	minReceived := receive.Mul(decimal.NewFromInt(1).Sub(slip))

	m := &TradeMetrics{
		ReceiveAmount: receive,
		MinReceived:   minReceived,
		GasFeeUSD:     quote.GasEstimateUSD,
		DurationLabel: DurationLabel(quote.DurationSeconds),
	}

	m.PriceImpactPercent = priceImpact(ctx, receive, params, oracle)

	return m, nil
}

// priceImpact computes (payUsd - receiveUsd) / payUsd * 100, undefined
// (nil) when payUsd is zero or either price is unknown
func priceImpact(ctx context.Context, receive decimal.Decimal, params types.TradeParameters, oracle pricing.Oracle) *decimal.Decimal {
	if oracle == nil {
		return nil
	}

	payAmount, err := decimal.NewFromString(params.PayAmount)
	if err != nil {
		return nil
	}

	payPrice, err := oracle.Price(ctx, params.PayToken)
	if err != nil {
		return nil
	}
	receivePrice, err := oracle.Price(ctx, params.ReceiveToken)
	if err != nil {
		return nil
	}

	payUSD := payAmount.Mul(payPrice)
	if payUSD.IsZero() {
		return nil
	}
	receiveUSD := receive.Mul(receivePrice)

	impact := payUSD.Sub(receiveUSD).Div(payUSD).Mul(decimal.NewFromInt(100))
	return &impact
}

// DurationLabel renders a provider time estimate for display
func DurationLabel(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	if seconds < 60 {
		return fmt.Sprintf("%d sec", seconds)
	}
	minutes := (seconds + 59) / 60
	return fmt.Sprintf("~%d min", minutes)
}
