// Package provider defines the quote provider interface and its
// implementations. The fetcher depends only on the interface; each
// liquidity venue gets one implementing variant.
package provider

import (
	"context"
	"fmt"

	"swapquote/pkg/types"
)

// QuoteProvider issues a single provider call for a trade. Fetch must
// honor ctx cancellation and return a typed error distinguishable from
// a successful zero-output quote.
type QuoteProvider interface {
	// Name identifies the provider for logging and error reporting
	Name() string

	// Fetch requests a quote for the trade parameters
	Fetch(ctx context.Context, params types.TradeParameters) (*types.Quote, error)
}

// QuoteCommitter is implemented by providers whose ranked quotes are
// dry and must be re-requested in committed form before execution, such
// as bridge aggregators that reserve a deposit address on commit.
type QuoteCommitter interface {
	Commit(ctx context.Context, params types.TradeParameters) (*types.Quote, error)
}

// CommitQuote resolves the quote to execute. Providers requiring a
// committed re-request are re-queried; all others pass the ranked quote
// through unchanged.
func CommitQuote(ctx context.Context, prov QuoteProvider, quote *types.Quote, params types.TradeParameters) (*types.Quote, error) {
	committer, ok := prov.(QuoteCommitter)
	if !ok {
		return quote, nil
	}
	return committer.Commit(ctx, params)
}

// Factory resolves the provider used for a registered source
type Factory interface {
	Provider(src types.Source) (QuoteProvider, error)
}

// FactoryFunc adapts a function to the Factory interface
type FactoryFunc func(src types.Source) (QuoteProvider, error)

// Provider implements Factory
func (f FactoryFunc) Provider(src types.Source) (QuoteProvider, error) {
	return f(src)
}

// QuoteError is a single source's failure. It is absorbed by the
// fetcher and recorded on that source's result; it never fails the
// batch.
type QuoteError struct {
	SourceID   string
	StatusCode int    // HTTP status, 0 when not applicable
	Reason     string // human-readable cause
}

// Error implements the error interface
func (e *QuoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("quote from %s failed (status %d): %s", e.SourceID, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("quote from %s failed: %s", e.SourceID, e.Reason)
}
