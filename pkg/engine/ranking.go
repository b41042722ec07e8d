package engine

import "swapquote/pkg/types"

// BestSource selects the resolved quote with the greatest raw receive
// amount. Results must be in registry order: on equal amounts the
// earlier-registered source wins, so the choice is reproducible
// regardless of arrival order. Returns "" when nothing has resolved.
//
// A zero-output quote is still a valid, if poor, route and ranks
// normally; warning the user about it is the caller's job.
func BestSource(results []*types.QuoteResult) string {
	best := ""
	var bestQuote *types.Quote

	for _, r := range results {
		if r.State != types.ResultResolved || r.Quote == nil || r.Quote.ReceiveAmountRaw == nil {
			continue
		}
		if bestQuote == nil || r.Quote.ReceiveAmountRaw.Cmp(bestQuote.ReceiveAmountRaw) > 0 {
			best = r.SourceID
			bestQuote = r.Quote
		}
	}

	return best
}

// resolvedIn reports whether sourceID has a resolved quote in results
func resolvedIn(results []*types.QuoteResult, sourceID string) bool {
	for _, r := range results {
		if r.SourceID == sourceID {
			return r.State == types.ResultResolved && r.Quote != nil
		}
	}
	return false
}
