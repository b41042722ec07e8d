package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"

	"swapquote/pkg/types"
)

// OneClickProvider serves bridge-aggregator quotes through the 1Click
// API. Quotes are requested dry: no deposit address is reserved until
// the user commits to execution.
type OneClickProvider struct {
	sourceID    string
	client      *oneclick.APIClient
	jwtToken    string
	slippageBps int
}

// NewOneClickProvider creates a provider for a bridge source backed by
// the 1Click API
func NewOneClickProvider(sourceID, jwtToken string, slippageBps int) *OneClickProvider {
	config := oneclick.NewConfiguration()
	client := oneclick.NewAPIClient(config)

	return &OneClickProvider{
		sourceID:    sourceID,
		client:      client,
		jwtToken:    jwtToken,
		slippageBps: slippageBps,
	}
}

var _ QuoteCommitter = (*OneClickProvider)(nil)

// Name returns the source id this provider serves
func (p *OneClickProvider) Name() string {
	return p.sourceID
}

// Fetch requests a dry quote for ranking and display. Dry quotes
// reserve no deposit address; Commit must be called before execution.
func (p *OneClickProvider) Fetch(ctx context.Context, params types.TradeParameters) (*types.Quote, error) {
	return p.fetch(ctx, params, true)
}

// Commit re-requests the quote in committed form, reserving a live
// deposit address. Called only when the user proceeds to execution.
func (p *OneClickProvider) Commit(ctx context.Context, params types.TradeParameters) (*types.Quote, error) {
	quote, err := p.fetch(ctx, params, false)
	if err != nil {
		return nil, err
	}
	if quote.Payload.DepositAddress == "" {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: "committed quote carries no deposit address"}
	}
	return quote, nil
}

// fetch requests a quote. Both tokens must carry a bridge asset id.
func (p *OneClickProvider) fetch(ctx context.Context, params types.TradeParameters, dry bool) (*types.Quote, error) {
	if params.PayToken.AssetID == "" || params.ReceiveToken.AssetID == "" {
		return nil, &QuoteError{
			SourceID: p.sourceID,
			Reason: fmt.Sprintf("no bridge asset id for pair %s/%s",
				params.PayToken.Symbol, params.ReceiveToken.Symbol),
		}
	}
	if params.FromAddress == "" {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: "recipient address is required for bridge quotes"}
	}

	payRaw, err := params.PayAmountRaw()
	if err != nil {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: err.Error()}
	}

	// Authenticated context; cancellation flows through ctx
	ctx = context.WithValue(ctx, oneclick.ContextAccessToken, p.jwtToken)

	deadline := time.Now().Add(1 * time.Hour)

	quoteReq := oneclick.NewQuoteRequest(
		dry,                         // dry quotes reserve no deposit address
		"EXACT_INPUT",               // swapType
		float32(p.slippageBps),      // slippageTolerance in bps
		params.PayToken.AssetID,     // originAsset
		"ORIGIN_CHAIN",              // depositType
		params.ReceiveToken.AssetID, // destinationAsset
		payRaw.String(),             // amount in smallest unit
		params.FromAddress,          // refundTo
		"ORIGIN_CHAIN",              // refundType
		params.FromAddress,          // recipient
		"DESTINATION_CHAIN",         // recipientType
		deadline,                    // deadline
	)

	resp, httpResp, err := p.client.OneClickAPI.GetQuote(ctx).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, p.wrapAPIError(httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &QuoteError{SourceID: p.sourceID, StatusCode: httpResp.StatusCode, Reason: "unexpected status"}
	}
	if resp == nil {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: "empty quote response"}
	}

	quoteDetails := resp.GetQuote()

	receiveRaw, ok := new(big.Int).SetString(quoteDetails.GetAmountOut(), 10)
	if !ok {
		return nil, &QuoteError{
			SourceID: p.sourceID,
			Reason:   fmt.Sprintf("invalid amount out %q", quoteDetails.GetAmountOut()),
		}
	}

	quote := &types.Quote{
		SourceID:         p.sourceID,
		ReceiveAmountRaw: receiveRaw,
		DurationSeconds:  int(quoteDetails.GetTimeEstimate()),
		Payload: types.ExecutionPayload{
			Kind:           types.PayloadDeposit,
			DepositAddress: quoteDetails.GetDepositAddress(),
		},
	}
	if quoteDetails.HasDepositMemo() {
		quote.Payload.DepositMemo = quoteDetails.GetDepositMemo()
	}

	return quote, nil
}

// wrapAPIError extracts the actual error message from the API response
// body when one is available
func (p *OneClickProvider) wrapAPIError(httpResp *http.Response, err error) error {
	if httpResp == nil {
		return &QuoteError{SourceID: p.sourceID, Reason: err.Error()}
	}
	defer httpResp.Body.Close()

	bodyBytes, readErr := io.ReadAll(io.LimitReader(httpResp.Body, 2048))
	if readErr == nil && len(bodyBytes) > 0 {
		var errorResp map[string]interface{}
		if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
			if message, ok := errorResp["message"].(string); ok {
				return &QuoteError{SourceID: p.sourceID, StatusCode: httpResp.StatusCode, Reason: message}
			}
		}
		return &QuoteError{SourceID: p.sourceID, StatusCode: httpResp.StatusCode, Reason: string(bodyBytes)}
	}

	return &QuoteError{SourceID: p.sourceID, StatusCode: httpResp.StatusCode, Reason: err.Error()}
}
