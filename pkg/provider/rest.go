package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"swapquote/pkg/types"
)

// RESTProvider fetches quotes from a per-source JSON endpoint. One
// instance serves one registered source.
type RESTProvider struct {
	sourceID string
	baseURL  string
	client   *http.Client
}

// NewRESTProvider creates a provider for a single source
func NewRESTProvider(baseURL, sourceID string, client *http.Client) *RESTProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RESTProvider{
		sourceID: sourceID,
		baseURL:  baseURL,
		client:   client,
	}
}

// Name returns the source id this provider serves
func (p *RESTProvider) Name() string {
	return p.sourceID
}

type quoteRequest struct {
	Source       string `json:"source"`
	Network      string `json:"network"`
	PayToken     string `json:"pay_token"`
	ReceiveToken string `json:"receive_token"`
	PayAmountRaw string `json:"pay_amount_raw"`
	FromAddress  string `json:"from_address,omitempty"`
}

type quoteResponse struct {
	ReceiveAmountRaw string                 `json:"receive_amount_raw"`
	GasUSD           string                 `json:"gas_usd,omitempty"`
	DurationSec      int                    `json:"duration_sec,omitempty"`
	Payload          types.ExecutionPayload `json:"payload"`
}

// Fetch requests a quote from the source's endpoint. Cancellation is
// propagated through the request context.
func (p *RESTProvider) Fetch(ctx context.Context, params types.TradeParameters) (*types.Quote, error) {
	payRaw, err := params.PayAmountRaw()
	if err != nil {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: err.Error()}
	}

	reqBody := quoteRequest{
		Source:       p.sourceID,
		Network:      params.Network.ID,
		PayToken:     params.PayToken.Address,
		ReceiveToken: params.ReceiveToken.Address,
		PayAmountRaw: payRaw.String(),
		FromAddress:  params.FromAddress,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: fmt.Sprintf("encode request: %v", err)}
	}

	url := fmt.Sprintf("%s/v1/quote", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// Surface cancellation as-is so the fetcher can tell an
		// aborted epoch from a provider failure
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &QuoteError{SourceID: p.sourceID, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &QuoteError{
			SourceID:   p.sourceID,
			StatusCode: resp.StatusCode,
			Reason:     extractErrorMessage(resp.Body),
		}
	}

	var qr quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: fmt.Sprintf("malformed response: %v", err)}
	}

	receiveRaw, ok := new(big.Int).SetString(qr.ReceiveAmountRaw, 10)
	if !ok || receiveRaw.Sign() < 0 {
		return nil, &QuoteError{SourceID: p.sourceID, Reason: fmt.Sprintf("invalid receive amount %q", qr.ReceiveAmountRaw)}
	}

	quote := &types.Quote{
		SourceID:         p.sourceID,
		ReceiveAmountRaw: receiveRaw,
		DurationSeconds:  qr.DurationSec,
		Payload:          qr.Payload,
	}

	if qr.GasUSD != "" {
		gas, err := decimal.NewFromString(qr.GasUSD)
		if err != nil {
			return nil, &QuoteError{SourceID: p.sourceID, Reason: fmt.Sprintf("invalid gas estimate %q", qr.GasUSD)}
		}
		quote.GasEstimateUSD = &gas
	}

	return quote, nil
}

// extractErrorMessage pulls a message out of a JSON error body, falling
// back to the raw body when it cannot be parsed
func extractErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 2048))
	if err != nil || len(raw) == 0 {
		return "no error detail"
	}

	var errorResp map[string]interface{}
	if jsonErr := json.Unmarshal(raw, &errorResp); jsonErr == nil {
		if message, ok := errorResp["message"].(string); ok {
			return message
		}
		if errs, ok := errorResp["errors"]; ok {
			return fmt.Sprintf("%v", errs)
		}
	}

	return string(raw)
}
