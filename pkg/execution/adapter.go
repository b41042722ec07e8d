// Package execution converts an active quote into the transaction
// request handed to the external signer/broadcaster. It builds, it
// never signs, submits, or polls.
package execution

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"swapquote/pkg/types"
)

var (
	// ErrNoActiveQuote means the adapter was invoked with nothing to
	// execute. The UI layer should prevent this; the adapter still
	// guards it.
	ErrNoActiveQuote = errors.New("no active quote to execute")
	// ErrInvalidAmount means an amount component is missing, negative,
	// or malformed
	ErrInvalidAmount = errors.New("invalid trade amount")
	// ErrInvalidAddress means an address fails the network's format check
	ErrInvalidAddress = errors.New("invalid address")
	// ErrUnsupportedPayload means the quote's payload kind has no
	// builder for the trade's network
	ErrUnsupportedPayload = errors.New("unsupported execution payload")
)

// Request is the fully-formed, unsigned execution handoff. Exactly one
// of EVM, Solana, or Deposit is set, matching the payload kind.
type Request struct {
	ID       string
	Network  types.Network
	SourceID string

	EVM     *EVMRequest
	Solana  *SolanaRequest
	Deposit *DepositRequest
}

// BuildExecution transforms the active quote into an execution request
// for the signer. Pure: no network I/O.
func BuildExecution(quote *types.Quote, params types.TradeParameters, fromAddress string) (*Request, error) {
	if quote == nil {
		return nil, ErrNoActiveQuote
	}

	payRaw, err := params.PayAmountRaw()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if payRaw.Sign() <= 0 {
		return nil, fmt.Errorf("%w: pay amount must be positive", ErrInvalidAmount)
	}
	if quote.ReceiveAmountRaw == nil || quote.ReceiveAmountRaw.Sign() < 0 {
		return nil, fmt.Errorf("%w: quote receive amount is invalid", ErrInvalidAmount)
	}

	req := &Request{
		ID:       uuid.NewString(),
		Network:  params.Network,
		SourceID: quote.SourceID,
	}

	switch quote.Payload.Kind {
	case types.PayloadEVMCall:
		req.EVM, err = buildEVMRequest(quote, params, fromAddress, payRaw)
	case types.PayloadSolanaTx:
		req.Solana, err = buildSolanaRequest(quote, fromAddress)
	case types.PayloadDeposit:
		req.Deposit, err = buildDepositRequest(quote, params, fromAddress, payRaw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPayload, quote.Payload.Kind)
	}
	if err != nil {
		return nil, err
	}

	return req, nil
}

// DepositRequest is a plain transfer to a bridge deposit address
type DepositRequest struct {
	FromAddress    string
	DepositAddress string
	DepositMemo    string
	AmountRaw      *big.Int
}

func buildDepositRequest(quote *types.Quote, params types.TradeParameters, fromAddress string, payRaw *big.Int) (*DepositRequest, error) {
	if quote.Payload.DepositAddress == "" {
		return nil, fmt.Errorf("%w: quote carries no deposit address", ErrUnsupportedPayload)
	}
	if err := validateAddress(params.Network, fromAddress); err != nil {
		return nil, err
	}

	return &DepositRequest{
		FromAddress:    fromAddress,
		DepositAddress: quote.Payload.DepositAddress,
		DepositMemo:    quote.Payload.DepositMemo,
		AmountRaw:      payRaw,
	}, nil
}
