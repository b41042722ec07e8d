package types

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// PayloadKind identifies how a quote is executed
type PayloadKind string

const (
	// PayloadEVMCall executes as a contract call on an EVM network
	PayloadEVMCall PayloadKind = "evm_call"
	// PayloadSolanaTx executes as a pre-built Solana transaction
	PayloadSolanaTx PayloadKind = "solana_tx"
	// PayloadDeposit executes as a transfer to a bridge deposit address
	PayloadDeposit PayloadKind = "deposit"
)

// ExecutionPayload is the provider-supplied material needed to turn a
// quote into a transaction. Only the fields for its Kind are set.
type ExecutionPayload struct {
	Kind PayloadKind `json:"kind"`

	// EVM call
	To       string   `json:"to,omitempty"`
	Data     []byte   `json:"data,omitempty"`
	Value    *big.Int `json:"value,omitempty"`
	GasLimit uint64   `json:"gas_limit,omitempty"`

	// Solana
	TransactionBase64 string `json:"transaction_base64,omitempty"`

	// Bridge deposit
	DepositAddress string `json:"deposit_address,omitempty"`
	DepositMemo    string `json:"deposit_memo,omitempty"`
}

// Quote is one provider's concrete, priced execution plan for a trade.
// Immutable once produced.
type Quote struct {
	SourceID         string
	ReceiveAmountRaw *big.Int // smallest unit of the receive token
	GasEstimateUSD   *decimal.Decimal
	DurationSeconds  int
	Payload          ExecutionPayload
}

// ReceiveAmount returns the quoted output scaled to the receive token's
// display decimals.
func (q *Quote) ReceiveAmount(receiveToken Token) decimal.Decimal {
	if q.ReceiveAmountRaw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(q.ReceiveAmountRaw, -int32(receiveToken.Decimals))
}

// ResultState tracks the lifecycle of one source's fetch
type ResultState string

const (
	// ResultPending means the source's call has not settled yet
	ResultPending ResultState = "pending"
	// ResultResolved means the source returned a usable quote
	ResultResolved ResultState = "resolved"
	// ResultFailed means the source's call failed; the failure is
	// recorded here and never propagated past the fetcher
	ResultFailed ResultState = "failed"
)

// QuoteResult is the per-source outcome for one fetch round. Exactly one
// exists per registered source per round; the whole set is replaced when
// a new round begins.
type QuoteResult struct {
	SourceID    string
	Source      Source
	State       ResultState
	Quote       *Quote
	ErrorReason string
}
