package types

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// NetworkKind identifies the transaction model of a network
type NetworkKind string

const (
	// NetworkEVM represents EVM-compatible networks (Ethereum, Base, etc.)
	NetworkEVM NetworkKind = "evm"
	// NetworkSolana represents the Solana network
	NetworkSolana NetworkKind = "solana"
)

// Network describes the chain a trade runs on
type Network struct {
	ID      string      `json:"id"`       // e.g. "ethereum", "solana"
	Kind    NetworkKind `json:"kind"`     // transaction model
	ChainID int64       `json:"chain_id"` // EVM chain id, 0 for non-EVM
}

// Token describes one side of a trade pair
type Token struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`            // contract/mint address, empty for native
	AssetID  string `json:"asset_id,omitempty"` // bridge-aggregator asset identifier
	Decimals int    `json:"decimals"`
}

// TradeParameters is the user-owned input to the quote engine. Each
// mutation is a candidate for a new fetch round.
type TradeParameters struct {
	Network      Network `json:"network"`
	PayToken     Token   `json:"pay_token"`
	ReceiveToken Token   `json:"receive_token"`
	PayAmount    string  `json:"pay_amount"` // decimal string, e.g. "1.5"
	FromAddress  string  `json:"from_address,omitempty"`
}

// Active reports whether the parameters describe a fetchable trade:
// a complete pair on a known network with a positive amount.
func (p TradeParameters) Active() bool {
	if p.Network.ID == "" || p.PayToken.Symbol == "" || p.ReceiveToken.Symbol == "" {
		return false
	}
	amt, err := decimal.NewFromString(p.PayAmount)
	if err != nil {
		return false
	}
	return amt.IsPositive()
}

// PayAmountRaw converts the decimal amount string into the pay token's
// smallest unit.
func (p TradeParameters) PayAmountRaw() (*big.Int, error) {
	amt, err := decimal.NewFromString(p.PayAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid pay amount %q: %w", p.PayAmount, err)
	}
	if amt.IsNegative() {
		return nil, fmt.Errorf("pay amount must not be negative: %s", p.PayAmount)
	}
	return amt.Shift(int32(p.PayToken.Decimals)).BigInt(), nil
}

// SourceKind distinguishes same-chain DEXes from bridge aggregators
type SourceKind string

const (
	// SourceDEX is a same-chain liquidity venue
	SourceDEX SourceKind = "dex"
	// SourceBridge is a cross-chain bridge aggregator
	SourceBridge SourceKind = "bridge"
)

// Source describes one liquidity or bridge provider. Immutable once
// fetched from the registry.
type Source struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"name"`
	LogoURL     string     `json:"logo,omitempty"`
	Kind        SourceKind `json:"kind,omitempty"`
}
