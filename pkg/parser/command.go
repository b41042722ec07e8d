package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// TradeCommand is the parsed form of a natural-language trade entry,
// before token symbols are resolved against the network's token table.
type TradeCommand struct {
	Amount        string
	PaySymbol     string
	ReceiveSymbol string
}

// ParseTradeCommand parses a natural language trade command
// Examples:
//   - "swap 1 ETH to USDC"
//   - "1.5 ETH to USDC"
//   - "100 USDC to SOL"
func ParseTradeCommand(command string) (*TradeCommand, error) {
	// Normalize the command
	command = strings.TrimSpace(strings.ToUpper(command))

	// Remove the word "SWAP" if present at the beginning
	command = strings.TrimPrefix(command, "SWAP ")

	// Pattern: <amount> <pay_token> TO <receive_token>
	// Matches: "1 ETH TO USDC", "1.5 ETH TO USDC", "100.25 USDC TO SOL"
	pattern := regexp.MustCompile(`^(\d+\.?\d*)\s+([A-Z0-9]+)\s+TO\s+([A-Z0-9]+)$`)

	matches := pattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid trade command format. Expected: '<amount> <token> to <token>' (e.g., '1 ETH to USDC')")
	}

	return &TradeCommand{
		Amount:        matches[1],
		PaySymbol:     matches[2],
		ReceiveSymbol: matches[3],
	}, nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	// Convert to uppercase for consistency
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// Handle common aliases
	aliases := map[string]string{
		"WBTC": "BTC",
		"WETH": "ETH",
		"WSOL": "SOL",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
