package execution

import (
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"swapquote/pkg/types"
)

// SolanaRequest wraps a provider-built transaction for the signer to
// sign and submit
type SolanaRequest struct {
	From solana.PublicKey
	// TransactionBase64 is the serialized unsigned transaction exactly
	// as the provider produced it
	TransactionBase64 string
}

func buildSolanaRequest(quote *types.Quote, fromAddress string) (*SolanaRequest, error) {
	from, err := solana.PublicKeyFromBase58(fromAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid Solana address: %v", ErrInvalidAddress, fromAddress, err)
	}

	raw := quote.Payload.TransactionBase64
	if raw == "" {
		return nil, fmt.Errorf("%w: quote carries no Solana transaction", ErrUnsupportedPayload)
	}
	if _, err := base64.StdEncoding.DecodeString(raw); err != nil {
		return nil, fmt.Errorf("%w: transaction payload is not valid base64", ErrUnsupportedPayload)
	}

	return &SolanaRequest{
		From:              from,
		TransactionBase64: raw,
	}, nil
}

func validateSolanaAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("%w: %q is not a valid Solana address: %v", ErrInvalidAddress, address, err)
	}
	return nil
}
