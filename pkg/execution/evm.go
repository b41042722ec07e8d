package execution

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"swapquote/pkg/types"
)

// defaultEVMGasLimit is used when the provider supplied no estimate.
// The signer refines gas before submission.
const defaultEVMGasLimit = uint64(300000)

// EVMRequest is an unsigned contract call. Nonce and fee fields are
// left for the signer to fill.
type EVMRequest struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
	ChainID  *big.Int
	// Tx is the unsigned transaction skeleton handed to the signer
	Tx *ethtypes.Transaction
}

func buildEVMRequest(quote *types.Quote, params types.TradeParameters, fromAddress string, payRaw *big.Int) (*EVMRequest, error) {
	if !common.IsHexAddress(fromAddress) {
		return nil, fmt.Errorf("%w: from address %q is not a valid EVM address", ErrInvalidAddress, fromAddress)
	}
	if !common.IsHexAddress(quote.Payload.To) {
		return nil, fmt.Errorf("%w: call target %q is not a valid EVM address", ErrInvalidAddress, quote.Payload.To)
	}

	to := common.HexToAddress(quote.Payload.To)

	// Value defaults to the pay amount for native-token trades; token
	// trades move funds through calldata instead
	value := quote.Payload.Value
	if value == nil {
		if params.PayToken.Address == "" {
			value = payRaw
		} else {
			value = big.NewInt(0)
		}
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: call value must not be negative", ErrInvalidAmount)
	}

	gasLimit := quote.Payload.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultEVMGasLimit
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: big.NewInt(0),
		Data:     quote.Payload.Data,
	})

	return &EVMRequest{
		From:     common.HexToAddress(fromAddress),
		To:       to,
		Value:    value,
		Data:     quote.Payload.Data,
		GasLimit: gasLimit,
		ChainID:  big.NewInt(params.Network.ChainID),
		Tx:       tx,
	}, nil
}

// validateAddress checks an address against the network's format
func validateAddress(network types.Network, address string) error {
	switch network.Kind {
	case types.NetworkEVM:
		if !common.IsHexAddress(address) {
			return fmt.Errorf("%w: %q is not a valid EVM address", ErrInvalidAddress, address)
		}
	case types.NetworkSolana:
		if err := validateSolanaAddress(address); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown network kind %q", ErrInvalidAddress, network.Kind)
	}
	return nil
}
