package execution

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapquote/pkg/types"
)

const (
	evmFrom   = "0x1111111111111111111111111111111111111111"
	evmRouter = "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"
	// System program id: a well-formed base58 public key
	solanaFrom = "11111111111111111111111111111111"
)

func evmParams(payTokenAddress string) types.TradeParameters {
	return types.TradeParameters{
		Network:      types.Network{ID: "ethereum", Kind: types.NetworkEVM, ChainID: 1},
		PayToken:     types.Token{Symbol: "ETH", Address: payTokenAddress, Decimals: 18},
		ReceiveToken: types.Token{Symbol: "USDC", Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", Decimals: 6},
		PayAmount:    "1.5",
	}
}

func evmQuote() *types.Quote {
	return &types.Quote{
		SourceID:         "uniswap",
		ReceiveAmountRaw: big.NewInt(4200_000000),
		Payload: types.ExecutionPayload{
			Kind: types.PayloadEVMCall,
			To:   evmRouter,
			Data: []byte{0x38, 0xed, 0x17, 0x39},
		},
	}
}

func TestBuildExecutionNilQuote(t *testing.T) {
	_, err := BuildExecution(nil, evmParams(""), evmFrom)
	assert.ErrorIs(t, err, ErrNoActiveQuote)
}

func TestBuildExecutionRejectsBadAmounts(t *testing.T) {
	params := evmParams("")
	params.PayAmount = "not-a-number"
	_, err := BuildExecution(evmQuote(), params, evmFrom)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	params.PayAmount = "0"
	_, err = BuildExecution(evmQuote(), params, evmFrom)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	quote := evmQuote()
	quote.ReceiveAmountRaw = nil
	_, err = BuildExecution(quote, evmParams(""), evmFrom)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestBuildExecutionEVMNativeValueDefaultsToPayAmount(t *testing.T) {
	// Native pay token: the call carries the pay amount as value
	req, err := BuildExecution(evmQuote(), evmParams(""), evmFrom)
	require.NoError(t, err)

	require.NotNil(t, req.EVM)
	assert.Nil(t, req.Solana)
	assert.Nil(t, req.Deposit)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "uniswap", req.SourceID)

	wantValue, _ := new(big.Int).SetString("1500000000000000000", 10) // 1.5 ETH in wei
	assert.Equal(t, 0, req.EVM.Value.Cmp(wantValue))
	assert.Equal(t, defaultEVMGasLimit, req.EVM.GasLimit)
	assert.Equal(t, int64(1), req.EVM.ChainID.Int64())
	require.NotNil(t, req.EVM.Tx)
	assert.Equal(t, 0, req.EVM.Tx.Value().Cmp(wantValue))
}

func TestBuildExecutionEVMTokenValueIsZero(t *testing.T) {
	// ERC-20 pay token: funds move through calldata, value stays zero
	params := evmParams("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	req, err := BuildExecution(evmQuote(), params, evmFrom)
	require.NoError(t, err)

	assert.Equal(t, int64(0), req.EVM.Value.Int64())
}

func TestBuildExecutionEVMHonorsProviderGasLimit(t *testing.T) {
	quote := evmQuote()
	quote.Payload.GasLimit = 180000

	req, err := BuildExecution(quote, evmParams(""), evmFrom)
	require.NoError(t, err)

	assert.Equal(t, uint64(180000), req.EVM.GasLimit)
	assert.Equal(t, uint64(180000), req.EVM.Tx.Gas())
}

func TestBuildExecutionEVMRejectsBadAddresses(t *testing.T) {
	_, err := BuildExecution(evmQuote(), evmParams(""), "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	quote := evmQuote()
	quote.Payload.To = "0xzz"
	_, err = BuildExecution(quote, evmParams(""), evmFrom)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func solanaParams() types.TradeParameters {
	return types.TradeParameters{
		Network:      types.Network{ID: "solana", Kind: types.NetworkSolana},
		PayToken:     types.Token{Symbol: "SOL", Decimals: 9},
		ReceiveToken: types.Token{Symbol: "USDC", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
		PayAmount:    "2",
	}
}

func TestBuildExecutionSolana(t *testing.T) {
	quote := &types.Quote{
		SourceID:         "jupiter",
		ReceiveAmountRaw: big.NewInt(250_000000),
		Payload: types.ExecutionPayload{
			Kind:              types.PayloadSolanaTx,
			TransactionBase64: "AQIDBA==",
		},
	}

	req, err := BuildExecution(quote, solanaParams(), solanaFrom)
	require.NoError(t, err)

	require.NotNil(t, req.Solana)
	assert.Nil(t, req.EVM)
	assert.Equal(t, solanaFrom, req.Solana.From.String())
	assert.Equal(t, "AQIDBA==", req.Solana.TransactionBase64)
}

func TestBuildExecutionSolanaRejectsBadPayload(t *testing.T) {
	quote := &types.Quote{
		SourceID:         "jupiter",
		ReceiveAmountRaw: big.NewInt(1),
		Payload:          types.ExecutionPayload{Kind: types.PayloadSolanaTx},
	}

	_, err := BuildExecution(quote, solanaParams(), solanaFrom)
	assert.ErrorIs(t, err, ErrUnsupportedPayload, "missing transaction payload")

	quote.Payload.TransactionBase64 = "%%%not base64%%%"
	_, err = BuildExecution(quote, solanaParams(), solanaFrom)
	assert.ErrorIs(t, err, ErrUnsupportedPayload)

	quote.Payload.TransactionBase64 = "AQIDBA=="
	_, err = BuildExecution(quote, solanaParams(), "bad-base58-0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestBuildExecutionDeposit(t *testing.T) {
	quote := &types.Quote{
		SourceID:         "oneclick",
		ReceiveAmountRaw: big.NewInt(990_000000),
		Payload: types.ExecutionPayload{
			Kind:           types.PayloadDeposit,
			DepositAddress: "0x2222222222222222222222222222222222222222",
			DepositMemo:    "swap-42",
		},
	}

	req, err := BuildExecution(quote, evmParams(""), evmFrom)
	require.NoError(t, err)

	require.NotNil(t, req.Deposit)
	assert.Equal(t, evmFrom, req.Deposit.FromAddress)
	assert.Equal(t, quote.Payload.DepositAddress, req.Deposit.DepositAddress)
	assert.Equal(t, "swap-42", req.Deposit.DepositMemo)

	wantAmount, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, 0, req.Deposit.AmountRaw.Cmp(wantAmount))
}

func TestBuildExecutionDepositMissingAddress(t *testing.T) {
	quote := &types.Quote{
		SourceID:         "oneclick",
		ReceiveAmountRaw: big.NewInt(1),
		Payload:          types.ExecutionPayload{Kind: types.PayloadDeposit},
	}

	_, err := BuildExecution(quote, evmParams(""), evmFrom)
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestBuildExecutionUnknownPayloadKind(t *testing.T) {
	quote := &types.Quote{
		SourceID:         "mystery",
		ReceiveAmountRaw: big.NewInt(1),
		Payload:          types.ExecutionPayload{Kind: "teleport"},
	}

	_, err := BuildExecution(quote, evmParams(""), evmFrom)
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}
