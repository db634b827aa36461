package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Intent captures a state-changing transaction the user wants to perform.
// Intents are never persisted or logged.
type Intent struct {
	Chain    string         // chain name (e.g., "ethereum")
	ChainID  *big.Int       // replay protection id
	From     common.Address // signer address
	To       common.Address // recipient or token contract
	ValueWei *big.Int       // native value
	Data     []byte         // calldata (empty for native send)

	Nonce    *uint64  // optional override
	GasLimit *uint64  // optional override
	GasPrice *big.Int // when set, a legacy transaction is built at this price

	// FallbackGasLimit is used when gas estimation fails. Zero makes
	// estimation failures fatal.
	FallbackGasLimit uint64
}

// Backend is the subset of the chain client the builder needs.
type Backend interface {
	GetNonce(ctx context.Context, chainName string, address common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context, chainName string) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context, chainName string) (*big.Int, error)
	EstimateGas(ctx context.Context, chainName string, msg ethereum.CallMsg) (uint64, error)
}

// SuggestedFees carries gas figures so the caller can render them.
type SuggestedFees struct {
	GasLimit         uint64
	GasPrice         *big.Int // legacy only
	MaxFeePerGas     *big.Int // EIP-1559 only
	MaxPriorityFee   *big.Int // EIP-1559 only
	EstimatedGas     bool     // false when the fallback limit was used
	EstimatedCostWei *big.Int // worst case: fee cap * gas + value
}

// Validate checks an intent before any network call.
func Validate(intent Intent) error {
	if intent.Chain == "" {
		return errors.New("chain missing")
	}
	if intent.ChainID == nil || intent.ChainID.Sign() <= 0 {
		return errors.New("chain id missing")
	}
	if intent.ValueWei == nil {
		return errors.New("value missing")
	}
	if intent.ValueWei.Sign() < 0 {
		return errors.New("value is negative")
	}
	if intent.GasPrice != nil && intent.GasPrice.Sign() <= 0 {
		return errors.New("gas price must be positive")
	}
	return nil
}

// BuildUnsignedTx resolves nonce, fees and gas limit and returns an
// unsigned transaction: legacy when intent.GasPrice is set, EIP-1559
// otherwise.
func BuildUnsignedTx(ctx context.Context, b Backend, intent Intent) (*types.Transaction, SuggestedFees, error) {
	if err := Validate(intent); err != nil {
		return nil, SuggestedFees{}, err
	}

	// Nonce
	var nonce uint64
	if intent.Nonce != nil {
		nonce = *intent.Nonce
	} else {
		n, err := b.GetNonce(ctx, intent.Chain, intent.From)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("get nonce: %w", err)
		}
		nonce = n
	}

	// Fees
	fees := SuggestedFees{}
	call := ethereum.CallMsg{
		From:  intent.From,
		To:    &intent.To,
		Value: intent.ValueWei,
		Data:  intent.Data,
	}
	if intent.GasPrice != nil {
		fees.GasPrice = new(big.Int).Set(intent.GasPrice)
		call.GasPrice = fees.GasPrice
	} else {
		tip, err := b.SuggestGasTipCap(ctx, intent.Chain)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("suggest tip: %w", err)
		}
		feeCap, err := b.SuggestGasPrice(ctx, intent.Chain)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("suggest gas price: %w", err)
		}
		// Fee cap can never sit below the tip.
		if feeCap.Cmp(tip) < 0 {
			feeCap = new(big.Int).Set(tip)
		}
		fees.MaxPriorityFee = tip
		fees.MaxFeePerGas = feeCap
		call.GasFeeCap = feeCap
		call.GasTipCap = tip
	}

	// Gas limit
	switch {
	case intent.GasLimit != nil:
		fees.GasLimit = *intent.GasLimit
	default:
		gl, err := b.EstimateGas(ctx, intent.Chain, call)
		switch {
		case err == nil:
			fees.GasLimit = gl
			fees.EstimatedGas = true
		case intent.FallbackGasLimit > 0:
			fees.GasLimit = intent.FallbackGasLimit
		default:
			return nil, SuggestedFees{}, fmt.Errorf("estimate gas: %w", err)
		}
	}

	var tx *types.Transaction
	priceCap := fees.MaxFeePerGas
	if intent.GasPrice != nil {
		priceCap = fees.GasPrice
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: fees.GasPrice,
			Gas:      fees.GasLimit,
			To:       &intent.To,
			Value:    intent.ValueWei,
			Data:     intent.Data,
		})
	} else {
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   intent.ChainID,
			Nonce:     nonce,
			GasTipCap: fees.MaxPriorityFee,
			GasFeeCap: fees.MaxFeePerGas,
			Gas:       fees.GasLimit,
			To:        &intent.To,
			Value:     intent.ValueWei,
			Data:      intent.Data,
		})
	}

	total := new(big.Int).Mul(priceCap, new(big.Int).SetUint64(fees.GasLimit))
	fees.EstimatedCostWei = total.Add(total, intent.ValueWei)

	return tx, fees, nil
}
