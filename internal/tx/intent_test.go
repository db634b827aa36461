package tx

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	nonce       uint64
	tip         *big.Int
	gasPrice    *big.Int
	gas         uint64
	estimateErr error
	nonceErr    error
	estimated   []ethereum.CallMsg
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nonce:    3,
		tip:      big.NewInt(1_000_000_000),
		gasPrice: big.NewInt(20_000_000_000),
		gas:      21000,
	}
}

func (f *fakeBackend) GetNonce(context.Context, string, common.Address) (uint64, error) {
	return f.nonce, f.nonceErr
}

func (f *fakeBackend) SuggestGasPrice(context.Context, string) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context, string) (*big.Int, error) {
	return f.tip, nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, _ string, msg ethereum.CallMsg) (uint64, error) {
	f.estimated = append(f.estimated, msg)
	return f.gas, f.estimateErr
}

func baseIntent() Intent {
	return Intent{
		Chain:    "sepolia",
		ChainID:  big.NewInt(11155111),
		From:     common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		To:       common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
		ValueWei: big.NewInt(1000),
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(baseIntent()))

	cases := map[string]func(*Intent){
		"no chain":          func(i *Intent) { i.Chain = "" },
		"no chain id":       func(i *Intent) { i.ChainID = nil },
		"no value":          func(i *Intent) { i.ValueWei = nil },
		"negative value":    func(i *Intent) { i.ValueWei = big.NewInt(-1) },
		"zero gas price":    func(i *Intent) { i.GasPrice = big.NewInt(0) },
		"negative chain id": func(i *Intent) { i.ChainID = big.NewInt(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			intent := baseIntent()
			mutate(&intent)
			assert.Error(t, Validate(intent))
		})
	}
}

func TestBuildUnsignedTx(t *testing.T) {
	t.Run("dynamic fee by default", func(t *testing.T) {
		b := newFakeBackend()
		tx, fees, err := BuildUnsignedTx(context.Background(), b, baseIntent())
		require.NoError(t, err)

		assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
		assert.Equal(t, uint64(3), tx.Nonce())
		assert.Equal(t, uint64(21000), tx.Gas())
		assert.Equal(t, big.NewInt(11155111), tx.ChainId())
		assert.Equal(t, b.tip, tx.GasTipCap())
		assert.Equal(t, b.gasPrice, tx.GasFeeCap())
		assert.True(t, fees.EstimatedGas)

		want := new(big.Int).Mul(b.gasPrice, big.NewInt(21000))
		want.Add(want, big.NewInt(1000))
		assert.Equal(t, want, fees.EstimatedCostWei)
	})

	t.Run("legacy when gas price is set", func(t *testing.T) {
		b := newFakeBackend()
		intent := baseIntent()
		intent.GasPrice = big.NewInt(5_000_000_000)

		tx, fees, err := BuildUnsignedTx(context.Background(), b, intent)
		require.NoError(t, err)

		assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
		assert.Equal(t, intent.GasPrice, tx.GasPrice())
		assert.Equal(t, intent.GasPrice, fees.GasPrice)
		assert.Nil(t, fees.MaxFeePerGas)
		require.Len(t, b.estimated, 1)
		assert.Equal(t, intent.GasPrice, b.estimated[0].GasPrice)
	})

	t.Run("fee cap never below tip", func(t *testing.T) {
		b := newFakeBackend()
		b.gasPrice = big.NewInt(1)

		tx, _, err := BuildUnsignedTx(context.Background(), b, baseIntent())
		require.NoError(t, err)
		assert.Equal(t, b.tip, tx.GasFeeCap())
	})

	t.Run("overrides skip network", func(t *testing.T) {
		b := newFakeBackend()
		b.nonceErr = errors.New("should not be called")
		nonce, gas := uint64(42), uint64(50000)
		intent := baseIntent()
		intent.Nonce = &nonce
		intent.GasLimit = &gas

		tx, _, err := BuildUnsignedTx(context.Background(), b, intent)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), tx.Nonce())
		assert.Equal(t, uint64(50000), tx.Gas())
		assert.Empty(t, b.estimated)
	})

	t.Run("falls back when estimation fails", func(t *testing.T) {
		b := newFakeBackend()
		b.estimateErr = errors.New("execution reverted")
		intent := baseIntent()
		intent.FallbackGasLimit = 100000

		tx, fees, err := BuildUnsignedTx(context.Background(), b, intent)
		require.NoError(t, err)
		assert.Equal(t, uint64(100000), tx.Gas())
		assert.False(t, fees.EstimatedGas)
	})

	t.Run("estimation failure without fallback", func(t *testing.T) {
		b := newFakeBackend()
		b.estimateErr = errors.New("execution reverted")

		_, _, err := BuildUnsignedTx(context.Background(), b, baseIntent())
		assert.ErrorIs(t, err, b.estimateErr)
	})

	t.Run("nonce failure", func(t *testing.T) {
		b := newFakeBackend()
		b.nonceErr = errors.New("rpc down")

		_, _, err := BuildUnsignedTx(context.Background(), b, baseIntent())
		assert.ErrorIs(t, err, b.nonceErr)
	})
}
