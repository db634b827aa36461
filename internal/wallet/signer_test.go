package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/ethwallet/internal/testutil"
)

func newDevSigner(t *testing.T) *KeystoreSigner {
	t.Helper()
	priv, err := crypto.HexToECDSA(testutil.DevPrivateKey)
	require.NoError(t, err)
	return newKeystoreSigner(crypto.PubkeyToAddress(priv.PublicKey), priv)
}

func TestKeystoreSigner_SignTransaction(t *testing.T) {
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	t.Run("signs dynamic fee transaction", func(t *testing.T) {
		signer := newDevSigner(t)
		chainID := big.NewInt(11155111)

		tx := types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     7,
			GasTipCap: big.NewInt(1_000_000_000),
			GasFeeCap: big.NewInt(30_000_000_000),
			Gas:       21000,
			To:        &to,
			Value:     big.NewInt(1000),
		})

		signed, err := signer.SignTransaction(tx, chainID)
		require.NoError(t, err)

		from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), from)
	})

	t.Run("signs legacy transaction", func(t *testing.T) {
		signer := newDevSigner(t)
		tx := types.NewTransaction(0, to, big.NewInt(1000), 21000, big.NewInt(1_000_000_000), nil)

		signed, err := signer.SignTransaction(tx, big.NewInt(1))
		require.NoError(t, err)

		v, r, s := signed.RawSignatureValues()
		assert.NotZero(t, v.Sign())
		assert.NotZero(t, r.Sign())
		assert.NotZero(t, s.Sign())
	})

	t.Run("returns error when locked", func(t *testing.T) {
		signer := newDevSigner(t)
		signer.Lock()
		signer.Lock()

		tx := types.NewTransaction(0, to, big.NewInt(1000), 21000, big.NewInt(1_000_000_000), nil)
		_, err := signer.SignTransaction(tx, big.NewInt(1))
		assert.ErrorIs(t, err, ErrSignerLocked)
	})
}
