package wallet

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrSignerLocked is returned by a signer after Lock.
var ErrSignerLocked = errors.New("signer is locked")

// Signer signs transactions for a single address.
type Signer interface {
	Address() common.Address
	SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// KeystoreSigner holds a decrypted key for the duration of one send.
type KeystoreSigner struct {
	// mu keeps signing from racing with Lock, which zeros the key.
	mu      sync.RWMutex
	address common.Address
	key     *ecdsa.PrivateKey // nil when locked
}

func newKeystoreSigner(address common.Address, key *ecdsa.PrivateKey) *KeystoreSigner {
	return &KeystoreSigner{address: address, key: key}
}

// Address returns the address of the signer
func (ks *KeystoreSigner) Address() common.Address {
	return ks.address
}

// SignTransaction signs tx with the latest signer for chainID.
func (ks *KeystoreSigner) SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.key == nil {
		return nil, ErrSignerLocked
	}

	signer := types.LatestSignerForChainID(chainID)
	return types.SignTx(tx, signer, ks.key)
}

// Lock zeros the key material. Safe to call multiple times.
func (ks *KeystoreSigner) Lock() {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.key != nil {
		ks.key.D.SetInt64(0)
		ks.key = nil
	}
}
