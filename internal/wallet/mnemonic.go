package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy used for generated phrases (12 words).
const MnemonicEntropyBits = 128

// DerivationPath is the fixed path imported phrases are derived at:
// m/44'/60'/0'/0/0.
var DerivationPath = accounts.DefaultBaseDerivationPath

// GenerateMnemonic returns a new English BIP-39 phrase.
func GenerateMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// NormalizeMnemonic collapses whitespace and lowercases the phrase.
func NormalizeMnemonic(phrase string) string {
	return strings.ToLower(strings.Join(strings.Fields(phrase), " "))
}

// DeriveKey derives the secp256k1 key for phrase at path. The BIP-39
// passphrase is empty.
func DeriveKey(phrase string, path accounts.DerivationPath) (*ecdsa.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(NormalizeMnemonic(phrase), "")
	if err != nil {
		return nil, fmt.Errorf("mnemonic to seed: %w", err)
	}

	// Mainnet params only affect serialization, not derivation.
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}

	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", path, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("extract private key: %w", err)
	}
	raw := priv.Serialize()
	defer clear(raw)

	return crypto.ToECDSA(raw)
}
