package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountManager owns the device identity: it creates and imports keys,
// persists them through a Store and keeps the recovery phrase in a
// SecretStore.
type AccountManager struct {
	// mu serializes identity replacement and every decrypt.
	mu      sync.Mutex
	store   *Store
	secrets SecretStore
	scryptN int
	scryptP int
	log     *zap.Logger
}

// Option configures an AccountManager.
type Option func(*AccountManager)

// WithScrypt sets the scrypt cost parameters for new keystores.
func WithScrypt(n, p int) Option {
	return func(am *AccountManager) {
		am.scryptN = n
		am.scryptP = p
	}
}

// WithLightScrypt uses go-ethereum's light scrypt parameters. Meant for
// tests and low-power devices.
func WithLightScrypt() Option {
	return WithScrypt(keystore.LightScryptN, keystore.LightScryptP)
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(am *AccountManager) {
		if log != nil {
			am.log = log
		}
	}
}

// NewAccountManager creates a manager for the identity under dataDir.
func NewAccountManager(dataDir string, secrets SecretStore, opts ...Option) (*AccountManager, error) {
	if dataDir == "" {
		return nil, E(KindInvalidPath, "new account manager", errors.New("empty data directory"))
	}
	if secrets == nil {
		return nil, errors.New("secret store is required")
	}

	am := &AccountManager{
		store:   NewStore(dataDir),
		secrets: secrets,
		scryptN: keystore.StandardScryptN,
		scryptP: keystore.StandardScryptP,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(am)
	}
	return am, nil
}

// Store returns the keystore persistence layer.
func (am *AccountManager) Store() *Store {
	return am.store
}

// GenerateAccount creates a fresh 12-word identity and makes it the active
// one.
func (am *AccountManager) GenerateAccount(password string) (common.Address, error) {
	phrase, err := GenerateMnemonic(MnemonicEntropyBits)
	if err != nil {
		return common.Address{}, E(KindUnexpectedResult, "generate account", err)
	}
	return am.ImportMnemonic(phrase, password)
}

// ImportMnemonic derives the key at DerivationPath, replaces the active
// identity with it and stores the phrase.
func (am *AccountManager) ImportMnemonic(phrase, password string) (common.Address, error) {
	priv, err := DeriveKey(phrase, DerivationPath)
	if err != nil {
		return common.Address{}, E(KindInvalidMnemonics, "import mnemonic", err)
	}

	am.mu.Lock()
	defer am.mu.Unlock()

	addr, err := am.replaceIdentity(priv, password)
	if err != nil {
		return common.Address{}, err
	}

	if err := am.secrets.Set(MnemonicSecretKey, phrase); err != nil {
		// Never leave a phrase that belongs to the previous identity.
		if delErr := am.secrets.Delete(MnemonicSecretKey); delErr != nil {
			am.log.Warn("failed to clear stale mnemonic", zap.Error(delErr))
		}
		return common.Address{}, E(KindInvalidPath, "store mnemonic", err)
	}

	am.log.Info("imported mnemonic", zap.String("address", addr.Hex()))
	return addr, nil
}

// ImportPrivateKey replaces the active identity with the given hex key
// (with or without 0x) and clears any stored mnemonic.
func (am *AccountManager) ImportPrivateKey(privateKeyHex, password string) (common.Address, error) {
	privateKeyHex = strings.TrimSpace(privateKeyHex)
	privateKeyHex = strings.TrimPrefix(strings.TrimPrefix(privateKeyHex, "0x"), "0X")

	priv, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return common.Address{}, E(KindInvalidKey, "import private key", err)
	}

	am.mu.Lock()
	defer am.mu.Unlock()

	addr, err := am.replaceIdentity(priv, password)
	if err != nil {
		return common.Address{}, err
	}

	if err := am.secrets.Delete(MnemonicSecretKey); err != nil {
		return common.Address{}, E(KindInvalidPath, "clear mnemonic", err)
	}

	am.log.Info("imported private key", zap.String("address", addr.Hex()))
	return addr, nil
}

// replaceIdentity encrypts priv and saves it as the only keystore. The key
// is zeroed before return. Caller holds mu.
func (am *AccountManager) replaceIdentity(priv *ecdsa.PrivateKey, password string) (common.Address, error) {
	defer priv.D.SetInt64(0)

	id, err := uuid.NewRandom()
	if err != nil {
		return common.Address{}, E(KindUnexpectedResult, "keystore id", err)
	}

	key := &keystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}
	data, err := keystore.EncryptKey(key, password, am.scryptN, am.scryptP)
	if err != nil {
		return common.Address{}, E(KindMalformedKeystore, "encrypt keystore", err)
	}

	kf, err := ParseKeystore(data)
	if err != nil {
		return common.Address{}, err
	}
	if err := am.store.Save(kf); err != nil {
		return common.Address{}, err
	}
	return key.Address, nil
}

// decrypt unlocks the active keystore. Caller holds mu.
func (am *AccountManager) decrypt(password string) (*keystore.Key, error) {
	kf, err := am.store.Load()
	if err != nil {
		return nil, err
	}
	addr, err := kf.Address()
	if err != nil {
		return nil, err
	}

	key, err := keystore.DecryptKey(kf.JSON, password)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, fmt.Errorf("unlock keystore: %w", ErrDecrypt)
		}
		return nil, E(KindMalformedKeystore, "decrypt keystore", err)
	}
	if key.Address != addr {
		key.PrivateKey.D.SetInt64(0)
		return nil, E(KindMalformedKeystore, "decrypt keystore",
			fmt.Errorf("key address %s does not match keystore address %s", key.Address.Hex(), addr.Hex()))
	}
	return key, nil
}

// PrivateKey decrypts the keystore and returns the key as lowercase hex
// without prefix.
func (am *AccountManager) PrivateKey(password string) (string, error) {
	am.mu.Lock()
	defer am.mu.Unlock()

	key, err := am.decrypt(password)
	if err != nil {
		return "", err
	}
	defer key.PrivateKey.D.SetInt64(0)

	raw := crypto.FromECDSA(key.PrivateKey)
	defer clear(raw)
	return hex.EncodeToString(raw), nil
}

// VerifyPassword reports whether password unlocks the keystore.
func (am *AccountManager) VerifyPassword(password string) bool {
	_, err := am.PrivateKey(password)
	return err == nil
}

// Signer unlocks the keystore and returns a signer. The caller must Lock it
// when done.
func (am *AccountManager) Signer(password string) (*KeystoreSigner, error) {
	am.mu.Lock()
	defer am.mu.Unlock()

	key, err := am.decrypt(password)
	if err != nil {
		return nil, err
	}
	return newKeystoreSigner(key.Address, key.PrivateKey), nil
}

// Keystore returns the active keystore.
func (am *AccountManager) Keystore() (*KeystoreFile, error) {
	return am.store.Load()
}

// HasAccount reports whether a readable keystore exists.
func (am *AccountManager) HasAccount() bool {
	_, ok := am.Address()
	return ok
}

// Address returns the active address. ok is false when no keystore can be
// loaded or its address is malformed.
func (am *AccountManager) Address() (common.Address, bool) {
	kf, err := am.store.Load()
	if err != nil {
		return common.Address{}, false
	}
	addr, err := kf.Address()
	if err != nil {
		return common.Address{}, false
	}
	return addr, true
}

// Mnemonic returns the stored recovery phrase. ok is false for identities
// imported from a raw key.
func (am *AccountManager) Mnemonic() (string, bool, error) {
	phrase, ok, err := am.secrets.Get(MnemonicSecretKey)
	if err != nil {
		return "", false, fmt.Errorf("read mnemonic: %w", err)
	}
	return phrase, ok, nil
}
