package wallet

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/ethwallet/internal/testutil"
)

func newTestManager(t *testing.T) (*AccountManager, *MemorySecretStore, string) {
	t.Helper()
	dir := testutil.TempDir(t)
	secrets := NewMemorySecretStore()
	am, err := NewAccountManager(dir, secrets, WithLightScrypt())
	require.NoError(t, err)
	return am, secrets, dir
}

type failingSecrets struct {
	*MemorySecretStore
}

func (f failingSecrets) Set(string, string) error {
	return errors.New("keychain unavailable")
}

func TestNewAccountManager(t *testing.T) {
	t.Run("requires data dir", func(t *testing.T) {
		_, err := NewAccountManager("", NewMemorySecretStore())
		assert.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("requires secret store", func(t *testing.T) {
		_, err := NewAccountManager(testutil.TempDir(t), nil)
		assert.Error(t, err)
	})

	t.Run("no account initially", func(t *testing.T) {
		am, _, _ := newTestManager(t)
		assert.False(t, am.HasAccount())
		_, ok := am.Address()
		assert.False(t, ok)
	})
}

func TestAccountManager_GenerateAccount(t *testing.T) {
	am, secrets, _ := newTestManager(t)

	addr, err := am.GenerateAccount("testpassword123")
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, addr)

	assert.True(t, am.HasAccount())
	got, ok := am.Address()
	require.True(t, ok)
	assert.Equal(t, addr, got)
	assert.True(t, strings.HasPrefix(got.Hex(), "0x"))
	assert.NotEqual(t, strings.ToLower(got.Hex()), got.Hex(), "address should be checksummed")

	phrase, ok, err := secrets.Get(MnemonicSecretKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, strings.Fields(phrase), 12)

	// The stored phrase re-derives the same address.
	priv, err := DeriveKey(phrase, DerivationPath)
	require.NoError(t, err)
	assert.Equal(t, addr, crypto.PubkeyToAddress(priv.PublicKey))
}

func TestAccountManager_ImportPrivateKey(t *testing.T) {
	t.Run("imports with and without prefix", func(t *testing.T) {
		am, _, _ := newTestManager(t)

		addr, err := am.ImportPrivateKey("0x"+testutil.DevPrivateKey, "pw")
		require.NoError(t, err)
		assert.Equal(t, testutil.DevAddress, addr.Hex())

		again, err := am.ImportPrivateKey(testutil.DevPrivateKey, "pw")
		require.NoError(t, err)
		assert.Equal(t, addr, again)

		got, ok := am.Address()
		require.True(t, ok)
		assert.Equal(t, addr, got)
	})

	t.Run("rejects invalid key", func(t *testing.T) {
		am, _, _ := newTestManager(t)

		for _, key := range []string{"", "0x", "nothex", "abcd"} {
			_, err := am.ImportPrivateKey(key, "pw")
			assert.ErrorIs(t, err, ErrInvalidKey, key)
		}
		assert.False(t, am.HasAccount())
	})

	t.Run("clears stored mnemonic", func(t *testing.T) {
		am, secrets, _ := newTestManager(t)

		_, err := am.GenerateAccount("pw")
		require.NoError(t, err)

		_, err = am.ImportPrivateKey(testutil.DevPrivateKey, "pw")
		require.NoError(t, err)

		_, ok, err := secrets.Get(MnemonicSecretKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAccountManager_ImportMnemonic(t *testing.T) {
	t.Run("stores exact phrase", func(t *testing.T) {
		am, _, _ := newTestManager(t)

		addr, err := am.ImportMnemonic(testutil.DevMnemonic, "pw")
		require.NoError(t, err)
		assert.Equal(t, testutil.DevAddress, addr.Hex())

		phrase, ok, err := am.Mnemonic()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, testutil.DevMnemonic, phrase)
	})

	t.Run("rejects invalid phrase", func(t *testing.T) {
		am, _, _ := newTestManager(t)

		_, err := am.ImportMnemonic("test test test", "pw")
		assert.ErrorIs(t, err, ErrInvalidMnemonics)

		_, err = am.ImportMnemonic(strings.Repeat("abandon ", 12), "pw")
		assert.ErrorIs(t, err, ErrInvalidMnemonics, "bad checksum")
		assert.False(t, am.HasAccount())
	})

	t.Run("secret store failure clears previous phrase", func(t *testing.T) {
		dir := testutil.TempDir(t)
		mem := NewMemorySecretStore()
		require.NoError(t, mem.Set(MnemonicSecretKey, "previous phrase"))

		am, err := NewAccountManager(dir, failingSecrets{mem}, WithLightScrypt())
		require.NoError(t, err)

		_, err = am.ImportMnemonic(testutil.DevMnemonic, "pw")
		assert.ErrorIs(t, err, ErrInvalidPath)

		_, ok, err := mem.Get(MnemonicSecretKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestAccountManager_ReplaceIdentity(t *testing.T) {
	am, secrets, dir := newTestManager(t)

	_, err := am.GenerateAccount("first")
	require.NoError(t, err)
	_, ok, _ := secrets.Get(MnemonicSecretKey)
	require.True(t, ok)

	addr, err := am.ImportPrivateKey(testutil.DevPrivateKey, "second")
	require.NoError(t, err)

	assert.Equal(t, []string{"key.json"}, testutil.ReadDirNames(t, filepath.Join(dir, "keystore")))
	_, ok, _ = secrets.Get(MnemonicSecretKey)
	assert.False(t, ok)

	got, ok := am.Address()
	require.True(t, ok)
	assert.Equal(t, addr, got)
	assert.False(t, am.VerifyPassword("first"))
	assert.True(t, am.VerifyPassword("second"))
}

func TestAccountManager_PrivateKey(t *testing.T) {
	t.Run("returns hex without prefix", func(t *testing.T) {
		am, _, _ := newTestManager(t)
		_, err := am.ImportPrivateKey("0x"+testutil.DevPrivateKey, "pw")
		require.NoError(t, err)

		key, err := am.PrivateKey("pw")
		require.NoError(t, err)
		assert.Equal(t, testutil.DevPrivateKey, key)
	})

	t.Run("wrong password", func(t *testing.T) {
		am, _, _ := newTestManager(t)
		_, err := am.ImportPrivateKey(testutil.DevPrivateKey, "pw")
		require.NoError(t, err)

		_, err = am.PrivateKey("wrong")
		assert.ErrorIs(t, err, ErrDecrypt)
		assert.Equal(t, "The password is incorrect.", Describe(err))
	})

	t.Run("no keystore", func(t *testing.T) {
		am, _, _ := newTestManager(t)
		_, err := am.PrivateKey("pw")
		assert.ErrorIs(t, err, ErrMalformedKeystore)
	})

	t.Run("keystore address mismatch", func(t *testing.T) {
		am, _, _ := newTestManager(t)
		data := encryptedDevKey(t, "pw")
		kf, err := ParseKeystore(data)
		require.NoError(t, err)
		kf.RawAddress = "0000000000000000000000000000000000000001"
		require.NoError(t, am.Store().Save(kf))

		_, err = am.PrivateKey("pw")
		assert.ErrorIs(t, err, ErrMalformedKeystore)
	})

	t.Run("malformed keystore address", func(t *testing.T) {
		am, _, _ := newTestManager(t)
		kf, err := ParseKeystore(encryptedDevKey(t, "pw"))
		require.NoError(t, err)
		kf.RawAddress = "xyz"
		require.NoError(t, am.Store().Save(kf))

		_, err = am.PrivateKey("pw")
		assert.ErrorIs(t, err, ErrInvalidAddress)
		assert.False(t, am.HasAccount())
	})
}

func TestAccountManager_VerifyPassword(t *testing.T) {
	am, _, _ := newTestManager(t)
	_, err := am.GenerateAccount("correct horse")
	require.NoError(t, err)

	assert.True(t, am.VerifyPassword("correct horse"))
	assert.False(t, am.VerifyPassword("correct horse "))
	assert.False(t, am.VerifyPassword(""))
}

func TestAccountManager_Signer(t *testing.T) {
	am, _, _ := newTestManager(t)
	_, err := am.ImportPrivateKey(testutil.DevPrivateKey, "pw")
	require.NoError(t, err)

	signer, err := am.Signer("pw")
	require.NoError(t, err)
	defer signer.Lock()
	assert.Equal(t, testutil.DevAddress, signer.Address().Hex())

	_, err = am.Signer("nope")
	assert.ErrorIs(t, err, ErrDecrypt)
}
