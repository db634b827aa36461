package cli

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/ethwallet/internal/testutil"
	"github.com/yolodolo42/ethwallet/internal/wallet"
)

const cliPassword = "correct horse"

type harness struct {
	t       *testing.T
	cfgFile string
	dataDir string
}

// newHarness writes a config selecting sepolia; extra is appended as YAML.
func newHarness(t *testing.T, extra ...string) *harness {
	t.Helper()
	dir := testutil.TempDir(t)
	cfgFile := filepath.Join(dir, "config.yaml")
	cfg := "chain: sepolia\nkeystore:\n  light_scrypt: true\nlog:\n  level: error\n" + strings.Join(extra, "")
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0600))
	return &harness{t: t, cfgFile: cfgFile, dataDir: filepath.Join(dir, "data")}
}

// run executes one invocation with stdin as scripted input.
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	st := newState(strings.NewReader(stdin))
	defer st.close()

	var out, errOut bytes.Buffer
	root := newRootCmd(st)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", h.cfgFile, "--data-dir", h.dataDir}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func (h *harness) importDevKey() {
	h.t.Helper()
	_, _, err := h.run(fmt.Sprintf("%s\n%s\n%s\n", testutil.DevPrivateKey, cliPassword, cliPassword), "wallet", "import-key")
	require.NoError(h.t, err)
}

func TestWallet_ImportKeyAndInspect(t *testing.T) {
	h := newHarness(t)
	h.importDevKey()

	out, _, err := h.run("", "wallet", "address")
	require.NoError(t, err)
	assert.Equal(t, testutil.DevAddress, strings.TrimSpace(out))

	t.Run("verify accepts the password", func(t *testing.T) {
		out, _, err := h.run(cliPassword+"\n", "wallet", "verify")
		require.NoError(t, err)
		assert.Contains(t, out, "Password is correct")
	})

	t.Run("verify rejects a wrong password", func(t *testing.T) {
		_, _, err := h.run("wrong password\n", "wallet", "verify")
		assert.ErrorIs(t, err, wallet.ErrDecrypt)
	})

	t.Run("export key", func(t *testing.T) {
		out, _, err := h.run(cliPassword+"\n", "wallet", "export-key", "--yes")
		require.NoError(t, err)
		assert.Contains(t, strings.ToLower(out), testutil.DevPrivateKey)
	})

	t.Run("export key declined", func(t *testing.T) {
		_, _, err := h.run("n\n", "wallet", "export-key")
		assert.ErrorIs(t, err, errAborted)
	})

	t.Run("key import has no phrase", func(t *testing.T) {
		out, _, err := h.run(cliPassword+"\n", "wallet", "mnemonic")
		require.NoError(t, err)
		assert.Contains(t, out, "no recovery phrase")
	})
}

func TestWallet_ImportMnemonic(t *testing.T) {
	h := newHarness(t)
	stdin := fmt.Sprintf("%s\n%s\n%s\n", testutil.DevMnemonic, cliPassword, cliPassword)
	out, _, err := h.run(stdin, "wallet", "import-mnemonic")
	require.NoError(t, err)
	assert.Contains(t, out, testutil.DevAddress)

	out, _, err = h.run(cliPassword+"\n", "wallet", "mnemonic")
	require.NoError(t, err)
	assert.Equal(t, testutil.DevMnemonic, strings.TrimSpace(out))
}

func TestWallet_Create(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run(cliPassword+"\n"+cliPassword+"\n", "wallet", "create")
	require.NoError(t, err)
	assert.Contains(t, out, "Wallet created")

	phrase, _, err := h.run(cliPassword+"\n", "wallet", "mnemonic")
	require.NoError(t, err)
	words := strings.Fields(phrase)
	assert.Len(t, words, 12)
	assert.Contains(t, out, strings.Join(words, " "))

	addr, _, err := h.run("", "wallet", "address")
	require.NoError(t, err)
	assert.Contains(t, out, strings.TrimSpace(addr))
}

func TestWallet_PasswordRules(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("short\n", "wallet", "create")
	assert.ErrorContains(t, err, "at least 8 characters")

	_, _, err = h.run(cliPassword+"\nsomething else\n", "wallet", "create")
	assert.ErrorContains(t, err, "do not match")

	_, _, err = h.run("", "wallet", "address")
	assert.Equal(t, wallet.KindAccountDoesNotExist, wallet.KindOf(err))
}

func TestWallet_InvalidKey(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("not-a-key\n"+cliPassword+"\n"+cliPassword+"\n", "wallet", "import-key")
	assert.Equal(t, wallet.KindInvalidKey, wallet.KindOf(err))
}

func TestBalance_NoAccount(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "balance")
	assert.Equal(t, wallet.KindAccountDoesNotExist, wallet.KindOf(err))
}

func TestSend_InvalidRecipient(t *testing.T) {
	h := newHarness(t)
	h.importDevKey()

	_, _, err := h.run(cliPassword+"\n", "send", "ether", "0x1234", "0.1", "--yes")
	assert.Equal(t, wallet.KindInvalidAddress, wallet.KindOf(err))
}

func TestSend_Declined(t *testing.T) {
	h := newHarness(t)
	h.importDevKey()

	_, _, err := h.run("no\n", "send", "ether", testutil.DevAddress, "0.1")
	assert.ErrorIs(t, err, errAborted)
}

func TestSend_BadGasPriceFailsBeforePrompt(t *testing.T) {
	h := newHarness(t)
	h.importDevKey()

	_, stderr, err := h.run("", "send", "ether", testutil.DevAddress, "0.1", "--gas-price", "abc")
	assert.Equal(t, wallet.KindConversionFailure, wallet.KindOf(err))
	assert.NotContains(t, stderr, "[y/N]")
	assert.NotContains(t, stderr, "password")
}

func TestHistory_UsesSelectedChain(t *testing.T) {
	var chainIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chainIDs = append(chainIDs, r.URL.Query().Get("chainid"))
		_, _ = w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
	}))
	defer srv.Close()

	h := newHarness(t, "etherscan:\n  base_url: "+srv.URL+"\n")
	h.importDevKey()

	out, _, err := h.run("", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions found.")

	_, _, err = h.run("", "--chain", "base", "history")
	require.NoError(t, err)
	assert.Equal(t, []string{"11155111", "8453"}, chainIDs)
}

func TestChains(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "chains")
	require.NoError(t, err)
	assert.Contains(t, out, "sepolia")
	assert.Contains(t, out, "11155111")
}

func TestTxList_Empty(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "tx", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions recorded.")
}

func TestRoot_NoWallet(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("")
	require.NoError(t, err)
	assert.Contains(t, out, "No wallet found")

	h.importDevKey()
	out, _, err = h.run("")
	require.NoError(t, err)
	assert.Contains(t, out, testutil.DevAddress)
	assert.Contains(t, out, "sepolia")
}

func TestRoot_UnknownChain(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "--chain", "nowhere", "balance")
	assert.ErrorContains(t, err, "unknown chain")
}

func TestSetup_RequiresTerminal(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "setup")
	assert.ErrorContains(t, err, "interactive terminal")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, wallet.Describe(wallet.ErrDecrypt), describe(fmt.Errorf("verify: %w", wallet.ErrDecrypt)))
	assert.Equal(t,
		wallet.Describe(wallet.E(wallet.KindNotEnoughBalance, "send", nil)),
		describe(wallet.E(wallet.KindNotEnoughBalance, "send", nil)))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}
