package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/ethwallet/internal/history"
	"github.com/yolodolo42/ethwallet/internal/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(testutil.TempDir(t), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := testutil.TempDir(t)
	testutil.SetEnv(t, "HOME", home)

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ethwallet"), cfg.DataDir)
	assert.Equal(t, "ethereum", cfg.Chain)
	assert.Equal(t, 30*time.Second, cfg.RPCTimeout)
	assert.Equal(t, SecretsFile, cfg.Secrets.Backend)
	assert.Equal(t, "ethwallet", cfg.Secrets.Service)
	assert.Equal(t, history.DefaultEtherscanURL, cfg.Etherscan.BaseURL)
	assert.Equal(t, history.DefaultCoinGeckoURL, cfg.CoinGecko.BaseURL)
	assert.True(t, cfg.Journal.Enabled)
	assert.False(t, cfg.Keystore.LightScrypt)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.Chains)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
data_dir: /tmp/ethwallet-data
chain: sepolia
rpc_timeout: 5s
keystore:
  light_scrypt: true
secrets:
  backend: keyring
  service: my-wallet
etherscan:
  base_url: https://api-sepolia.etherscan.io/api
  api_key: KEY123
journal:
  enabled: false
log:
  level: debug
  file: /tmp/ethwallet.log
chains:
  sepolia:
    rpc_urls:
      - http://localhost:8545
  devnet:
    chain_id: 1337
    rpc_urls:
      - http://localhost:9545
    native_currency: DEV
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ethwallet-data", cfg.DataDir)
	assert.Equal(t, "sepolia", cfg.Chain)
	assert.Equal(t, 5*time.Second, cfg.RPCTimeout)
	assert.True(t, cfg.Keystore.LightScrypt)
	assert.Equal(t, SecretsKeyring, cfg.Secrets.Backend)
	assert.Equal(t, "my-wallet", cfg.Secrets.Service)
	assert.Equal(t, "KEY123", cfg.Etherscan.APIKey)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/ethwallet.log", cfg.Log.File)

	require.Contains(t, cfg.Chains, "sepolia")
	assert.Equal(t, []string{"http://localhost:8545"}, cfg.Chains["sepolia"].RPCURLs)
	require.Contains(t, cfg.Chains, "devnet")
	assert.Equal(t, int64(1337), cfg.Chains["devnet"].ChainIDInt)
	assert.Equal(t, "DEV", cfg.Chains["devnet"].NativeCurrency)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "chain: base\n")
	testutil.SetEnv(t, "ETHWALLET_CHAIN", "optimism")
	testutil.SetEnv(t, "ETHWALLET_ETHERSCAN_API_KEY", "from-env")
	testutil.SetEnv(t, "ETHWALLET_RPC_TIMEOUT", "12s")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "optimism", cfg.Chain)
	assert.Equal(t, "from-env", cfg.Etherscan.APIKey)
	assert.Equal(t, 12*time.Second, cfg.RPCTimeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(testutil.TempDir(t), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unparseable file", func(t *testing.T) {
		_, err := Load(viper.New(), writeConfig(t, "chain: [unterminated\n"))
		assert.Error(t, err)
	})

	cases := map[string]string{
		"unknown backend":  "secrets:\n  backend: vault\n",
		"zero timeout":     "rpc_timeout: 0s\n",
		"bad log level":    "log:\n  level: loud\n",
		"empty chain":      "chain: \"\"\n",
		"negative chainid": "chains:\n  x:\n    chain_id: -1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(viper.New(), writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
