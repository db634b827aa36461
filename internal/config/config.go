// Package config loads ethwallet settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yolodolo42/ethwallet/internal/chain"
	"github.com/yolodolo42/ethwallet/internal/history"
	"github.com/yolodolo42/ethwallet/internal/logging"
	"github.com/yolodolo42/ethwallet/internal/wallet"
)

// EnvPrefix prefixes every environment override, e.g. ETHWALLET_CHAIN or
// ETHWALLET_ETHERSCAN_API_KEY.
const EnvPrefix = "ETHWALLET"

// Secret store backends.
const (
	SecretsFile    = "file"
	SecretsKeyring = "keyring"
)

// Config is the resolved configuration.
type Config struct {
	DataDir    string        `mapstructure:"data_dir"`
	Chain      string        `mapstructure:"chain"`
	RPCTimeout time.Duration `mapstructure:"rpc_timeout"`

	Keystore  KeystoreConfig  `mapstructure:"keystore"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Etherscan EtherscanConfig `mapstructure:"etherscan"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Log       logging.Config  `mapstructure:"log"`

	// Chains overrides or extends the built-in chain table by name.
	Chains map[string]*chain.ChainConfig `mapstructure:"chains"`
}

type KeystoreConfig struct {
	// LightScrypt trades keystore strength for speed. Only for development.
	LightScrypt bool `mapstructure:"light_scrypt"`
}

type SecretsConfig struct {
	Backend string `mapstructure:"backend"`
	Service string `mapstructure:"service"`
}

type EtherscanConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type CoinGeckoConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type JournalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultDir returns ~/.ethwallet, or .ethwallet when the home directory
// is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ethwallet"
	}
	return filepath.Join(home, ".ethwallet")
}

// SetDefaults registers every key so environment overrides resolve even
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDir())
	v.SetDefault("chain", "ethereum")
	v.SetDefault("rpc_timeout", 30*time.Second)
	v.SetDefault("keystore.light_scrypt", false)
	v.SetDefault("secrets.backend", SecretsFile)
	v.SetDefault("secrets.service", wallet.DefaultKeyringService)
	v.SetDefault("etherscan.base_url", history.DefaultEtherscanURL)
	v.SetDefault("etherscan.api_key", "")
	v.SetDefault("coingecko.base_url", history.DefaultCoinGeckoURL)
	v.SetDefault("journal.enabled", true)
	v.SetDefault("log.level", logging.DefaultLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
}

// Load reads file (or config.yaml from DefaultDir when file is empty),
// applies environment overrides and returns the validated result. A
// missing default file is not an error; a missing explicit file is.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir is empty")
	}
	if c.Chain == "" {
		return errors.New("config: chain is empty")
	}
	if c.RPCTimeout <= 0 {
		return fmt.Errorf("config: rpc_timeout must be positive, got %s", c.RPCTimeout)
	}
	switch c.Secrets.Backend {
	case SecretsFile, SecretsKeyring:
	default:
		return fmt.Errorf("config: unknown secrets.backend %q", c.Secrets.Backend)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for name, cc := range c.Chains {
		if cc == nil {
			return fmt.Errorf("config: chains.%s is empty", name)
		}
		if cc.ChainIDInt < 0 {
			return fmt.Errorf("config: chains.%s.chain_id is negative", name)
		}
	}
	return nil
}
