package chain

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
)

// ChainConfig holds configuration for an EVM chain.
// Invariant: ChainID and ChainIDInt always represent the same value.
// ChainIDInt is the form decoded from config files; ChainID is used for RPC
// validation and signing.
type ChainConfig struct {
	Name           string   `mapstructure:"name"`
	ChainID        *big.Int `mapstructure:"-"`
	ChainIDInt     int64    `mapstructure:"chain_id"`
	RPCURLs        []string `mapstructure:"rpc_urls"`
	ExplorerURL    string   `mapstructure:"explorer_url"`
	NativeCurrency string   `mapstructure:"native_currency"`
	IsTestnet      bool     `mapstructure:"is_testnet"`
}

// Validate checks the config and fills ChainID from ChainIDInt.
func (c *ChainConfig) Validate() error {
	if c.ChainID == nil && c.ChainIDInt > 0 {
		c.ChainID = big.NewInt(c.ChainIDInt)
	}
	if c.ChainID == nil || c.ChainID.Sign() <= 0 {
		return errors.New("chain_id must be positive")
	}
	if c.ChainIDInt == 0 && c.ChainID.IsInt64() {
		c.ChainIDInt = c.ChainID.Int64()
	}
	if c.ChainID.Cmp(big.NewInt(c.ChainIDInt)) != 0 {
		return fmt.Errorf("chain_id mismatch: %d vs %s", c.ChainIDInt, c.ChainID)
	}
	if len(c.RPCURLs) == 0 {
		return errors.New("at least one rpc url is required")
	}
	if c.NativeCurrency == "" {
		c.NativeCurrency = "ETH"
	}
	return nil
}

// Merge returns a copy of c with the non-zero fields of override applied.
func (c *ChainConfig) Merge(override *ChainConfig) *ChainConfig {
	merged := *c
	merged.RPCURLs = append([]string(nil), c.RPCURLs...)
	if override == nil {
		return &merged
	}
	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.ChainIDInt != 0 {
		merged.ChainIDInt = override.ChainIDInt
		merged.ChainID = big.NewInt(override.ChainIDInt)
	}
	if len(override.RPCURLs) > 0 {
		merged.RPCURLs = append([]string(nil), override.RPCURLs...)
	}
	if override.ExplorerURL != "" {
		merged.ExplorerURL = override.ExplorerURL
	}
	if override.NativeCurrency != "" {
		merged.NativeCurrency = override.NativeCurrency
	}
	if override.IsTestnet {
		merged.IsTestnet = true
	}
	return &merged
}

// DefaultChains returns the built-in chain configurations.
func DefaultChains() map[string]*ChainConfig {
	return map[string]*ChainConfig{
		"ethereum": {
			Name:           "Ethereum Mainnet",
			ChainID:        big.NewInt(1),
			ChainIDInt:     1,
			RPCURLs:        []string{"https://eth.llamarpc.com", "https://rpc.ankr.com/eth"},
			ExplorerURL:    "https://etherscan.io",
			NativeCurrency: "ETH",
		},
		"base": {
			Name:           "Base",
			ChainID:        big.NewInt(8453),
			ChainIDInt:     8453,
			RPCURLs:        []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			ExplorerURL:    "https://basescan.org",
			NativeCurrency: "ETH",
		},
		"arbitrum": {
			Name:           "Arbitrum One",
			ChainID:        big.NewInt(42161),
			ChainIDInt:     42161,
			RPCURLs:        []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			ExplorerURL:    "https://arbiscan.io",
			NativeCurrency: "ETH",
		},
		"optimism": {
			Name:           "Optimism",
			ChainID:        big.NewInt(10),
			ChainIDInt:     10,
			RPCURLs:        []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			ExplorerURL:    "https://optimistic.etherscan.io",
			NativeCurrency: "ETH",
		},
		"sepolia": {
			Name:           "Sepolia Testnet",
			ChainID:        big.NewInt(11155111),
			ChainIDInt:     11155111,
			RPCURLs:        []string{"https://rpc.sepolia.org", "https://sepolia.drpc.org"},
			ExplorerURL:    "https://sepolia.etherscan.io",
			NativeCurrency: "ETH",
			IsTestnet:      true,
		},
		"holesky": {
			Name:           "Holesky Testnet",
			ChainID:        big.NewInt(17000),
			ChainIDInt:     17000,
			RPCURLs:        []string{"https://ethereum-holesky-rpc.publicnode.com"},
			ExplorerURL:    "https://holesky.etherscan.io",
			NativeCurrency: "ETH",
			IsTestnet:      true,
		},
		"localhost": {
			Name:           "Local Devnet",
			ChainID:        big.NewInt(31337),
			ChainIDInt:     31337,
			RPCURLs:        []string{"http://127.0.0.1:8545"},
			NativeCurrency: "ETH",
			IsTestnet:      true,
		},
	}
}

// SortedNames returns the keys of chains in lexical order.
func SortedNames(chains map[string]*ChainConfig) []string {
	names := make([]string, 0, len(chains))
	for name := range chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
