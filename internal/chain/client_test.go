package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Chains(t *testing.T) {
	t.Run("lists chains sorted", func(t *testing.T) {
		c := NewClient()
		defer c.Close()
		assert.Equal(t, SortedNames(DefaultChains()), c.ListChains())
	})

	t.Run("unknown chain", func(t *testing.T) {
		c := NewClient()
		_, err := c.GetChainConfig("nope")
		assert.Error(t, err)

		_, err = c.GetBalance(context.Background(), "nope", common.Address{})
		assert.ErrorContains(t, err, "unknown chain")
	})

	t.Run("overrides merge into defaults", func(t *testing.T) {
		c := NewClient(WithChainOverrides(map[string]*ChainConfig{
			"sepolia": {RPCURLs: []string{"http://127.0.0.1:1"}},
			"devnet":  {Name: "Devnet", ChainIDInt: 1337, RPCURLs: []string{"http://127.0.0.1:2"}},
		}))

		sep, err := c.GetChainConfig("sepolia")
		require.NoError(t, err)
		assert.Equal(t, []string{"http://127.0.0.1:1"}, sep.RPCURLs)

		id, err := c.ChainID("devnet")
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1337), id)
	})

	t.Run("incomplete override is rejected before dialing", func(t *testing.T) {
		c := NewClient(WithChainOverrides(map[string]*ChainConfig{
			"partial": {RPCURLs: []string{"http://127.0.0.1:1"}},
		}))
		_, err := c.GetBalance(context.Background(), "partial", common.Address{})
		assert.ErrorContains(t, err, "chain_id must be positive")
	})

	t.Run("add chain validates", func(t *testing.T) {
		c := NewClient()
		assert.Error(t, c.AddChain("bad", &ChainConfig{}))
		require.NoError(t, c.AddChain("good", &ChainConfig{ChainIDInt: 7, RPCURLs: []string{"http://x"}}))
		assert.Contains(t, c.ListChains(), "good")
	})
}
