package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout  = 10 * time.Second
	chainIDCheckTimeout = 5 * time.Second
	receiptPollInterval = 2 * time.Second
)

// Client manages connections to multiple EVM chains. Connections are dialed
// lazily on first use and reused afterwards.
type Client struct {
	chains      map[string]*ChainConfig
	clients     map[string]*ethclient.Client
	mu          sync.RWMutex
	dialTimeout time.Duration
	log         *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger.
func WithClientLogger(log *zap.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDialTimeout bounds each RPC dial attempt.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// WithChainOverrides merges overrides into the default chain set. Unknown
// names are added as new chains.
func WithChainOverrides(overrides map[string]*ChainConfig) ClientOption {
	return func(c *Client) {
		for name, override := range overrides {
			if base, ok := c.chains[name]; ok {
				c.chains[name] = base.Merge(override)
				continue
			}
			c.chains[name] = (&ChainConfig{}).Merge(override)
		}
	}
}

// NewClient creates a new multi-chain client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		chains:      DefaultChains(),
		clients:     make(map[string]*ethclient.Client),
		dialTimeout: defaultDialTimeout,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddChain adds or overrides a chain configuration. Any open connection for
// the chain is closed.
func (c *Client) AddChain(name string, config *ChainConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("chain %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[name]; ok {
		client.Close()
		delete(c.clients, name)
	}
	c.chains[name] = config
	return nil
}

// GetChainConfig returns the configuration for a chain
func (c *Client) GetChainConfig(chainName string) (*ChainConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, ok := c.chains[chainName]
	if !ok {
		return nil, fmt.Errorf("unknown chain: %s", chainName)
	}
	return config, nil
}

// ChainID returns the configured chain ID.
func (c *Client) ChainID(chainName string) (*big.Int, error) {
	config, err := c.GetChainConfig(chainName)
	if err != nil {
		return nil, err
	}
	if config.ChainID == nil {
		return nil, fmt.Errorf("chain %s has no chain id", chainName)
	}
	return new(big.Int).Set(config.ChainID), nil
}

// ListChains returns the configured chain names in lexical order.
func (c *Client) ListChains() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return SortedNames(c.chains)
}

// getClient returns an ethclient for the given chain, creating one if needed.
// The write lock is held across the dial so concurrent callers never open
// duplicate connections.
func (c *Client) getClient(chainName string) (*ethclient.Client, *ChainConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	config, configExists := c.chains[chainName]
	if !configExists {
		return nil, nil, fmt.Errorf("unknown chain: %s", chainName)
	}

	if client, exists := c.clients[chainName]; exists {
		return client, config, nil
	}
	if err := config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("chain %s: %w", chainName, err)
	}

	lastErr := errors.New("no rpc urls configured")
	for _, rpcURL := range config.RPCURLs {
		ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err != nil {
			c.log.Warn("rpc dial failed", zap.String("chain", chainName), zap.String("url", rpcURL), zap.Error(err))
			lastErr = err
			continue
		}

		ctx, cancel = context.WithTimeout(context.Background(), chainIDCheckTimeout)
		chainID, err := client.ChainID(ctx)
		cancel()

		if err != nil {
			client.Close()
			c.log.Warn("rpc chain id check failed", zap.String("chain", chainName), zap.String("url", rpcURL), zap.Error(err))
			lastErr = err
			continue
		}

		if chainID.Cmp(config.ChainID) != 0 {
			client.Close()
			lastErr = fmt.Errorf("chain ID mismatch: expected %s, got %s", config.ChainID.String(), chainID.String())
			c.log.Warn("rpc serves another chain", zap.String("chain", chainName), zap.String("url", rpcURL), zap.Error(lastErr))
			continue
		}

		c.log.Debug("rpc connected", zap.String("chain", chainName), zap.String("url", rpcURL))
		c.clients[chainName] = client
		return client, config, nil
	}

	return nil, nil, fmt.Errorf("failed to connect to %s: %w", chainName, lastErr)
}

// GetBalance returns the latest native balance in wei.
func (c *Client) GetBalance(ctx context.Context, chainName string, address common.Address) (*big.Int, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.BalanceAt(ctx, address, nil)
}

// GetNonce returns the pending nonce for an address
func (c *Client) GetNonce(ctx context.Context, chainName string, address common.Address) (uint64, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return 0, err
	}

	return client.PendingNonceAt(ctx, address)
}

// EstimateGas estimates gas for a transaction
func (c *Client) EstimateGas(ctx context.Context, chainName string, msg ethereum.CallMsg) (uint64, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return 0, err
	}

	return client.EstimateGas(ctx, msg)
}

// SuggestGasPrice returns the suggested legacy gas price
func (c *Client) SuggestGasPrice(ctx context.Context, chainName string) (*big.Int, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.SuggestGasPrice(ctx)
}

// SuggestGasTipCap returns the suggested gas tip cap for EIP-1559 transactions
func (c *Client) SuggestGasTipCap(ctx context.Context, chainName string) (*big.Int, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.SuggestGasTipCap(ctx)
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, chainName string, tx *types.Transaction) error {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return err
	}

	return client.SendTransaction(ctx, tx)
}

// WaitMined polls for the receipt of txHash until it appears or ctx ends.
func (c *Client) WaitMined(ctx context.Context, chainName string, txHash common.Hash) (*types.Receipt, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.log.Debug("receipt poll failed", zap.String("chain", chainName), zap.String("tx", txHash.Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetTransactionReceipt gets the receipt for a mined transaction
func (c *Client) GetTransactionReceipt(ctx context.Context, chainName string, txHash common.Hash) (*types.Receipt, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.TransactionReceipt(ctx, txHash)
}

// CallContract executes a read-only contract call against the latest block.
func (c *Client) CallContract(ctx context.Context, chainName string, msg ethereum.CallMsg) ([]byte, error) {
	client, _, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}

	return client.CallContract(ctx, msg, nil)
}

// Close closes all client connections
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		client.Close()
	}
	c.clients = make(map[string]*ethclient.Client)
}
