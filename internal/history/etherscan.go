// Package history fetches account history and spot prices from public
// REST APIs.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// DefaultEtherscanURL is the Etherscan V2 multichain endpoint. The chain
	// is selected per request with the chainid parameter.
	DefaultEtherscanURL = "https://api.etherscan.io/v2/api"

	defaultHTTPTimeout = 15 * time.Second
	noTransactionsMsg  = "No transactions found"
)

// EtherscanClient lists account transactions.
type EtherscanClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewEtherscanClient creates a client. An empty baseURL selects
// DefaultEtherscanURL.
func NewEtherscanClient(baseURL, apiKey string) *EtherscanClient {
	if baseURL == "" {
		baseURL = DefaultEtherscanURL
	}
	return &EtherscanClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// TransactionList returns the normal transactions of address on the chain
// with chainID, newest first.
func (c *EtherscanClient) TransactionList(ctx context.Context, chainID *big.Int, address common.Address) ([]TransactionRecord, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, fmt.Errorf("etherscan: invalid chain id %v", chainID)
	}

	q := url.Values{}
	q.Set("chainid", chainID.String())
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address.Hex())
	q.Set("startblock", "0")
	q.Set("endblock", "latest")
	q.Set("sort", "desc")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build txlist request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get transactions: status %d", resp.StatusCode)
	}

	var body etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	if body.Status != "1" {
		if body.Message == noTransactionsMsg {
			return []TransactionRecord{}, nil
		}
		// On errors the result field carries a human-readable reason.
		var reason string
		_ = json.Unmarshal(body.Result, &reason)
		return nil, fmt.Errorf("etherscan: %s: %s", body.Message, reason)
	}

	var records []TransactionRecord
	if err := json.Unmarshal(body.Result, &records); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return records, nil
}
