// Package ethwallet is the wallet service facade: balance and token queries,
// ether and ERC-20 transfers, history and price lookups for the single
// device identity.
package ethwallet

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/yolodolo42/ethwallet/internal/chain"
	"github.com/yolodolo42/ethwallet/internal/history"
	"github.com/yolodolo42/ethwallet/internal/receipts"
	"github.com/yolodolo42/ethwallet/internal/tx"
	"github.com/yolodolo42/ethwallet/internal/wallet"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every network round trip.
	DefaultTimeout = 30 * time.Second
	// DefaultChain is used when no chain is configured.
	DefaultChain = "ethereum"
)

// ChainClient is the chain access the wallet needs. *chain.Client
// satisfies it.
type ChainClient interface {
	tx.Backend
	chain.Caller
	ChainID(chainName string) (*big.Int, error)
	GetBalance(ctx context.Context, chainName string, address common.Address) (*big.Int, error)
	SendTransaction(ctx context.Context, chainName string, tx *types.Transaction) error
	WaitMined(ctx context.Context, chainName string, txHash common.Hash) (*types.Receipt, error)
}

// Accounts provides the identity. *wallet.AccountManager satisfies it.
type Accounts interface {
	Keystore() (*wallet.KeystoreFile, error)
	Signer(password string) (*wallet.KeystoreSigner, error)
}

// Journal records broadcast transactions.
type Journal interface {
	Record(ctx context.Context, sub receipts.Submission) error
	UpdateReceipt(ctx context.Context, chain string, receipt *types.Receipt) error
}

// HistorySource lists past transactions of an address on one chain.
type HistorySource interface {
	TransactionList(ctx context.Context, chainID *big.Int, address common.Address) ([]history.TransactionRecord, error)
}

// PriceSource quotes spot prices.
type PriceSource interface {
	Price(ctx context.Context, coinID, vsCurrency string) (string, error)
}

// ErrNotConfigured is returned when an optional collaborator is missing.
var ErrNotConfigured = errors.New("not configured")

// Wallet runs queries and transfers for one identity on one chain.
type Wallet struct {
	accounts  Accounts
	chain     ChainClient
	chainName string
	timeout   time.Duration
	log       *zap.Logger

	journal Journal
	history HistorySource
	prices  PriceSource

	// sendSlot admits one Send* at a time.
	sendSlot chan struct{}
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithChain selects the chain by name.
func WithChain(name string) Option {
	return func(w *Wallet) {
		if name != "" {
			w.chainName = name
		}
	}
}

// WithTimeout sets the per-call network timeout.
func WithTimeout(d time.Duration) Option {
	return func(w *Wallet) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Wallet) {
		if log != nil {
			w.log = log
		}
	}
}

// WithJournal records every broadcast transaction in j.
func WithJournal(j Journal) Option {
	return func(w *Wallet) { w.journal = j }
}

// WithHistory sets the transaction history source.
func WithHistory(h HistorySource) Option {
	return func(w *Wallet) { w.history = h }
}

// WithPrices sets the price source.
func WithPrices(p PriceSource) Option {
	return func(w *Wallet) { w.prices = p }
}

// New creates a wallet.
func New(accounts Accounts, client ChainClient, opts ...Option) (*Wallet, error) {
	if accounts == nil {
		return nil, errors.New("accounts are required")
	}
	if client == nil {
		return nil, errors.New("chain client is required")
	}

	w := &Wallet{
		accounts:  accounts,
		chain:     client,
		chainName: DefaultChain,
		timeout:   DefaultTimeout,
		log:       zap.NewNop(),
		sendSlot:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("chain", w.chainName))
	return w, nil
}

// Chain returns the chain name the wallet operates on.
func (w *Wallet) Chain() string {
	return w.chainName
}

// Address returns the wallet address. Fails with AccountDoesNotExist when
// no keystore can be loaded and InvalidAddress when its address is
// malformed.
func (w *Wallet) Address() (common.Address, error) {
	return w.address("address")
}

func (w *Wallet) address(op string) (common.Address, error) {
	kf, err := w.accounts.Keystore()
	if err != nil {
		return common.Address{}, wallet.E(wallet.KindAccountDoesNotExist, op, err)
	}
	addr, err := kf.Address()
	if err != nil {
		return common.Address{}, wallet.E(wallet.KindInvalidAddress, op, err)
	}
	return addr, nil
}

// callCtx derives the per-call timeout context.
func (w *Wallet) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.timeout)
}

// parseAddress validates a user supplied hex address.
func parseAddress(op, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, wallet.E(wallet.KindInvalidAddress, op, errors.New(s))
	}
	return common.HexToAddress(s), nil
}

// contractErr classifies an ERC-20 helper failure.
func contractErr(op string, err error) error {
	switch {
	case errors.Is(err, chain.ErrPack):
		return wallet.E(wallet.KindContractFailure, op, err)
	case errors.Is(err, chain.ErrDecode):
		return wallet.E(wallet.KindUnexpectedResult, op, err)
	default:
		return wallet.E(wallet.KindNetworkFailure, op, err)
	}
}
