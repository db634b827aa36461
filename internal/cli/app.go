package cli

import (
	"fmt"
	"os"

	"github.com/yolodolo42/ethwallet/internal/chain"
	"github.com/yolodolo42/ethwallet/internal/config"
	"github.com/yolodolo42/ethwallet/internal/ethwallet"
	"github.com/yolodolo42/ethwallet/internal/history"
	"github.com/yolodolo42/ethwallet/internal/logging"
	"github.com/yolodolo42/ethwallet/internal/receipts"
	"github.com/yolodolo42/ethwallet/internal/wallet"
	"go.uber.org/zap"
)

// app holds the wired components for one invocation.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	accounts *wallet.AccountManager
	chain    *chain.Client
	journal  *receipts.Store // nil when disabled
	history  *history.EtherscanClient
	prices   *history.CoinGeckoClient
	wallet   *ethwallet.Wallet
}

// App builds the components on first use.
func (st *state) App() (*app, error) {
	if st.app != nil {
		return st.app, nil
	}
	if st.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	a, err := newApp(st.cfg)
	if err != nil {
		return nil, err
	}
	st.app = a
	return a, nil
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, wallet.E(wallet.KindInvalidPath, "open data dir", err)
	}

	secrets, err := openSecrets(cfg)
	if err != nil {
		return nil, err
	}

	opts := []wallet.Option{wallet.WithLogger(log.Named("accounts"))}
	if cfg.Keystore.LightScrypt {
		opts = append(opts, wallet.WithLightScrypt())
	}
	accounts, err := wallet.NewAccountManager(cfg.DataDir, secrets, opts...)
	if err != nil {
		return nil, err
	}

	client := chain.NewClient(
		chain.WithClientLogger(log.Named("chain")),
		chain.WithDialTimeout(cfg.RPCTimeout),
		chain.WithChainOverrides(cfg.Chains),
	)
	if _, err := client.GetChainConfig(cfg.Chain); err != nil {
		client.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		accounts: accounts,
		chain:    client,
		history:  history.NewEtherscanClient(cfg.Etherscan.BaseURL, cfg.Etherscan.APIKey),
		prices:   history.NewCoinGeckoClient(cfg.CoinGecko.BaseURL),
	}

	walletOpts := []ethwallet.Option{
		ethwallet.WithChain(cfg.Chain),
		ethwallet.WithTimeout(cfg.RPCTimeout),
		ethwallet.WithLogger(log.Named("wallet")),
		ethwallet.WithHistory(a.history),
		ethwallet.WithPrices(a.prices),
	}
	if cfg.Journal.Enabled {
		journal, err := receipts.Open(cfg.DataDir)
		if err != nil {
			client.Close()
			return nil, err
		}
		a.journal = journal
		walletOpts = append(walletOpts, ethwallet.WithJournal(journal))
	}

	w, err := ethwallet.New(accounts, client, walletOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.wallet = w
	return a, nil
}

// walletOn returns a wallet bound to another chain, sharing everything else.
func (a *app) walletOn(chainName string) (*ethwallet.Wallet, error) {
	opts := []ethwallet.Option{
		ethwallet.WithChain(chainName),
		ethwallet.WithTimeout(a.cfg.RPCTimeout),
		ethwallet.WithLogger(a.log.Named("wallet")),
	}
	return ethwallet.New(a.accounts, a.chain, opts...)
}

func openSecrets(cfg *config.Config) (wallet.SecretStore, error) {
	switch cfg.Secrets.Backend {
	case config.SecretsKeyring:
		return wallet.NewKeyringSecretStore(cfg.Secrets.Service), nil
	default:
		s, err := wallet.NewFileSecretStore(cfg.DataDir)
		if err != nil {
			return nil, wallet.E(wallet.KindInvalidPath, "open secret store", err)
		}
		return s, nil
	}
}

// Close releases connections and flushes the log.
func (a *app) Close() {
	a.chain.Close()
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Debug("close journal", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
