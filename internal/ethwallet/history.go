package ethwallet

import (
	"context"
	"strings"

	"github.com/yolodolo42/ethwallet/internal/history"
	"github.com/yolodolo42/ethwallet/internal/wallet"
)

// EtherCoinID is the CoinGecko id of ether.
const EtherCoinID = "ethereum"

// TransactionHistory returns the wallet's transactions on the wallet's chain,
// newest first.
func (w *Wallet) TransactionHistory(ctx context.Context) ([]history.TransactionRecord, error) {
	const op = "transaction history"

	if w.history == nil {
		return nil, wallet.E(wallet.KindNetworkFailure, op, ErrNotConfigured)
	}
	addr, err := w.address(op)
	if err != nil {
		return nil, err
	}
	chainID, err := w.chain.ChainID(w.chainName)
	if err != nil {
		return nil, wallet.E(wallet.KindNetworkFailure, op, err)
	}

	cctx, cancel := w.callCtx(ctx)
	defer cancel()

	records, err := w.history.TransactionList(cctx, chainID, addr)
	if err != nil {
		return nil, wallet.E(wallet.KindNetworkFailure, op, err)
	}
	return records, nil
}

// EtherPrice returns the spot price of one ether in vsCurrency ("usd" when
// empty) as a decimal string.
func (w *Wallet) EtherPrice(ctx context.Context, vsCurrency string) (string, error) {
	const op = "ether price"

	if w.prices == nil {
		return "", wallet.E(wallet.KindNetworkFailure, op, ErrNotConfigured)
	}
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	cctx, cancel := w.callCtx(ctx)
	defer cancel()

	price, err := w.prices.Price(cctx, EtherCoinID, strings.ToLower(vsCurrency))
	if err != nil {
		return "", wallet.E(wallet.KindNetworkFailure, op, err)
	}
	return price, nil
}
