package ethwallet

import (
	"context"
	"fmt"
	"unicode"

	"github.com/yolodolo42/ethwallet/internal/chain"
	"github.com/yolodolo42/ethwallet/internal/wallet"
	"go.uber.org/zap"
)

// EtherBalance returns the wallet's native balance in ether with exactly
// eight fractional digits. Extra digits are truncated so the balance is
// never overstated.
func (w *Wallet) EtherBalance(ctx context.Context) (string, error) {
	const op = "ether balance"

	addr, err := w.address(op)
	if err != nil {
		return "", err
	}

	cctx, cancel := w.callCtx(ctx)
	defer cancel()

	wei, err := w.chain.GetBalance(cctx, w.chainName, addr)
	if err != nil {
		return "", wallet.E(wallet.KindNetworkFailure, op, err)
	}
	return chain.FormatEther(wei), nil
}

// TokenBalance returns the wallet's balance of the ERC-20 token at contract
// as a base-unit integer string.
func (w *Wallet) TokenBalance(ctx context.Context, contract string) (string, error) {
	const op = "token balance"

	token, err := parseAddress(op, contract)
	if err != nil {
		return "", err
	}
	holder, err := w.address(op)
	if err != nil {
		return "", err
	}

	cctx, cancel := w.callCtx(ctx)
	defer cancel()

	bal, err := chain.TokenBalance(cctx, w.chain, w.chainName, token, holder)
	if err != nil {
		return "", contractErr(op, err)
	}
	return bal.String(), nil
}

// TokenDecimals returns decimals() of the token at contract.
func (w *Wallet) TokenDecimals(ctx context.Context, contract string) (int, error) {
	const op = "token decimals"

	token, err := parseAddress(op, contract)
	if err != nil {
		return 0, err
	}

	cctx, cancel := w.callCtx(ctx)
	defer cancel()

	d, err := chain.TokenDecimals(cctx, w.chain, w.chainName, token)
	if err != nil {
		return 0, contractErr(op, err)
	}
	return int(d), nil
}

// TokenSymbol returns symbol() of the token at contract. Symbols that are
// empty or contain anything but letters and digits are rejected as
// UnexpectedResult.
func (w *Wallet) TokenSymbol(ctx context.Context, contract string) (string, error) {
	const op = "token symbol"

	token, err := parseAddress(op, contract)
	if err != nil {
		return "", err
	}

	cctx, cancel := w.callCtx(ctx)
	defer cancel()

	symbol, err := chain.TokenSymbol(cctx, w.chain, w.chainName, token)
	if err != nil {
		return "", contractErr(op, err)
	}
	if err := validateSymbol(symbol); err != nil {
		w.log.Warn("rejected token symbol", zap.String("token", token.Hex()))
		return "", wallet.E(wallet.KindUnexpectedResult, op, err)
	}
	return symbol, nil
}

// validateSymbol accepts letters and digits only. An empty symbol passes.
func validateSymbol(symbol string) error {
	for _, r := range symbol {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r) {
			return fmt.Errorf("symbol contains %q", r)
		}
	}
	return nil
}
