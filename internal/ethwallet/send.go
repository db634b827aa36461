package ethwallet

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/yolodolo42/ethwallet/internal/chain"
	"github.com/yolodolo42/ethwallet/internal/receipts"
	"github.com/yolodolo42/ethwallet/internal/tx"
	"github.com/yolodolo42/ethwallet/internal/wallet"
	"go.uber.org/zap"
)

// SendOption adjusts a single transfer.
type SendOption func(*sendOptions)

type sendOptions struct {
	gasPriceGwei string
}

// WithGasPrice sends a legacy transaction at the given gas price in gwei
// instead of node-suggested EIP-1559 fees.
func WithGasPrice(gwei string) SendOption {
	return func(o *sendOptions) { o.gasPriceGwei = gwei }
}

func (o sendOptions) gasPrice(op string) (*big.Int, error) {
	if o.gasPriceGwei == "" {
		return nil, nil
	}
	wei, err := chain.ParseGwei(o.gasPriceGwei)
	if err != nil {
		return nil, wallet.E(wallet.KindConversionFailure, op, err)
	}
	return wei, nil
}

func buildSendOptions(opts []SendOption) sendOptions {
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// acquire waits for the send slot. The returned func releases it.
func (w *Wallet) acquire(ctx context.Context, op string) (func(), error) {
	select {
	case w.sendSlot <- struct{}{}:
		return func() { <-w.sendSlot }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: waiting for pending send: %w", op, ctx.Err())
	}
}

// SendEther transfers amount ether (a decimal string) to the address to and
// returns the transaction hash as hex without 0x.
func (w *Wallet) SendEther(ctx context.Context, to, amount, password string, opts ...SendOption) (string, error) {
	const op = "send ether"
	o := buildSendOptions(opts)

	toAddr, err := parseAddress(op, to)
	if err != nil {
		return "", err
	}

	release, err := w.acquire(ctx, op)
	if err != nil {
		return "", err
	}
	defer release()

	kf, err := w.accounts.Keystore()
	if err != nil {
		return "", err
	}
	from, err := kf.Address()
	if err != nil {
		return "", err
	}

	balance, err := w.EtherBalance(ctx)
	if err != nil {
		return "", err
	}
	have, err := chain.ParseDecimal(balance)
	if err != nil {
		return "", wallet.E(wallet.KindConversionFailure, op, err)
	}
	want, err := chain.ParseDecimal(amount)
	if err != nil {
		return "", wallet.E(wallet.KindConversionFailure, op, err)
	}
	if have.Cmp(want) < 0 {
		return "", wallet.E(wallet.KindNotEnoughBalance, op, nil)
	}

	gasPrice, err := o.gasPrice(op)
	if err != nil {
		return "", err
	}

	value := chain.RatToUnits(want, chain.EtherDecimals)
	intent := tx.Intent{
		Chain:    w.chainName,
		From:     from,
		To:       toAddr,
		ValueWei: value,
		GasPrice: gasPrice,
	}
	return w.submit(ctx, op, intent, password, receipts.Submission{
		Kind:  receipts.KindEther,
		From:  from.Hex(),
		To:    toAddr.Hex(),
		Value: value.String(),
	})
}

// SendToken transfers amount (a decimal string in whole tokens) of the
// ERC-20 token at contract to the address to. decimals converts amount to
// base units. The transaction carries no ether.
func (w *Wallet) SendToken(ctx context.Context, to, contract, amount, password string, decimals int, opts ...SendOption) (string, error) {
	const op = "send token"
	o := buildSendOptions(opts)

	token, err := parseAddress(op, contract)
	if err != nil {
		return "", err
	}
	from, err := w.address(op)
	if err != nil {
		return "", err
	}
	toAddr, err := parseAddress(op, to)
	if err != nil {
		return "", err
	}

	release, err := w.acquire(ctx, op)
	if err != nil {
		return "", err
	}
	defer release()

	if _, err := w.accounts.Keystore(); err != nil {
		return "", err
	}

	if decimals < 0 || decimals > 255 {
		return "", wallet.E(wallet.KindConversionFailure, op, fmt.Errorf("decimals out of range: %d", decimals))
	}
	units, err := chain.ParseUnits(amount, uint8(decimals))
	if err != nil {
		return "", wallet.E(wallet.KindConversionFailure, op, err)
	}

	cctx, cancel := w.callCtx(ctx)
	balance, err := chain.TokenBalance(cctx, w.chain, w.chainName, token, from)
	cancel()
	if err != nil {
		return "", contractErr(op, err)
	}
	if balance.Cmp(units) < 0 {
		return "", wallet.E(wallet.KindNotEnoughBalance, op, nil)
	}

	data, err := chain.PackTransfer(toAddr, units)
	if err != nil {
		return "", wallet.E(wallet.KindContractFailure, op, err)
	}

	gasPrice, err := o.gasPrice(op)
	if err != nil {
		return "", err
	}

	intent := tx.Intent{
		Chain:            w.chainName,
		From:             from,
		To:               token,
		ValueWei:         new(big.Int),
		Data:             data,
		GasPrice:         gasPrice,
		FallbackGasLimit: chain.DefaultTokenGasLimit,
	}
	return w.submit(ctx, op, intent, password, receipts.Submission{
		Kind:  receipts.KindToken,
		From:  from.Hex(),
		To:    toAddr.Hex(),
		Token: token.Hex(),
		Value: units.String(),
	})
}

// submit unlocks the signer, builds, signs and broadcasts intent. Caller
// holds the send slot.
func (w *Wallet) submit(ctx context.Context, op string, intent tx.Intent, password string, sub receipts.Submission) (string, error) {
	chainID, err := w.chain.ChainID(w.chainName)
	if err != nil {
		return "", wallet.E(wallet.KindNetworkFailure, op, err)
	}
	intent.ChainID = chainID

	signer, err := w.accounts.Signer(password)
	if err != nil {
		if errors.Is(err, wallet.ErrDecrypt) || wallet.KindOf(err) != wallet.KindUnknown {
			return "", err
		}
		return "", wallet.E(wallet.KindContractFailure, op, err)
	}
	defer signer.Lock()

	bctx, cancel := w.callCtx(ctx)
	unsigned, fees, err := tx.BuildUnsignedTx(bctx, w.chain, intent)
	cancel()
	if err != nil {
		return "", wallet.E(wallet.KindNetworkFailure, op, err)
	}
	if !fees.EstimatedGas && intent.GasLimit == nil {
		w.log.Warn("gas estimation failed, using fallback limit", zap.Uint64("gas", fees.GasLimit))
	}

	signed, err := signer.SignTransaction(unsigned, chainID)
	if err != nil {
		return "", wallet.E(wallet.KindContractFailure, op, err)
	}

	// Once broadcast starts it runs to completion even if the caller gives up.
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()
	if err := w.chain.SendTransaction(sctx, w.chainName, signed); err != nil {
		return "", wallet.E(wallet.KindNetworkFailure, op, err)
	}

	hash := signed.Hash()
	w.log.Info("transaction broadcast",
		zap.String("op", op),
		zap.String("tx", hash.Hex()),
		zap.Uint64("nonce", signed.Nonce()))

	if w.journal != nil {
		sub.Chain = w.chainName
		sub.TxHash = hash.Hex()
		if err := w.journal.Record(sctx, sub); err != nil {
			w.log.Warn("failed to journal transaction", zap.String("tx", hash.Hex()), zap.Error(err))
		}
	}

	return strings.TrimPrefix(hash.Hex(), "0x"), nil
}

// WaitReceipt blocks until the transaction is mined or ctx ends, and
// updates the journal with the outcome.
func (w *Wallet) WaitReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	const op = "wait receipt"

	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(txHash), "0x"))
	if err != nil || len(raw) != common.HashLength {
		return nil, wallet.E(wallet.KindUnexpectedResult, op, fmt.Errorf("bad tx hash %q", txHash))
	}
	hash := common.BytesToHash(raw)

	receipt, err := w.chain.WaitMined(ctx, w.chainName, hash)
	if err != nil {
		return nil, wallet.E(wallet.KindNetworkFailure, op, err)
	}

	if w.journal != nil {
		if err := w.journal.UpdateReceipt(ctx, w.chainName, receipt); err != nil {
			w.log.Debug("receipt not journaled", zap.String("tx", hash.Hex()), zap.Error(err))
		}
	}
	return receipt, nil
}
