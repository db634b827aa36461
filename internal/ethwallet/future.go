package ethwallet

import (
	"context"

	"github.com/yolodolo42/ethwallet/internal/wallet"
	"go.uber.org/zap"
)

// Future is the pending result of an asynchronous wallet operation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
	log  *zap.Logger
}

// Go runs fn in a new goroutine and returns its future.
func Go[T any](ctx context.Context, log *zap.Logger, fn func(context.Context) (T, error)) *Future[T] {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Future[T]{done: make(chan struct{}), log: log}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx ends. Abandoning the
// wait does not cancel the operation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete calls cb with a pointer to the value once the operation
// finishes, or with nil if it failed. The error itself is not passed on;
// it is logged at warn level instead. Prefer Await.
func (f *Future[T]) OnComplete(cb func(*T)) {
	go func() {
		<-f.done
		if f.err != nil {
			f.log.Warn("async wallet call failed; callback receives nil",
				zap.Stringer("kind", wallet.KindOf(f.err)), zap.Error(f.err))
			cb(nil)
			return
		}
		v := f.val
		cb(&v)
	}()
}

// EtherBalanceAsync is the asynchronous form of EtherBalance.
func (w *Wallet) EtherBalanceAsync(ctx context.Context) *Future[string] {
	return Go(ctx, w.log, w.EtherBalance)
}

// TokenBalanceAsync is the asynchronous form of TokenBalance.
func (w *Wallet) TokenBalanceAsync(ctx context.Context, contract string) *Future[string] {
	return Go(ctx, w.log, func(ctx context.Context) (string, error) {
		return w.TokenBalance(ctx, contract)
	})
}

// TokenDecimalsAsync is the asynchronous form of TokenDecimals.
func (w *Wallet) TokenDecimalsAsync(ctx context.Context, contract string) *Future[int] {
	return Go(ctx, w.log, func(ctx context.Context) (int, error) {
		return w.TokenDecimals(ctx, contract)
	})
}

// TokenSymbolAsync is the asynchronous form of TokenSymbol.
func (w *Wallet) TokenSymbolAsync(ctx context.Context, contract string) *Future[string] {
	return Go(ctx, w.log, func(ctx context.Context) (string, error) {
		return w.TokenSymbol(ctx, contract)
	})
}

// SendEtherAsync is the asynchronous form of SendEther.
func (w *Wallet) SendEtherAsync(ctx context.Context, to, amount, password string, opts ...SendOption) *Future[string] {
	return Go(ctx, w.log, func(ctx context.Context) (string, error) {
		return w.SendEther(ctx, to, amount, password, opts...)
	})
}

// SendTokenAsync is the asynchronous form of SendToken.
func (w *Wallet) SendTokenAsync(ctx context.Context, to, contract, amount, password string, decimals int, opts ...SendOption) *Future[string] {
	return Go(ctx, w.log, func(ctx context.Context) (string, error) {
		return w.SendToken(ctx, to, contract, amount, password, decimals, opts...)
	})
}
