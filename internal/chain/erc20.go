package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultTokenGasLimit is used for token transfers when estimation fails.
const DefaultTokenGasLimit uint64 = 100000

// Errors returned by the ERC-20 helpers.
var (
	ErrPack   = errors.New("abi pack failed")
	ErrDecode = errors.New("abi decode failed")
)

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var erc20ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic(fmt.Sprintf("parse erc20 abi: %v", err))
	}
	return parsed
}()

// Caller executes read-only contract calls. *Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, chainName string, msg ethereum.CallMsg) ([]byte, error)
}

// PackTransfer encodes transfer(to, amount).
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: transfer amount must be non-negative", ErrPack)
	}
	data, err := erc20ABI.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: transfer: %v", ErrPack, err)
	}
	return data, nil
}

func callERC20(ctx context.Context, c Caller, chainName string, token common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPack, method, err)
	}
	return c.CallContract(ctx, chainName, ethereum.CallMsg{To: &token, Data: data})
}

// TokenBalance returns holder's balance of token in base units.
func TokenBalance(ctx context.Context, c Caller, chainName string, token, holder common.Address) (*big.Int, error) {
	out, err := callERC20(ctx, c, chainName, token, "balanceOf", holder)
	if err != nil {
		return nil, err
	}

	values, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil || len(values) != 1 {
		return nil, fmt.Errorf("%w: balanceOf: %v", ErrDecode, err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf returned %T", ErrDecode, values[0])
	}
	return balance, nil
}

// TokenDecimals returns the token's decimals().
func TokenDecimals(ctx context.Context, c Caller, chainName string, token common.Address) (uint8, error) {
	out, err := callERC20(ctx, c, chainName, token, "decimals")
	if err != nil {
		return 0, err
	}

	// Some tokens declare uint256; anything that does not fit a byte is bogus.
	if len(out) != 32 {
		return 0, fmt.Errorf("%w: decimals returned %d bytes", ErrDecode, len(out))
	}
	v := new(big.Int).SetBytes(out)
	if !v.IsUint64() || v.Uint64() > 255 {
		return 0, fmt.Errorf("%w: decimals out of range: %s", ErrDecode, v)
	}
	return uint8(v.Uint64()), nil
}

// TokenSymbol returns the token's symbol(). Tokens that return bytes32
// instead of string are supported.
func TokenSymbol(ctx context.Context, c Caller, chainName string, token common.Address) (string, error) {
	out, err := callERC20(ctx, c, chainName, token, "symbol")
	if err != nil {
		return "", err
	}
	return decodeString(out)
}

// decodeString decodes an ABI string, falling back to a NUL-padded bytes32.
func decodeString(data []byte) (string, error) {
	if len(data) == 32 {
		return strings.TrimRight(string(data), "\x00"), nil
	}

	values, err := erc20ABI.Unpack("symbol", data)
	if err != nil || len(values) != 1 {
		return "", fmt.Errorf("%w: string: %v", ErrDecode, err)
	}
	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: string returned %T", ErrDecode, values[0])
	}
	return s, nil
}
