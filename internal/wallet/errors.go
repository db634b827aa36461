package wallet

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/keystore"
)

// Kind classifies a wallet failure. The set is flat: every failure the
// wallet pipeline reports maps to exactly one kind.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAccountDoesNotExist
	KindInvalidPath
	KindInvalidKey
	KindInvalidMnemonics
	KindInvalidAddress
	KindMalformedKeystore
	KindNetworkFailure
	KindConversionFailure
	KindNotEnoughBalance
	KindContractFailure
	KindUnexpectedResult
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindAccountDoesNotExist: "account_does_not_exist",
	KindInvalidPath:         "invalid_path",
	KindInvalidKey:          "invalid_key",
	KindInvalidMnemonics:    "invalid_mnemonics",
	KindInvalidAddress:      "invalid_address",
	KindMalformedKeystore:   "malformed_keystore",
	KindNetworkFailure:      "network_failure",
	KindConversionFailure:   "conversion_failure",
	KindNotEnoughBalance:    "not_enough_balance",
	KindContractFailure:     "contract_failure",
	KindUnexpectedResult:    "unexpected_result",
}

var kindDescriptions = map[Kind]string{
	KindUnknown:             "Something went wrong.",
	KindAccountDoesNotExist: "No wallet exists on this device. Create or import one first.",
	KindInvalidPath:         "The wallet directory could not be created or accessed.",
	KindInvalidKey:          "The private key is not valid.",
	KindInvalidMnemonics:    "The recovery phrase is not valid.",
	KindInvalidAddress:      "The address is not valid.",
	KindMalformedKeystore:   "The wallet file is missing or damaged.",
	KindNetworkFailure:      "The network request failed. Check your connection and try again.",
	KindConversionFailure:   "The amount could not be read as a number.",
	KindNotEnoughBalance:    "The balance is too low for this transfer.",
	KindContractFailure:     "The contract call could not be prepared.",
	KindUnexpectedResult:    "The response was not in the expected format.",
}

// String returns the stable snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Description returns the fixed human-readable message shown to users.
func (k Kind) Description() string {
	if desc, ok := kindDescriptions[k]; ok {
		return desc
	}
	return kindDescriptions[KindUnknown]
}

// Error is the typed error returned by every wallet operation.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "send ether"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the bare sentinels below
// work with errors.Is regardless of Op and Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrAccountDoesNotExist = &Error{Kind: KindAccountDoesNotExist}
	ErrInvalidPath         = &Error{Kind: KindInvalidPath}
	ErrInvalidKey          = &Error{Kind: KindInvalidKey}
	ErrInvalidMnemonics    = &Error{Kind: KindInvalidMnemonics}
	ErrInvalidAddress      = &Error{Kind: KindInvalidAddress}
	ErrMalformedKeystore   = &Error{Kind: KindMalformedKeystore}
	ErrNetworkFailure      = &Error{Kind: KindNetworkFailure}
	ErrConversionFailure   = &Error{Kind: KindConversionFailure}
	ErrNotEnoughBalance    = &Error{Kind: KindNotEnoughBalance}
	ErrContractFailure     = &Error{Kind: KindContractFailure}
	ErrUnexpectedResult    = &Error{Kind: KindUnexpectedResult}
)

// ErrDecrypt is returned when a keystore cannot be decrypted with the
// supplied password.
var ErrDecrypt = keystore.ErrDecrypt

// E builds a typed error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnknown
}

// Describe returns the user-facing message for err.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrDecrypt) {
		return "The password is incorrect."
	}
	return KindOf(err).Description()
}
