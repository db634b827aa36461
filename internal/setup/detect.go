package setup

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/term"
)

// Accounts is the identity store the wizard drives. *wallet.AccountManager
// satisfies it.
type Accounts interface {
	HasAccount() bool
	Address() (common.Address, bool)
	GenerateAccount(password string) (common.Address, error)
	ImportMnemonic(phrase, password string) (common.Address, error)
	ImportPrivateKey(privateKeyHex, password string) (common.Address, error)
	Mnemonic() (string, bool, error)
}

// Status is the current onboarding state.
type Status struct {
	HasWallet     bool
	WalletAddress string
	// HasMnemonic is set when the recovery phrase is held in the secret
	// store, i.e. the wallet was generated or imported from a phrase.
	HasMnemonic bool
}

// DetectStatus inspects accounts. Errors reading the secret store count as
// no mnemonic.
func DetectStatus(accounts Accounts) Status {
	var st Status
	addr, ok := accounts.Address()
	if !ok {
		return st
	}
	st.HasWallet = true
	st.WalletAddress = addr.Hex()

	if _, found, err := accounts.Mnemonic(); err == nil && found {
		st.HasMnemonic = true
	}
	return st
}

// NeedsSetup reports whether no wallet exists yet.
func NeedsSetup(accounts Accounts) bool {
	return !accounts.HasAccount()
}

// IsInteractive returns true if stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
