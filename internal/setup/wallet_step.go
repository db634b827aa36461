package setup

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
)

// Mode is how the wallet is being set up.
type Mode string

const (
	ModeCreate   Mode = "create"
	ModeMnemonic Mode = "mnemonic"
	ModeKey      Mode = "key"
	ModeKeep     Mode = "keep"
)

type walletDoneMsg struct {
	address  common.Address
	mnemonic string
	err      error
}

// runWallet performs the identity change for mode off the UI goroutine.
func runWallet(accounts Accounts, mode Mode, secret, password string) tea.Cmd {
	return func() tea.Msg {
		var (
			addr common.Address
			err  error
		)
		switch mode {
		case ModeCreate:
			addr, err = accounts.GenerateAccount(password)
		case ModeMnemonic:
			addr, err = accounts.ImportMnemonic(secret, password)
		case ModeKey:
			addr, err = accounts.ImportPrivateKey(secret, password)
		}
		if err != nil {
			return walletDoneMsg{err: err}
		}

		msg := walletDoneMsg{address: addr}
		if mode == ModeCreate {
			// An unreadable phrase shows as missing on the backup screen.
			if phrase, ok, err := accounts.Mnemonic(); err == nil && ok {
				msg.mnemonic = phrase
			}
		}
		return msg
	}
}

// phraseWords splits a phrase for numbered display.
func phraseWords(phrase string) []string {
	return strings.Fields(phrase)
}
