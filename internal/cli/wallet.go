package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/ui"
	"github.com/yolodolo42/ethwallet/internal/wallet"
)

var errAborted = errors.New("aborted")

func newWalletCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the device wallet",
		Long: `Create, import and inspect the single Ethereum account kept on this
device. Creating or importing replaces any existing account.`,
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a new wallet from a fresh recovery phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			if ok, err := st.confirmReplace(cmd, a); err != nil || !ok {
				return err
			}

			password, err := st.newPassword(cmd)
			if err != nil {
				return err
			}

			addr, err := a.accounts.GenerateAccount(password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Success("Wallet created"))
			fmt.Fprintln(out, ui.Field("Address", ui.AddressStyle.Render(addr.Hex())))
			fmt.Fprintln(out, ui.Field("Keystore", a.accounts.Store().Path()))

			if phrase, ok, err := a.accounts.Mnemonic(); err == nil && ok {
				fmt.Fprintln(out)
				fmt.Fprintln(out, ui.Warning("Write down your recovery phrase and keep it offline:"))
				fmt.Fprintln(out, "  "+phrase)
			}
			return nil
		},
	}

	importKey := &cobra.Command{
		Use:   "import-key",
		Short: "Import a wallet from a private key",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			if ok, err := st.confirmReplace(cmd, a); err != nil || !ok {
				return err
			}

			key, _ := cmd.Flags().GetString("key")
			if key == "" {
				if key, err = st.secret(cmd, "Enter private key (hex): "); err != nil {
					return err
				}
			}
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("private key is required")
			}

			password, err := st.newPassword(cmd)
			if err != nil {
				return err
			}

			addr, err := a.accounts.ImportPrivateKey(key, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Success("Wallet imported"))
			fmt.Fprintln(out, ui.Field("Address", ui.AddressStyle.Render(addr.Hex())))
			return nil
		},
	}
	importKey.Flags().String("key", "", "private key to import (hex, with or without 0x prefix)")

	importMnemonic := &cobra.Command{
		Use:   "import-mnemonic",
		Short: "Import a wallet from a BIP-39 recovery phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			if ok, err := st.confirmReplace(cmd, a); err != nil || !ok {
				return err
			}

			phrase, err := st.prompt(cmd, "Enter recovery phrase: ")
			if err != nil {
				return err
			}

			password, err := st.newPassword(cmd)
			if err != nil {
				return err
			}

			addr, err := a.accounts.ImportMnemonic(phrase, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Success("Wallet imported"))
			fmt.Fprintln(out, ui.Field("Address", ui.AddressStyle.Render(addr.Hex())))
			return nil
		},
	}

	address := &cobra.Command{
		Use:   "address",
		Short: "Print the wallet address",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			addr, err := a.wallet.Address()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr.Hex())
			return nil
		},
	}

	exportKey := &cobra.Command{
		Use:   "export-key",
		Short: "Print the decrypted private key",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			ok, err := st.confirm(cmd, "The private key gives full control of your funds. Show it?", yes)
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}

			password, err := st.secret(cmd, "Enter wallet password: ")
			if err != nil {
				return err
			}
			key, err := a.accounts.PrivateKey(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	exportKey.Flags().BoolP("yes", "y", false, "skip the confirmation")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check a password against the keystore",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			if !a.accounts.HasAccount() {
				return wallet.E(wallet.KindAccountDoesNotExist, "verify", nil)
			}
			password, err := st.secret(cmd, "Enter wallet password: ")
			if err != nil {
				return err
			}
			if !a.accounts.VerifyPassword(password) {
				return fmt.Errorf("verify: %w", wallet.ErrDecrypt)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Password is correct"))
			return nil
		},
	}

	mnemonic := &cobra.Command{
		Use:   "mnemonic",
		Short: "Print the stored recovery phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			if !a.accounts.HasAccount() {
				return wallet.E(wallet.KindAccountDoesNotExist, "mnemonic", nil)
			}
			password, err := st.secret(cmd, "Enter wallet password: ")
			if err != nil {
				return err
			}
			if !a.accounts.VerifyPassword(password) {
				return fmt.Errorf("mnemonic: %w", wallet.ErrDecrypt)
			}

			phrase, ok, err := a.accounts.Mnemonic()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "This wallet was imported from a private key and has no recovery phrase.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), phrase)
			return nil
		},
	}

	cmd.AddCommand(create, importKey, importMnemonic, address, exportKey, verify, mnemonic)
	return cmd
}

// confirmReplace asks before overwriting an existing wallet. The answer is
// only asked on a terminal; scripted input replaces without asking.
func (st *state) confirmReplace(cmd *cobra.Command, a *app) (bool, error) {
	addr, ok := a.accounts.Address()
	if !ok || !st.terminal {
		return true, nil
	}
	ok, err := st.confirm(cmd, fmt.Sprintf("This replaces wallet %s. Continue?", addr.Hex()), false)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
	}
	return ok, nil
}
