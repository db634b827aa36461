package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/chain"
	"github.com/yolodolo42/ethwallet/internal/ethwallet"
	"github.com/yolodolo42/ethwallet/internal/ui"
	"github.com/yolodolo42/ethwallet/internal/wallet"
)

const defaultWaitTimeout = 5 * time.Minute

func newSendCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign and broadcast a transfer",
		Long: `Sign a transfer with the wallet key and broadcast it. The password is
asked for every transfer and the key is wiped after signing.`,
	}

	ether := &cobra.Command{
		Use:   "ether <to> <amount>",
		Short: "Send ether",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			to, amount := args[0], args[1]

			opts, err := sendOptions(cmd)
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			ok, err := st.confirm(cmd, fmt.Sprintf("Send %s ether to %s on %s?", amount, to, a.wallet.Chain()), yes)
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

			hash, err := a.wallet.SendEther(cmd.Context(), to, amount, password, opts...)
			if err != nil {
				return err
			}
			return reportSent(cmd, a, hash)
		},
	}
	addSendFlags(ether)

	token := &cobra.Command{
		Use:   "token <contract> <to> <amount>",
		Short: "Send an ERC-20 token",
		Long: `Send amount whole tokens. The amount is scaled by the token's decimals,
read from the contract unless --decimals is given.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			contract, to, amount := args[0], args[1], args[2]

			opts, err := sendOptions(cmd)
			if err != nil {
				return err
			}

			decimals, _ := cmd.Flags().GetInt("decimals")
			if decimals < 0 {
				if decimals, err = a.wallet.TokenDecimals(cmd.Context(), contract); err != nil {
					return err
				}
			}

			yes, _ := cmd.Flags().GetBool("yes")
			ok, err := st.confirm(cmd, fmt.Sprintf("Send %s of token %s to %s on %s?", amount, contract, to, a.wallet.Chain()), yes)
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

			hash, err := a.wallet.SendToken(cmd.Context(), to, contract, amount, password, decimals, opts...)
			if err != nil {
				return err
			}
			return reportSent(cmd, a, hash)
		},
	}
	addSendFlags(token)
	token.Flags().Int("decimals", -1, "token decimals (default: read from the contract)")

	cmd.AddCommand(ether, token)
	return cmd
}

func addSendFlags(cmd *cobra.Command) {
	cmd.Flags().String("gas-price", "", "legacy gas price in gwei (default: EIP-1559 fees from the node)")
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation")
	cmd.Flags().Bool("wait", false, "wait for the transaction to be mined")
}

// sendOptions rejects a bad --gas-price before anything is asked.
func sendOptions(cmd *cobra.Command) ([]ethwallet.SendOption, error) {
	var opts []ethwallet.SendOption
	if gwei, _ := cmd.Flags().GetString("gas-price"); gwei != "" {
		if _, err := chain.ParseGwei(gwei); err != nil {
			return nil, wallet.E(wallet.KindConversionFailure, "gas price", err)
		}
		opts = append(opts, ethwallet.WithGasPrice(gwei))
	}
	return opts, nil
}

func reportSent(cmd *cobra.Command, a *app, hash string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success("Transaction sent"))
	fmt.Fprintln(out, ui.Field("Hash", "0x"+hash))
	if cc, err := a.chain.GetChainConfig(a.wallet.Chain()); err == nil && cc.ExplorerURL != "" {
		fmt.Fprintln(out, ui.Field("Explorer", cc.ExplorerURL+"/tx/0x"+hash))
	}

	if wait, _ := cmd.Flags().GetBool("wait"); !wait {
		return nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for confirmation...")
	ctx, cancel := context.WithTimeout(cmd.Context(), defaultWaitTimeout)
	defer cancel()
	receipt, err := a.wallet.WaitReceipt(ctx, hash)
	if err != nil {
		return err
	}
	if receipt.Status == 1 {
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Mined in block %s", receipt.BlockNumber)))
	} else {
		fmt.Fprintln(out, ui.Failure(fmt.Sprintf("Reverted in block %s", receipt.BlockNumber)))
	}
	return nil
}
