// Package cli is the ethwallet command line.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yolodolo42/ethwallet/internal/config"
	"github.com/yolodolo42/ethwallet/internal/setup"
	"github.com/yolodolo42/ethwallet/internal/ui"
	"github.com/yolodolo42/ethwallet/internal/wallet"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// state is shared by every command of one invocation.
type state struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	app     *app

	in       *bufio.Reader
	stdinFd  int
	terminal bool
}

func newState(stdin io.Reader) *state {
	st := &state{
		v:  viper.New(),
		in: bufio.NewReader(stdin),
	}
	if f, ok := stdin.(*os.File); ok {
		st.stdinFd = int(f.Fd())
		st.terminal = term.IsTerminal(st.stdinFd)
	}
	return st
}

// load resolves configuration once flags are parsed.
func (st *state) load(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	if err := st.v.BindPFlag("chain", flags.Lookup("chain")); err != nil {
		return err
	}
	if err := st.v.BindPFlag("data_dir", flags.Lookup("data-dir")); err != nil {
		return err
	}

	cfg, err := config.Load(st.v, st.cfgFile)
	if err != nil {
		return err
	}
	st.cfg = cfg
	return nil
}

func (st *state) close() {
	if st.app != nil {
		st.app.Close()
		st.app = nil
	}
}

// Execute runs the command line against the process arguments.
func Execute() error {
	st := newState(os.Stdin)
	defer st.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(st)
	err := root.ExecuteContext(ctx)
	if err != nil {
		if st.app != nil {
			st.app.log.Debug("command failed", zap.Error(err))
		}
		fmt.Fprintln(root.ErrOrStderr(), ui.Failure(describe(err)))
	}
	return err
}

// describe returns the fixed message for wallet errors and the error text
// for anything else.
func describe(err error) string {
	if errors.Is(err, wallet.ErrDecrypt) || wallet.KindOf(err) != wallet.KindUnknown {
		return wallet.Describe(err)
	}
	return err.Error()
}

func newRootCmd(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:   "ethwallet",
		Short: "Single-account Ethereum wallet",
		Long: `ethwallet keeps one Ethereum account on this device.

It creates or imports the account, stores it as an encrypted keystore,
reads ether and ERC-20 balances, and signs and broadcasts transfers after
asking for your password.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}

			if setup.NeedsSetup(a.accounts) {
				if !st.terminal {
					fmt.Fprintln(cmd.OutOrStdout(), "No wallet found. Run 'ethwallet setup' or 'ethwallet wallet create'.")
					return nil
				}
				result, err := setup.RunWizard(a.accounts)
				if err != nil {
					return fmt.Errorf("setup failed: %w", err)
				}
				if result == nil || result.Cancelled {
					return nil
				}
			}

			addr, _ := a.accounts.Address()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Field("Address", ui.AddressStyle.Render(addr.Hex())))
			fmt.Fprintln(out, ui.Field("Chain", a.wallet.Chain()))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&st.cfgFile, "config", "", "config file (default is $HOME/.ethwallet/config.yaml)")
	root.PersistentFlags().String("chain", "", "chain to use (default ethereum)")
	root.PersistentFlags().String("data-dir", "", "wallet data directory (default $HOME/.ethwallet)")

	root.AddCommand(
		newWalletCmd(st),
		newBalanceCmd(st),
		newTokenCmd(st),
		newSendCmd(st),
		newHistoryCmd(st),
		newPriceCmd(st),
		newTxCmd(st),
		newChainsCmd(st),
		newPortfolioCmd(st),
		newSetupCmd(st),
	)
	return root
}
