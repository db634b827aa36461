package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/ui"
)

func newBalanceCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the ether balance",
		Long:  `Show the wallet's native balance on the selected chain, truncated to eight decimals.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}

			bal, err := a.wallet.EtherBalance(cmd.Context())
			if err != nil {
				return err
			}

			symbol := "ETH"
			if cc, err := a.chain.GetChainConfig(a.wallet.Chain()); err == nil {
				symbol = cc.NativeCurrency
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.AmountStyle.Render(bal), symbol)
			return nil
		},
	}
}

func newTokenCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Query an ERC-20 token",
	}

	// tokenQuery runs one lookup against the contract argument.
	tokenQuery := func(use, short string, run func(ctx context.Context, a *app, contract string) (string, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <contract>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := st.App()
				if err != nil {
					return err
				}
				out, err := run(cmd.Context(), a, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			},
		}
	}

	balance := tokenQuery("balance", "Show the wallet's token balance in base units", func(ctx context.Context, a *app, contract string) (string, error) {
		return a.wallet.TokenBalance(ctx, contract)
	})
	decimals := tokenQuery("decimals", "Show the token's decimals", func(ctx context.Context, a *app, contract string) (string, error) {
		d, err := a.wallet.TokenDecimals(ctx, contract)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(d), nil
	})
	symbol := tokenQuery("symbol", "Show the token's symbol", func(ctx context.Context, a *app, contract string) (string, error) {
		return a.wallet.TokenSymbol(ctx, contract)
	})

	info := &cobra.Command{
		Use:   "info <contract>",
		Short: "Show symbol, decimals and balance together",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			contract := args[0]

			symF := a.wallet.TokenSymbolAsync(ctx, contract)
			decF := a.wallet.TokenDecimalsAsync(ctx, contract)
			balF := a.wallet.TokenBalanceAsync(ctx, contract)

			sym, err := symF.Await(ctx)
			if err != nil {
				return err
			}
			dec, err := decF.Await(ctx)
			if err != nil {
				return err
			}
			bal, err := balF.Await(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Field("Symbol", sym))
			fmt.Fprintln(out, ui.Field("Decimals", strconv.Itoa(dec)))
			fmt.Fprintln(out, ui.Field("Balance", ui.AmountStyle.Render(bal)))
			return nil
		},
	}

	cmd.AddCommand(balance, decimals, symbol, info)
	return cmd
}
