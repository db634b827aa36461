package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/chain"
	"github.com/yolodolo42/ethwallet/internal/ethwallet"
	"github.com/yolodolo42/ethwallet/internal/ui"
)

func newPortfolioCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show the ether balance on several chains",
		Long:  `Query the wallet's native balance on several chains in parallel.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			names, _ := cmd.Flags().GetStringSlice("chains")
			includeTestnet, _ := cmd.Flags().GetBool("testnet")
			if len(names) == 0 {
				names = portfolioChains(a.chain, includeTestnet)
			}

			ctx := cmd.Context()
			futures := make([]*ethwallet.Future[string], len(names))
			for i, name := range names {
				w, err := a.walletOn(name)
				if err != nil {
					return err
				}
				futures[i] = w.EtherBalanceAsync(ctx)
			}

			rows := make([][]string, 0, len(names))
			for i, name := range names {
				symbol := "ETH"
				if cc, err := a.chain.GetChainConfig(name); err == nil {
					symbol = cc.NativeCurrency
				}
				bal, err := futures[i].Await(ctx)
				if err != nil {
					rows = append(rows, []string{name, ui.Failure(describe(err)), ""})
					continue
				}
				rows = append(rows, []string{name, ui.AmountStyle.Render(bal), symbol})
			}

			addr, _ := a.accounts.Address()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Field("Address", ui.AddressStyle.Render(addr.Hex())))
			fmt.Fprintln(out, ui.Table([]string{"Chain", "Balance", ""}, rows))
			return nil
		},
	}
	cmd.Flags().StringSlice("chains", nil, "chains to query (default: all mainnets)")
	cmd.Flags().Bool("testnet", false, "include testnets when --chains is not set")
	return cmd
}

// portfolioChains returns the configured chain names, skipping testnets
// unless asked for.
func portfolioChains(c *chain.Client, includeTestnet bool) []string {
	var names []string
	for _, name := range c.ListChains() {
		cc, err := c.GetChainConfig(name)
		if err != nil {
			continue
		}
		if cc.IsTestnet && !includeTestnet {
			continue
		}
		names = append(names, name)
	}
	return names
}
