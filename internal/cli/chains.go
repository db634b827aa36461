package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/ui"
)

func newChainsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List configured chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}

			var rows [][]string
			for _, name := range a.chain.ListChains() {
				cc, err := a.chain.GetChainConfig(name)
				if err != nil {
					continue
				}
				if err := cc.Validate(); err != nil {
					rows = append(rows, []string{name, "", "", "", ui.Failure(err.Error())})
					continue
				}
				marker := ""
				if name == a.wallet.Chain() {
					marker = ui.SymbolArrow
				}
				testnet := ""
				if cc.IsTestnet {
					testnet = "testnet"
				}
				rows = append(rows, []string{
					marker + name,
					cc.ChainID.String(),
					cc.NativeCurrency,
					testnet,
					strings.Join(cc.RPCURLs, ", "),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"Name", "Chain ID", "Currency", "", "RPC"}, rows))
			return nil
		},
	}
}
