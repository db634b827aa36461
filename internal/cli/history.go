package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/ui"
)

func newHistoryCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the wallet's past transactions",
		Long:  `List normal transactions of the wallet address as indexed by Etherscan, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			addr, err := a.wallet.Address()
			if err != nil {
				return err
			}
			records, err := a.wallet.TransactionHistory(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No transactions found.")
				return nil
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				dir := ui.SymbolIn
				if r.IsOutgoing(addr) {
					dir = ui.SymbolOut
				}
				status := ui.SymbolCheck
				if r.Failed() {
					status = ui.SymbolCross
				}
				when := ""
				if t := r.Time(); !t.IsZero() {
					when = t.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{when, dir, r.Counterparty(addr), r.ValueEther(), status, r.Hash})
			}
			fmt.Fprintln(out, ui.Table([]string{"Time", "", "Counterparty", "Ether", "", "Hash"}, rows))
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of transactions to show (0 for all)")
	return cmd
}

func newPriceCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show the spot price of ether",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			vs, _ := cmd.Flags().GetString("vs")

			price, err := a.wallet.EtherPrice(cmd.Context(), vs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "1 ETH = %s %s\n", ui.AmountStyle.Render(price), vs)
			return nil
		},
	}
	cmd.Flags().String("vs", "usd", "quote currency")
	return cmd
}
