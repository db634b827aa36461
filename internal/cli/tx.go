package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/ethwallet"
	"github.com/yolodolo42/ethwallet/internal/ui"
)

func newTxCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect transactions sent from this device",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List journaled transfers on the selected chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			if a.journal == nil {
				return fmt.Errorf("journal: %w", ethwallet.ErrNotConfigured)
			}
			limit, _ := cmd.Flags().GetInt("limit")

			subs, err := a.journal.List(cmd.Context(), a.wallet.Chain(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(subs) == 0 {
				fmt.Fprintln(out, "No transactions recorded.")
				return nil
			}

			rows := make([][]string, 0, len(subs))
			for _, s := range subs {
				gas := ""
				if s.GasUsed > 0 {
					gas = strconv.FormatUint(s.GasUsed, 10)
				}
				rows = append(rows, []string{
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					s.Kind,
					s.To,
					s.Value,
					s.Status,
					gas,
					s.TxHash,
				})
			}
			fmt.Fprintln(out, ui.Table([]string{"Sent", "Kind", "To", "Value", "Status", "Gas", "Hash"}, rows))
			return nil
		},
	}
	list.Flags().Int("limit", 20, "maximum number of rows")

	wait := &cobra.Command{
		Use:   "wait <hash>",
		Short: "Wait for a transaction to be mined",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := st.App()
			if err != nil {
				return err
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			receipt, err := a.wallet.WaitReceipt(ctx, args[0])
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("not mined after %s", timeout)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if receipt.Status == 1 {
				fmt.Fprintln(out, ui.Success("Transaction succeeded"))
			} else {
				fmt.Fprintln(out, ui.Failure("Transaction reverted"))
			}
			fmt.Fprintln(out, ui.Field("Block", receipt.BlockNumber.String()))
			fmt.Fprintln(out, ui.Field("Gas used", strconv.FormatUint(receipt.GasUsed, 10)))
			return nil
		},
	}
	wait.Flags().Duration("timeout", defaultWaitTimeout, "how long to wait")

	cmd.AddCommand(list, wait)
	return cmd
}
