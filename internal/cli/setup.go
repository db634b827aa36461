package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/setup"
)

func newSetupCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Run the setup wizard",
		Long: `Run the interactive setup wizard.

This command guides you through:
  - Creating a wallet or importing one from a recovery phrase or private key
  - Choosing the password that encrypts it
  - Backing up a newly generated recovery phrase`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !st.terminal {
				return fmt.Errorf("setup requires an interactive terminal; use 'ethwallet wallet create' or 'ethwallet wallet import-key' instead")
			}
			a, err := st.App()
			if err != nil {
				return err
			}

			result, err := setup.RunWizard(a.accounts)
			if err != nil {
				return fmt.Errorf("setup failed: %w", err)
			}
			if result == nil || result.Cancelled {
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\nSetup complete! Run 'ethwallet balance' to check your funds.")
			return nil
		},
	}
}
