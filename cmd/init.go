package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// initCommands creates the ledger store when it does not exist yet and
// reports what it holds.
func initCommands(app *tellerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "create the ledger store if it is missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.openTeller(cmd.Context())
			if err != nil {
				return err
			}
			defer t.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Ledger ready at %s with %d account(s)\n", app.cnf.DataSource.Dns, t.AccountCount())
			return nil
		},
	}
}
