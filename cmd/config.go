package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blnkfinance/teller/config"
)

func configCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "config outputs your instances computed configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Fetch()
			if err != nil {
				return fmt.Errorf("error getting config: %w", err)
			}

			redacted := *cfg
			if redacted.Server.SecretKey != "" {
				redacted.Server.SecretKey = "********"
			}

			data, err := json.MarshalIndent(redacted, "", "    ")
			if err != nil {
				return fmt.Errorf("error printing config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	return cmd
}
