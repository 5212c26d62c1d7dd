/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package main provides the CLI commands for managing the accounts table
migrations of the SQL ledger stores.
*/

package main

import (
	"errors"
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/teller/database"
)

var errNotSQL = errors.New("migrations only apply to postgres, sqlite and mysql data sources")

// migrateCommands creates the root command for migration-related operations.
func migrateCommands(app *tellerInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "manage the accounts table",
	}

	cmd.AddCommand(migrateDirectionCommand(app, "up", migrate.Up, "Applied %d migrations!\n"))
	cmd.AddCommand(migrateDirectionCommand(app, "down", migrate.Down, "Rolled back %d migrations!\n"))

	return cmd
}

func migrateDirectionCommand(app *tellerInstance, use string, direction migrate.MigrationDirection, done string) *cobra.Command {
	return &cobra.Command{
		Use: use,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.dataSource()
			if err != nil {
				return err
			}
			store, ok := ds.(*database.SQLStore)
			if !ok {
				ds.Close()
				return errNotSQL
			}
			defer store.Close()

			n, err := store.Migrate(direction)
			if err != nil {
				return fmt.Errorf("error migrating %s: %w", use, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), done, n)
			return nil
		},
	}
}
