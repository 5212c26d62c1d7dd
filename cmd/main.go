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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blnkfinance/teller"
	"github.com/blnkfinance/teller/config"
	"github.com/blnkfinance/teller/database"
	"github.com/blnkfinance/teller/internal/notification"
)

// Teller represents the CLI application, encapsulating the root Cobra command.
type Teller struct {
	cmd *cobra.Command
}

// tellerInstance holds what the subcommands share: the loaded configuration
// and, once a command asks for it, the ledger store it selects.
type tellerInstance struct {
	configFile string
	cnf        *config.Configuration
	datasource database.IDataSource
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration. Stores are connected by the commands
// that use them.
func preRun(app *tellerInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(app.configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		app.cnf = cnf
		return nil
	}
}

// dataSource connects to the configured ledger store on first use.
func (app *tellerInstance) dataSource() (database.IDataSource, error) {
	if app.datasource != nil {
		return app.datasource, nil
	}
	db, err := database.NewDataSource(app.cnf)
	if err != nil {
		notification.NotifyError(err)
		return nil, fmt.Errorf("error getting datasource: %w", err)
	}
	app.datasource = db
	return db, nil
}

// openTeller initializes the store and loads the ledger. A store that
// cannot be read or parsed stops the command.
func (app *tellerInstance) openTeller(ctx context.Context) (*teller.Teller, error) {
	ds, err := app.dataSource()
	if err != nil {
		return nil, err
	}
	t, err := teller.NewTeller(ctx, ds)
	if err != nil {
		ds.Close()
		notification.NotifyError(err)
		return nil, fmt.Errorf("error opening ledger %s: %w", app.cnf.DataSource.Dns, err)
	}
	return t, nil
}

// NewCLI creates the command-line interface (CLI) for the Teller application.
func NewCLI() *Teller {
	app := &tellerInstance{}

	var rootCmd = &cobra.Command{
		Use:           "teller",
		Short:         "Account teller with a durable ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "./teller.json", "Configuration file for teller")
	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(sessionCommands(app))
	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(initCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(configCommands())

	return &Teller{cmd: rootCmd}
}

// executeCLI runs the root command, handling any errors that occur during execution.
func (w Teller) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
