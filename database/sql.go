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

package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/blnkfinance/teller/model"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

const (
	selectAccountsQuery = `SELECT account_number, pin, balance, transactions FROM accounts`
	deleteAccountsQuery = `DELETE FROM accounts`
	insertAccountQuery  = `INSERT INTO accounts (account_number, pin, balance, transactions) VALUES (?, ?, ?, ?)`
)

// SQLStore keeps one row per account in the accounts table. The whole ledger
// is rewritten inside a single transaction on every save.
type SQLStore struct {
	Conn    *sql.DB
	dialect string
}

// NewSQLStore wraps an open connection. dialect is the sql-migrate dialect
// name: postgres, sqlite3 or mysql.
func NewSQLStore(conn *sql.DB, dialect string) *SQLStore {
	return &SQLStore{Conn: conn, dialect: dialect}
}

func (s *SQLStore) Dialect() string {
	return s.dialect
}

// Migrate applies (or rolls back) the embedded schema migrations.
func (s *SQLStore) Migrate(direction migrate.MigrationDirection) (int, error) {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: SQLFiles,
		Root:       "sql",
	}
	return migrate.Exec(s.Conn, s.dialect, migrations, direction)
}

func (s *SQLStore) Initialize(_ context.Context) error {
	if _, err := s.Migrate(migrate.Up); err != nil {
		return storeUnavailable(fmt.Errorf("migrating accounts table: %w", err))
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (model.Ledger, error) {
	rows, err := s.Conn.QueryContext(ctx, selectAccountsQuery)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	defer rows.Close()

	ledger := model.Ledger{}
	for rows.Next() {
		var (
			number, pin, txns string
			account           model.Account
		)
		if err := rows.Scan(&number, &pin, &account.Balance, &txns); err != nil {
			return nil, storeCorrupt(err)
		}
		if err := json.Unmarshal([]byte(txns), &account.Transactions); err != nil {
			return nil, storeCorrupt(fmt.Errorf("transactions of account %s: %w", number, err))
		}
		account.Pin = pin
		ledger[number] = account
	}
	if err := rows.Err(); err != nil {
		return nil, storeUnavailable(err)
	}
	if err := ledger.Validate(); err != nil {
		return nil, storeCorrupt(fmt.Errorf("invalid ledger: %w", err))
	}
	return ledger.Normalize(), nil
}

func (s *SQLStore) Save(ctx context.Context, ledger model.Ledger) (err error) {
	tx, err := s.Conn.BeginTx(ctx, nil)
	if err != nil {
		return storeUnavailable(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			err = storeUnavailable(err)
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteAccountsQuery); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertAccountQuery))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, number := range ledger.Numbers() {
		account := ledger[number]
		txns := account.Transactions
		if txns == nil {
			txns = []string{}
		}
		var encoded []byte
		encoded, err = json.Marshal(txns)
		if err != nil {
			return err
		}
		if _, err = stmt.ExecContext(ctx, number, account.Pin, account.Balance, string(encoded)); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

func (s *SQLStore) Close() error {
	return s.Conn.Close()
}

// rebind rewrites ? placeholders into the $n form postgres expects.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
