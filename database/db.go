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
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/blnkfinance/teller/config"
	"github.com/blnkfinance/teller/internal/apierror"
	redis_db "github.com/blnkfinance/teller/internal/redis-db"
)

const connectRetries = 3

// NewDataSource picks the ledger backend named by the data source DNS.
// A bare path (or file://path) selects the JSON file store.
func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	dns := configuration.DataSource.Dns
	scheme, rest := splitScheme(dns)

	switch scheme {
	case "", "file":
		if rest == "" {
			return nil, fmt.Errorf("data source %q names no file", dns)
		}
		return NewFileStore(rest), nil
	case "memory":
		return NewMemoryStore(), nil
	case "postgres", "postgresql":
		con, err := ConnectDB("postgres", dns)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(con, "postgres"), nil
	case "sqlite", "sqlite3":
		con, err := ConnectDB("sqlite3", rest)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(con, "sqlite3"), nil
	case "mysql":
		con, err := ConnectDB("mysql", rest)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(con, "mysql"), nil
	case "redis", "rediss":
		client, err := connectRedis(dns)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client.Client(), configuration.DataSource.RedisKey), nil
	default:
		return nil, fmt.Errorf("unsupported data source scheme %q", scheme)
	}
}

// ConnectDB opens a SQL connection and waits for it to answer a ping,
// retrying with exponential backoff.
func ConnectDB(driver, dns string) (*sql.DB, error) {
	db, err := sql.Open(driver, dns)
	if err != nil {
		return nil, err
	}
	err = backoff.Retry(db.Ping, newBackOff())
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		db.Close()
		return nil, err
	}
	return db, nil
}

func connectRedis(dns string) (*redis_db.Redis, error) {
	var client *redis_db.Redis
	err := backoff.Retry(func() error {
		var err error
		client, err = redis_db.NewRedisClient([]string{dns})
		return err
	}, newBackOff())
	if err != nil {
		log.Printf("redis Connection error ❌: %v", err)
		return nil, err
	}
	return client, nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 10 * time.Second
	return backoff.WithMaxRetries(b, connectRetries)
}

func splitScheme(dns string) (string, string) {
	idx := strings.Index(dns, "://")
	if idx < 0 {
		return "", dns
	}
	return strings.ToLower(dns[:idx]), dns[idx+3:]
}

func storeCorrupt(err error) error {
	return apierror.NewAPIError(apierror.ErrStoreCorrupt, "ledger store is corrupt", err)
}

func storeUnavailable(err error) error {
	return apierror.NewAPIError(apierror.ErrStoreUnavailable, "ledger store is unavailable", err)
}
