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
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/blnkfinance/teller/model"
)

// RedisStore keeps the serialized ledger under a single key, so every save is
// one SET and can never be observed half written.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Initialize(ctx context.Context) error {
	empty, err := encodeLedger(model.Ledger{})
	if err != nil {
		return storeUnavailable(err)
	}
	if err := r.client.SetNX(ctx, r.key, string(empty), 0).Err(); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (model.Ledger, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storeUnavailable(fmt.Errorf("ledger key %s is missing", r.key))
	}
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return decodeLedger(data)
}

func (r *RedisStore) Save(ctx context.Context, ledger model.Ledger) error {
	data, err := encodeLedger(ledger)
	if err != nil {
		return storeUnavailable(err)
	}
	if err := r.client.Set(ctx, r.key, string(data), 0).Err(); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
