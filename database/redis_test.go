package database

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/teller/config"
	"github.com/blnkfinance/teller/internal/apierror"
)

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	return NewRedisStore(client, config.DEFAULT_REDIS_KEY), s
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, s := newMiniredisStore(t)
	defer store.Close()

	require.NoError(t, store.Initialize(ctx))
	ledger, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	require.NoError(t, store.Save(ctx, sampleLedger()))
	require.NoError(t, store.Initialize(ctx))

	ledger, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleLedger(), ledger)

	raw, err := s.Get(config.DEFAULT_REDIS_KEY)
	require.NoError(t, err)
	assert.Contains(t, raw, `"Withdrew 200"`)
}

func TestRedisStore_Corrupt(t *testing.T) {
	store, s := newMiniredisStore(t)
	defer store.Close()
	require.NoError(t, s.Set(config.DEFAULT_REDIS_KEY, `{"1001": {"pin": "1"}}`))

	_, err := store.Load(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrStoreCorrupt))
}

func TestRedisStore_MissingKey(t *testing.T) {
	store, _ := newMiniredisStore(t)
	defer store.Close()

	_, err := store.Load(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrStoreUnavailable))
}

func TestRedisStore_SaveFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "teller:ledger")

	mock.Regexp().ExpectSet("teller:ledger", `.*`, 0).SetErr(errors.New("READONLY"))

	err := store.Save(context.Background(), sampleLedger())
	assert.True(t, apierror.Is(err, apierror.ErrStoreUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}
