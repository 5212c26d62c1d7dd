package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/teller/internal/apierror"
	"github.com/blnkfinance/teller/model"
)

func sampleLedger() model.Ledger {
	return model.Ledger{
		"1001": {Pin: "4321", Balance: 300, Transactions: []string{"Deposited 500", "Withdrew 200"}},
		"1002": model.NewAccount("0000"),
	}
}

func TestFileStore_InitializeCreatesEmptyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.json")
	store := NewFileStore(path)

	require.NoError(t, store.Initialize(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))

	ledger, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestFileStore_InitializeKeepsExistingData(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Save(ctx, sampleLedger()))

	require.NoError(t, store.Initialize(ctx))

	ledger, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleLedger(), ledger)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, store.Initialize(ctx))

	require.NoError(t, store.Save(ctx, sampleLedger()))
	ledger, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleLedger(), ledger)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_ReadsIndentedLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	doc := `{
    "1001": {
        "pin": "4321",
        "balance": 500,
        "transactions": [
            "Deposited 500"
        ]
    }
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	ledger, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Ledger{
		"1001": {Pin: "4321", Balance: 500, Transactions: []string{"Deposited 500"}},
	}, ledger)
}

func TestFileStore_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "invalid json", doc: `{"1001": {"pin": "4321",`},
		{name: "short pin", doc: `{"1001": {"pin": "43", "balance": 0, "transactions": []}}`},
		{name: "negative balance", doc: `{"1001": {"pin": "4321", "balance": -5, "transactions": []}}`},
		{name: "empty account number", doc: `{"": {"pin": "4321", "balance": 0, "transactions": []}}`},
		{name: "wrong shape", doc: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "users.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o600))

			_, err := NewFileStore(path).Load(context.Background())
			assert.True(t, apierror.Is(err, apierror.ErrStoreCorrupt), "got %v", err)
		})
	}
}

func TestFileStore_MissingFileIsUnavailable(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	_, err := store.Load(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrStoreUnavailable))
}

func TestFileStore_SaveFailureKeepsPreviousContents(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "users.json"))
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Save(ctx, sampleLedger()))

	missing := NewFileStore(filepath.Join(dir, "gone", "users.json"))
	err := missing.Save(ctx, model.Ledger{})
	assert.True(t, apierror.Is(err, apierror.ErrStoreUnavailable))

	ledger, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleLedger(), ledger)
}

func TestEncodeLedger_NilIsEmptyObject(t *testing.T) {
	data, err := encodeLedger(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	ledger, err := decodeLedger([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, ledger)
	assert.Empty(t, ledger)
}
