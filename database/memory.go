package database

import (
	"context"
	"errors"
	"sync"

	"github.com/blnkfinance/teller/model"
)

// MemoryStore holds the ledger in process memory. It stands in for a durable
// backend in tests and throwaway sessions.
type MemoryStore struct {
	mu          sync.Mutex
	ledger      model.Ledger
	initialized bool
	saves       int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns an initialized store already holding ledger.
func NewMemoryStoreWith(ledger model.Ledger) *MemoryStore {
	return &MemoryStore{ledger: ledger.Clone(), initialized: true}
}

func (m *MemoryStore) Initialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		m.ledger = model.Ledger{}
		m.initialized = true
	}
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (model.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return nil, storeUnavailable(errors.New("memory store was never initialized"))
	}
	return m.ledger.Clone().Normalize(), nil
}

func (m *MemoryStore) Save(_ context.Context, ledger model.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger = ledger.Clone()
	m.initialized = true
	m.saves++
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// Saves reports how many times the ledger has been written.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
