package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blnkfinance/teller/model"
)

// FileStore keeps the ledger as one JSON document on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Initialize(_ context.Context) error {
	_, err := os.Stat(f.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return storeUnavailable(err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return storeUnavailable(err)
	}
	if err := f.write(model.Ledger{}); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context) (model.Ledger, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return decodeLedger(data)
}

func (f *FileStore) Save(_ context.Context, ledger model.Ledger) error {
	if err := f.write(ledger); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}

// write replaces the file atomically: the ledger goes to a temp file in the
// same directory which is then renamed over the old one.
func (f *FileStore) write(ledger model.Ledger) error {
	data, err := encodeLedger(ledger)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}

// encodeLedger renders the ledger the way it is kept on disk and in Redis.
func encodeLedger(ledger model.Ledger) ([]byte, error) {
	if ledger == nil {
		ledger = model.Ledger{}
	}
	return json.MarshalIndent(ledger, "", "    ")
}

func decodeLedger(data []byte) (model.Ledger, error) {
	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, storeCorrupt(err)
	}
	if ledger == nil {
		ledger = model.Ledger{}
	}
	if err := ledger.Validate(); err != nil {
		return nil, storeCorrupt(fmt.Errorf("invalid ledger: %w", err))
	}
	return ledger.Normalize(), nil
}
