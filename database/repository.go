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

	"github.com/blnkfinance/teller/model"
)

// IDataSource is the durable home of the ledger. Every backend reads and
// writes the whole mapping as one unit.
type IDataSource interface {
	// Initialize makes sure a store exists, creating an empty ledger when it
	// does not. Safe to call on every startup.
	Initialize(ctx context.Context) error

	// Load reads the complete ledger. It fails with STORE_CORRUPT when the
	// content cannot be decoded or breaks the ledger invariants, and with
	// STORE_UNAVAILABLE when the medium cannot be read.
	Load(ctx context.Context) (model.Ledger, error)

	// Save replaces the stored ledger with the given one. A failed save
	// returns STORE_UNAVAILABLE and leaves the previous contents in place.
	Save(ctx context.Context, ledger model.Ledger) error

	// Close releases connections held by the backend.
	Close() error
}
