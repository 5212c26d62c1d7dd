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

package teller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/blnkfinance/teller/database"
	"github.com/blnkfinance/teller/internal/apierror"
	"github.com/blnkfinance/teller/model"
)

var (
	accountTracer     = otel.Tracer("teller.accounts")
	transactionTracer = otel.Tracer("teller.transactions")
)

// Session identifies the account currently logged in.
type Session struct {
	ID            string    `json:"session_id"`
	AccountNumber string    `json:"account_number"`
	StartedAt     time.Time `json:"started_at"`
}

// Teller owns the in-memory ledger and the current session. Every mutating
// call builds a new ledger, saves it, and only then replaces the one in
// memory, so a failed save leaves the teller exactly as it was.
type Teller struct {
	mu         sync.Mutex
	datasource database.IDataSource
	ledger     model.Ledger
	session    *Session
}

// NewTeller prepares the datasource and loads the whole ledger from it.
// Either step failing means the teller cannot run.
func NewTeller(ctx context.Context, datasource database.IDataSource) (*Teller, error) {
	ctx, span := accountTracer.Start(ctx, "Opening ledger")
	defer span.End()

	if err := datasource.Initialize(ctx); err != nil {
		return nil, logAndRecordError(span, "initialize ledger store: ", err)
	}
	ledger, err := datasource.Load(ctx)
	if err != nil {
		return nil, logAndRecordError(span, "load ledger: ", err)
	}

	logrus.WithField("accounts", len(ledger)).Info("ledger loaded")
	return &Teller{datasource: datasource, ledger: ledger}, nil
}

// AccountCount returns the number of registered accounts.
func (t *Teller) AccountCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ledger)
}

// Close releases the datasource.
func (t *Teller) Close() error {
	return t.datasource.Close()
}

// commit persists next and swaps it in. Must be called with t.mu held.
func (t *Teller) commit(ctx context.Context, span trace.Span, next model.Ledger) error {
	if err := t.datasource.Save(ctx, next); err != nil {
		span.RecordError(err)
		return apierror.NewAPIError(apierror.ErrStoreUnavailable, "Changes may not have been saved", err)
	}
	t.ledger = next
	return nil
}

// ErrNoSession is returned by operations that need a logged in account.
var ErrNoSession = apierror.NewAPIError(apierror.ErrNoSession, "Please log in first", nil)

// current returns the logged in account. Must be called with t.mu held.
func (t *Teller) current() (string, model.Account, error) {
	if t.session == nil {
		return "", model.Account{}, ErrNoSession
	}
	account, ok := t.ledger[t.session.AccountNumber]
	if !ok {
		return "", model.Account{}, ErrNoSession
	}
	return t.session.AccountNumber, account, nil
}

func (t *Teller) sessionLogger() *logrus.Entry {
	if t.session == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.WithFields(logrus.Fields{
		"account_number": t.session.AccountNumber,
		"session_id":     t.session.ID,
	})
}

func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	logrus.Error(msg, err)
	return err
}
