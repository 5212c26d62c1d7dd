package teller

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blnkfinance/teller/internal/apierror"
	"github.com/blnkfinance/teller/model"
)

// Register opens a new account with a zero balance. The account number is
// checked before the PIN. Registering does not log anyone in.
func (t *Teller) Register(ctx context.Context, accountNumber, pin string) error {
	ctx, span := accountTracer.Start(ctx, "Registering account")
	defer span.End()
	span.SetAttributes(attribute.String("account_number", accountNumber))

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkAccountNumber(accountNumber); err != nil {
		return err
	}
	if !model.ValidPin(pin) {
		return apierror.NewAPIError(apierror.ErrInvalidPin, "PIN must be a 4-digit number!", nil)
	}

	next := t.ledger.With(accountNumber, model.NewAccount(pin))
	if err := t.commit(ctx, span, next); err != nil {
		return err
	}

	logrus.WithField("account_number", accountNumber).Info("account registered")
	return nil
}

// AccountNumberAvailable reports whether accountNumber could be registered,
// so that a caller can reject it before asking for a PIN.
func (t *Teller) AccountNumberAvailable(accountNumber string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkAccountNumber(accountNumber)
}

func (t *Teller) checkAccountNumber(accountNumber string) error {
	if _, exists := t.ledger[accountNumber]; accountNumber == "" || exists {
		return apierror.NewAPIError(apierror.ErrInvalidAccountNumber, "Invalid or existing account number!", nil)
	}
	return nil
}

// Authenticate starts a session for the account if the PIN matches exactly.
// A failed attempt leaves any existing session in place.
func (t *Teller) Authenticate(ctx context.Context, accountNumber, pin string) (Session, error) {
	_, span := accountTracer.Start(ctx, "Authenticating account")
	defer span.End()
	span.SetAttributes(attribute.String("account_number", accountNumber))

	t.mu.Lock()
	defer t.mu.Unlock()

	account, ok := t.ledger[accountNumber]
	if !ok || account.Pin != pin {
		logrus.WithField("account_number", accountNumber).Warn("authentication failed")
		return Session{}, apierror.NewAPIError(apierror.ErrAuthenticationFailed, "Invalid Account Number or PIN", nil)
	}

	t.session = &Session{
		ID:            model.GenerateUUIDWithSuffix("ses"),
		AccountNumber: accountNumber,
		StartedAt:     time.Now(),
	}
	t.sessionLogger().Info("session started")
	return *t.session, nil
}

// Logout ends the current session, if any.
func (t *Teller) Logout() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		t.sessionLogger().Info("session ended")
	}
	t.session = nil
}

// Session returns the current session and whether one exists.
func (t *Teller) Session() (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return Session{}, false
	}
	return *t.session, true
}

// CurrentBalance returns the balance of the logged in account.
func (t *Teller) CurrentBalance() (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, account, err := t.current()
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}
