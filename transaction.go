package teller

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blnkfinance/teller/internal/apierror"
	"github.com/blnkfinance/teller/model"
)

func invalidAmount() error {
	return apierror.NewAPIError(apierror.ErrInvalidAmount, "Invalid amount!", nil)
}

// ParseAmount turns user input into an amount. Anything other than a
// positive whole number is rejected.
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalidAmount()
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, invalidAmount()
	}
	return AmountFromDecimal(d)
}

// maxAmountDigits is the number of decimal digits in math.MaxInt64.
const maxAmountDigits = 19

// AmountFromDecimal accepts d only if it is a positive integer that fits in
// an int64.
func AmountFromDecimal(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, invalidAmount()
	}
	// Reject extreme exponents before anything rescales the coefficient.
	digits, exp := int64(d.NumDigits()), int64(d.Exponent())
	if exp > 0 && digits+exp > maxAmountDigits {
		return 0, invalidAmount()
	}
	if exp < 0 && -exp > digits {
		return 0, invalidAmount()
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, invalidAmount()
	}
	if !d.BigInt().IsInt64() {
		return 0, invalidAmount()
	}
	return d.IntPart(), nil
}

// Deposit adds amount to the logged in account and returns the new balance.
func (t *Teller) Deposit(ctx context.Context, amount int64) (int64, error) {
	ctx, span := transactionTracer.Start(ctx, "Depositing")
	defer span.End()
	span.SetAttributes(attribute.Int64("amount", amount))

	t.mu.Lock()
	defer t.mu.Unlock()

	number, account, err := t.current()
	if err != nil {
		return 0, err
	}
	if amount <= 0 || account.Balance > math.MaxInt64-amount {
		return 0, invalidAmount()
	}

	updated := account.Append(account.Balance+amount, model.DepositEntry(amount))
	if err := t.commit(ctx, span, t.ledger.With(number, updated)); err != nil {
		return 0, err
	}

	t.sessionLogger().WithField("amount", amount).Info("deposit recorded")
	return updated.Balance, nil
}

// Withdraw takes amount from the logged in account and returns the new
// balance. The balance never goes below zero.
func (t *Teller) Withdraw(ctx context.Context, amount int64) (int64, error) {
	ctx, span := transactionTracer.Start(ctx, "Withdrawing")
	defer span.End()
	span.SetAttributes(attribute.Int64("amount", amount))

	t.mu.Lock()
	defer t.mu.Unlock()

	number, account, err := t.current()
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, invalidAmount()
	}
	if amount > account.Balance {
		return 0, apierror.NewAPIError(apierror.ErrInsufficientFunds, "Insufficient balance!", nil)
	}

	updated := account.Append(account.Balance-amount, model.WithdrawalEntry(amount))
	if err := t.commit(ctx, span, t.ledger.With(number, updated)); err != nil {
		return 0, err
	}

	t.sessionLogger().WithField("amount", amount).Info("withdrawal recorded")
	return updated.Balance, nil
}

// TransactionHistory returns a copy of the logged in account's log, oldest
// first. An account with no activity gets an empty slice.
func (t *Teller) TransactionHistory() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, account, err := t.current()
	if err != nil {
		return nil, err
	}
	history := make([]string, len(account.Transactions))
	copy(history, account.Transactions)
	return history, nil
}
