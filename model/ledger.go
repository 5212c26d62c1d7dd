package model

import (
	"fmt"
	"sort"
)

// Ledger maps account numbers to their records.
type Ledger map[string]Account

// Clone deep-copies the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for number, account := range l {
		out[number] = account.Clone()
	}
	return out
}

// With returns a new ledger holding account under number. Records other than
// number are shared with l, which is never modified.
func (l Ledger) With(number string, account Account) Ledger {
	out := make(Ledger, len(l)+1)
	for n, a := range l {
		out[n] = a
	}
	out[number] = account
	return out
}

// Numbers returns the account numbers in ascending order.
func (l Ledger) Numbers() []string {
	numbers := make([]string, 0, len(l))
	for number := range l {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)
	return numbers
}

// Validate checks the invariants every stored ledger must satisfy.
func (l Ledger) Validate() error {
	for _, number := range l.Numbers() {
		account := l[number]
		if number == "" {
			return fmt.Errorf("ledger holds an empty account number")
		}
		if !ValidPin(account.Pin) {
			return fmt.Errorf("account %s has a malformed pin", number)
		}
		if account.Balance < 0 {
			return fmt.Errorf("account %s has a negative balance %d", number, account.Balance)
		}
	}
	return nil
}

// Normalize replaces nil transaction logs with empty ones so that a ledger
// decoded from storage compares equal to the one that was saved.
func (l Ledger) Normalize() Ledger {
	for number, account := range l {
		if account.Transactions == nil {
			account.Transactions = []string{}
			l[number] = account
		}
	}
	return l
}
