package model

import (
	"fmt"

	"github.com/google/uuid"
)

// PinLength is the number of digits in an account PIN.
const PinLength = 4

// GenerateUUIDWithSuffix generates a UUID with a given module name as a prefix.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// ValidPin reports whether pin is exactly PinLength ASCII digits.
func ValidPin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// DepositEntry is the transaction log line recorded for a deposit.
func DepositEntry(amount int64) string {
	return fmt.Sprintf("Deposited %d", amount)
}

// WithdrawalEntry is the transaction log line recorded for a withdrawal.
func WithdrawalEntry(amount int64) string {
	return fmt.Sprintf("Withdrew %d", amount)
}
