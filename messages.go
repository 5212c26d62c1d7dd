package teller

import (
	"fmt"
	"strings"
)

// Texts shown to the account holder. Both the terminal and HTTP adapters
// use them so the wording stays the same everywhere.
const (
	RegisteredMessage     = "Account created successfully! You can now log in."
	NoTransactionsMessage = "No transactions yet."
	LoggedOutMessage      = "You have been logged out."
)

func FormatAmount(symbol string, amount int64) string {
	return fmt.Sprintf("%s%d", symbol, amount)
}

func DepositedMessage(symbol string, amount int64) string {
	return FormatAmount(symbol, amount) + " deposited successfully!"
}

func WithdrawnMessage(symbol string, amount int64) string {
	return FormatAmount(symbol, amount) + " withdrawn successfully!"
}

func BalanceMessage(symbol string, balance int64) string {
	return "Your current balance is " + FormatAmount(symbol, balance)
}

// HistoryMessage renders the log one entry per line.
func HistoryMessage(history []string) string {
	if len(history) == 0 {
		return NoTransactionsMessage
	}
	return strings.Join(history, "\n")
}
