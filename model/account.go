package model

// Account is the durable state held for one account number.
type Account struct {
	Pin          string   `json:"pin"`
	Balance      int64    `json:"balance"`
	Transactions []string `json:"transactions"`
}

// NewAccount returns a freshly registered account: zero balance, empty history.
func NewAccount(pin string) Account {
	return Account{Pin: pin, Balance: 0, Transactions: []string{}}
}

// Clone returns a copy of the account that shares no memory with a.
func (a Account) Clone() Account {
	txns := make([]string, len(a.Transactions))
	copy(txns, a.Transactions)
	a.Transactions = txns
	return a
}

// Append returns a copy of the account with entry added to its history and
// the balance set to newBalance. The receiver is left untouched.
func (a Account) Append(newBalance int64, entry string) Account {
	next := a.Clone()
	next.Balance = newBalance
	next.Transactions = append(next.Transactions, entry)
	return next
}
