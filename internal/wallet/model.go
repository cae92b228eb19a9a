package wallet

import "time"

// Wallet is a per-user, per-currency balance record. Balances are integer
// minor units; only the transfer engine and the finance recorder mutate them,
// always inside a storage transaction.
type Wallet struct {
	ID        string
	UserID    string
	Currency  string
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
