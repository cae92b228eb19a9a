package finance

import (
	"context"
	"errors"
	"time"
)

const (
	// KindIncome credits the user's wallet.
	KindIncome = "income"
	// KindExpense debits the user's wallet.
	KindExpense = "expense"
)

var (
	// ErrInsufficientFunds indicates an expense exceeds the wallet balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidKind indicates an unknown record kind.
	ErrInvalidKind = errors.New("kind must be income or expense")
)

// Record is one income or expense event. Recording it adjusts the user's
// wallet balance in the same storage transaction, so finance records and
// balances never drift apart.
type Record struct {
	ID          string
	UserID      string
	CategoryID  string
	Kind        string
	Amount      int64
	Description string
	CreatedAt   time.Time
}

// WalletBalances applies signed deltas to committed wallet balances,
// materializing the wallet on first use. A debit exceeding the balance must
// be rejected with wallet.ErrInsufficientBalance.
type WalletBalances interface {
	ApplyDelta(ctx context.Context, userID, currency string, delta int64) (int64, error)
}

// Repository persists finance records together with their balance effect.
type Repository interface {
	// Record inserts the record and applies its signed balance effect to the
	// user's wallet atomically, materializing the wallet on first use.
	Record(ctx context.Context, rec Record, currency string) (Record, error)

	// ListByUser returns the user's records, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error)
}
