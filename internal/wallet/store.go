package wallet

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the referenced user has no wallet for the currency.
	ErrNotFound = errors.New("wallet not found")

	// ErrInsufficientBalance indicates a debit would take the balance below
	// zero.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// Store persists wallet records. Exactly one wallet exists per
// (user, currency) pair; the unique constraint in the backing store is the
// source of truth for creation races.
type Store interface {
	// FindOrCreate returns the user's wallet for the currency, materializing
	// a zero-balance wallet on first reference. Safe under concurrent calls:
	// a create race resolves to the pre-existing row.
	FindOrCreate(ctx context.Context, userID, currency string) (Wallet, error)

	// ByUser fetches the wallet without creating it.
	ByUser(ctx context.Context, userID, currency string) (Wallet, error)
}
