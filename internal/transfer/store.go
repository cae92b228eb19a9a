package transfer

import (
	"context"

	"github.com/walletapp/wallet_app/internal/ledger"
	"github.com/walletapp/wallet_app/internal/wallet"
)

// UnitOfWork exposes the storage operations the transfer protocol performs
// inside one atomic scope. Every call reads and writes uncommitted
// transaction state; nothing becomes observable until the unit commits.
type UnitOfWork interface {
	// EntryByKey looks up a ledger entry by idempotency key, returning
	// ledger.ErrEntryNotFound when absent.
	EntryByKey(ctx context.Context, key string) (ledger.Entry, error)

	// LockWallet acquires an exclusive lock on the user's wallet row and
	// returns its current state. Concurrent units of work touching the same
	// wallet block here until the holder commits or rolls back. Returns
	// wallet.ErrNotFound when the wallet does not exist.
	LockWallet(ctx context.Context, userID, currency string) (wallet.Wallet, error)

	// AdjustBalance applies a signed delta to a wallet locked by this unit.
	AdjustBalance(ctx context.Context, walletID string, delta int64) error

	// AppendEntry records one immutable completed transfer, returning
	// ledger.ErrDuplicateEntry when the key is already taken.
	AppendEntry(ctx context.Context, key, fromWalletID, toWalletID string, amount int64) (ledger.Entry, error)
}

// Store opens atomic units of work against the backing storage. The unit
// commits only when fn returns nil; any error rolls the whole unit back, so
// no partial balance change is ever observable.
type Store interface {
	Atomically(ctx context.Context, fn func(uow UnitOfWork) error) error

	// EntryByKey reads committed state outside any unit of work. The engine
	// uses it to resolve append races after the losing unit rolled back.
	EntryByKey(ctx context.Context, key string) (ledger.Entry, error)
}
