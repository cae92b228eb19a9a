package transfer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walletapp/wallet_app/internal/ledger"
	"github.com/walletapp/wallet_app/internal/wallet"
)

// PostgresStore provides atomic units of work on top of a pgx transaction,
// delegating row operations to the wallet and ledger stores.
type PostgresStore struct {
	db      *pgxpool.Pool
	wallets *wallet.PostgresStore
	entries *ledger.PostgresStore
}

// NewPostgresStore builds a transactional transfer store.
func NewPostgresStore(db *pgxpool.Pool, wallets *wallet.PostgresStore, entries *ledger.PostgresStore) *PostgresStore {
	return &PostgresStore{db: db, wallets: wallets, entries: entries}
}

// Atomically runs fn inside one database transaction. The deferred rollback
// guarantees cleanup on every early return; commit happens only on the single
// success path.
func (s *PostgresStore) Atomically(ctx context.Context, fn func(uow UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(&pgUnitOfWork{tx: tx, wallets: s.wallets, entries: s.entries}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// EntryByKey reads a committed ledger entry outside any transaction.
func (s *PostgresStore) EntryByKey(ctx context.Context, key string) (ledger.Entry, error) {
	return s.entries.ByIdempotencyKey(ctx, key)
}

type pgUnitOfWork struct {
	tx      pgx.Tx
	wallets *wallet.PostgresStore
	entries *ledger.PostgresStore
}

func (u *pgUnitOfWork) EntryByKey(ctx context.Context, key string) (ledger.Entry, error) {
	return u.entries.ByIdempotencyKeyTx(ctx, u.tx, key)
}

func (u *pgUnitOfWork) LockWallet(ctx context.Context, userID, currency string) (wallet.Wallet, error) {
	return u.wallets.LockForUpdateTx(ctx, u.tx, userID, currency)
}

func (u *pgUnitOfWork) AdjustBalance(ctx context.Context, walletID string, delta int64) error {
	return u.wallets.AdjustBalanceTx(ctx, u.tx, walletID, delta)
}

func (u *pgUnitOfWork) AppendEntry(ctx context.Context, key, fromWalletID, toWalletID string, amount int64) (ledger.Entry, error) {
	return u.entries.AppendTx(ctx, u.tx, key, fromWalletID, toWalletID, amount)
}
