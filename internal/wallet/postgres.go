package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore stores wallets in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectWalletQuery = `SELECT id, user_id, currency, balance, created_at, updated_at
    FROM wallets WHERE user_id = $1 AND currency = $2`

// FindOrCreate returns the wallet for (user, currency), inserting a
// zero-balance row on first use. The insert defers to the unique constraint,
// so a concurrent creation race resolves to the pre-existing row.
func (s *PostgresStore) FindOrCreate(ctx context.Context, userID, currency string) (Wallet, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse user id: %w", err)
	}

	_, err = s.db.Exec(ctx, `INSERT INTO wallets (id, user_id, currency, balance)
        VALUES ($1, $2, $3, 0)
        ON CONFLICT (user_id, currency) DO NOTHING`, uuid.New(), owner, currency)
	if err != nil {
		return Wallet{}, fmt.Errorf("create wallet: %w", err)
	}

	return s.ByUser(ctx, userID, currency)
}

// ByUser fetches the wallet for (user, currency).
func (s *PostgresStore) ByUser(ctx context.Context, userID, currency string) (Wallet, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse user id: %w", err)
	}
	return scanWallet(s.db.QueryRow(ctx, selectWalletQuery, owner, currency))
}

// LockForUpdateTx acquires an exclusive row lock on the wallet within the
// given transaction so concurrent transfers touching it serialize. Balance
// decisions must read the locked row, never a prior unlocked snapshot.
func (s *PostgresStore) LockForUpdateTx(ctx context.Context, tx pgx.Tx, userID, currency string) (Wallet, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse user id: %w", err)
	}
	return scanWallet(tx.QueryRow(ctx, selectWalletQuery+` FOR UPDATE`, owner, currency))
}

// FindOrCreateTx is FindOrCreate scoped to an open transaction.
func (s *PostgresStore) FindOrCreateTx(ctx context.Context, tx pgx.Tx, userID, currency string) (Wallet, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse user id: %w", err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO wallets (id, user_id, currency, balance)
        VALUES ($1, $2, $3, 0)
        ON CONFLICT (user_id, currency) DO NOTHING`, uuid.New(), owner, currency)
	if err != nil {
		return Wallet{}, fmt.Errorf("create wallet: %w", err)
	}
	return scanWallet(tx.QueryRow(ctx, selectWalletQuery+` FOR UPDATE`, owner, currency))
}

// AdjustBalanceTx applies a signed delta to the wallet balance within the
// given transaction. Callers must hold the row lock and have validated the
// balance; the CHECK constraint on the column is the last line of defense.
func (s *PostgresStore) AdjustBalanceTx(ctx context.Context, tx pgx.Tx, walletID string, delta int64) error {
	id, err := uuid.Parse(walletID)
	if err != nil {
		return fmt.Errorf("parse wallet id: %w", err)
	}
	cmd, err := tx.Exec(ctx, `UPDATE wallets SET balance = balance + $1, updated_at = now()
        WHERE id = $2`, delta, id)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w     Wallet
		id    uuid.UUID
		owner uuid.UUID
	)
	if err := row.Scan(&id, &owner, &w.Currency, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.UserID = owner.String()
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}
