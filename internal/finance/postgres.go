package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walletapp/wallet_app/internal/wallet"
)

// PostgresRepository stores finance records in PostgreSQL. Each Record call
// runs in one transaction: lock (or create) the wallet, apply the balance
// effect, insert the record.
type PostgresRepository struct {
	db      *pgxpool.Pool
	wallets *wallet.PostgresStore
}

// NewPostgresRepository builds a Postgres-backed finance repository.
func NewPostgresRepository(db *pgxpool.Pool, wallets *wallet.PostgresStore) *PostgresRepository {
	return &PostgresRepository{db: db, wallets: wallets}
}

// Record inserts the record and adjusts the wallet balance atomically.
func (r *PostgresRepository) Record(ctx context.Context, rec Record, currency string) (Record, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Record{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	w, err := r.wallets.FindOrCreateTx(ctx, tx, rec.UserID, currency)
	if err != nil {
		return Record{}, err
	}

	delta := rec.Amount
	if rec.Kind == KindExpense {
		if w.Balance < rec.Amount {
			return Record{}, ErrInsufficientFunds
		}
		delta = -rec.Amount
	}
	if err := r.wallets.AdjustBalanceTx(ctx, tx, w.ID, delta); err != nil {
		return Record{}, err
	}

	owner, err := uuid.Parse(rec.UserID)
	if err != nil {
		return Record{}, fmt.Errorf("parse user id: %w", err)
	}
	var categoryID any
	if rec.CategoryID != "" {
		cid, err := uuid.Parse(rec.CategoryID)
		if err != nil {
			return Record{}, fmt.Errorf("parse category id: %w", err)
		}
		categoryID = cid
	}

	row := tx.QueryRow(ctx, `INSERT INTO finances (id, user_id, category_id, kind, amount, description)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`, uuid.New(), owner, categoryID, rec.Kind, rec.Amount, rec.Description)
	var id uuid.UUID
	if err := row.Scan(&id, &rec.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("insert finance record: %w", err)
	}
	rec.ID = id.String()
	rec.CreatedAt = rec.CreatedAt.UTC()

	if err := tx.Commit(ctx); err != nil {
		return Record{}, fmt.Errorf("commit transaction: %w", err)
	}
	return rec, nil
}

// ListByUser returns the user's records, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, COALESCE(category_id::text, ''), kind, amount, description, created_at
        FROM finances WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`, owner, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list finances: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec Record
			id  uuid.UUID
			uid uuid.UUID
		)
		if err := rows.Scan(&id, &uid, &rec.CategoryID, &rec.Kind, &rec.Amount, &rec.Description, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.ID = id.String()
		rec.UserID = uid.String()
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}
