package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// PostgresStore persists ledger entries in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a ledger store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectEntryByKeyQuery = `SELECT id, idempotency_key, from_wallet_id, to_wallet_id, amount, status, created_at
    FROM ledger_transactions WHERE idempotency_key = $1`

// ByIdempotencyKey performs the deduplication point lookup against committed
// state.
func (s *PostgresStore) ByIdempotencyKey(ctx context.Context, key string) (Entry, error) {
	return scanEntry(s.db.QueryRow(ctx, selectEntryByKeyQuery, key))
}

// ByIdempotencyKeyTx is ByIdempotencyKey scoped to an open transaction.
func (s *PostgresStore) ByIdempotencyKeyTx(ctx context.Context, tx pgx.Tx, key string) (Entry, error) {
	return scanEntry(tx.QueryRow(ctx, selectEntryByKeyQuery, key))
}

// AppendTx inserts one immutable ledger entry within the given transaction.
// A unique violation on the idempotency key (a race with a concurrent
// identical request) is reported as ErrDuplicateEntry.
func (s *PostgresStore) AppendTx(ctx context.Context, tx pgx.Tx, key, fromWalletID, toWalletID string, amount int64) (Entry, error) {
	from, err := uuid.Parse(fromWalletID)
	if err != nil {
		return Entry{}, fmt.Errorf("parse from wallet id: %w", err)
	}
	to, err := uuid.Parse(toWalletID)
	if err != nil {
		return Entry{}, fmt.Errorf("parse to wallet id: %w", err)
	}

	row := tx.QueryRow(ctx, `INSERT INTO ledger_transactions
        (id, idempotency_key, from_wallet_id, to_wallet_id, amount, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, idempotency_key, from_wallet_id, to_wallet_id, amount, status, created_at`,
		uuid.New(), key, from, to, amount, StatusCompleted)

	entry, err := scanEntry(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return Entry{}, ErrDuplicateEntry
		}
		return Entry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}

// HistoryForUser returns entries where the user owns either endpoint wallet,
// newest first, joined with counterpart display names.
func (s *PostgresStore) HistoryForUser(ctx context.Context, userID string, limit, offset int) ([]HistoryItem, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT lt.id, lt.idempotency_key, lt.from_wallet_id, lt.to_wallet_id,
            lt.amount, lt.status, lt.created_at,
            u1.name AS from_user_name,
            u2.name AS to_user_name
        FROM ledger_transactions lt
        JOIN wallets w1 ON lt.from_wallet_id = w1.id
        JOIN wallets w2 ON lt.to_wallet_id = w2.id
        JOIN users u1 ON w1.user_id = u1.id
        JOIN users u2 ON w2.user_id = u2.id
        WHERE w1.user_id = $1 OR w2.user_id = $1
        ORDER BY lt.created_at DESC
        LIMIT $2 OFFSET $3`, owner, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var items []HistoryItem
	for rows.Next() {
		var (
			item HistoryItem
			id   uuid.UUID
			from uuid.UUID
			to   uuid.UUID
		)
		if err := rows.Scan(&id, &item.IdempotencyKey, &from, &to, &item.Amount,
			&item.Status, &item.CreatedAt, &item.FromUserName, &item.ToUserName); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		item.ID = id.String()
		item.FromWalletID = from.String()
		item.ToWalletID = to.String()
		item.CreatedAt = item.CreatedAt.UTC()
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e    Entry
		id   uuid.UUID
		from uuid.UUID
		to   uuid.UUID
	)
	if err := row.Scan(&id, &e.IdempotencyKey, &from, &to, &e.Amount, &e.Status, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	e.ID = id.String()
	e.FromWalletID = from.String()
	e.ToWalletID = to.String()
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}
