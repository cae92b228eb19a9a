package ledger

import (
	"errors"
	"time"
)

// StatusCompleted is the only status the synchronous transfer engine writes.
// The schema admits pending/failed rows for future asynchronous flows.
const StatusCompleted = "COMPLETED"

var (
	// ErrEntryNotFound indicates no ledger entry exists for the lookup key.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrDuplicateEntry indicates the idempotency key is already recorded.
	// Callers treat this as "already processed", not as a hard failure.
	ErrDuplicateEntry = errors.New("duplicate ledger entry")
)

// Entry is an immutable record of one completed transfer. The unique
// idempotency key is the sole deduplication key: a replay with the same key
// must resolve to this row, never create a second one.
type Entry struct {
	ID             string
	IdempotencyKey string
	FromWalletID   string
	ToWalletID     string
	Amount         int64
	Status         string
	CreatedAt      time.Time
}

// HistoryItem is an entry joined with the endpoint owners' display names for
// the read-only history view.
type HistoryItem struct {
	Entry
	FromUserName string
	ToUserName   string
}
