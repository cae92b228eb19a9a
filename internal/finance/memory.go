package finance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walletapp/wallet_app/internal/wallet"
)

// MemoryRepository is an in-memory finance repository. It applies each
// record's balance effect through the shared wallet balances, so income and
// expenses move the same money transfers do.
type MemoryRepository struct {
	mu      sync.Mutex
	wallets WalletBalances
	records []Record
}

// NewMemoryRepository constructs an in-memory finance repository writing
// balance effects to the given wallet balances.
func NewMemoryRepository(wallets WalletBalances) *MemoryRepository {
	return &MemoryRepository{wallets: wallets}
}

// Record applies the balance effect and stores the record.
func (r *MemoryRepository) Record(ctx context.Context, rec Record, currency string) (Record, error) {
	delta := rec.Amount
	if rec.Kind == KindExpense {
		delta = -rec.Amount
	}
	if _, err := r.wallets.ApplyDelta(ctx, rec.UserID, currency, delta); err != nil {
		if errors.Is(err, wallet.ErrInsufficientBalance) {
			return Record{}, ErrInsufficientFunds
		}
		return Record{}, err
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	return rec, nil
}

// ListByUser returns the user's records, newest first.
func (r *MemoryRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Record
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
