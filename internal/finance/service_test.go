package finance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/walletapp/wallet_app/internal/wallet"
)

type balanceMap struct {
	mu sync.Mutex
	m  map[string]int64
}

func newBalanceMap() *balanceMap {
	return &balanceMap{m: make(map[string]int64)}
}

func (b *balanceMap) ApplyDelta(_ context.Context, userID, currency string, delta int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := userID + "/" + currency
	if b.m[key]+delta < 0 {
		return b.m[key], wallet.ErrInsufficientBalance
	}
	b.m[key] += delta
	return b.m[key], nil
}

func (b *balanceMap) balance(userID, currency string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.m[userID+"/"+currency]
}

func TestRecordIncomeAndExpense(t *testing.T) {
	balances := newBalanceMap()
	svc := NewService(NewMemoryRepository(balances), "INR")
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordInput{UserID: "u1", Kind: KindIncome, Amount: 5_000, Description: "salary"}); err != nil {
		t.Fatalf("record income: %v", err)
	}
	if got := balances.balance("u1", "INR"); got != 5_000 {
		t.Fatalf("expected balance 5000 after income, got %d", got)
	}

	if _, err := svc.Record(ctx, RecordInput{UserID: "u1", Kind: KindExpense, Amount: 1_200, Description: "groceries"}); err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if got := balances.balance("u1", "INR"); got != 3_800 {
		t.Fatalf("expected balance 3800 after expense, got %d", got)
	}

	records, err := svc.List(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestExpenseCannotOverdraw(t *testing.T) {
	balances := newBalanceMap()
	repo := NewMemoryRepository(balances)
	svc := NewService(repo, "INR")
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordInput{UserID: "u1", Kind: KindIncome, Amount: 100}); err != nil {
		t.Fatalf("record income: %v", err)
	}
	if _, err := svc.Record(ctx, RecordInput{UserID: "u1", Kind: KindExpense, Amount: 500}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if got := balances.balance("u1", "INR"); got != 100 {
		t.Fatalf("failed expense changed balance: %d", got)
	}

	records, err := svc.List(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("failed expense stored a record, got %d", len(records))
	}
}

func TestRecordValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(newBalanceMap()), "INR")
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordInput{UserID: "u1", Kind: "loan", Amount: 10}); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
	if _, err := svc.Record(ctx, RecordInput{UserID: "u1", Kind: KindIncome, Amount: 0}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected invalid record, got %v", err)
	}
	if _, err := svc.Record(ctx, RecordInput{Kind: KindIncome, Amount: 10}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected invalid record for missing user, got %v", err)
	}
}
