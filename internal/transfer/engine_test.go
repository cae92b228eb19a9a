package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

const testCurrency = "INR"

func newTestEngine(store *MemoryStore) *Engine {
	return NewEngine(store, nil, nil, testCurrency)
}

func TestTransferMovesFunds(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	SeedWallet(store, "alice", testCurrency, 500)
	SeedWallet(store, "bob", testCurrency, 0)

	res, err := engine.Transfer(ctx, TransferInput{
		FromUserID: "alice", ToUserID: "bob", Amount: 200, IdempotencyKey: "k1",
	})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if res.TransferID == "" {
		t.Fatal("expected a transfer id")
	}
	if res.Replayed {
		t.Fatal("first execution must not be a replay")
	}

	if got := WalletBalance(store, "alice", testCurrency); got != 300 {
		t.Fatalf("expected sender balance 300, got %d", got)
	}
	if got := WalletBalance(store, "bob", testCurrency); got != 200 {
		t.Fatalf("expected recipient balance 200, got %d", got)
	}
	if got := EntryCount(store); got != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", got)
	}

	entry, err := store.EntryByKey(ctx, "k1")
	if err != nil {
		t.Fatalf("entry lookup: %v", err)
	}
	if entry.Amount != 200 || entry.Status != "COMPLETED" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestTransferIdempotentReplay(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	SeedWallet(store, "alice", testCurrency, 500)
	SeedWallet(store, "bob", testCurrency, 0)

	in := TransferInput{FromUserID: "alice", ToUserID: "bob", Amount: 200, IdempotencyKey: "k1"}

	first, err := engine.Transfer(ctx, in)
	if err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	second, err := engine.Transfer(ctx, in)
	if err != nil {
		t.Fatalf("replay must succeed: %v", err)
	}

	if !second.Replayed {
		t.Fatal("expected replayed result")
	}
	if second.TransferID != first.TransferID {
		t.Fatalf("replay returned a different transfer id: %s vs %s", second.TransferID, first.TransferID)
	}
	if got := WalletBalance(store, "alice", testCurrency); got != 300 {
		t.Fatalf("replay moved money again, sender balance %d", got)
	}
	if got := EntryCount(store); got != 1 {
		t.Fatalf("expected exactly one ledger entry after replay, got %d", got)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)

	SeedWallet(store, "alice", testCurrency, 50)
	SeedWallet(store, "bob", testCurrency, 0)

	_, err := engine.Transfer(context.Background(), TransferInput{
		FromUserID: "alice", ToUserID: "bob", Amount: 200, IdempotencyKey: "k2",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if got := WalletBalance(store, "alice", testCurrency); got != 50 {
		t.Fatalf("failed transfer changed sender balance: %d", got)
	}
	if got := EntryCount(store); got != 0 {
		t.Fatalf("failed transfer wrote %d ledger entries", got)
	}
}

func TestTransferValidation(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	cases := []struct {
		name string
		in   TransferInput
	}{
		{"same user", TransferInput{FromUserID: "alice", ToUserID: "alice", Amount: 10, IdempotencyKey: "k"}},
		{"zero amount", TransferInput{FromUserID: "alice", ToUserID: "bob", Amount: 0, IdempotencyKey: "k"}},
		{"negative amount", TransferInput{FromUserID: "alice", ToUserID: "bob", Amount: -5, IdempotencyKey: "k"}},
		{"missing key", TransferInput{FromUserID: "alice", ToUserID: "bob", Amount: 10}},
		{"missing sender", TransferInput{ToUserID: "bob", Amount: 10, IdempotencyKey: "k"}},
		{"missing recipient", TransferInput{FromUserID: "alice", Amount: 10, IdempotencyKey: "k"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.Transfer(ctx, tc.in); !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected invalid request, got %v", err)
			}
		})
	}

	if got := EntryCount(store); got != 0 {
		t.Fatalf("validation failures must not touch storage, found %d entries", got)
	}
}

func TestTransferWalletNotFound(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	SeedWallet(store, "bob", testCurrency, 100)

	if _, err := engine.Transfer(ctx, TransferInput{
		FromUserID: "ghost", ToUserID: "bob", Amount: 10, IdempotencyKey: "k1",
	}); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found for missing sender, got %v", err)
	}

	if _, err := engine.Transfer(ctx, TransferInput{
		FromUserID: "bob", ToUserID: "ghost", Amount: 10, IdempotencyKey: "k2",
	}); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected wallet not found for missing recipient, got %v", err)
	}

	if got := WalletBalance(store, "bob", testCurrency); got != 100 {
		t.Fatalf("failed transfers changed balance: %d", got)
	}
}

func TestInsufficientFundsCheckedBeforeRecipientExistence(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)

	SeedWallet(store, "alice", testCurrency, 10)

	_, err := engine.Transfer(context.Background(), TransferInput{
		FromUserID: "alice", ToUserID: "ghost", Amount: 100, IdempotencyKey: "k1",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds to take precedence, got %v", err)
	}
}

func TestOppositeDirectionTransfersComplete(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	SeedWallet(store, "alice", testCurrency, 10_000)
	SeedWallet(store, "bob", testCurrency, 10_000)

	const pairs = 25
	var wg sync.WaitGroup
	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := engine.Transfer(ctx, TransferInput{
				FromUserID: "alice", ToUserID: "bob", Amount: 10,
				IdempotencyKey: fmt.Sprintf("ab-%d", i),
			})
			if err != nil {
				t.Errorf("alice->bob %d: %v", i, err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := engine.Transfer(ctx, TransferInput{
				FromUserID: "bob", ToUserID: "alice", Amount: 10,
				IdempotencyKey: fmt.Sprintf("ba-%d", i),
			})
			if err != nil {
				t.Errorf("bob->alice %d: %v", i, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("opposite-direction transfers did not complete: deadlock")
	}

	total := WalletBalance(store, "alice", testCurrency) + WalletBalance(store, "bob", testCurrency)
	if total != 20_000 {
		t.Fatalf("value not conserved, total=%d", total)
	}
	if got := EntryCount(store); got != 2*pairs {
		t.Fatalf("expected %d ledger entries, got %d", 2*pairs, got)
	}
}

func TestConcurrentDuplicateSubmissions(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	SeedWallet(store, "alice", testCurrency, 500)
	SeedWallet(store, "bob", testCurrency, 0)

	const workers = 8
	results := make(chan TransferResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Transfer(ctx, TransferInput{
				FromUserID: "alice", ToUserID: "bob", Amount: 200, IdempotencyKey: "dup",
			})
			if err != nil {
				t.Errorf("duplicate submission failed: %v", err)
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(results)

	ids := make(map[string]bool)
	for res := range results {
		ids[res.TransferID] = true
	}
	if len(ids) != 1 {
		t.Fatalf("duplicate submissions produced %d distinct transfer ids", len(ids))
	}
	if got := WalletBalance(store, "alice", testCurrency); got != 300 {
		t.Fatalf("money moved more than once, sender balance %d", got)
	}
	if got := EntryCount(store); got != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", got)
	}
}

func TestAppendFailureRollsBackBalances(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	SeedWallet(store, "alice", testCurrency, 500)
	SeedWallet(store, "bob", testCurrency, 0)

	FailNextAppend(store, errors.New("disk full"))

	in := TransferInput{FromUserID: "alice", ToUserID: "bob", Amount: 200, IdempotencyKey: "k1"}
	if _, err := engine.Transfer(ctx, in); err == nil {
		t.Fatal("expected transfer to fail")
	}

	if got := WalletBalance(store, "alice", testCurrency); got != 500 {
		t.Fatalf("rollback incomplete, sender balance %d", got)
	}
	if got := WalletBalance(store, "bob", testCurrency); got != 0 {
		t.Fatalf("rollback incomplete, recipient balance %d", got)
	}
	if got := EntryCount(store); got != 0 {
		t.Fatalf("failed transfer left %d ledger entries", got)
	}

	// A retry with the same key must succeed once the fault clears.
	res, err := engine.Transfer(ctx, in)
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if res.Replayed {
		t.Fatal("retry after rollback must execute, not replay")
	}
	if got := WalletBalance(store, "alice", testCurrency); got != 300 {
		t.Fatalf("retry did not apply, sender balance %d", got)
	}
}

func TestConcurrentDrainNeverGoesNegative(t *testing.T) {
	store := NewMemoryStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	SeedWallet(store, "alice", testCurrency, 1_000)
	SeedWallet(store, "bob", testCurrency, 0)

	const attempts = 20
	var successes, rejections int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.Transfer(ctx, TransferInput{
				FromUserID: "alice", ToUserID: "bob", Amount: 100,
				IdempotencyKey: fmt.Sprintf("drain-%d", i),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInsufficientFunds):
				rejections++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 10 || rejections != 10 {
		t.Fatalf("expected 10 successes and 10 rejections, got %d/%d", successes, rejections)
	}
	if got := WalletBalance(store, "alice", testCurrency); got != 0 {
		t.Fatalf("expected drained balance 0, got %d", got)
	}
	if got := WalletBalance(store, "bob", testCurrency); got != 1_000 {
		t.Fatalf("expected recipient balance 1000, got %d", got)
	}
}
