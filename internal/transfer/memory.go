package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walletapp/wallet_app/internal/ledger"
	"github.com/walletapp/wallet_app/internal/wallet"
)

// MemoryStore is a concurrency-safe in-memory transfer store. It mirrors the
// Postgres backend's semantics closely enough to exercise the engine in unit
// tests: per-wallet mutexes stand in for row locks (a unit of work blocks on
// a wallet another unit holds, exactly like FOR UPDATE), writes are staged
// and applied only on commit, and a rollback discards them untouched.
//
// It also implements wallet.Store so the service can run without a database
// in development.
type MemoryStore struct {
	mu        sync.Mutex
	wallets   map[string]*memWallet   // by wallet id
	byOwner   map[string]string       // userID/currency -> wallet id
	entries   map[string]ledger.Entry // by idempotency key
	appendErr error                   // injected failure for the next append
}

type memWallet struct {
	mu sync.Mutex
	w  wallet.Wallet
}

// NewMemoryStore constructs an empty in-memory transfer store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets: make(map[string]*memWallet),
		byOwner: make(map[string]string),
		entries: make(map[string]ledger.Entry),
	}
}

// Atomically runs fn against a staged view of the store. On success the
// staged writes are applied; on error they are discarded. Wallet locks
// acquired by fn are released either way.
func (s *MemoryStore) Atomically(_ context.Context, fn func(uow UnitOfWork) error) error {
	uow := &memUnitOfWork{store: s, deltas: make(map[string]int64)}
	defer uow.unlockAll()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.commit()
}

// EntryByKey reads a committed ledger entry.
func (s *MemoryStore) EntryByKey(_ context.Context, key string) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return ledger.Entry{}, ledger.ErrEntryNotFound
	}
	return entry, nil
}

// FindOrCreate implements wallet.Store.
func (s *MemoryStore) FindOrCreate(_ context.Context, userID, currency string) (wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findOrCreateLocked(userID, currency), nil
}

// ByUser implements wallet.Store.
func (s *MemoryStore) ByUser(_ context.Context, userID, currency string) (wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOwner[userID+"/"+currency]
	if !ok {
		return wallet.Wallet{}, wallet.ErrNotFound
	}
	return s.wallets[id].w, nil
}

// ApplyDelta adjusts the committed balance of the user's wallet, creating it
// on first use. A debit exceeding the balance is rejected with
// wallet.ErrInsufficientBalance. It takes the wallet lock, so it serializes
// with in-flight transfers touching the same wallet.
func (s *MemoryStore) ApplyDelta(_ context.Context, userID, currency string, delta int64) (int64, error) {
	s.mu.Lock()
	w := s.findOrCreateLocked(userID, currency)
	mw := s.wallets[w.ID]
	s.mu.Unlock()

	mw.mu.Lock()
	defer mw.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if mw.w.Balance+delta < 0 {
		return mw.w.Balance, wallet.ErrInsufficientBalance
	}
	mw.w.Balance += delta
	mw.w.UpdatedAt = time.Now().UTC()
	return mw.w.Balance, nil
}

func (s *MemoryStore) findOrCreateLocked(userID, currency string) wallet.Wallet {
	key := userID + "/" + currency
	if id, ok := s.byOwner[key]; ok {
		return s.wallets[id].w
	}
	now := time.Now().UTC()
	w := wallet.Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.wallets[w.ID] = &memWallet{w: w}
	s.byOwner[key] = w.ID
	return w
}

type memUnitOfWork struct {
	store  *MemoryStore
	locked []*memWallet
	deltas map[string]int64
	staged []ledger.Entry
}

func (u *memUnitOfWork) EntryByKey(_ context.Context, key string) (ledger.Entry, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	entry, ok := u.store.entries[key]
	if !ok {
		return ledger.Entry{}, ledger.ErrEntryNotFound
	}
	return entry, nil
}

func (u *memUnitOfWork) LockWallet(_ context.Context, userID, currency string) (wallet.Wallet, error) {
	u.store.mu.Lock()
	id, ok := u.store.byOwner[userID+"/"+currency]
	if !ok {
		u.store.mu.Unlock()
		return wallet.Wallet{}, wallet.ErrNotFound
	}
	mw := u.store.wallets[id]
	u.store.mu.Unlock()

	// Blocks until the holding unit of work commits or rolls back, the
	// in-memory analogue of waiting on a row lock.
	mw.mu.Lock()
	u.locked = append(u.locked, mw)
	return mw.w, nil
}

func (u *memUnitOfWork) AdjustBalance(_ context.Context, walletID string, delta int64) error {
	for _, mw := range u.locked {
		if mw.w.ID == walletID {
			u.deltas[walletID] += delta
			return nil
		}
	}
	return wallet.ErrNotFound
}

func (u *memUnitOfWork) AppendEntry(_ context.Context, key, fromWalletID, toWalletID string, amount int64) (ledger.Entry, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	if err := u.store.appendErr; err != nil {
		u.store.appendErr = nil
		return ledger.Entry{}, err
	}
	if _, exists := u.store.entries[key]; exists {
		return ledger.Entry{}, ledger.ErrDuplicateEntry
	}

	entry := ledger.Entry{
		ID:             uuid.NewString(),
		IdempotencyKey: key,
		FromWalletID:   fromWalletID,
		ToWalletID:     toWalletID,
		Amount:         amount,
		Status:         ledger.StatusCompleted,
		CreatedAt:      time.Now().UTC(),
	}
	u.staged = append(u.staged, entry)
	return entry, nil
}

func (u *memUnitOfWork) commit() error {
	u.store.mu.Lock()
	for _, mw := range u.locked {
		if delta, ok := u.deltas[mw.w.ID]; ok {
			mw.w.Balance += delta
			mw.w.UpdatedAt = time.Now().UTC()
		}
	}
	for _, entry := range u.staged {
		u.store.entries[entry.IdempotencyKey] = entry
	}
	u.store.mu.Unlock()
	return nil
}

func (u *memUnitOfWork) unlockAll() {
	for i := len(u.locked) - 1; i >= 0; i-- {
		u.locked[i].mu.Unlock()
	}
	u.locked = nil
}
