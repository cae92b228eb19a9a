package transfer

// SeedWallet is a test helper that creates a wallet with the given balance in
// the in-memory store and returns its id.
func SeedWallet(s *MemoryStore, userID, currency string, balance int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.findOrCreateLocked(userID, currency)
	s.wallets[w.ID].w.Balance = balance
	return w.ID
}

// WalletBalance is a test helper that reads a committed wallet balance from
// the in-memory store.
func WalletBalance(s *MemoryStore, userID, currency string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOwner[userID+"/"+currency]
	if !ok {
		return 0
	}
	return s.wallets[id].w.Balance
}

// EntryCount is a test helper that reports the number of committed ledger
// entries in the in-memory store.
func EntryCount(s *MemoryStore) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FailNextAppend makes the next ledger append in the in-memory store fail
// with err, for exercising rollback behavior.
func FailNextAppend(s *MemoryStore, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}
