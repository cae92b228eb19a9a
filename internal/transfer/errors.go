package transfer

import "errors"

var (
	// ErrInvalidRequest covers malformed or missing input. Requests failing
	// this way never touch storage.
	ErrInvalidRequest = errors.New("invalid transfer request")

	// ErrWalletNotFound indicates a referenced user has no wallet.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds indicates the source balance, read under the row
	// lock, cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// errDuplicateRace signals that a concurrent identical request won the append
// race. The engine resolves it by re-reading the committed entry; it never
// escapes the package.
var errDuplicateRace = errors.New("idempotency key inserted concurrently")
