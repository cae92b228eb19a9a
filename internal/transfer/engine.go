package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/walletapp/wallet_app/internal/ledger"
	"github.com/walletapp/wallet_app/internal/notification"
	"github.com/walletapp/wallet_app/internal/wallet"
)

// Engine executes wallet-to-wallet transfers with exactly-once effect. It is
// stateless: all coordination happens through the store's transactional
// locking, so independent requests run on independent workers and serialize
// only when they share a wallet.
type Engine struct {
	store           Store
	notifier        notification.Notifier
	logger          *slog.Logger
	defaultCurrency string
}

// NewEngine constructs a transfer engine bound to a transactional store.
func NewEngine(store Store, notifier notification.Notifier, logger *slog.Logger, defaultCurrency string) *Engine {
	return &Engine{store: store, notifier: notifier, logger: logger, defaultCurrency: defaultCurrency}
}

// TransferInput captures a validated transfer request. Amount is in integer
// minor units.
type TransferInput struct {
	FromUserID     string
	ToUserID       string
	Currency       string
	Amount         int64
	IdempotencyKey string
}

func (in TransferInput) validate() error {
	if in.FromUserID == "" || in.ToUserID == "" || in.IdempotencyKey == "" {
		return fmt.Errorf("%w: fromUserId, toUserId, amount and idempotencyKey are required", ErrInvalidRequest)
	}
	if in.FromUserID == in.ToUserID {
		return fmt.Errorf("%w: cannot transfer to the same user", ErrInvalidRequest)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidRequest)
	}
	return nil
}

// TransferResult describes the outcome of a transfer. Replayed is true when
// the idempotency key matched an earlier transfer and no money moved now.
type TransferResult struct {
	TransferID string
	Amount     int64
	Replayed   bool
}

// Transfer moves Amount from the sender's wallet to the recipient's wallet as
// one indivisible unit of work:
//
//  1. idempotency lookup; a hit short-circuits to the recorded entry
//  2. both wallet rows locked in canonical order (lexicographic user id,
//     independent of transfer direction, so opposite-direction transfers
//     cannot deadlock)
//  3. source balance validated under the held lock
//  4. debit and credit applied together
//  5. ledger entry appended; a racing duplicate key aborts the unit and
//     resolves to the winner's entry
//
// Any failure after step 1 rolls the whole unit back.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	if err := in.validate(); err != nil {
		return TransferResult{}, err
	}
	if in.Currency == "" {
		in.Currency = e.defaultCurrency
	}

	var res TransferResult
	err := e.store.Atomically(ctx, func(uow UnitOfWork) error {
		entry, err := uow.EntryByKey(ctx, in.IdempotencyKey)
		if err == nil {
			res = TransferResult{TransferID: entry.ID, Amount: entry.Amount, Replayed: true}
			return nil
		}
		if !errors.Is(err, ledger.ErrEntryNotFound) {
			return fmt.Errorf("idempotency lookup: %w", err)
		}

		src, dst, err := e.lockEndpoints(ctx, uow, in)
		if err != nil {
			return err
		}

		if err := uow.AdjustBalance(ctx, src.ID, -in.Amount); err != nil {
			return fmt.Errorf("debit source wallet: %w", err)
		}
		if err := uow.AdjustBalance(ctx, dst.ID, in.Amount); err != nil {
			return fmt.Errorf("credit destination wallet: %w", err)
		}

		entry, err = uow.AppendEntry(ctx, in.IdempotencyKey, src.ID, dst.ID, in.Amount)
		if err != nil {
			if errors.Is(err, ledger.ErrDuplicateEntry) {
				return errDuplicateRace
			}
			return fmt.Errorf("append ledger entry: %w", err)
		}

		res = TransferResult{TransferID: entry.ID, Amount: entry.Amount}
		return nil
	})
	if err != nil {
		if errors.Is(err, errDuplicateRace) {
			return e.resolveRace(ctx, in)
		}
		return TransferResult{}, err
	}

	if !res.Replayed {
		e.notifyRecipient(ctx, in)
	}
	return res, nil
}

// lockEndpoints acquires both wallet row locks in canonical order and maps
// them back to their source/destination roles. Existence and funds checks
// keep the caller-visible precedence of the sequential protocol: missing
// sender, then insufficient funds, then missing recipient.
func (e *Engine) lockEndpoints(ctx context.Context, uow UnitOfWork, in TransferInput) (src, dst wallet.Wallet, err error) {
	firstUser, secondUser := in.FromUserID, in.ToUserID
	if secondUser < firstUser {
		firstUser, secondUser = secondUser, firstUser
	}

	first, firstErr := uow.LockWallet(ctx, firstUser, in.Currency)
	second, secondErr := uow.LockWallet(ctx, secondUser, in.Currency)

	srcErr, dstErr := firstErr, secondErr
	src, dst = first, second
	if firstUser != in.FromUserID {
		src, dst = second, first
		srcErr, dstErr = secondErr, firstErr
	}

	if srcErr != nil {
		if errors.Is(srcErr, wallet.ErrNotFound) {
			return src, dst, fmt.Errorf("%w: sender has no wallet", ErrWalletNotFound)
		}
		return src, dst, fmt.Errorf("lock source wallet: %w", srcErr)
	}
	if src.Balance < in.Amount {
		return src, dst, ErrInsufficientFunds
	}
	if dstErr != nil {
		if errors.Is(dstErr, wallet.ErrNotFound) {
			return src, dst, fmt.Errorf("%w: recipient has no wallet", ErrWalletNotFound)
		}
		return src, dst, fmt.Errorf("lock destination wallet: %w", dstErr)
	}
	return src, dst, nil
}

// resolveRace handles the window where a concurrent identical request
// committed first: our unit rolled back, so the recorded entry is the result.
func (e *Engine) resolveRace(ctx context.Context, in TransferInput) (TransferResult, error) {
	entry, err := e.store.EntryByKey(ctx, in.IdempotencyKey)
	if err != nil {
		return TransferResult{}, fmt.Errorf("resolve duplicate transfer: %w", err)
	}
	return TransferResult{TransferID: entry.ID, Amount: entry.Amount, Replayed: true}, nil
}

func (e *Engine) notifyRecipient(ctx context.Context, in TransferInput) {
	if e.notifier == nil {
		return
	}
	err := e.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindTransferReceived,
		Destination: in.ToUserID,
		Body:        fmt.Sprintf("You received %d from user %s", in.Amount, in.FromUserID),
	})
	if err != nil && e.logger != nil {
		e.logger.Warn("transfer notification failed", "error", err)
	}
}
