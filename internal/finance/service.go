package finance

import (
	"context"
	"errors"
)

// ErrInvalidRecord covers malformed record input.
var ErrInvalidRecord = errors.New("invalid finance record")

// Service validates and records income/expense events.
type Service struct {
	repo            Repository
	defaultCurrency string
}

// NewService builds a finance service.
func NewService(repo Repository, defaultCurrency string) *Service {
	return &Service{repo: repo, defaultCurrency: defaultCurrency}
}

// RecordInput captures the data needed to record an event.
type RecordInput struct {
	UserID      string
	CategoryID  string
	Kind        string
	Amount      int64
	Description string
}

// Record validates the input and persists the record with its balance effect.
func (s *Service) Record(ctx context.Context, input RecordInput) (Record, error) {
	if input.UserID == "" {
		return Record{}, ErrInvalidRecord
	}
	if input.Amount <= 0 {
		return Record{}, ErrInvalidRecord
	}
	if input.Kind != KindIncome && input.Kind != KindExpense {
		return Record{}, ErrInvalidKind
	}

	return s.repo.Record(ctx, Record{
		UserID:      input.UserID,
		CategoryID:  input.CategoryID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		Description: input.Description,
	}, s.defaultCurrency)
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
