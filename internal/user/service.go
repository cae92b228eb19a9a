package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/walletapp/wallet_app/internal/wallet"
)

// Service manages the user lifecycle. Registration provisions the user's
// default-currency wallet so transfers and finance records have an account to
// land on.
type Service struct {
	repo            Repository
	wallets         wallet.Store
	defaultCurrency string
}

// NewService creates a user service.
func NewService(repo Repository, wallets wallet.Store, defaultCurrency string) *Service {
	return &Service{repo: repo, wallets: wallets, defaultCurrency: defaultCurrency}
}

// RegisterInput captures the data needed to create a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a user with a hashed password and a zero-balance wallet.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if input.Name == "" || input.Email == "" {
		return User{}, errors.New("name and email are required")
	}
	if len(input.Password) < 6 {
		return User{}, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}

	// The wallet row references the user row, so provisioning is a second
	// write. If it fails the user record stays; the wallet materializes on
	// the next FindOrCreate (finance record or explicit wallet creation).
	if _, err := s.wallets.FindOrCreate(ctx, u.ID, s.defaultCurrency); err != nil {
		return User{}, err
	}
	return u, nil
}

// Get retrieves a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}
