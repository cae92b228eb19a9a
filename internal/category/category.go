package category

import (
	"context"
	"errors"
)

// ErrNameTaken indicates a category with the same name already exists.
var ErrNameTaken = errors.New("category name already exists")

// Category labels finance records (e.g. "salary", "groceries").
type Category struct {
	ID   string
	Name string
}

// Repository persists categories.
type Repository interface {
	Create(ctx context.Context, name string) (Category, error)
	List(ctx context.Context) ([]Category, error)
}
