package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores categories in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed category repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a category with a unique name.
func (r *PostgresRepository) Create(ctx context.Context, name string) (Category, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrNameTaken
		}
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return Category{ID: id.String(), Name: name}, nil
}

// List returns all categories ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var (
			c  Category
			id uuid.UUID
		)
		if err := rows.Scan(&id, &c.Name); err != nil {
			return nil, err
		}
		c.ID = id.String()
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
