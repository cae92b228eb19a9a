package category

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu     sync.RWMutex
	byName map[string]Category
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{byName: make(map[string]Category)}
}

func (r *memoryRepository) Create(_ context.Context, name string) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return Category{}, ErrNameTaken
	}
	c := Category{ID: uuid.NewString(), Name: name}
	r.byName[name] = c
	return c, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	categories := make([]Category, 0, len(r.byName))
	for _, c := range r.byName {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}
