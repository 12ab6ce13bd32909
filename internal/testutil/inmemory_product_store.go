package testutil

import (
	"context"
	"sync"

	"github.com/dailycrate/dailycrate/internal/domain/product"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
)

type InMemoryProductStore struct {
	mu       sync.RWMutex
	products map[string]*product.Product
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{
		products: make(map[string]*product.Product),
	}
}

func (r *InMemoryProductStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = make(map[string]*product.Product)
}

func (r *InMemoryProductStore) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; exists {
		return ierr.NewError("product already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *InMemoryProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.products[id]
	if !exists {
		return nil, ierr.NewError("product not found").
			WithHint("The product does not exist").
			Mark(ierr.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (r *InMemoryProductStore) List(ctx context.Context) ([]*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*product.Product, 0, len(r.products))
	for _, p := range r.products {
		c := *p
		result = append(result, &c)
	}
	return result, nil
}

// Delete removes a product outright, simulating catalog retirement
func (r *InMemoryProductStore) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
}
