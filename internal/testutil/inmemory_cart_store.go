package testutil

import (
	"context"
	"sync"

	"github.com/dailycrate/dailycrate/internal/domain/cart"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
)

type InMemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]*cart.Cart // keyed by user id
}

func NewInMemoryCartStore() *InMemoryCartStore {
	return &InMemoryCartStore{
		carts: make(map[string]*cart.Cart),
	}
}

// Reset drops every cart; the interface method Clear empties one user's cart
func (r *InMemoryCartStore) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = make(map[string]*cart.Cart)
}

func copyCart(c *cart.Cart) *cart.Cart {
	out := *c
	out.Items = make(cart.CartItems, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}

func (r *InMemoryCartStore) GetByUserID(ctx context.Context, userID string) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.carts[userID]
	if !exists {
		return nil, ierr.NewError("cart not found").
			Mark(ierr.ErrNotFound)
	}
	return copyCart(c), nil
}

func (r *InMemoryCartStore) Upsert(ctx context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[c.UserID] = copyCart(c)
	return nil
}

func (r *InMemoryCartStore) Clear(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.carts[userID]
	if !exists {
		return nil
	}
	c.Items = cart.CartItems{}
	return nil
}
