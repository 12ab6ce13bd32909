package testutil

import (
	"context"
	"sync"

	"github.com/dailycrate/dailycrate/internal/domain/address"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
)

type InMemoryAddressStore struct {
	mu        sync.RWMutex
	addresses map[string]*address.Address
}

func NewInMemoryAddressStore() *InMemoryAddressStore {
	return &InMemoryAddressStore{
		addresses: make(map[string]*address.Address),
	}
}

func (r *InMemoryAddressStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addresses = make(map[string]*address.Address)
}

func (r *InMemoryAddressStore) Create(ctx context.Context, a *address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.addresses[a.ID]; exists {
		return ierr.NewError("address already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	c := *a
	r.addresses[a.ID] = &c
	return nil
}

func (r *InMemoryAddressStore) Get(ctx context.Context, id string) (*address.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.addresses[id]
	if !exists {
		return nil, ierr.NewError("address not found").
			WithHint("The address does not exist").
			Mark(ierr.ErrNotFound)
	}
	c := *a
	return &c, nil
}

func (r *InMemoryAddressStore) GetByUserID(ctx context.Context, userID string) ([]*address.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*address.Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			c := *a
			result = append(result, &c)
		}
	}
	return result, nil
}
