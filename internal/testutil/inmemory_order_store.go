package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/dailycrate/dailycrate/internal/domain/order"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
)

type InMemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders: make(map[string]*order.Order),
	}
}

func (r *InMemoryOrderStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = make(map[string]*order.Order)
}

func copyOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = make(order.OrderItems, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

func (r *InMemoryOrderStore) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return ierr.NewError("order already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, exists := r.orders[id]
	if !exists {
		return nil, ierr.NewError("order not found").
			WithHint("The order does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copyOrder(o), nil
}

func (r *InMemoryOrderStore) GetByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, copyOrder(o))
		}
	}
	sortOrders(result)
	return result, nil
}

func (r *InMemoryOrderStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*order.Order
	for _, o := range r.orders {
		if o.SubscriptionID != nil && *o.SubscriptionID == subscriptionID {
			result = append(result, copyOrder(o))
		}
	}
	sortOrders(result)
	return result, nil
}

func (r *InMemoryOrderStore) UpdateStatus(ctx context.Context, id string, status types.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, exists := r.orders[id]
	if !exists {
		return ierr.NewError("order not found").
			Mark(ierr.ErrNotFound)
	}
	o.OrderStatus = status
	return nil
}

func sortOrders(orders []*order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
