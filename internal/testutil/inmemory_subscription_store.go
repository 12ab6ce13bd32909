package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
)

// InMemorySubscriptionStore copies on read and write so tests observe the
// same freshness semantics as the SQL repository
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (r *InMemorySubscriptionStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = make(map[string]*subscription.Subscription)
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	c := *sub
	c.Items = make(subscription.LineItems, len(sub.Items))
	copy(c.Items, sub.Items)
	return &c
}

func (r *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscriptions[sub.ID]; exists {
		return ierr.NewError("subscription already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	r.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (r *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, exists := r.subscriptions[id]
	if !exists {
		return nil, ierr.NewError("subscription not found").
			WithHint("The subscription does not exist").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

// GetForUpdate reads without a row lock; each store operation already holds
// the store mutex, and lock-contention behaviour needs a real database
func (r *InMemorySubscriptionStore) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	return r.Get(ctx, id)
}

// LockUserEnrollment is a no-op for the same reason
func (r *InMemorySubscriptionStore) LockUserEnrollment(ctx context.Context, userID string) error {
	return nil
}

func (r *InMemorySubscriptionStore) GetByUserID(ctx context.Context, userID string) ([]*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*subscription.Subscription
	for _, sub := range r.subscriptions {
		if sub.UserID == userID {
			result = append(result, copySubscription(sub))
		}
	}
	return result, nil
}

func (r *InMemorySubscriptionStore) ListDue(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*subscription.Subscription
	for _, sub := range r.subscriptions {
		if sub.SubscriptionStatus == types.SubscriptionStatusActive && sub.IsDue(asOf) {
			result = append(result, copySubscription(sub))
		}
	}
	return result, nil
}

func (r *InMemorySubscriptionStore) FindActive(ctx context.Context, userID, productID, variantWeight string, frequency types.Frequency) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sub := range r.subscriptions {
		if sub.UserID != userID ||
			sub.Frequency != frequency ||
			sub.SubscriptionStatus != types.SubscriptionStatusActive {
			continue
		}
		for _, item := range sub.Items {
			if item.ProductID == productID && item.VariantKey() == variantWeight {
				return copySubscription(sub), nil
			}
		}
	}
	return nil, ierr.NewError("subscription not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscriptions[sub.ID]; !exists {
		return ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}
	r.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (r *InMemorySubscriptionStore) UpdateStatus(ctx context.Context, id string, status types.SubscriptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.subscriptions[id]
	if !exists {
		return ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}
	sub.SubscriptionStatus = status
	return nil
}

func (r *InMemorySubscriptionStore) AdvanceDeliveryDates(ctx context.Context, id string, next time.Time, last time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.subscriptions[id]
	if !exists {
		return ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}
	sub.NextDeliveryDate = next
	sub.LastDeliveryDate = &last
	sub.FailedAttempts = 0
	return nil
}
