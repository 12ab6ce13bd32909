package subscription

import (
	"context"
	"time"

	"github.com/dailycrate/dailycrate/internal/types"
)

// Repository defines the interface for subscription persistence operations
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)

	// GetForUpdate locks the subscription row until the surrounding transaction
	// ends; merge writes read through this so increments serialize
	GetForUpdate(ctx context.Context, id string) (*Subscription, error)

	GetByUserID(ctx context.Context, userID string) ([]*Subscription, error)

	// LockUserEnrollment takes a transaction-scoped lock on the user's
	// enrollments so a conflict check cannot race a concurrent insert for the
	// same uniqueness key
	LockUserEnrollment(ctx context.Context, userID string) error

	// ListDue returns all active subscriptions with next_delivery_date <= asOf
	ListDue(ctx context.Context, asOf time.Time) ([]*Subscription, error)

	// FindActive returns the active subscription matching the uniqueness key
	// (user, product, variant weight, frequency), or ErrNotFound
	FindActive(ctx context.Context, userID, productID, variantWeight string, frequency types.Frequency) (*Subscription, error)

	Update(ctx context.Context, sub *Subscription) error
	UpdateStatus(ctx context.Context, id string, status types.SubscriptionStatus) error

	// AdvanceDeliveryDates moves next_delivery_date forward and records the last
	// successful billing date; called inside the billing-cycle transaction
	AdvanceDeliveryDates(ctx context.Context, id string, next time.Time, last time.Time) error
}
