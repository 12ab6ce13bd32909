package order

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/types"
)

// Repository defines the interface for order persistence operations
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]*Order, error)

	// GetBySubscriptionID returns the billing history of a subscription
	GetBySubscriptionID(ctx context.Context, subscriptionID string) ([]*Order, error)

	// UpdateStatus is the boundary exposed to the fulfillment subsystem; the
	// billing sweep never calls it
	UpdateStatus(ctx context.Context, id string, status types.OrderStatus) error
}
