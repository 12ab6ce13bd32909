package subscription

import (
	"time"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
)

// Subscription is a recurring product-bundle order billed from the owner's
// prepaid wallet each time NextDeliveryDate is reached.
type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// UserID is the owning user; a subscription is exclusively owned by one user
	UserID string `db:"user_id" json:"user_id"`

	// DeliveryAddressID is the address orders emitted for this subscription ship to
	DeliveryAddressID string `db:"delivery_address_id" json:"delivery_address_id"`

	// Items is the ordered bundle of line items billed each cycle
	Items LineItems `db:"items" json:"items"`

	// Frequency is the billing and delivery cadence
	Frequency types.Frequency `db:"frequency" json:"frequency"`

	// SubscriptionStatus is the lifecycle state (pending/active/paused/cancelled)
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	// NextDeliveryDate is when the next billing cycle is due. An active
	// subscription always has a non-zero NextDeliveryDate.
	NextDeliveryDate time.Time `db:"next_delivery_date" json:"next_delivery_date"`

	// LastDeliveryDate is the date of the last successful billing, nil before the
	// first cycle completes
	LastDeliveryDate *time.Time `db:"last_delivery_date" json:"last_delivery_date"`

	// PaymentMethodToken is the opaque token from the tokenization stub
	PaymentMethodToken string `db:"payment_method_token" json:"payment_method_token"`

	// FailedAttempts counts consecutive failed billing cycles; reset on success.
	// Only consulted when the pause_after_n failure policy is configured.
	FailedAttempts int `db:"failed_attempts" json:"failed_attempts"`

	types.BaseModel
}

func (s *Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Subscription must belong to a user").
			Mark(ierr.ErrValidation)
	}
	if err := s.Frequency.Validate(); err != nil {
		return err
	}
	if err := s.SubscriptionStatus.Validate(); err != nil {
		return err
	}
	if s.SubscriptionStatus == types.SubscriptionStatusActive && s.NextDeliveryDate.IsZero() {
		return ierr.NewError("active subscription requires a next delivery date").
			WithHint("Next delivery date is required for active subscriptions").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	if len(s.Items) == 0 {
		return ierr.NewError("subscription has no items").
			WithHint("At least one item is required").
			Mark(ierr.ErrValidation)
	}
	for _, item := range s.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsDue reports whether the subscription should be picked up by a sweep running
// as of the given date. Using <= keeps the sweep self-healing: a missed tick
// still catches up on the next run.
func (s *Subscription) IsDue(asOf time.Time) bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive &&
		!s.NextDeliveryDate.After(types.DateOnly(asOf))
}

// transition moves the subscription to target, enforcing the state machine.
func (s *Subscription) transition(target types.SubscriptionStatus) error {
	if !s.SubscriptionStatus.CanTransitionTo(target) {
		return ierr.NewError("invalid subscription status transition").
			WithHintf("Cannot move subscription from %s to %s", s.SubscriptionStatus, target).
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"from":            s.SubscriptionStatus,
				"to":              target,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	s.SubscriptionStatus = target
	return nil
}

// Activate moves a pending or paused subscription to active
func (s *Subscription) Activate() error {
	return s.transition(types.SubscriptionStatusActive)
}

// Pause excludes the subscription from the billing sweep until resumed
func (s *Subscription) Pause() error {
	return s.transition(types.SubscriptionStatusPaused)
}

// Resume reactivates a paused subscription
func (s *Subscription) Resume() error {
	return s.transition(types.SubscriptionStatusActive)
}

// Cancel terminally ends the subscription. No refunds are issued for prior
// cycles and the row is retained for history.
func (s *Subscription) Cancel() error {
	return s.transition(types.SubscriptionStatusCancelled)
}
