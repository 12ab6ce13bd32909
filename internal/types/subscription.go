package types

import (
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the status of a recurring-order subscription.
// Pending is reserved for a future pre-authorization step and is not part of the
// normal enrollment flow, which activates immediately.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusPending,
		SubscriptionStatusActive,
		SubscriptionStatusPaused,
		SubscriptionStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CanTransitionTo reports whether the state machine allows moving from s to target.
// Cancelled is terminal. A billing failure never drives a transition out of active.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	switch s {
	case SubscriptionStatusPending:
		return target == SubscriptionStatusActive || target == SubscriptionStatusCancelled
	case SubscriptionStatusActive:
		return target == SubscriptionStatusPaused || target == SubscriptionStatusCancelled
	case SubscriptionStatusPaused:
		return target == SubscriptionStatusActive || target == SubscriptionStatusCancelled
	case SubscriptionStatusCancelled:
		return false
	default:
		return false
	}
}

// Frequency is the delivery and billing cadence of a subscription
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) String() string {
	return string(f)
}

func (f Frequency) Validate() error {
	allowed := []Frequency{
		FrequencyDaily,
		FrequencyWeekly,
		FrequencyMonthly,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid frequency").
			WithHint("Frequency must be one of daily, weekly or monthly").
			WithReportableDetails(map[string]any{
				"frequency":         f,
				"allowed_frequency": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingFailurePolicy decides what happens to a subscription after repeated
// insufficient-funds billing failures. The default is to retry on every sweep
// forever; pause_after_n pauses the subscription once the configured number of
// consecutive failures is reached.
type BillingFailurePolicy string

const (
	BillingFailurePolicyRetryForever BillingFailurePolicy = "retry_forever"
	BillingFailurePolicyPauseAfterN  BillingFailurePolicy = "pause_after_n"
)

func (p BillingFailurePolicy) Validate() error {
	allowed := []BillingFailurePolicy{
		BillingFailurePolicyRetryForever,
		BillingFailurePolicyPauseAfterN,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewError("invalid billing failure policy").
			WithHint("Billing failure policy must be retry_forever or pause_after_n").
			WithReportableDetails(map[string]any{
				"policy": p,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
