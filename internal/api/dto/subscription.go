package dto

import (
	"time"

	"github.com/dailycrate/dailycrate/internal/domain/order"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/dailycrate/dailycrate/internal/validator"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one candidate item of an enrollment request. Variant
// weight and price must be provided together or not at all.
type LineItemRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	Quantity      int              `json:"quantity" validate:"required,min=1"`
	VariantWeight *string          `json:"variant_weight,omitempty"`
	VariantPrice  *decimal.Decimal `json:"variant_price,omitempty"`
}

// CreateSubscriptionRequest is the enrollment payload. Without ForceMerge, an
// existing active subscription for any requested (product, variant, frequency)
// blocks the whole enrollment with a structured conflict response.
type CreateSubscriptionRequest struct {
	UserID            string            `json:"user_id" validate:"required"`
	Items             []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Frequency         types.Frequency   `json:"frequency" validate:"required"`
	DeliveryAddressID string            `json:"delivery_address_id" validate:"required"`
	StartDate         *time.Time        `json:"start_date,omitempty"`
	ForceMerge        bool              `json:"force_merge,omitempty"`
	PaymentMethod     string            `json:"payment_method,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Frequency.Validate(); err != nil {
		return err
	}
	for _, item := range r.Items {
		li := r.toLineItem(item)
		if err := li.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r *CreateSubscriptionRequest) toLineItem(item LineItemRequest) subscription.LineItem {
	return subscription.LineItem{
		ProductID:     item.ProductID,
		Quantity:      item.Quantity,
		VariantWeight: item.VariantWeight,
		VariantPrice:  item.VariantPrice,
	}
}

// LineItems converts the request items to domain line items
func (r *CreateSubscriptionRequest) LineItems() subscription.LineItems {
	items := make(subscription.LineItems, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, r.toLineItem(item))
	}
	return items
}

// EffectiveStartDate resolves the requested start date, defaulting to today
func (r *CreateSubscriptionRequest) EffectiveStartDate(now time.Time) time.Time {
	if r.StartDate != nil {
		return types.DateOnly(*r.StartDate)
	}
	return types.DateOnly(now)
}

// UpdateSubscriptionRequest changes the cadence or delivery parameters of a
// subscription. Changing the frequency does not reset the due date unless a new
// one is passed explicitly.
type UpdateSubscriptionRequest struct {
	Frequency         *types.Frequency `json:"frequency,omitempty"`
	NextDeliveryDate  *time.Time       `json:"next_delivery_date,omitempty"`
	DeliveryAddressID *string          `json:"delivery_address_id,omitempty"`
	Quantities        map[string]int   `json:"quantities,omitempty"` // product id -> new quantity
}

func (r *UpdateSubscriptionRequest) Validate() error {
	if r.Frequency != nil {
		if err := r.Frequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

// SubscriptionDetailResponse is one subscription with its billing history and
// the owner's address options
type SubscriptionDetailResponse struct {
	*subscription.Subscription
	Orders    []*order.Order     `json:"orders"`
	Addresses []*AddressResponse `json:"addresses"`
}

// EnrollmentResponse lists every subscription affected by an enrollment,
// whether merged into or newly created
type EnrollmentResponse struct {
	Subscriptions []*SubscriptionResponse `json:"subscriptions"`
}

// EnrollmentConflict describes one blocked item of an enrollment request
type EnrollmentConflict struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	SubscriptionID string `json:"subscription_id"`
}

type ListSubscriptionsResponse struct {
	Subscriptions []*SubscriptionResponse `json:"subscriptions"`
	Total         int                     `json:"total"`
}
