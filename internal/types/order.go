package types

import (
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/samber/lo"
)

// OrderStatus is the fulfillment status of an order. The billing sweep only ever
// creates orders in processing; later advances are driven by fulfillment tracking.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Validate() error {
	allowed := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid order status").
			WithHint("Invalid order status").
			WithReportableDetails(map[string]any{
				"status": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentStatus is the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// OrderType distinguishes subscription-cycle orders from one-time checkouts
type OrderType string

const (
	OrderTypeSubscription OrderType = "subscription"
	OrderTypeOneTime      OrderType = "one_time"
)
