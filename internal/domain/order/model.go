package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
)

// Order is an immutable snapshot of one fulfilled billing cycle (or a one-time
// checkout). Prices on its items are frozen copies taken at billing time; the
// billing sweep never touches an order after creating it.
type Order struct {
	ID                string              `db:"id" json:"id"`
	OrderNumber       string              `db:"order_number" json:"order_number"`
	UserID            string              `db:"user_id" json:"user_id"`
	SubscriptionID    *string             `db:"subscription_id" json:"subscription_id,omitempty"`
	Items             OrderItems          `db:"items" json:"items"`
	TotalAmount       decimal.Decimal     `db:"total_amount" json:"total_amount"`
	OrderStatus       types.OrderStatus   `db:"order_status" json:"order_status"`
	PaymentStatus     types.PaymentStatus `db:"payment_status" json:"payment_status"`
	OrderType         types.OrderType     `db:"order_type" json:"order_type"`
	DeliveryAddressID string              `db:"delivery_address_id" json:"delivery_address_id"`

	types.BaseModel
}

func (o *Order) TableName() string {
	return "orders"
}

func (o *Order) Validate() error {
	if o.UserID == "" {
		return ierr.NewError("order user id is required").
			WithHint("Order must belong to a user").
			Mark(ierr.ErrValidation)
	}
	if len(o.Items) == 0 {
		return ierr.NewError("order has no items").
			WithHint("An order needs at least one item").
			Mark(ierr.ErrValidation)
	}
	if o.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("order total must be positive").
			WithHint("Order total must be greater than zero").
			WithReportableDetails(map[string]any{
				"order_id": o.ID,
				"total":    o.TotalAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	return o.OrderStatus.Validate()
}

// OrderItem is one frozen line of an order snapshot
type OrderItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	VariantWeight *string         `json:"variant_weight,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// OrderItems is the jsonb-persisted item list of an order
type OrderItems []OrderItem

// Scan implements the sql.Scanner interface for OrderItems
func (items *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*items = OrderItems{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	var result OrderItems
	err := json.Unmarshal(bytes, &result)
	*items = result
	return err
}

// Value implements the driver.Valuer interface for OrderItems
func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		return json.Marshal(OrderItems{})
	}
	return json.Marshal(items)
}
