package cart

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/dailycrate/dailycrate/internal/types"
)

// Cart holds a user's staged items before enrollment or checkout. The billing
// engine only touches it to clear it after a successful enrollment.
type Cart struct {
	ID     string    `db:"id" json:"id"`
	UserID string    `db:"user_id" json:"user_id"`
	Items  CartItems `db:"items" json:"items"`

	types.BaseModel
}

func (c *Cart) TableName() string {
	return "carts"
}

// CartItem is one staged product entry
type CartItem struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	VariantWeight *string `json:"variant_weight,omitempty"`
}

// CartItems is the jsonb-persisted item list of a cart
type CartItems []CartItem

// Scan implements the sql.Scanner interface for CartItems
func (items *CartItems) Scan(value interface{}) error {
	if value == nil {
		*items = CartItems{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	var result CartItems
	err := json.Unmarshal(bytes, &result)
	*items = result
	return err
}

// Value implements the driver.Valuer interface for CartItems
func (items CartItems) Value() (driver.Value, error) {
	if items == nil {
		return json.Marshal(CartItems{})
	}
	return json.Marshal(items)
}

// Repository defines the interface for cart persistence operations
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Cart, error)
	Upsert(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, userID string) error
}
