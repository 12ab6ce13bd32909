package subscription

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a subscription bundle. A standard item
// carries just the product and quantity; a variant item additionally pins a
// variant weight and its price. Variant presence is all-or-nothing: either both
// VariantWeight and VariantPrice are set or neither is.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`

	VariantWeight *string          `json:"variant_weight,omitempty"`
	VariantPrice  *decimal.Decimal `json:"variant_price,omitempty"`
}

func (li LineItem) Validate() error {
	if li.ProductID == "" {
		return ierr.NewError("line item product id is required").
			WithHint("Each item must reference a product").
			Mark(ierr.ErrValidation)
	}
	if li.Quantity < 1 {
		return ierr.NewError("line item quantity must be at least 1").
			WithHint("Quantity must be at least 1").
			WithReportableDetails(map[string]any{
				"product_id": li.ProductID,
				"quantity":   li.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	if (li.VariantWeight == nil) != (li.VariantPrice == nil) {
		return ierr.NewError("variant weight and price must be set together").
			WithHint("A variant item needs both a weight and a price").
			WithReportableDetails(map[string]any{
				"product_id": li.ProductID,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsVariant reports whether the item pins a product variant
func (li LineItem) IsVariant() bool {
	return li.VariantWeight != nil && li.VariantPrice != nil
}

// VariantKey returns the weight used for conflict matching, empty for standard
// items so that standard and variant entries of the same product never collide.
func (li LineItem) VariantKey() string {
	if li.VariantWeight != nil {
		return *li.VariantWeight
	}
	return ""
}

// UnitPrice resolves the effective unit price at the point of use: the pinned
// variant price when present, the product base price otherwise.
func (li LineItem) UnitPrice(basePrice decimal.Decimal) decimal.Decimal {
	if li.VariantPrice != nil {
		return *li.VariantPrice
	}
	return basePrice
}

// LineItems is the jsonb-persisted bundle of a subscription
type LineItems []LineItem

// Scan implements the sql.Scanner interface for LineItems
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	var result LineItems
	err := json.Unmarshal(bytes, &result)
	*l = result
	return err
}

// Value implements the driver.Valuer interface for LineItems
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(LineItems{})
	}
	return json.Marshal(l)
}
