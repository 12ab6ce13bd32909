package product

import (
	"context"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/shopspring/decimal"
)

// Product is a read-mostly catalog record; the billing engine only consults its
// base price and existence.
type Product struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	BasePrice decimal.Decimal `db:"base_price" json:"base_price"`

	types.BaseModel
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) Validate() error {
	if p.Name == "" {
		return ierr.NewError("product name is required").
			WithHint("Product name is required").
			Mark(ierr.ErrValidation)
	}
	if p.BasePrice.IsNegative() {
		return ierr.NewError("product base price cannot be negative").
			WithHint("Base price cannot be negative").
			WithReportableDetails(map[string]any{
				"product_id": p.ID,
				"base_price": p.BasePrice,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Repository defines the interface for product persistence operations
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
}
