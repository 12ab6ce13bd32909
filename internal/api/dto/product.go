package dto

import (
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/domain/address"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	"github.com/dailycrate/dailycrate/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the catalog boundary; the billing engine only reads
// products back
type CreateProductRequest struct {
	Name      string          `json:"name" validate:"required"`
	BasePrice decimal.Decimal `json:"base_price"`
}

func (r *CreateProductRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BasePrice.IsNegative() {
		return ierr.NewError("base price cannot be negative").
			WithHint("Base price cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type ProductResponse struct {
	*product.Product
}

type ListProductsResponse struct {
	Products []*ProductResponse `json:"products"`
	Total    int                `json:"total"`
}

type CreateAddressRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Label      string `json:"label,omitempty"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code,omitempty"`
}

func (r *CreateAddressRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type AddressResponse struct {
	*address.Address
}
