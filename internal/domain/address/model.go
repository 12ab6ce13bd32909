package address

import (
	"context"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
)

// Address is a delivery address owned by a user
type Address struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"user_id"`
	Label      string `db:"label" json:"label"`
	Line1      string `db:"line1" json:"line1"`
	Line2      string `db:"line2" json:"line2,omitempty"`
	City       string `db:"city" json:"city"`
	PostalCode string `db:"postal_code" json:"postal_code"`

	types.BaseModel
}

func (a *Address) TableName() string {
	return "addresses"
}

func (a *Address) Validate() error {
	if a.UserID == "" {
		return ierr.NewError("address user id is required").
			WithHint("Address must belong to a user").
			Mark(ierr.ErrValidation)
	}
	if a.Line1 == "" || a.City == "" {
		return ierr.NewError("address line1 and city are required").
			WithHint("Address needs at least a street line and a city").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Repository defines the interface for address persistence operations
type Repository interface {
	Create(ctx context.Context, a *Address) error
	Get(ctx context.Context, id string) (*Address, error)
	GetByUserID(ctx context.Context, userID string) ([]*Address, error)
}
