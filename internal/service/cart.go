package service

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/domain/cart"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
)

// CartService manages a user's staged items. Enrollment clears the cart as a
// side effect of success.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*cart.Cart, error)
	ReplaceItems(ctx context.Context, userID string, items cart.CartItems) (*cart.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type cartService struct {
	ServiceParams
}

func NewCartService(params ServiceParams) CartService {
	return &cartService{
		ServiceParams: params,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	c, err := s.CartRepo.GetByUserID(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &cart.Cart{
				ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CART),
				UserID:    userID,
				Items:     cart.CartItems{},
				BaseModel: types.GetDefaultBaseModel(ctx),
			}, nil
		}
		return nil, err
	}
	return c, nil
}

func (s *cartService) ReplaceItems(ctx context.Context, userID string, items cart.CartItems) (*cart.Cart, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("Please provide a valid user ID").
			Mark(ierr.ErrValidation)
	}

	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Items = items

	if err := s.CartRepo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	return s.CartRepo.Clear(ctx, userID)
}
