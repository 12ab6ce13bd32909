package service

import (
	"context"

	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
)

// PaymentService is the tokenization stub standing in for a real payment
// gateway. It never charges anything; it only issues opaque tokens that the
// rest of the system carries around.
type PaymentService interface {
	TokenizePaymentMethod(ctx context.Context, method string) (string, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

func (s *paymentService) TokenizePaymentMethod(ctx context.Context, method string) (string, error) {
	if method == "" {
		method = "wallet"
	}
	if len(method) > 64 {
		return "", ierr.NewError("payment method descriptor too long").
			WithHint("Payment method must be at most 64 characters").
			Mark(ierr.ErrValidation)
	}

	token := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_TOKEN)
	s.Logger.Debugw("tokenized payment method", "method", method, "token", token)
	return token, nil
}
