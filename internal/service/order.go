package service

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/order"
	"github.com/dailycrate/dailycrate/internal/domain/subscription"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// OrderService exposes order reads and the order emitter. Orders created for a
// billing cycle are immutable snapshots; this service never lets the scheduler
// mutate one after creation.
type OrderService interface {
	GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, userID string) (*dto.ListOrdersResponse, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) ([]*order.Order, error)

	// BuildSnapshot converts one resolved billing cycle into an order. Pure:
	// it freezes the passed prices and quantities and touches no stores.
	BuildSnapshot(ctx context.Context, sub *subscription.Subscription, items []order.OrderItem, total decimal.Decimal) *order.Order
}

type orderService struct {
	ServiceParams
}

func NewOrderService(params ServiceParams) OrderService {
	return &orderService{
		ServiceParams: params,
	}
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	if id == "" {
		return nil, ierr.NewError("order id is required").
			WithHint("Please provide a valid order ID").
			Mark(ierr.ErrValidation)
	}

	o, err := s.OrderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.OrderResponse{Order: o}, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string) (*dto.ListOrdersResponse, error) {
	orders, err := s.OrderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(orders, func(o *order.Order, _ int) *dto.OrderResponse {
		return &dto.OrderResponse{Order: o}
	})
	return &dto.ListOrdersResponse{
		Orders: responses,
		Total:  len(responses),
	}, nil
}

func (s *orderService) GetBySubscriptionID(ctx context.Context, subscriptionID string) ([]*order.Order, error) {
	return s.OrderRepo.GetBySubscriptionID(ctx, subscriptionID)
}

func (s *orderService) BuildSnapshot(ctx context.Context, sub *subscription.Subscription, items []order.OrderItem, total decimal.Decimal) *order.Order {
	return &order.Order{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		OrderNumber:       types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_ORDER),
		UserID:            sub.UserID,
		SubscriptionID:    lo.ToPtr(sub.ID),
		Items:             items,
		TotalAmount:       total,
		OrderStatus:       types.OrderStatusProcessing,
		PaymentStatus:     types.PaymentStatusPaid,
		OrderType:         types.OrderTypeSubscription,
		DeliveryAddressID: sub.DeliveryAddressID,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}
