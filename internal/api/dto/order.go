package dto

import (
	"github.com/dailycrate/dailycrate/internal/domain/order"
)

type OrderResponse struct {
	*order.Order
}

type ListOrdersResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int              `json:"total"`
}
