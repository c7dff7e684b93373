package dto

import "github.com/fekuna/omnipos-order-service/internal/model"

type OrderFilters struct {
	CustomerID string
	Status     model.OrderStatus
	Page       int
	PageSize   int
}
