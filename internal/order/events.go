package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderPlaced    EventType = "order.placed"
	EventOrderApproved  EventType = "order.approved"
	EventOrderCancelled EventType = "order.cancelled"
)

// Event is emitted after the transaction that caused it has committed.
type Event struct {
	ID         string            `json:"event_id"`
	Type       EventType         `json:"event_type"`
	OrderID    string            `json:"order_id"`
	CustomerID string            `json:"customer_id"`
	Status     model.OrderStatus `json:"status"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Items      []EventItem       `json:"items"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type EventItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func NewEvent(t EventType, o *model.Order) Event {
	items := make([]EventItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = EventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.PriceAtTimeOfOrder}
	}
	return Event{
		ID:         uuid.New().String(),
		Type:       t,
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		Items:      items,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher hands events off without blocking the caller and never fails it.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}
