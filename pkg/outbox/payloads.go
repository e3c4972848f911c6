package outbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noorvia/noorvia-backend/pkg/enums"
)

// OrderPlacedLine is one purchased line as captured at checkout.
type OrderPlacedLine struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderPlacedEvent is emitted once per successfully created order.
type OrderPlacedEvent struct {
	OrderID    uuid.UUID         `json:"orderId"`
	UserID     uuid.UUID         `json:"userId"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	Status     enums.OrderStatus `json:"status"`
	Items      []OrderPlacedLine `json:"items"`
}

// OrderStatusChangedEvent is emitted whenever an admin moves an order.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"orderId"`
	UserID  uuid.UUID         `json:"userId"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
	PaidAt  *time.Time        `json:"paidAt,omitempty"`
}
