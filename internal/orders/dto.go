package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noorvia/noorvia-backend/internal/users"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	"github.com/noorvia/noorvia-backend/pkg/types"
)

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"userId"`
	User            *users.SummaryDTO     `json:"user,omitempty"`
	Items           []OrderItemDTO        `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
	Status          enums.OrderStatus     `json:"status"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// OrderItemDTO is a frozen line captured at checkout.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// OrderList is a page of orders from the repository.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

// OrderPage is a page of orders for the admin listing.
type OrderPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// PlaceOrderInput is the checkout payload.
type PlaceOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress types.ShippingAddress
	TotalPrice      decimal.Decimal
}

// OrderItemInput is one line submitted at checkout.
type OrderItemInput struct {
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Image     string
}

// UpdateStatusInput is the admin status change payload.
type UpdateStatusInput struct {
	Status   string
	MarkPaid bool
}

// Requester identifies who is reading an order.
type Requester struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (r Requester) IsAdmin() bool {
	return r.Role == enums.UserRoleAdmin
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}
	return &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		User:            users.SummaryFromModel(o.User),
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		TotalPrice:      o.TotalPrice,
		Status:          o.Status,
		IsPaid:          o.PaidAt != nil,
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
