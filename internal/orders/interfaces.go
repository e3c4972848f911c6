package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
)

// Repository defines persistence operations for orders and their snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context, params ListParams) (*OrderList, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, updates map[string]any) error
}

// CartClearer empties a user's cart inside the order transaction.
type CartClearer interface {
	ClearInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type orderMetrics interface {
	IncOrderPlaced()
	IncStatusChange(status string)
}
