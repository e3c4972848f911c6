package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a cart. At most one line exists per product.
type CartItem struct {
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Position  int       `gorm:"column:position;not null;default:0"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID;references:ID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
