package wishlist

import (
	"github.com/google/uuid"

	product "github.com/noorvia/noorvia-backend/internal/products"
)

// WishlistDTO is the user's saved products in the order they were added.
type WishlistDTO struct {
	UserID   uuid.UUID            `json:"user"`
	Products []product.ProductDTO `json:"products"`
}
