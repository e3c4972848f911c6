package cart

import (
	"time"

	"github.com/google/uuid"

	product "github.com/noorvia/noorvia-backend/internal/products"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
)

// CartDTO is the cart as returned to the storefront, with product details.
type CartDTO struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	Items     []CartItemDTO `json:"items"`
	Version   int64         `json:"version"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CartItemDTO is one cart line. Product is nil only if the product row vanished.
type CartItemDTO struct {
	Product   *product.ProductDTO `json:"product"`
	ProductID uuid.UUID           `json:"productId"`
	Quantity  int                 `json:"quantity"`
}

func FromModel(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}
	items := make([]CartItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemDTO{
			Product:   product.NewProductDTO(item.Product),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return &CartDTO{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     items,
		Version:   cart.Version,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}
