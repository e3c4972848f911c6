package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
)

// ProductDTO is the public representation of a catalogue candle.
type ProductDTO struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Price       decimal.Decimal       `json:"price"`
	Category    enums.ProductCategory `json:"category"`
	Image       string                `json:"image"`
	Description string                `json:"description"`
	Scent       string                `json:"scent"`
	IsFeatured  bool                  `json:"isFeatured"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// ListFilter narrows the catalogue listing. A zero value lists everything.
type ListFilter struct {
	Category     *enums.ProductCategory
	FeaturedOnly bool
}

func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
		Scent:       p.Scent,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewProductDTOs maps a slice of models, never returning nil.
func NewProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}
