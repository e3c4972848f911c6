package wishlist

import (
	"context"

	"github.com/google/uuid"

	product "github.com/noorvia/noorvia-backend/internal/products"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	ProductRepo  *product.Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error)
}

type service struct {
	wishlistRepo *Repository
	productRepo  *product.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		productRepo:  params.ProductRepo,
	}, nil
}

// GetWishlist returns the saved products. A user without saves gets an empty list.
func (s *service) GetWishlist(ctx context.Context, userID uuid.UUID) (*WishlistDTO, error) {
	rows, err := s.wishlistRepo.ListProducts(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load wishlist")
	}
	return &WishlistDTO{UserID: userID, Products: product.NewProductDTOs(rows)}, nil
}

// AddItem ensures the product exists and adds it to the wishlist once.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := s.wishlistRepo.AddItem(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}
	return s.GetWishlist(ctx, userID)
}

// RemoveItem drops the product from the wishlist. Absent entries are ignored.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*WishlistDTO, error) {
	if err := s.wishlistRepo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	return s.GetWishlist(ctx, userID)
}
