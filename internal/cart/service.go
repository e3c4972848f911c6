package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/noorvia/noorvia-backend/internal/products"
	"github.com/noorvia/noorvia-backend/pkg/db"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
	"github.com/noorvia/noorvia-backend/pkg/logger"
)

// Service manages the authenticated user's cart.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, delta int) (*CartDTO, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type conflictCounter interface {
	IncCartConflict()
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo        *Repository
	ProductRepo *product.Repository
	Tx          db.Transactor
	Logger      *logger.Logger
	Metrics     conflictCounter
}

type service struct {
	repo        *Repository
	productRepo *product.Repository
	tx          db.Transactor
	logg        *logger.Logger
	metrics     conflictCounter
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transactor required")
	}
	return &service{
		repo:        params.Repo,
		productRepo: params.ProductRepo,
		tx:          params.Tx,
		logg:        params.Logger,
		metrics:     params.Metrics,
	}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return FromModel(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, delta int) (*CartDTO, error) {
	return s.mutate(ctx, userID, true, func(tx *gorm.DB, lines Lines) (Lines, error) {
		if lines.Index(productID) < 0 && delta > 0 {
			exists, err := s.productRepo.WithTx(tx).Exists(ctx, productID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product")
			}
			if !exists {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
		}
		next, err := lines.Merge(productID, delta)
		switch {
		case errors.Is(err, ErrNonPositiveQuantity):
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero for a new item")
		case errors.Is(err, ErrQuantityTooLarge):
			return nil, quantityLimitError(productID)
		}
		return next, err
	})
}

func (s *service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, qty int) (*CartDTO, error) {
	return s.mutate(ctx, userID, false, func(_ *gorm.DB, lines Lines) (Lines, error) {
		next, err := lines.Set(productID, qty)
		switch {
		case errors.Is(err, ErrLineNotFound):
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
		case errors.Is(err, ErrQuantityTooLarge):
			return nil, quantityLimitError(productID)
		}
		return next, err
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	return s.mutate(ctx, userID, false, func(_ *gorm.DB, lines Lines) (Lines, error) {
		return lines.Remove(productID), nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := s.mutate(ctx, userID, true, func(_ *gorm.DB, lines Lines) (Lines, error) {
		return lines.Clear(), nil
	})
	return err
}

// mutate runs a read-modify-write of the cart lines inside one transaction,
// guarded by the cart version. createIfMissing selects get-or-create versus
// NotFound when the user has no cart yet.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, createIfMissing bool, fn func(tx *gorm.DB, lines Lines) (Lines, error)) (*CartDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var (
			cart *models.Cart
			err  error
		)
		if createIfMissing {
			cart, err = repo.GetOrCreate(ctx, userID)
		} else {
			cart, err = repo.FindByUserID(ctx, userID)
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}

		current := LinesFromModel(cart)
		next, err := fn(tx, current)
		if err != nil {
			return err
		}
		if err := repo.ReplaceLines(ctx, cart.ID, cart.Version, next); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was modified by another request, please retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			s.onConflict(ctx, userID)
		}
		return nil, err
	}

	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return FromModel(cart), nil
}

func quantityLimitError(productID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeValidation, ErrQuantityTooLarge.Error()).
		WithDetails(map[string]any{"productId": productID, "max": MaxLineQuantity})
}

func (s *service) onConflict(ctx context.Context, userID uuid.UUID) {
	if s.metrics != nil {
		s.metrics.IncCartConflict()
	}
	if s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "user_id", userID.String()), "cart version conflict")
	}
}
