package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noorvia/noorvia-backend/pkg/db/models"
)

// ErrVersionConflict means the cart changed between read and write.
var ErrVersionConflict = errors.New("cart was modified concurrently")

// Repository persists carts and their lines.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUserID loads the user's cart with lines in insertion order and their products.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("created_at ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
// Concurrent first accesses converge on a single row via the user_id unique index.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error; err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}

// ReplaceLines bumps the cart version if it still equals expectedVersion and
// rewrites every line. Returns ErrVersionConflict when the version moved.
func (r *Repository) ReplaceLines(ctx context.Context, cartID uuid.UUID, expectedVersion int64, lines Lines) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, expectedVersion).
		Updates(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	if err := db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.CartItem, 0, len(lines))
	for i, line := range lines {
		rows = append(rows, models.CartItem{
			CartID:    cartID,
			ProductID: line.ProductID,
			Position:  i,
			Quantity:  line.Quantity,
		})
	}
	return db.Omit(clause.Associations).Create(&rows).Error
}

// ClearByUserID empties the user's cart if one exists and bumps its version.
func (r *Repository) ClearByUserID(ctx context.Context, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	var cart models.Cart
	err := db.Select("id").Where("user_id = ?", userID).Take(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return db.Model(&models.Cart{}).
		Where("id = ?", cart.ID).
		Updates(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		}).Error
}

// LinesFromModel converts persisted cart items into Lines.
func LinesFromModel(cart *models.Cart) Lines {
	if cart == nil {
		return Lines{}
	}
	lines := make(Lines, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// ClearInTx empties the user's cart as part of the caller's transaction.
func (r *Repository) ClearInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return r.WithTx(tx).ClearByUserID(ctx, userID)
}
