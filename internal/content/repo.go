package content

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noorvia/noorvia-backend/pkg/db/models"
)

// Repository persists store content sections.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindBySection(ctx context.Context, section string) (*models.StoreContent, error) {
	var row models.StoreContent
	if err := r.db.WithContext(ctx).Where("section = ?", section).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context) ([]models.StoreContent, error) {
	var rows []models.StoreContent
	if err := r.db.WithContext(ctx).Order("section ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts the section or, when it exists, overwrites only the listed columns.
func (r *Repository) Upsert(ctx context.Context, row *models.StoreContent, columns []string) (*models.StoreContent, error) {
	update := append(append([]string{}, columns...), "updated_at")
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "section"}},
			DoUpdates: clause.AssignmentColumns(update),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.FindBySection(ctx, row.Section)
}
