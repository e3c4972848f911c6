package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreContent is an editable block of marketing copy addressed by section.
type StoreContent struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Section      string    `gorm:"column:section;type:text;not null;uniqueIndex"`
	Title        string    `gorm:"column:title;not null;default:''"`
	Subtitle     string    `gorm:"column:subtitle;not null;default:''"`
	Description1 string    `gorm:"column:description1;not null;default:''"`
	Description2 string    `gorm:"column:description2;not null;default:''"`
	Image        string    `gorm:"column:image;not null;default:''"`
	Link         string    `gorm:"column:link;not null;default:''"`
	LinkText     string    `gorm:"column:link_text;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *StoreContent) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
