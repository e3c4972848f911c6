package content

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noorvia/noorvia-backend/pkg/db/models"
)

var sectionPattern = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)

// SectionDTO is an editable block of storefront copy.
type SectionDTO struct {
	ID           uuid.UUID `json:"id"`
	Section      string    `json:"section"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	Description1 string    `json:"description1"`
	Description2 string    `json:"description2"`
	Image        string    `json:"image"`
	Link         string    `json:"link"`
	LinkText     string    `json:"linkText"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UpsertInput carries the fields an admin supplied. Nil fields keep their
// stored value, or default to empty on first write.
type UpsertInput struct {
	Title        *string
	Subtitle     *string
	Description1 *string
	Description2 *string
	Image        *string
	Link         *string
	LinkText     *string
}

// NormalizeSection lower-cases and trims a section key and reports whether it
// is a valid slug.
func NormalizeSection(section string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(section))
	return normalized, sectionPattern.MatchString(normalized)
}

func FromModel(m *models.StoreContent) *SectionDTO {
	if m == nil {
		return nil
	}
	return &SectionDTO{
		ID:           m.ID,
		Section:      m.Section,
		Title:        m.Title,
		Subtitle:     m.Subtitle,
		Description1: m.Description1,
		Description2: m.Description2,
		Image:        m.Image,
		Link:         m.Link,
		LinkText:     m.LinkText,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// columns returns the model populated from input plus the column names that
// were supplied.
func (in UpsertInput) columns(section string) (*models.StoreContent, []string) {
	row := &models.StoreContent{Section: section}
	cols := []string{}
	assign := func(dst *string, src *string, col string) {
		if src != nil {
			*dst = *src
			cols = append(cols, col)
		}
	}
	assign(&row.Title, in.Title, "title")
	assign(&row.Subtitle, in.Subtitle, "subtitle")
	assign(&row.Description1, in.Description1, "description1")
	assign(&row.Description2, in.Description2, "description2")
	assign(&row.Image, in.Image, "image")
	assign(&row.Link, in.Link, "link")
	assign(&row.LinkText, in.LinkText, "link_text")
	return row, cols
}
