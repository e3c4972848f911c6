package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/noorvia/noorvia-backend/internal/users"
	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/security"
)

const generatedPasswordLength = 16

// Catalogue is the launch collection.
var Catalogue = []models.Product{
	{
		Name:        "Midnight Amber",
		Price:       decimal.RequireFromString("29.99"),
		Category:    enums.ProductCategorySignature,
		Image:       "https://images.unsplash.com/photo-1608226487820-22123d242963?q=80&w=1470&auto=format&fit=crop",
		Scent:       "Amber, Sandalwood, Vanilla",
		Description: "A warm and inviting scent perfect for cozy evenings.",
		IsFeatured:  true,
	},
	{
		Name:        "Coastal Breeze",
		Price:       decimal.RequireFromString("27.99"),
		Category:    enums.ProductCategoryFresh,
		Image:       "https://images.unsplash.com/photo-1603006905003-be475563bc59?q=80&w=1287&auto=format&fit=crop",
		Scent:       "Sea Salt, Driftwood, Lavender",
		Description: "Bring the freshness of the ocean into your home.",
	},
	{
		Name:        "Golden Hour",
		Price:       decimal.RequireFromString("32.99"),
		Category:    enums.ProductCategoryFloral,
		Image:       "https://images.unsplash.com/photo-1610484557760-2646ba433b9b?q=80&w=1287&auto=format&fit=crop",
		Scent:       "Bergamot, Jasmine, Musk",
		Description: "Capturing the magical light of sunset in a jar.",
		IsFeatured:  true,
	},
	{
		Name:        "Fireside Tales",
		Price:       decimal.RequireFromString("30.99"),
		Category:    enums.ProductCategoryWoody,
		Image:       "https://images.unsplash.com/photo-1570823343811-949236fcc65d?q=80&w=1331&auto=format&fit=crop",
		Scent:       "Cedar, Clove, Smoke",
		Description: "Reminiscent of stories told around a crackling fire.",
		IsFeatured:  true,
	},
	{
		Name:        "Rose Garden",
		Price:       decimal.RequireFromString("28.99"),
		Category:    enums.ProductCategoryFloral,
		Image:       "https://images.unsplash.com/photo-1608508644127-513d4b854726?q=80&w=1287&auto=format&fit=crop",
		Scent:       "Rose Petals, Peony, Green Leaves",
		Description: "A walk through a blooming English garden.",
	},
	{
		Name:        "Morning Dew",
		Price:       decimal.RequireFromString("25.99"),
		Category:    enums.ProductCategoryFresh,
		Image:       "https://images.unsplash.com/photo-1595246140625-573b715d11dc?q=80&w=1471&auto=format&fit=crop",
		Scent:       "Rain, Grass, Melon",
		Description: "Clean, crisp, and refreshing start to the day.",
	},
}

// Result reports what a run changed.
type Result struct {
	ProductsCreated   int
	AdminCreated      bool
	AdminPromoted     bool
	GeneratedPassword string
}

type Seeder struct {
	db          *gorm.DB
	users       *users.Repository
	cfg         config.SeedConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

func New(db *gorm.DB, cfg config.SeedConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (*Seeder, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &Seeder{
		db:          db,
		users:       users.NewRepository(db),
		cfg:         cfg,
		passwordCfg: passwordCfg,
		logg:        logg,
	}, nil
}

// Run inserts catalogue products missing by name and ensures the configured
// admin exists with the admin role. Existing rows are left untouched, so
// repeated runs are safe. A failing product does not stop the rest; all
// failures are returned together alongside the partial result.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	result := &Result{}
	var errs error
	for _, item := range Catalogue {
		created, err := s.ensureProduct(ctx, item)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if created {
			result.ProductsCreated++
		}
	}
	errs = multierr.Append(errs, s.ensureAdmin(ctx, result))
	if errs != nil {
		return result, errs
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"products_created": result.ProductsCreated,
			"admin_created":    result.AdminCreated,
			"admin_promoted":   result.AdminPromoted,
		}), "seed complete")
	}
	return result, nil
}

func (s *Seeder) ensureProduct(ctx context.Context, item models.Product) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("name = ?", item.Name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check product %q: %w", item.Name, err)
	}
	if count > 0 {
		return false, nil
	}
	row := item
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return false, fmt.Errorf("create product %q: %w", item.Name, err)
	}
	return true, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, result *Result) error {
	email := users.NormalizeEmail(s.cfg.AdminEmail)
	if email == "" {
		return fmt.Errorf("admin email required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != enums.UserRoleAdmin {
			if err := s.users.UpdateRole(ctx, existing.ID, enums.UserRoleAdmin); err != nil {
				return fmt.Errorf("promote admin: %w", err)
			}
			result.AdminPromoted = true
		}
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	password := s.cfg.AdminPassword
	if strings.TrimSpace(password) == "" {
		password, err = security.GenerateTempPassword(generatedPasswordLength)
		if err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		result.GeneratedPassword = password
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	name := strings.TrimSpace(s.cfg.AdminName)
	if name == "" {
		name = "Admin"
	}
	if _, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
	}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	result.AdminCreated = true
	return nil
}
