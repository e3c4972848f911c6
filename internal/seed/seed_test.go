package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noorvia/noorvia-backend/internal/users"
	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/noorvia/noorvia-backend/pkg/db/dbtest"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	"github.com/noorvia/noorvia-backend/pkg/security"
)

func TestRunSeedsCatalogueAndAdminOnce(t *testing.T) {
	client := dbtest.Open(t)
	seeder, err := New(client.DB(), config.SeedConfig{AdminEmail: "Admin@NoorVia.com", AdminPassword: "admin-password"}, config.PasswordConfig{}, nil)
	require.NoError(t, err)

	first, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(Catalogue), first.ProductsCreated)
	assert.True(t, first.AdminCreated)
	assert.Empty(t, first.GeneratedPassword)

	second, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.ProductsCreated)
	assert.False(t, second.AdminCreated)

	var count int64
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, len(Catalogue), count)

	admin, err := users.NewRepository(client.DB()).FindByEmail(context.Background(), "admin@noorvia.com")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, admin.Role)
	ok, err := security.VerifyPassword("admin-password", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunPromotesExistingAccount(t *testing.T) {
	client := dbtest.Open(t)
	repo := users.NewRepository(client.DB())
	_, err := repo.Create(context.Background(), users.CreateUserDTO{
		Name:         "Owner",
		Email:        "owner@noorvia.com",
		PasswordHash: "x",
		Role:         enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	seeder, err := New(client.DB(), config.SeedConfig{AdminEmail: "owner@noorvia.com"}, config.PasswordConfig{}, nil)
	require.NoError(t, err)
	result, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.AdminPromoted)
	assert.False(t, result.AdminCreated)

	owner, err := repo.FindByEmail(context.Background(), "owner@noorvia.com")
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, owner.Role)
}

func TestRunGeneratesPasswordWhenUnset(t *testing.T) {
	client := dbtest.Open(t)
	seeder, err := New(client.DB(), config.SeedConfig{AdminEmail: "admin@noorvia.com"}, config.PasswordConfig{}, nil)
	require.NoError(t, err)

	result, err := seeder.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.GeneratedPassword, generatedPasswordLength)
}

func TestCatalogueCategoriesAreValid(t *testing.T) {
	for _, item := range Catalogue {
		assert.True(t, item.Category.IsValid(), item.Name)
		assert.True(t, item.Price.IsPositive(), item.Name)
	}
}
