package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noorvia/noorvia-backend/pkg/db"
	"github.com/noorvia/noorvia-backend/pkg/db/dbtest"
	"github.com/noorvia/noorvia-backend/pkg/db/models"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc, client
}

func validInput(name string, category enums.ProductCategory) CreateProductInput {
	return CreateProductInput{
		Name:        name,
		Price:       decimal.RequireFromString("29.99"),
		Category:    category,
		Image:       "/images/" + name + ".jpg",
		Description: "hand poured",
		Scent:       "amber",
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validInput(" Midnight Amber ", enums.ProductCategorySignature))
	require.NoError(t, err)
	assert.Equal(t, "Midnight Amber", created.Name)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("29.99")))

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, enums.ProductCategorySignature, got.Category)

	_, err = svc.GetProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	missing := validInput("", enums.ProductCategoryFresh)
	_, err := svc.CreateProduct(ctx, missing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	negative := validInput("Coastal Breeze", enums.ProductCategoryFresh)
	negative.Price = decimal.RequireFromString("-1")
	_, err = svc.CreateProduct(ctx, negative)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	huge := validInput("Coastal Breeze", enums.ProductCategoryFresh)
	huge.Price = decimal.RequireFromString("10000000000")
	_, err = svc.CreateProduct(ctx, huge)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	badCategory := validInput("Coastal Breeze", enums.ProductCategory("Citrus"))
	_, err = svc.CreateProduct(ctx, badCategory)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListProductsFilters(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	seed := []models.Product{
		{Name: "Morning Dew", Category: enums.ProductCategoryFresh, IsFeatured: true, CreatedAt: base},
		{Name: "Rose Garden", Category: enums.ProductCategoryFloral, CreatedAt: base.Add(time.Minute)},
		{Name: "Coastal Breeze", Category: enums.ProductCategoryFresh, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		seed[i].Price = decimal.RequireFromString("25.99")
		seed[i].Image, seed[i].Description, seed[i].Scent = "img", "desc", "scent"
		require.NoError(t, client.DB().Create(&seed[i]).Error)
	}

	all, err := svc.ListProducts(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Coastal Breeze", all[0].Name, "newest first")

	fresh := enums.ProductCategoryFresh
	onlyFresh, err := svc.ListProducts(ctx, ListFilter{Category: &fresh})
	require.NoError(t, err)
	assert.Len(t, onlyFresh, 2)

	featured, err := svc.ListProducts(ctx, ListFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Morning Dew", featured[0].Name)
}

func TestUpdateProductAppliesOnlySuppliedFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validInput("Golden Hour", enums.ProductCategoryFloral))
	require.NoError(t, err)

	price := decimal.RequireFromString("32.99")
	featured := true
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Price: &price, IsFeatured: &featured})
	require.NoError(t, err)
	assert.Equal(t, "Golden Hour", updated.Name)
	assert.True(t, updated.Price.Equal(price))
	assert.True(t, updated.IsFeatured)

	blank := "  "
	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Name: &blank})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{Price: &price})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteProductCascadesToCartsAndWishlists(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, validInput("Fireside Tales", enums.ProductCategoryWoody))
	require.NoError(t, err)

	userID := uuid.New()
	cart := models.Cart{UserID: userID}
	require.NoError(t, client.DB().Create(&cart).Error)
	require.NoError(t, client.DB().Create(&models.CartItem{CartID: cart.ID, ProductID: created.ID, Quantity: 2}).Error)
	require.NoError(t, client.DB().Create(&models.WishlistItem{UserID: userID, ProductID: created.ID}).Error)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	var cartLines, wishlistRows int64
	require.NoError(t, client.DB().Model(&models.CartItem{}).Count(&cartLines).Error)
	require.NoError(t, client.DB().Model(&models.WishlistItem{}).Count(&wishlistRows).Error)
	assert.Zero(t, cartLines)
	assert.Zero(t, wishlistRows)

	err = svc.DeleteProduct(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
