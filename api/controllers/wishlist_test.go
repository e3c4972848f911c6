package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	product "github.com/noorvia/noorvia-backend/internal/products"
	"github.com/noorvia/noorvia-backend/internal/wishlist"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
)

type stubWishlistService struct {
	items map[uuid.UUID]bool
	known map[uuid.UUID]bool
}

func (s *stubWishlistService) snapshot(userID uuid.UUID) *wishlist.WishlistDTO {
	out := &wishlist.WishlistDTO{UserID: userID, Products: []product.ProductDTO{}}
	for id := range s.items {
		out.Products = append(out.Products, product.ProductDTO{ID: id})
	}
	return out
}

func (s *stubWishlistService) GetWishlist(_ context.Context, userID uuid.UUID) (*wishlist.WishlistDTO, error) {
	return s.snapshot(userID), nil
}

func (s *stubWishlistService) AddItem(_ context.Context, userID, productID uuid.UUID) (*wishlist.WishlistDTO, error) {
	if !s.known[productID] {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.items[productID] = true
	return s.snapshot(userID), nil
}

func (s *stubWishlistService) RemoveItem(_ context.Context, userID, productID uuid.UUID) (*wishlist.WishlistDTO, error) {
	delete(s.items, productID)
	return s.snapshot(userID), nil
}

func TestWishlistAddAndRemove(t *testing.T) {
	productID := uuid.New()
	svc := &stubWishlistService{items: map[uuid.UUID]bool{}, known: map[uuid.UUID]bool{productID: true}}
	userID := uuid.New()

	rec := httptest.NewRecorder()
	req := withParams(httptest.NewRequest(http.MethodPost, "/api/wishlist/add/x", nil), "productId", productID.String())
	WishlistAdd(svc, nil)(rec, asUser(req, userID, enums.UserRoleCustomer))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var dto wishlist.WishlistDTO
	if err := jsonDecode(rec, &dto); err != nil || len(dto.Products) != 1 {
		t.Fatalf("expected one product, got %+v (%v)", dto, err)
	}

	rec = httptest.NewRecorder()
	req = withParams(httptest.NewRequest(http.MethodDelete, "/api/wishlist/remove/x", nil), "productId", productID.String())
	WishlistRemove(svc, nil)(rec, asUser(req, userID, enums.UserRoleCustomer))
	dto = wishlist.WishlistDTO{}
	if err := jsonDecode(rec, &dto); err != nil || len(dto.Products) != 0 {
		t.Fatalf("expected empty wishlist, got %+v (%v)", dto, err)
	}
}

func TestWishlistAddUnknownProduct(t *testing.T) {
	svc := &stubWishlistService{items: map[uuid.UUID]bool{}, known: map[uuid.UUID]bool{}}
	rec := httptest.NewRecorder()
	req := withParams(httptest.NewRequest(http.MethodPost, "/api/wishlist/add/x", nil), "productId", uuid.NewString())
	WishlistAdd(svc, nil)(rec, asUser(req, uuid.New(), enums.UserRoleCustomer))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWishlistRejectsBadProductID(t *testing.T) {
	svc := &stubWishlistService{items: map[uuid.UUID]bool{}, known: map[uuid.UUID]bool{}}
	rec := httptest.NewRecorder()
	req := withParams(httptest.NewRequest(http.MethodPost, "/api/wishlist/add/x", nil), "productId", "not-a-uuid")
	WishlistAdd(svc, nil)(rec, asUser(req, uuid.New(), enums.UserRoleCustomer))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWishlistFetchRequiresIdentity(t *testing.T) {
	svc := &stubWishlistService{items: map[uuid.UUID]bool{}}
	rec := httptest.NewRecorder()
	WishlistFetch(svc, nil)(rec, httptest.NewRequest(http.MethodGet, "/api/wishlist", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
