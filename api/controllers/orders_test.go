package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noorvia/noorvia-backend/internal/orders"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
)

type stubOrderService struct {
	placed    *orders.PlaceOrderInput
	placedBy  uuid.UUID
	requester orders.Requester
	params    orders.ListParams
	page      *orders.OrderPage
	statusIn  orders.UpdateStatusInput
	err       error
}

func (s *stubOrderService) PlaceOrder(_ context.Context, userID uuid.UUID, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no order items")
	}
	s.placed = &input
	s.placedBy = userID
	return &orders.OrderDTO{ID: uuid.New(), UserID: userID, TotalPrice: input.TotalPrice, Status: enums.OrderStatusProcessing}, nil
}

func (s *stubOrderService) GetOrder(_ context.Context, id uuid.UUID, requester orders.Requester) (*orders.OrderDTO, error) {
	s.requester = requester
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: id}, nil
}

func (s *stubOrderService) ListMine(_ context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	return []orders.OrderDTO{{ID: uuid.New(), UserID: userID}}, nil
}

func (s *stubOrderService) ListAll(_ context.Context, params orders.ListParams) (*orders.OrderPage, error) {
	s.params = params
	return s.page, s.err
}

func (s *stubOrderService) UpdateStatus(_ context.Context, id uuid.UUID, input orders.UpdateStatusInput, actor orders.Requester) (*orders.OrderDTO, error) {
	s.statusIn = input
	s.requester = actor
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: id, Status: enums.OrderStatus(input.Status)}, nil
}

func TestOrderPlaceCreates(t *testing.T) {
	svc := &stubOrderService{}
	userID := uuid.New()
	productID := uuid.New()
	body := `{"items":[{"product":"` + productID.String() + `","name":"Midnight Amber","price":29.99,"quantity":2,"image":"/a.jpg"}],` +
		`"shippingAddress":{"address":"1 Rue","city":"Paris","postalCode":"75001","country":"FR"},"totalPrice":59.98}`

	rec := httptest.NewRecorder()
	OrderPlace(svc, nil)(rec, asUser(newRequest(t, http.MethodPost, "/api/orders", body), userID, enums.UserRoleCustomer))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.placedBy != userID {
		t.Fatalf("expected order placed for caller")
	}
	if got := svc.placed.Items[0].ProductID; got != productID {
		t.Fatalf("expected product alias to map, got %s", got)
	}
	if !svc.placed.TotalPrice.Equal(decimal.RequireFromString("59.98")) {
		t.Fatalf("unexpected total %s", svc.placed.TotalPrice)
	}
}

func TestOrderPlaceEmptyItemsIsBadRequest(t *testing.T) {
	svc := &stubOrderService{}
	rec := httptest.NewRecorder()
	OrderPlace(svc, nil)(rec, asUser(newRequest(t, http.MethodPost, "/api/orders", `{"items":[],"totalPrice":0}`), uuid.New(), enums.UserRoleCustomer))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "no order items" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestOrderPlaceRequiresIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	OrderPlace(&stubOrderService{}, nil)(rec, newRequest(t, http.MethodPost, "/api/orders", `{}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOrderGetPassesRequesterAndRejectsBadID(t *testing.T) {
	svc := &stubOrderService{}
	adminID := uuid.New()
	orderID := uuid.New()

	rec := httptest.NewRecorder()
	req := withParams(newRequest(t, http.MethodGet, "/api/orders/"+orderID.String(), nil), "id", orderID.String())
	OrderGet(svc, nil)(rec, asUser(req, adminID, enums.UserRoleAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.requester.UserID != adminID || !svc.requester.IsAdmin() {
		t.Fatalf("unexpected requester %+v", svc.requester)
	}

	rec = httptest.NewRecorder()
	req = withParams(newRequest(t, http.MethodGet, "/api/orders/nope", nil), "id", "nope")
	OrderGet(svc, nil)(rec, asUser(req, adminID, enums.UserRoleAdmin))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestOrderGetForbiddenForStranger(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order")}
	orderID := uuid.New()
	rec := httptest.NewRecorder()
	req := withParams(newRequest(t, http.MethodGet, "/api/orders/"+orderID.String(), nil), "id", orderID.String())
	OrderGet(svc, nil)(rec, asUser(req, uuid.New(), enums.UserRoleCustomer))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestOrderListAllSetsCursorHeader(t *testing.T) {
	svc := &stubOrderService{page: &orders.OrderPage{Orders: []orders.OrderDTO{}, NextCursor: "abc"}}
	rec := httptest.NewRecorder()
	OrderListAll(svc, nil)(rec, newRequest(t, http.MethodGet, "/api/orders?limit=10&cursor=xyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Next-Cursor") != "abc" {
		t.Fatalf("expected cursor header")
	}
	if svc.params.Limit != 10 || svc.params.Cursor != "xyz" {
		t.Fatalf("unexpected params %+v", svc.params)
	}

	rec = httptest.NewRecorder()
	OrderListAll(svc, nil)(rec, newRequest(t, http.MethodGet, "/api/orders?limit=1000", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range limit, got %d", rec.Code)
	}
}

func TestOrderListAllStatusFilter(t *testing.T) {
	svc := &stubOrderService{page: &orders.OrderPage{Orders: []orders.OrderDTO{}}}
	rec := httptest.NewRecorder()
	OrderListAll(svc, nil)(rec, newRequest(t, http.MethodGet, "/api/orders?status=shipped", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.params.Status != enums.OrderStatusShipped || svc.params.Limit != orders.DefaultPageSize {
		t.Fatalf("unexpected params %+v", svc.params)
	}

	rec = httptest.NewRecorder()
	OrderListAll(svc, nil)(rec, newRequest(t, http.MethodGet, "/api/orders?status=Lost", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	svc := &stubOrderService{}
	orderID := uuid.New()
	rec := httptest.NewRecorder()
	req := withParams(newRequest(t, http.MethodPut, "/api/orders/x/status", map[string]any{"status": "Shipped", "markPaid": true}), "id", orderID.String())
	OrderUpdateStatus(svc, nil)(rec, asUser(req, uuid.New(), enums.UserRoleAdmin))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.statusIn.Status != "Shipped" || !svc.statusIn.MarkPaid {
		t.Fatalf("unexpected input %+v", svc.statusIn)
	}
	var dto orders.OrderDTO
	if err := json.NewDecoder(rec.Body).Decode(&dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.ID != orderID {
		t.Fatalf("unexpected order id %s", dto.ID)
	}

	rec = httptest.NewRecorder()
	req = withParams(newRequest(t, http.MethodPut, "/api/orders/x/status", map[string]any{}), "id", orderID.String())
	OrderUpdateStatus(svc, nil)(rec, asUser(req, uuid.New(), enums.UserRoleAdmin))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %d", rec.Code)
	}
}
