package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noorvia/noorvia-backend/api/responses"
	"github.com/noorvia/noorvia-backend/api/validators"
	"github.com/noorvia/noorvia-backend/internal/orders"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/types"
)

const nextCursorHeader = "X-Next-Cursor"

type placeOrderRequest struct {
	Items           []orderItemRequest    `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
}

// orderItemRequest accepts the product id as either productId or product.
type orderItemRequest struct {
	ProductID uuid.UUID       `json:"productId"`
	Product   uuid.UUID       `json:"product"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

func (r placeOrderRequest) toInput() orders.PlaceOrderInput {
	items := make([]orders.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		productID := item.ProductID
		if productID == uuid.Nil {
			productID = item.Product
		}
		items = append(items, orders.OrderItemInput{
			ProductID: productID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}
	return orders.PlaceOrderInput{
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		TotalPrice:      r.TotalPrice,
	}
}

type updateOrderStatusRequest struct {
	Status   string `json:"status" validate:"required"`
	MarkPaid bool   `json:"markPaid"`
}

// OrderPlace decodes without struct validation so an empty item list
// surfaces the domain error rather than a field error.
func OrderPlace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req placeOrderRequest
		if err := validators.DecodeJSON(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.PlaceOrder(r.Context(), userID, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func OrderListMine(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListMine(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), orderID, orders.Requester{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderListAll returns one page of every order, newest first, optionally
// filtered by ?status=. The next cursor is repeated in the X-Next-Cursor header.
func OrderListAll(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", orders.DefaultPageSize, 1, orders.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := orders.ListParams{
			Limit:  limit,
			Cursor: validators.SanitizeString(r.URL.Query().Get("cursor"), 256),
		}
		if raw := validators.SanitizeString(r.URL.Query().Get("status"), 32); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			params.Status = status
		}
		page, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if page.NextCursor != "" {
			w.Header().Set(nextCursorHeader, page.NextCursor)
		}
		responses.WriteSuccess(w, page)
	}
}

func OrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), orderID, orders.UpdateStatusInput{
			Status:   req.Status,
			MarkPaid: req.MarkPaid,
		}, orders.Requester{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
