package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noorvia/noorvia-backend/api/responses"
	"github.com/noorvia/noorvia-backend/api/validators"
	product "github.com/noorvia/noorvia-backend/internal/products"
	"github.com/noorvia/noorvia-backend/pkg/enums"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
	"github.com/noorvia/noorvia-backend/pkg/logger"
)

const (
	maxProductNameLen        = 120
	maxProductDescriptionLen = 2000
	maxProductTextLen        = 500
)

type createProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Image       string          `json:"image" validate:"required"`
	Description string          `json:"description"`
	Scent       string          `json:"scent"`
	IsFeatured  bool            `json:"isFeatured"`
}

func (r createProductRequest) toInput() (product.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(r.Category)
	if err != nil {
		return product.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").
			WithDetails(map[string]any{"field": "category"})
	}
	return product.CreateProductInput{
		Name:        validators.SanitizeString(r.Name, maxProductNameLen),
		Price:       r.Price,
		Category:    category,
		Image:       validators.SanitizeString(r.Image, maxProductTextLen),
		Description: validators.SanitizeString(r.Description, maxProductDescriptionLen),
		Scent:       validators.SanitizeString(r.Scent, maxProductTextLen),
		IsFeatured:  r.IsFeatured,
	}, nil
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
	Scent       *string          `json:"scent"`
	IsFeatured  *bool            `json:"isFeatured"`
}

func (r updateProductRequest) toInput() (product.UpdateProductInput, error) {
	input := product.UpdateProductInput{
		Name:        sanitized(r.Name, maxProductNameLen),
		Price:       r.Price,
		Image:       sanitized(r.Image, maxProductTextLen),
		Description: sanitized(r.Description, maxProductDescriptionLen),
		Scent:       sanitized(r.Scent, maxProductTextLen),
		IsFeatured:  r.IsFeatured,
	}
	if r.Category != nil {
		category, err := enums.ParseProductCategory(*r.Category)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").
				WithDetails(map[string]any{"field": "category"})
		}
		input.Category = &category
	}
	return input, nil
}

func sanitized(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	out := validators.SanitizeString(*value, maxLen)
	return &out
}

// ProductList serves the public catalogue. category=All or an empty value
// disables the category filter.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter product.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" && !strings.EqualFold(raw, string(enums.ProductCategoryAll)) {
			category, err := enums.ParseProductCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").
					WithDetails(map[string]any{"field": "category"}))
				return
			}
			filter.Category = &category
		}
		featured, err := validators.ParseQueryBool(r, "featured", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.FeaturedOnly = featured

		products, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product deleted")
	}
}
