package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noorvia/noorvia-backend/api/responses"
	"github.com/noorvia/noorvia-backend/api/validators"
	"github.com/noorvia/noorvia-backend/internal/content"
	"github.com/noorvia/noorvia-backend/pkg/logger"
)

const maxContentFieldLen = 4000

type upsertContentRequest struct {
	Title        *string `json:"title"`
	Subtitle     *string `json:"subtitle"`
	Description1 *string `json:"description1"`
	Description2 *string `json:"description2"`
	Image        *string `json:"image"`
	Link         *string `json:"link"`
	LinkText     *string `json:"linkText"`
}

func (r upsertContentRequest) toInput() content.UpsertInput {
	return content.UpsertInput{
		Title:        sanitized(r.Title, maxContentFieldLen),
		Subtitle:     sanitized(r.Subtitle, maxContentFieldLen),
		Description1: sanitized(r.Description1, maxContentFieldLen),
		Description2: sanitized(r.Description2, maxContentFieldLen),
		Image:        sanitized(r.Image, maxContentFieldLen),
		Link:         sanitized(r.Link, maxContentFieldLen),
		LinkText:     sanitized(r.LinkText, maxContentFieldLen),
	}
}

func ContentList(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sections, err := svc.ListSections(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sections)
	}
}

// ContentGet returns 404 on a miss; the storefront substitutes its own copy.
func ContentGet(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := svc.GetSection(r.Context(), chi.URLParam(r, "section"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, section)
	}
}

func ContentUpsert(svc content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertContentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		section, err := svc.UpsertSection(r.Context(), chi.URLParam(r, "section"), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, section)
	}
}
