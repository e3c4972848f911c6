package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noorvia/noorvia-backend/internal/content"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
)

type stubContentService struct {
	sections map[string]content.SectionDTO
	upserted content.UpsertInput
}

func (s *stubContentService) ListSections(context.Context) ([]content.SectionDTO, error) {
	out := make([]content.SectionDTO, 0, len(s.sections))
	for _, section := range s.sections {
		out = append(out, section)
	}
	return out, nil
}

func (s *stubContentService) GetSection(_ context.Context, section string) (*content.SectionDTO, error) {
	if dto, ok := s.sections[section]; ok {
		return &dto, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "section not found")
}

func (s *stubContentService) UpsertSection(_ context.Context, section string, input content.UpsertInput) (*content.SectionDTO, error) {
	s.upserted = input
	dto := content.SectionDTO{Section: section}
	if input.Title != nil {
		dto.Title = *input.Title
	}
	s.sections[section] = dto
	return &dto, nil
}

func TestContentGetMissIs404(t *testing.T) {
	svc := &stubContentService{sections: map[string]content.SectionDTO{}}
	rec := httptest.NewRecorder()
	ContentGet(svc, nil)(rec, withParams(httptest.NewRequest(http.MethodGet, "/api/content/hero", nil), "section", "hero"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestContentUpsertThenGet(t *testing.T) {
	svc := &stubContentService{sections: map[string]content.SectionDTO{}}
	rec := httptest.NewRecorder()
	req := withParams(newRequest(t, http.MethodPut, "/api/content/hero", `{"title":"  Light the night "}`), "section", "hero")
	ContentUpsert(svc, nil)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.upserted.Title == nil || *svc.upserted.Title != "Light the night" {
		t.Fatalf("expected trimmed title, got %+v", svc.upserted.Title)
	}
	if svc.upserted.Subtitle != nil {
		t.Fatalf("absent fields must stay nil")
	}

	rec = httptest.NewRecorder()
	ContentGet(svc, nil)(rec, withParams(httptest.NewRequest(http.MethodGet, "/api/content/hero", nil), "section", "hero"))
	var dto content.SectionDTO
	if err := jsonDecode(rec, &dto); err != nil || dto.Title != "Light the night" {
		t.Fatalf("unexpected section %+v (%v)", dto, err)
	}
}
