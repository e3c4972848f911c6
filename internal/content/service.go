package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noorvia/noorvia-backend/pkg/db"
	pkgerrors "github.com/noorvia/noorvia-backend/pkg/errors"
	"github.com/noorvia/noorvia-backend/pkg/logger"
	"github.com/noorvia/noorvia-backend/pkg/redis"
)

// Cache is the subset of the redis client used for the section read-through cache.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ContentKey(section string) string
}

// Service reads and edits storefront content sections.
type Service interface {
	ListSections(ctx context.Context) ([]SectionDTO, error)
	GetSection(ctx context.Context, section string) (*SectionDTO, error)
	UpsertSection(ctx context.Context, section string, input UpsertInput) (*SectionDTO, error)
}

// ServiceParams groups dependencies for the content service. Cache is optional.
type ServiceParams struct {
	Repo     *Repository
	Cache    Cache
	CacheTTL time.Duration
	Logger   *logger.Logger
}

type service struct {
	repo     *Repository
	cache    Cache
	cacheTTL time.Duration
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		repo:     params.Repo,
		cache:    params.Cache,
		cacheTTL: ttl,
		logg:     params.Logger,
	}, nil
}

func (s *service) ListSections(ctx context.Context) ([]SectionDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list content")
	}
	out := make([]SectionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetSection(ctx context.Context, section string) (*SectionDTO, error) {
	key, ok := NormalizeSection(section)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid section")
	}
	if cached, hit := s.readCache(ctx, key); hit {
		return cached, nil
	}

	row, err := s.repo.FindBySection(ctx, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "section not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load content")
	}
	dto := FromModel(row)
	s.writeCache(ctx, key, dto)
	return dto, nil
}

func (s *service) UpsertSection(ctx context.Context, section string, input UpsertInput) (*SectionDTO, error) {
	key, ok := NormalizeSection(section)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid section").
			WithDetails(map[string]any{"section": "must match [a-z0-9-]{1,64}"})
	}
	row, cols := input.columns(key)
	saved, err := s.repo.Upsert(ctx, row, cols)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save content")
	}
	s.invalidate(ctx, key)
	return FromModel(saved), nil
}

func (s *service) readCache(ctx context.Context, key string) (*SectionDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.ContentKey(key))
	if err != nil {
		if !redis.IsMiss(err) {
			s.warn(ctx, key, "content cache read failed", err)
		}
		return nil, false
	}
	var dto SectionDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		s.warn(ctx, key, "content cache entry corrupt", err)
		return nil, false
	}
	return &dto, true
}

func (s *service) writeCache(ctx context.Context, key string, dto *SectionDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.ContentKey(key), payload, s.cacheTTL); err != nil {
		s.warn(ctx, key, "content cache write failed", err)
	}
}

func (s *service) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.ContentKey(key)); err != nil {
		s.warn(ctx, key, "content cache invalidation failed", err)
	}
}

func (s *service) warn(ctx context.Context, section, msg string, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"section": section, "error": err.Error()})
	s.logg.Warn(logCtx, msg)
}
