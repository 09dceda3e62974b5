package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const categoryCacheKey = "cache:categories"

// CategoryService serves category reads through a best-effort redis cache.
// Cache unavailability never blocks or fails the primary read path — every
// cache error falls through to the database.
type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo     repository.CategoryRepository
	rdb      *redis.Client // nil disables caching
	cacheTTL time.Duration
}

func NewCategoryService(repo repository.CategoryRepository, rdb *redis.Client, cacheTTL time.Duration) CategoryService {
	return &categoryService{repo: repo, rdb: rdb, cacheTTL: cacheTTL}
}

func mapCategory(c model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error) {
	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CategoryResponse{}, err
	}
	if existing != nil {
		return dto.CategoryResponse{}, apierror.Conflict("a category with that name already exists")
	}

	c := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoryResponse{}, err
	}
	s.invalidateCache(ctx)
	return mapCategory(*c), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategory(c))
	}
	s.writeCache(ctx, result)
	return result, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, apierror.NotFound("category not found")
		}
		return dto.CategoryResponse{}, err
	}

	if req.Name != nil && *req.Name != c.Name {
		existing, err := s.repo.FindByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoryResponse{}, err
		}
		if existing != nil && existing.ID != id {
			return dto.CategoryResponse{}, apierror.Conflict("a category with that name already exists")
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return dto.CategoryResponse{}, err
	}
	s.invalidateCache(ctx)
	return mapCategory(*c), nil
}

func (s *categoryService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("category not found")
		}
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// ── Cache helpers — advisory only ────────────────────────────────────────────

func (s *categoryService) readCache(ctx context.Context) []dto.CategoryResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, categoryCacheKey).Bytes()
	if err != nil {
		return nil // miss or redis down — fall through to the store
	}
	var cached []dto.CategoryResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil
	}
	return cached
}

func (s *categoryService) writeCache(ctx context.Context, list []dto.CategoryResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, categoryCacheKey, raw, s.cacheTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("category cache write failed")
	}
}

func (s *categoryService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, categoryCacheKey).Err(); err != nil {
		log.Debug().Err(err).Msg("category cache invalidation failed")
	}
}
