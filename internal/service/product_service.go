package service

import (
	"context"
	"errors"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
}

func NewProductService(repo repository.ProductRepository, categories repository.CategoryRepository) ProductService {
	return &productService{repo: repo, categories: categories}
}

func mapProduct(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		IsActive:    p.IsActive,
	}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apierror.Validation(map[string]string{"category_id": "must be a valid uuid"})
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return nil, apierror.NotFound("category not found")
	}

	p := &model.Product{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return mapProduct(p), nil
}

func (s *productService) List(ctx context.Context, includeInactive bool) ([]dto.ProductResponse, error) {
	list, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProductResponse, 0, len(list))
	for i := range list {
		result = append(result, *mapProduct(&list[i]))
	}
	return result, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, err
	}
	return mapProduct(p), nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("product not found")
	}

	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, apierror.Validation(map[string]string{"category_id": "must be a valid uuid"})
		}
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			return nil, apierror.NotFound("category not found")
		}
		p.CategoryID = categoryID
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return mapProduct(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("product not found")
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("product not found")
	}
	return s.repo.Reactivate(ctx, id)
}
