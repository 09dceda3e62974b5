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

// StockService manages ingredients. Quantity changes always go through
// AdjustStock so every change leaves a signed StockMovement row behind.
type StockService interface {
	Create(ctx context.Context, req dto.CreateIngredientRequest) (*dto.IngredientResponse, error)
	List(ctx context.Context) ([]dto.IngredientResponse, error)
	Adjust(ctx context.Context, id, actorID uuid.UUID, req dto.AdjustStockRequest) (*dto.IngredientResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type stockService struct {
	repo repository.IngredientRepository
}

func NewStockService(repo repository.IngredientRepository) StockService {
	return &stockService{repo: repo}
}

func mapIngredient(i *model.Ingredient) *dto.IngredientResponse {
	return &dto.IngredientResponse{
		ID:       i.ID,
		Name:     i.Name,
		Unit:     i.Unit,
		Quantity: i.Quantity,
		MinStock: i.MinStock,
		LowStock: i.Quantity.LessThan(i.MinStock),
		IsActive: i.IsActive,
	}
}

func (s *stockService) Create(ctx context.Context, req dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	i := &model.Ingredient{
		Name:     req.Name,
		Unit:     req.Unit,
		Quantity: req.Quantity,
		MinStock: req.MinStock,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("an ingredient with that name already exists")
		}
		return nil, err
	}
	return mapIngredient(i), nil
}

func (s *stockService) List(ctx context.Context) ([]dto.IngredientResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.IngredientResponse, 0, len(list))
	for i := range list {
		result = append(result, *mapIngredient(&list[i]))
	}
	return result, nil
}

func (s *stockService) Adjust(ctx context.Context, id, actorID uuid.UUID, req dto.AdjustStockRequest) (*dto.IngredientResponse, error) {
	i, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("ingredient not found")
	}

	next := i.Quantity.Add(req.Delta)
	if next.IsNegative() {
		return nil, apierror.Business("stock cannot go negative")
	}
	i.Quantity = next

	mv := &model.StockMovement{
		IngredientID: id,
		Delta:        req.Delta,
		Reason:       req.Reason,
		ActorID:      actorID,
	}
	if err := s.repo.AdjustStock(ctx, i, mv); err != nil {
		return nil, err
	}
	return mapIngredient(i), nil
}

func (s *stockService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("ingredient not found")
	}
	return s.repo.SoftDelete(ctx, id)
}
