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

// ─── Establishments ──────────────────────────────────────────────────────────

type EstablishmentService interface {
	Create(ctx context.Context, req dto.CreateEstablishmentRequest) (*dto.EstablishmentResponse, error)
	List(ctx context.Context) ([]dto.EstablishmentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateEstablishmentRequest) (*dto.EstablishmentResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type establishmentService struct {
	repo repository.EstablishmentRepository
}

func NewEstablishmentService(repo repository.EstablishmentRepository) EstablishmentService {
	return &establishmentService{repo: repo}
}

func mapEstablishment(e *model.Establishment) *dto.EstablishmentResponse {
	return &dto.EstablishmentResponse{
		ID:       e.ID,
		Name:     e.Name,
		Address:  e.Address,
		Phone:    e.Phone,
		IsActive: e.IsActive,
	}
}

func (s *establishmentService) Create(ctx context.Context, req dto.CreateEstablishmentRequest) (*dto.EstablishmentResponse, error) {
	e := &model.Establishment{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return mapEstablishment(e), nil
}

func (s *establishmentService) List(ctx context.Context) ([]dto.EstablishmentResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.EstablishmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *mapEstablishment(&list[i]))
	}
	return result, nil
}

func (s *establishmentService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateEstablishmentRequest) (*dto.EstablishmentResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("establishment not found")
	}
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Address != nil {
		e.Address = req.Address
	}
	if req.Phone != nil {
		e.Phone = req.Phone
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return mapEstablishment(e), nil
}

func (s *establishmentService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("establishment not found")
	}
	return s.repo.SoftDelete(ctx, id)
}

// ─── Dining tables ───────────────────────────────────────────────────────────

type TableService interface {
	Create(ctx context.Context, req dto.CreateTableRequest) (*dto.TableResponse, error)
	List(ctx context.Context, establishmentID *uuid.UUID) ([]dto.TableResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type tableService struct {
	repo           repository.TableRepository
	establishments repository.EstablishmentRepository
}

func NewTableService(repo repository.TableRepository, establishments repository.EstablishmentRepository) TableService {
	return &tableService{repo: repo, establishments: establishments}
}

func mapTable(t *model.DiningTable) *dto.TableResponse {
	return &dto.TableResponse{
		ID:              t.ID,
		EstablishmentID: t.EstablishmentID,
		Number:          t.Number,
		Capacity:        t.Capacity,
		IsActive:        t.IsActive,
	}
}

func (s *tableService) Create(ctx context.Context, req dto.CreateTableRequest) (*dto.TableResponse, error) {
	establishmentID, err := uuid.Parse(req.EstablishmentID)
	if err != nil {
		return nil, apierror.Validation(map[string]string{"establishment_id": "must be a valid uuid"})
	}
	if _, err := s.establishments.FindByID(ctx, establishmentID); err != nil {
		return nil, apierror.NotFound("establishment not found")
	}

	t := &model.DiningTable{
		EstablishmentID: establishmentID,
		Number:          req.Number,
		Capacity:        req.Capacity,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return mapTable(t), nil
}

func (s *tableService) List(ctx context.Context, establishmentID *uuid.UUID) ([]dto.TableResponse, error) {
	list, err := s.repo.List(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.TableResponse, 0, len(list))
	for i := range list {
		result = append(result, *mapTable(&list[i]))
	}
	return result, nil
}

func (s *tableService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("dining table not found")
	}
	return s.repo.SoftDelete(ctx, id)
}

// ─── Cash registers ──────────────────────────────────────────────────────────

type RegisterService interface {
	Create(ctx context.Context, req dto.CreateRegisterRequest) (*dto.RegisterResponse, error)
	List(ctx context.Context, establishmentID *uuid.UUID) ([]dto.RegisterResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type registerService struct {
	repo           repository.RegisterRepository
	establishments repository.EstablishmentRepository
}

func NewRegisterService(repo repository.RegisterRepository, establishments repository.EstablishmentRepository) RegisterService {
	return &registerService{repo: repo, establishments: establishments}
}

func mapRegister(r *model.CashRegister) *dto.RegisterResponse {
	return &dto.RegisterResponse{
		ID:              r.ID,
		EstablishmentID: r.EstablishmentID,
		Number:          r.Number,
		Name:            r.Name,
		IsActive:        r.IsActive,
	}
}

func (s *registerService) Create(ctx context.Context, req dto.CreateRegisterRequest) (*dto.RegisterResponse, error) {
	establishmentID, err := uuid.Parse(req.EstablishmentID)
	if err != nil {
		return nil, apierror.Validation(map[string]string{"establishment_id": "must be a valid uuid"})
	}
	if _, err := s.establishments.FindByID(ctx, establishmentID); err != nil {
		return nil, apierror.NotFound("establishment not found")
	}

	// Register numbers are unique among active registers only; a retired
	// register frees its number.
	if existing, err := s.repo.FindActiveByNumber(ctx, establishmentID, req.Number); err == nil && existing != nil {
		return nil, apierror.Conflict("an active register with that number already exists")
	}

	r := &model.CashRegister{
		EstablishmentID: establishmentID,
		Number:          req.Number,
		Name:            req.Name,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("an active register with that number already exists")
		}
		return nil, err
	}
	return mapRegister(r), nil
}

func (s *registerService) List(ctx context.Context, establishmentID *uuid.UUID) ([]dto.RegisterResponse, error) {
	list, err := s.repo.List(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.RegisterResponse, 0, len(list))
	for i := range list {
		result = append(result, *mapRegister(&list[i]))
	}
	return result, nil
}

func (s *registerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("cash register not found")
	}
	return s.repo.SoftDelete(ctx, id)
}
