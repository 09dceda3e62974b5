package repository

import (
	"context"

	"restopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ─── Establishments ──────────────────────────────────────────────────────────

type EstablishmentRepository interface {
	Create(ctx context.Context, e *model.Establishment) error
	List(ctx context.Context) ([]model.Establishment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Establishment, error)
	Update(ctx context.Context, e *model.Establishment) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type establishmentRepo struct{ db *gorm.DB }

func NewEstablishmentRepository(db *gorm.DB) EstablishmentRepository {
	return &establishmentRepo{db: db}
}

func (r *establishmentRepo) Create(ctx context.Context, e *model.Establishment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *establishmentRepo) List(ctx context.Context) ([]model.Establishment, error) {
	var list []model.Establishment
	err := r.db.WithContext(ctx).Where("is_active = true").Order("name asc").Find(&list).Error
	return list, err
}

func (r *establishmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Establishment, error) {
	var e model.Establishment
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *establishmentRepo) Update(ctx context.Context, e *model.Establishment) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *establishmentRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Establishment{}).Where("id = ?", id).Update("is_active", false).Error
}

// ─── Dining tables ───────────────────────────────────────────────────────────

type TableRepository interface {
	Create(ctx context.Context, t *model.DiningTable) error
	List(ctx context.Context, establishmentID *uuid.UUID) ([]model.DiningTable, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.DiningTable, error)
	Update(ctx context.Context, t *model.DiningTable) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type tableRepo struct{ db *gorm.DB }

func NewTableRepository(db *gorm.DB) TableRepository { return &tableRepo{db: db} }

func (r *tableRepo) Create(ctx context.Context, t *model.DiningTable) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tableRepo) List(ctx context.Context, establishmentID *uuid.UUID) ([]model.DiningTable, error) {
	var list []model.DiningTable
	q := r.db.WithContext(ctx).Where("is_active = true").Order("number asc")
	if establishmentID != nil {
		q = q.Where("establishment_id = ?", *establishmentID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *tableRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.DiningTable, error) {
	var t model.DiningTable
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepo) Update(ctx context.Context, t *model.DiningTable) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *tableRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.DiningTable{}).Where("id = ?", id).Update("is_active", false).Error
}

// ─── Cash registers ──────────────────────────────────────────────────────────

type RegisterRepository interface {
	Create(ctx context.Context, cr *model.CashRegister) error
	List(ctx context.Context, establishmentID *uuid.UUID) ([]model.CashRegister, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	FindActiveByNumber(ctx context.Context, establishmentID uuid.UUID, number int) (*model.CashRegister, error)
	Update(ctx context.Context, cr *model.CashRegister) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, cr *model.CashRegister) error {
	return r.db.WithContext(ctx).Create(cr).Error
}

func (r *registerRepo) List(ctx context.Context, establishmentID *uuid.UUID) ([]model.CashRegister, error) {
	var list []model.CashRegister
	q := r.db.WithContext(ctx).Where("is_active = true").Order("number asc")
	if establishmentID != nil {
		q = q.Where("establishment_id = ?", *establishmentID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var cr model.CashRegister
	err := r.db.WithContext(ctx).First(&cr, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *registerRepo) FindActiveByNumber(ctx context.Context, establishmentID uuid.UUID, number int) (*model.CashRegister, error) {
	var cr model.CashRegister
	err := r.db.WithContext(ctx).
		Where("establishment_id = ? AND number = ? AND is_active = true", establishmentID, number).
		First(&cr).Error
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (r *registerRepo) Update(ctx context.Context, cr *model.CashRegister) error {
	return r.db.WithContext(ctx).Save(cr).Error
}

func (r *registerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.CashRegister{}).Where("id = ?", id).Update("is_active", false).Error
}
