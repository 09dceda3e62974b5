package repository

import (
	"context"
	"time"

	"restopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransferRepository persists treasury transfers. Create and Confirm both
// mutate the linked session in the same database transaction — a transfer row
// must never exist without the matching session status.
type TransferRepository interface {
	CreateWithSession(ctx context.Context, t *model.CashTransfer, s *model.CashSession) error
	ConfirmWithSession(ctx context.Context, t *model.CashTransfer, s *model.CashSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashTransfer, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.CashTransfer, error)
	ListPending(ctx context.Context) ([]model.CashTransfer, error)
	ListByDay(ctx context.Context, day time.Time) ([]model.CashTransfer, error)
}

type transferRepo struct{ db *gorm.DB }

func NewTransferRepository(db *gorm.DB) TransferRepository { return &transferRepo{db: db} }

func (r *transferRepo) CreateWithSession(ctx context.Context, t *model.CashTransfer, s *model.CashSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		return tx.Save(s).Error
	})
}

func (r *transferRepo) ConfirmWithSession(ctx context.Context, t *model.CashTransfer, s *model.CashSession) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		return tx.Save(s).Error
	})
}

func (r *transferRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashTransfer, error) {
	var t model.CashTransfer
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepo) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.CashTransfer, error) {
	var t model.CashTransfer
	err := r.db.WithContext(ctx).First(&t, "cash_session_id = ?", sessionID).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepo) ListPending(ctx context.Context) ([]model.CashTransfer, error) {
	var transfers []model.CashTransfer
	err := r.db.WithContext(ctx).
		Where("received_amount IS NULL").
		Order("created_at ASC").
		Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) ListByDay(ctx context.Context, day time.Time) ([]model.CashTransfer, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var transfers []model.CashTransfer
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&transfers).Error
	return transfers, err
}
