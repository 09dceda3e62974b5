package repository

import (
	"context"

	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashRepository persists sessions, their transaction ledger and the close-time
// denomination counts.
type CashRepository interface {
	CreateSession(ctx context.Context, s *model.CashSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error)
	ListSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error)
	// CloseSession persists the count rows and the session mutation atomically.
	CloseSession(ctx context.Context, s *model.CashSession, counts []model.CashCount) error
	CreateTransaction(ctx context.Context, t *model.CashTransaction) error
	ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error)
	ListCounts(ctx context.Context, sessionID uuid.UUID) ([]model.CashCount, error)
	// SumCashTransactions returns the net signed sum of cash-type ledger
	// entries for the session (sales + supplies − withdrawals).
	SumCashTransactions(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

// CreateSession inserts the new session. The partial unique index
// uniq_cash_sessions_open (cash_register_id WHERE status='OPEN') makes this a
// single conditional write: a concurrent open on the same register fails with
// gorm.ErrDuplicatedKey instead of producing two OPEN sessions.
func (r *cashRepo) CreateSession(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashRepo) FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("cash_register_id = ? AND status = ?", registerID, model.SessionOpen).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = ?", operatorID, model.SessionOpen).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashRepo) ListSessions(ctx context.Context, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.CashSession{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("opened_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *cashRepo) CloseSession(ctx context.Context, s *model.CashSession, counts []model.CashCount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(counts) > 0 {
			if err := tx.Create(&counts).Error; err != nil {
				return err
			}
		}
		return tx.Save(s).Error
	})
}

func (r *cashRepo) CreateTransaction(ctx context.Context, t *model.CashTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *cashRepo) ListTransactions(ctx context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Where("cash_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&txs).Error
	return txs, err
}

func (r *cashRepo) ListCounts(ctx context.Context, sessionID uuid.UUID) ([]model.CashCount, error) {
	var counts []model.CashCount
	err := r.db.WithContext(ctx).
		Where("cash_session_id = ?", sessionID).
		Order("denomination DESC").
		Find(&counts).Error
	return counts, err
}

func (r *cashRepo) SumCashTransactions(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&model.CashTransaction{}).
		Select("SUM(amount)").
		Where("cash_session_id = ?", sessionID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
