package repository

import (
	"context"

	"restopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRepository is append-only; entries are written by the audit worker.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditEntry) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AuditEntry, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, e *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC").
		Find(&entries).Error
	return entries, err
}
