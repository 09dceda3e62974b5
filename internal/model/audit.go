package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditEntry is the persisted form of an audit event. Rows are written
// asynchronously by the audit worker and never updated.
type AuditEntry struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Event      string           `gorm:"type:varchar(40);not null;index"`
	SessionID  *uuid.UUID       `gorm:"type:uuid;index"`
	TransferID *uuid.UUID       `gorm:"type:uuid;index"`
	Amount     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ActorID    uuid.UUID        `gorm:"type:uuid;not null"`
	OccurredAt time.Time        `gorm:"not null"`
	CreatedAt  time.Time
}
