package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSession lifecycle. Transitions are strictly forward:
// OPEN → CLOSED → TRANSFERRED → RECEIVED.
const (
	SessionOpen        = "OPEN"
	SessionClosed      = "CLOSED"
	SessionTransferred = "TRANSFERRED"
	SessionReceived    = "RECEIVED"
)

// CashTransaction types. Withdrawals are stored with a negative amount so
// that the ledger sums directly to net cash movement.
const (
	TxSale       = "sale"
	TxWithdrawal = "withdrawal"
	TxSupply     = "supply"
	TxAdjustment = "adjustment"
)

// CashRegister is a named physical or virtual till. Registers are never
// physically deleted — IsActive=false retires them.
type CashRegister struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Number          int       `gorm:"not null"`
	Name            string    `gorm:"not null"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CashSession is one open-to-close operating period for one register, owned
// by one operator. CountedAmount is set at close time from the denomination
// count; the expected amount is always recomputed from the ledger, never
// stored redundantly.
type CashSession struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashRegisterID uuid.UUID        `gorm:"type:uuid;not null;index"`
	OperatorID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	TreasurerID    *uuid.UUID       `gorm:"type:uuid"`
	OpeningAmount  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CountedAmount  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status         string           `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	OpenedAt       time.Time
	ClosedAt       *time.Time
	TransferredAt  *time.Time
	ReceivedAt     *time.Time

	Transactions []CashTransaction `gorm:"foreignKey:CashSessionID"`
	Counts       []CashCount       `gorm:"foreignKey:CashSessionID"`
}

// CashTransaction is an immutable event in the session ledger. There is no
// update or delete path — corrections are compensating entries.
type CashTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type          string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description   string          `gorm:"not null"`
	// ReferenceID links to the originating order or manual operation
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}

// CashCount is one denomination row of the physical count submitted at close
// time. Total always equals Denomination × Quantity; rows are immutable.
type CashCount struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Denomination  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity      int             `gorm:"not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
}

// CashTransfer moves custody of a closed session's net cash to a treasurer.
// ExpectedAmount = countedAmount − openingAmount (the opening float stays in
// the till). Confirmation sets ReceivedAmount and the signed Difference, after
// which the row is immutable.
type CashTransfer struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashSessionID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	TransferredBy  uuid.UUID        `gorm:"type:uuid;not null"`
	ExpectedAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ReceivedBy     *uuid.UUID       `gorm:"type:uuid"`
	ReceivedAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes          *string
	CreatedAt      time.Time
	ConfirmedAt    *time.Time
}
