package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	IsActive    bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"not null"`
	Description *string
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsActive    bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}

// Ingredient is a stock item. Quantity changes go through StockMovement rows
// so adjustments are traceable; the current quantity is denormalized here for
// cheap reads.
type Ingredient struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string          `gorm:"uniqueIndex;not null"`
	Unit      string          `gorm:"type:varchar(10);not null"` // kg | l | unit
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MinStock  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	IsActive  bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockMovement records every ingredient quantity change, signed.
type StockMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Delta        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Reason       string          `gorm:"not null"`
	ActorID      uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
}
