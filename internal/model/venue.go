package model

import (
	"time"

	"github.com/google/uuid"
)

// Establishment is a physical location (restaurant/branch). Registers and
// tables belong to exactly one establishment.
type Establishment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Address   *string
	Phone     *string
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DiningTable uses a non-reserved name — "table" collides with SQL.
type DiningTable struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EstablishmentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Number          int       `gorm:"not null"`
	Capacity        int       `gorm:"not null;default:4"`
	IsActive        bool      `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
