package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Categories ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
}

// ─── Products ────────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	CategoryID  string          `json:"category_id" validate:"required,uuid"`
	Name        string          `json:"name"        validate:"required,min=2"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
}

type UpdateProductRequest struct {
	CategoryID  *string          `json:"category_id" validate:"omitempty,uuid"`
	Name        *string          `json:"name"        validate:"omitempty,min=2"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
}

type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
}

// ─── Ingredients ─────────────────────────────────────────────────────────────

type CreateIngredientRequest struct {
	Name     string          `json:"name" validate:"required,min=2"`
	Unit     string          `json:"unit" validate:"required,oneof=kg l unit"`
	Quantity decimal.Decimal `json:"quantity"  validate:"min=0"`
	MinStock decimal.Decimal `json:"min_stock" validate:"min=0"`
}

type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta"  validate:"required"`
	Reason string          `json:"reason" validate:"required,min=3"`
}

type IngredientResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	MinStock decimal.Decimal `json:"min_stock"`
	LowStock bool            `json:"low_stock"`
	IsActive bool            `json:"is_active"`
}
