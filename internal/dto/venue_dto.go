package dto

import "github.com/google/uuid"

type CreateEstablishmentRequest struct {
	Name    string  `json:"name" validate:"required,min=2"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type UpdateEstablishmentRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type EstablishmentResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Address  *string   `json:"address,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	IsActive bool      `json:"is_active"`
}

type CreateTableRequest struct {
	EstablishmentID string `json:"establishment_id" validate:"required,uuid"`
	Number          int    `json:"number"   validate:"required,min=1"`
	Capacity        int    `json:"capacity" validate:"required,min=1"`
}

type TableResponse struct {
	ID              uuid.UUID `json:"id"`
	EstablishmentID uuid.UUID `json:"establishment_id"`
	Number          int       `json:"number"`
	Capacity        int       `json:"capacity"`
	IsActive        bool      `json:"is_active"`
}

type CreateRegisterRequest struct {
	EstablishmentID string `json:"establishment_id" validate:"required,uuid"`
	Number          int    `json:"number" validate:"required,min=1"`
	Name            string `json:"name"   validate:"required,min=2"`
}

type RegisterResponse struct {
	ID              uuid.UUID `json:"id"`
	EstablishmentID uuid.UUID `json:"establishment_id"`
	Number          int       `json:"number"`
	Name            string    `json:"name"`
	IsActive        bool      `json:"is_active"`
}
