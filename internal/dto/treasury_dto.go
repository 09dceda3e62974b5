package dto

import "github.com/shopspring/decimal"

type CreateTransferRequest struct {
	SessionID string  `json:"session_id" validate:"required,uuid"`
	Notes     *string `json:"notes"`
}

type ConfirmTransferRequest struct {
	ReceivedAmount decimal.Decimal `json:"received_amount" validate:"min=0"`
}

type TransferResponse struct {
	ID             string           `json:"id"`
	SessionID      string           `json:"session_id"`
	TransferredBy  string           `json:"transferred_by"`
	ExpectedAmount decimal.Decimal  `json:"expected_amount"`
	ReceivedBy     *string          `json:"received_by,omitempty"`
	ReceivedAmount *decimal.Decimal `json:"received_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	CreatedAt      string           `json:"created_at"`
	ConfirmedAt    *string          `json:"confirmed_at,omitempty"`
}

// ConsolidationResponse aggregates one calendar day of transfers.
type ConsolidationResponse struct {
	Date            string          `json:"date"`
	TransferCount   int             `json:"transfer_count"`
	ConfirmedCount  int             `json:"confirmed_count"`
	TotalExpected   decimal.Decimal `json:"total_expected"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	Transfers       []TransferResponse `json:"transfers"`
}
