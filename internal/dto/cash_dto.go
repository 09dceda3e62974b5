package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	CashRegisterID string          `json:"cash_register_id" validate:"required,uuid"`
	OpeningAmount  decimal.Decimal `json:"opening_amount"   validate:"min=0"`
}

type RecordTransactionRequest struct {
	Type        string          `json:"type"        validate:"required,oneof=sale withdrawal supply adjustment"`
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Description string          `json:"description" validate:"required,min=3"`
	ReferenceID *string         `json:"reference_id" validate:"omitempty,uuid"`
}

type CountRow struct {
	Denomination decimal.Decimal `json:"denomination" validate:"required,gt=0"`
	Quantity     int             `json:"quantity"     validate:"required,min=1"`
	Total        decimal.Decimal `json:"total"        validate:"required,gt=0"`
}

type CloseSessionRequest struct {
	Counts []CountRow `json:"counts" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID             string           `json:"id"`
	CashRegisterID string           `json:"cash_register_id"`
	OperatorID     string           `json:"operator_id"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	CountedAmount  *decimal.Decimal `json:"counted_amount,omitempty"`
	Status         string           `json:"status"`
	OpenedAt       string           `json:"opened_at"`
	ClosedAt       *string          `json:"closed_at,omitempty"`
	TransferredAt  *string          `json:"transferred_at,omitempty"`
	ReceivedAt     *string          `json:"received_at,omitempty"`
}

type TransactionResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

// ReconciliationResponse reports counted vs. expected at (or after) close.
// Classification: normal | warning | alert.
type ReconciliationResponse struct {
	ExpectedCash      decimal.Decimal `json:"expected_cash"`
	CountedAmount     decimal.Decimal `json:"counted_amount"`
	Difference        decimal.Decimal `json:"difference"`
	DifferencePercent decimal.Decimal `json:"difference_percent"`
	Classification    string          `json:"classification"`
}

type CloseSessionResponse struct {
	Session        SessionResponse        `json:"session"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
}

type SessionReportResponse struct {
	Session        SessionResponse         `json:"session"`
	Transactions   []TransactionResponse   `json:"transactions"`
	Counts         []CountRow              `json:"counts,omitempty"`
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
}
