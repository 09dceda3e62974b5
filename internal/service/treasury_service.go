package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restopos/internal/apierror"
	"restopos/internal/audit"
	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Notifier announces a created transfer to the treasury. Implementations run
// off the request path and are strictly best-effort; delivery is a future
// hardening point, not a correctness requirement.
type Notifier interface {
	TransferCreated(ctx context.Context, t dto.TransferResponse)
}

// TreasuryService moves custody of a closed session's net cash to a treasurer
// and confirms receipt. Transfer creation and the session status flip are a
// single atomic write — a transfer row never exists beside a CLOSED session.
type TreasuryService interface {
	Transfer(ctx context.Context, actorID uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error)
	Confirm(ctx context.Context, transferID, receivedBy uuid.UUID, req dto.ConfirmTransferRequest) (*dto.TransferResponse, error)
	ListPending(ctx context.Context) ([]dto.TransferResponse, error)
	DailyConsolidation(ctx context.Context, day time.Time) (*dto.ConsolidationResponse, error)
}

type treasuryService struct {
	transfers repository.TransferRepository
	sessions  repository.CashRepository
	auditor   audit.Recorder
	notifier  Notifier // nil when notifications are not configured
}

func NewTreasuryService(
	transfers repository.TransferRepository,
	sessions repository.CashRepository,
	auditor audit.Recorder,
	notifier Notifier,
) TreasuryService {
	return &treasuryService{transfers: transfers, sessions: sessions, auditor: auditor, notifier: notifier}
}

// ── Transfer ─────────────────────────────────────────────────────────────────

func (s *treasuryService) Transfer(ctx context.Context, actorID uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, apierror.Validation(map[string]string{"session_id": "must be a valid uuid"})
	}

	session, err := s.sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}
	if session.Status != model.SessionClosed {
		return nil, apierror.Business(fmt.Sprintf("session must be %s before transfer, is %s", model.SessionClosed, session.Status))
	}
	if session.CountedAmount == nil {
		return nil, apierror.Business("session has no counted amount")
	}

	// One transfer per session. The unique index on cash_session_id is the
	// real guarantee; the lookup is a fast path for a friendly message.
	if existing, err := s.transfers.FindBySessionID(ctx, sessionID); err == nil && existing != nil {
		return nil, apierror.Conflict("session already has a transfer")
	}

	// The opening float never leaves the till; only net cash taken in moves.
	amount := session.CountedAmount.Sub(session.OpeningAmount)
	if amount.IsNegative() {
		return nil, apierror.Business("negative transfer amount: counted amount is below the opening float")
	}

	now := time.Now().UTC()
	transfer := &model.CashTransfer{
		CashSessionID:  sessionID,
		TransferredBy:  session.OperatorID,
		ExpectedAmount: amount,
		Notes:          req.Notes,
	}
	session.Status = model.SessionTransferred
	session.TransferredAt = &now

	if err := s.transfers.CreateWithSession(ctx, transfer, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("session already has a transfer")
		}
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		Event:      audit.EventTransferCreated,
		SessionID:  &session.ID,
		TransferID: &transfer.ID,
		Amount:     &transfer.ExpectedAmount,
		ActorID:    actorID,
	})

	resp := transferToResponse(transfer)
	if s.notifier != nil {
		s.notifier.TransferCreated(ctx, *resp)
	}
	return resp, nil
}

// ── Confirm ──────────────────────────────────────────────────────────────────

func (s *treasuryService) Confirm(ctx context.Context, transferID, receivedBy uuid.UUID, req dto.ConfirmTransferRequest) (*dto.TransferResponse, error) {
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return nil, apierror.NotFound("cash transfer not found")
	}
	// A confirmed transfer is immutable — a second confirmation must never
	// silently overwrite the received amount.
	if transfer.ReceivedAmount != nil {
		return nil, apierror.Business("transfer already confirmed")
	}

	session, err := s.sessions.FindSessionByID(ctx, transfer.CashSessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}

	now := time.Now().UTC()
	received := req.ReceivedAmount
	// Signed: positive = surplus, negative = shortage. A nonzero difference
	// is recorded, never blocking.
	difference := received.Sub(transfer.ExpectedAmount)

	transfer.ReceivedBy = &receivedBy
	transfer.ReceivedAmount = &received
	transfer.Difference = &difference
	transfer.ConfirmedAt = &now

	session.Status = model.SessionReceived
	session.ReceivedAt = &now
	session.TreasurerID = &receivedBy

	if err := s.transfers.ConfirmWithSession(ctx, transfer, session); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		Event:      audit.EventReceiptConfirmed,
		SessionID:  &session.ID,
		TransferID: &transfer.ID,
		Amount:     &difference,
		ActorID:    receivedBy,
	})

	return transferToResponse(transfer), nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *treasuryService) ListPending(ctx context.Context) ([]dto.TransferResponse, error) {
	transfers, err := s.transfers.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TransferResponse, 0, len(transfers))
	for i := range transfers {
		resp = append(resp, *transferToResponse(&transfers[i]))
	}
	return resp, nil
}

func (s *treasuryService) DailyConsolidation(ctx context.Context, day time.Time) (*dto.ConsolidationResponse, error) {
	transfers, err := s.transfers.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConsolidationResponse{
		Date:            day.Format("2006-01-02"),
		TransferCount:   len(transfers),
		TotalExpected:   decimal.Zero,
		TotalReceived:   decimal.Zero,
		TotalDifference: decimal.Zero,
		Transfers:       make([]dto.TransferResponse, 0, len(transfers)),
	}
	for i := range transfers {
		t := &transfers[i]
		resp.TotalExpected = resp.TotalExpected.Add(t.ExpectedAmount)
		if t.ReceivedAmount != nil {
			resp.ConfirmedCount++
			resp.TotalReceived = resp.TotalReceived.Add(*t.ReceivedAmount)
		}
		if t.Difference != nil {
			resp.TotalDifference = resp.TotalDifference.Add(*t.Difference)
		}
		resp.Transfers = append(resp.Transfers, *transferToResponse(t))
	}
	return resp, nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func transferToResponse(t *model.CashTransfer) *dto.TransferResponse {
	resp := &dto.TransferResponse{
		ID:             t.ID.String(),
		SessionID:      t.CashSessionID.String(),
		TransferredBy:  t.TransferredBy.String(),
		ExpectedAmount: t.ExpectedAmount,
		ReceivedAmount: t.ReceivedAmount,
		Difference:     t.Difference,
		Notes:          t.Notes,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		ConfirmedAt:    formatTime(t.ConfirmedAt),
	}
	if t.ReceivedBy != nil {
		rb := t.ReceivedBy.String()
		resp.ReceivedBy = &rb
	}
	return resp
}
