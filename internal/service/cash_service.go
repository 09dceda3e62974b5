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

// CashService drives the session lifecycle (OPEN → CLOSED) and the
// append-only transaction ledger. Transfer and receipt live in
// TreasuryService.
type CashService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Record(ctx context.Context, sessionID uuid.UUID, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error)
	Close(ctx context.Context, sessionID, actorID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error)
	Report(ctx context.Context, sessionID uuid.UUID) (*dto.SessionReportResponse, error)
	Active(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error)
	History(ctx context.Context, page, limit int) ([]dto.SessionResponse, int64, error)
}

type cashService struct {
	repo       repository.CashRepository
	registers  repository.RegisterRepository
	auditor    audit.Recorder
	thresholds Thresholds
}

func NewCashService(
	repo repository.CashRepository,
	registers repository.RegisterRepository,
	auditor audit.Recorder,
	thresholds Thresholds,
) CashService {
	return &cashService{repo: repo, registers: registers, auditor: auditor, thresholds: thresholds}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *cashService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	registerID, err := uuid.Parse(req.CashRegisterID)
	if err != nil {
		return nil, apierror.Validation(map[string]string{"cash_register_id": "must be a valid uuid"})
	}

	register, err := s.registers.FindByID(ctx, registerID)
	if err != nil {
		return nil, apierror.NotFound("cash register not found")
	}
	if !register.IsActive {
		return nil, apierror.Business("cash register is retired")
	}

	// Fast-path pre-check for a friendly message; the partial unique index
	// on (cash_register_id) WHERE status='OPEN' is the real guarantee under
	// concurrent opens.
	if existing, err := s.repo.FindOpenByRegister(ctx, registerID); err == nil && existing != nil {
		return nil, apierror.Conflict("register already has an open session")
	}

	session := &model.CashSession{
		CashRegisterID: registerID,
		OperatorID:     operatorID,
		OpeningAmount:  req.OpeningAmount,
		Status:         model.SessionOpen,
		OpenedAt:       time.Now().UTC(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("register already has an open session")
		}
		return nil, err
	}

	s.auditor.Record(ctx, audit.Event{
		Event:     audit.EventSessionOpened,
		SessionID: &session.ID,
		Amount:    &session.OpeningAmount,
		ActorID:   operatorID,
	})

	return sessionToResponse(session), nil
}

// ── Record ───────────────────────────────────────────────────────────────────
// The ledger is append-only: there is no update or delete path, and
// corrections are compensating entries (type "adjustment", signed).

func (s *cashService) Record(ctx context.Context, sessionID uuid.UUID, req dto.RecordTransactionRequest) (*dto.TransactionResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}
	if session.Status != model.SessionOpen {
		return nil, apierror.Business(fmt.Sprintf("session must be %s to record transactions, is %s", model.SessionOpen, session.Status))
	}
	if req.Amount.IsZero() {
		return nil, apierror.Validation(map[string]string{"amount": "must be non-zero"})
	}

	amount := req.Amount
	switch req.Type {
	case model.TxSale, model.TxSupply:
		if amount.IsNegative() {
			return nil, apierror.Validation(map[string]string{"amount": "must be positive for " + req.Type})
		}
	case model.TxWithdrawal:
		if amount.IsNegative() {
			return nil, apierror.Validation(map[string]string{"amount": "must be positive for withdrawal"})
		}
		amount = amount.Neg()
	case model.TxAdjustment:
		// adjustments carry their own sign
	}

	var refID *uuid.UUID
	if req.ReferenceID != nil {
		id, err := uuid.Parse(*req.ReferenceID)
		if err != nil {
			return nil, apierror.Validation(map[string]string{"reference_id": "must be a valid uuid"})
		}
		refID = &id
	}

	tx := &model.CashTransaction{
		CashSessionID: sessionID,
		Type:          req.Type,
		Amount:        amount,
		Description:   req.Description,
		ReferenceID:   refID,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return transactionToResponse(tx), nil
}

// ── Close ────────────────────────────────────────────────────────────────────

func (s *cashService) Close(ctx context.Context, sessionID, actorID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}
	if session.Status != model.SessionOpen {
		return nil, apierror.Business(fmt.Sprintf("session must be %s to close, is %s", model.SessionOpen, session.Status))
	}

	// All preconditions checked before any write: a bad count row means no
	// CashCount is persisted at all.
	counted := decimal.Zero
	counts := make([]model.CashCount, 0, len(req.Counts))
	for i, row := range req.Counts {
		expected := row.Denomination.Mul(decimal.NewFromInt(int64(row.Quantity)))
		if !expected.Equal(row.Total) {
			return nil, apierror.Validation(map[string]string{
				fmt.Sprintf("counts[%d].total", i): fmt.Sprintf("must equal denomination × quantity (%s)", expected.StringFixed(2)),
			})
		}
		counted = counted.Add(row.Total)
		counts = append(counts, model.CashCount{
			CashSessionID: sessionID,
			Denomination:  row.Denomination,
			Quantity:      row.Quantity,
			Total:         row.Total,
		})
	}

	now := time.Now().UTC()
	session.CountedAmount = &counted
	session.Status = model.SessionClosed
	session.ClosedAt = &now

	if err := s.repo.CloseSession(ctx, session, counts); err != nil {
		return nil, err
	}

	netCash, err := s.repo.SumCashTransactions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reconciliation := Reconcile(session.OpeningAmount, counted, netCash, s.thresholds)

	s.auditor.Record(ctx, audit.Event{
		Event:     audit.EventSessionClosed,
		SessionID: &session.ID,
		Amount:    &counted,
		ActorID:   actorID,
	})

	return &dto.CloseSessionResponse{
		Session:        *sessionToResponse(session),
		Reconciliation: reconciliation,
	}, nil
}

// ── Report ───────────────────────────────────────────────────────────────────
// Expected cash is always recomputed from the ledger here, never read from a
// stored column.

func (s *cashService) Report(ctx context.Context, sessionID uuid.UUID) (*dto.SessionReportResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, apierror.NotFound("cash session not found")
	}

	txs, err := s.repo.ListTransactions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	report := &dto.SessionReportResponse{
		Session:      *sessionToResponse(session),
		Transactions: make([]dto.TransactionResponse, 0, len(txs)),
	}
	for i := range txs {
		report.Transactions = append(report.Transactions, *transactionToResponse(&txs[i]))
	}

	if session.CountedAmount != nil {
		counts, err := s.repo.ListCounts(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, c := range counts {
			report.Counts = append(report.Counts, dto.CountRow{
				Denomination: c.Denomination,
				Quantity:     c.Quantity,
				Total:        c.Total,
			})
		}

		netCash, err := s.repo.SumCashTransactions(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		rec := Reconcile(session.OpeningAmount, *session.CountedAmount, netCash, s.thresholds)
		report.Reconciliation = &rec
	}

	return report, nil
}

// ── Active / History ─────────────────────────────────────────────────────────

func (s *cashService) Active(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("no active session")
		}
		return nil, err
	}
	return sessionToResponse(session), nil
}

func (s *cashService) History(ctx context.Context, page, limit int) ([]dto.SessionResponse, int64, error) {
	sessions, total, err := s.repo.ListSessions(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, *sessionToResponse(&sessions[i]))
	}
	return resp, total, nil
}

// ── Mapping helpers ──────────────────────────────────────────────────────────

func sessionToResponse(s *model.CashSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:             s.ID.String(),
		CashRegisterID: s.CashRegisterID.String(),
		OperatorID:     s.OperatorID.String(),
		OpeningAmount:  s.OpeningAmount,
		CountedAmount:  s.CountedAmount,
		Status:         s.Status,
		OpenedAt:       s.OpenedAt.Format(time.RFC3339),
		ClosedAt:       formatTime(s.ClosedAt),
		TransferredAt:  formatTime(s.TransferredAt),
		ReceivedAt:     formatTime(s.ReceivedAt),
	}
}

func transactionToResponse(t *model.CashTransaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:          t.ID.String(),
		SessionID:   t.CashSessionID.String(),
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
