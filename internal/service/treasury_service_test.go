package service

import (
	"context"
	"testing"
	"time"

	"restopos/internal/apierror"
	"restopos/internal/audit"
	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory TransferRepository stub ────────────────────────────────────────

type stubTransferRepo struct {
	transfers map[uuid.UUID]*model.CashTransfer
	sessions  *stubCashRepo // session writes land here, mirroring the shared tx

	createErr error
}

func newStubTransferRepo(sessions *stubCashRepo) *stubTransferRepo {
	return &stubTransferRepo{
		transfers: make(map[uuid.UUID]*model.CashTransfer),
		sessions:  sessions,
	}
}

func (r *stubTransferRepo) CreateWithSession(_ context.Context, t *model.CashTransfer, s *model.CashSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.transfers {
		if existing.CashSessionID == t.CashSessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	cloned := *t
	r.transfers[t.ID] = &cloned
	sessionClone := *s
	r.sessions.sessions[s.ID] = &sessionClone
	return nil
}

func (r *stubTransferRepo) ConfirmWithSession(_ context.Context, t *model.CashTransfer, s *model.CashSession) error {
	cloned := *t
	r.transfers[t.ID] = &cloned
	sessionClone := *s
	r.sessions.sessions[s.ID] = &sessionClone
	return nil
}

func (r *stubTransferRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashTransfer, error) {
	t, ok := r.transfers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *t
	return &cloned, nil
}

func (r *stubTransferRepo) FindBySessionID(_ context.Context, sessionID uuid.UUID) (*model.CashTransfer, error) {
	for _, t := range r.transfers {
		if t.CashSessionID == sessionID {
			cloned := *t
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTransferRepo) ListPending(_ context.Context) ([]model.CashTransfer, error) {
	out := []model.CashTransfer{}
	for _, t := range r.transfers {
		if t.ReceivedAmount == nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubTransferRepo) ListByDay(_ context.Context, day time.Time) ([]model.CashTransfer, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	out := []model.CashTransfer{}
	for _, t := range r.transfers {
		if !t.CreatedAt.Before(start) && t.CreatedAt.Before(end) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// ── Notifier stub ────────────────────────────────────────────────────────────

type stubNotifier struct {
	notified []dto.TransferResponse
}

func (n *stubNotifier) TransferCreated(_ context.Context, t dto.TransferResponse) {
	n.notified = append(n.notified, t)
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

type treasuryFixture struct {
	cash      CashService
	treasury  TreasuryService
	cashRepo  *stubCashRepo
	transfers *stubTransferRepo
	registers *stubRegisterRepo
	recorder  *stubRecorder
	notifier  *stubNotifier
}

func newTreasuryFixture() *treasuryFixture {
	cashRepo := newStubCashRepo()
	transferRepo := newStubTransferRepo(cashRepo)
	registerRepo := newStubRegisterRepo()
	recorder := &stubRecorder{}
	notifier := &stubNotifier{}
	return &treasuryFixture{
		cash:      NewCashService(cashRepo, registerRepo, recorder, testThresholds()),
		treasury:  NewTreasuryService(transferRepo, cashRepo, recorder, notifier),
		cashRepo:  cashRepo,
		transfers: transferRepo,
		registers: registerRepo,
		recorder:  recorder,
		notifier:  notifier,
	}
}

// closedSession walks a session through open → sale 30 → sale 20 → close with
// a 100 count against a 50 float, leaving 50 of net cash to transfer.
func (f *treasuryFixture) closedSession(t *testing.T) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	sessionID, operator := openSession(t, f.cash, f.registers.addRegister(true), "50")

	for _, amount := range []string{"30", "20"} {
		_, err := f.cash.Record(ctx, sessionID, dto.RecordTransactionRequest{
			Type: model.TxSale, Amount: d(amount), Description: "cash sale",
		})
		require.NoError(t, err)
	}
	_, err := f.cash.Close(ctx, sessionID, operator, dto.CloseSessionRequest{
		Counts: []dto.CountRow{
			{Denomination: d("50"), Quantity: 1, Total: d("50")},
			{Denomination: d("20"), Quantity: 2, Total: d("40")},
			{Denomination: d("10"), Quantity: 1, Total: d("10")},
		},
	})
	require.NoError(t, err)
	return sessionID
}

// ── Transfer ─────────────────────────────────────────────────────────────────

func TestTransferMovesNetCashOnly(t *testing.T) {
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)

	resp, err := f.treasury.Transfer(context.Background(), uuid.New(), dto.CreateTransferRequest{
		SessionID: sessionID.String(),
	})
	require.NoError(t, err)

	// counted 100 − opening float 50 = 50 leaves the till
	assert.True(t, resp.ExpectedAmount.Equal(d("50")))
	assert.Nil(t, resp.ReceivedAmount)

	session, err := f.cashRepo.FindSessionByID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionTransferred, session.Status)
	require.NotNil(t, session.TransferredAt)

	require.Len(t, f.notifier.notified, 1)
	assert.Equal(t, resp.ID, f.notifier.notified[0].ID)
}

func TestTransferRequiresClosedSession(t *testing.T) {
	f := newTreasuryFixture()
	sessionID, _ := openSession(t, f.cash, f.registers.addRegister(true), "50")

	_, err := f.treasury.Transfer(context.Background(), uuid.New(), dto.CreateTransferRequest{
		SessionID: sessionID.String(),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindBusiness))
}

func TestTransferRejectsNegativeAmount(t *testing.T) {
	// counted below the opening float: the till cannot hand over negative cash.
	f := newTreasuryFixture()
	ctx := context.Background()
	sessionID, operator := openSession(t, f.cash, f.registers.addRegister(true), "50")

	_, err := f.cash.Close(ctx, sessionID, operator, dto.CloseSessionRequest{
		Counts: []dto.CountRow{{Denomination: d("20"), Quantity: 2, Total: d("40")}},
	})
	require.NoError(t, err)

	_, err = f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{
		SessionID: sessionID.String(),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindBusiness))

	// Session stays CLOSED — the failed transfer wrote nothing.
	session, err := f.cashRepo.FindSessionByID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionClosed, session.Status)
}

func TestTransferTwiceRejected(t *testing.T) {
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)
	ctx := context.Background()

	_, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.NoError(t, err)

	// Status is now TRANSFERRED, so the CLOSED guard rejects the retry.
	_, err = f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindBusiness))
}

func TestTransferExistingRowConflicts(t *testing.T) {
	// A transfer row already exists but the session reads as CLOSED (e.g. a
	// partially replicated read): the one-transfer-per-session lookup must
	// reject with a conflict, not create a second row.
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)
	ctx := context.Background()

	_, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.NoError(t, err)

	session := f.cashRepo.sessions[sessionID]
	session.Status = model.SessionClosed

	_, err = f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.Len(t, f.transfers.transfers, 1)
}

func TestTransferIndexViolationMapsToConflict(t *testing.T) {
	// A concurrent transfer that slips past the lookup hits the unique index
	// on cash_session_id; the duplicated-key error surfaces as a conflict.
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)
	f.transfers.createErr = gorm.ErrDuplicatedKey

	_, err := f.treasury.Transfer(context.Background(), uuid.New(), dto.CreateTransferRequest{
		SessionID: sessionID.String(),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

// ── Confirm ──────────────────────────────────────────────────────────────────

func TestConfirmExactAmount(t *testing.T) {
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)
	ctx := context.Background()

	created, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.NoError(t, err)
	transferID := uuid.MustParse(created.ID)

	treasurer := uuid.New()
	resp, err := f.treasury.Confirm(ctx, transferID, treasurer, dto.ConfirmTransferRequest{
		ReceivedAmount: d("50"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Difference)
	assert.True(t, resp.Difference.IsZero())
	require.NotNil(t, resp.ReceivedBy)
	assert.Equal(t, treasurer.String(), *resp.ReceivedBy)

	session, err := f.cashRepo.FindSessionByID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionReceived, session.Status)
	require.NotNil(t, session.TreasurerID)
	assert.Equal(t, treasurer, *session.TreasurerID)
}

func TestConfirmShortageStillConfirms(t *testing.T) {
	// Receiving 48 against 50 expected records a -2 difference; the receipt is
	// never blocked by a mismatch, only documented.
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)
	ctx := context.Background()

	created, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.NoError(t, err)

	resp, err := f.treasury.Confirm(ctx, uuid.MustParse(created.ID), uuid.New(), dto.ConfirmTransferRequest{
		ReceivedAmount: d("48"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Difference)
	assert.True(t, resp.Difference.Equal(d("-2")))

	session, err := f.cashRepo.FindSessionByID(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionReceived, session.Status)
}

func TestConfirmTwiceRejected(t *testing.T) {
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)
	ctx := context.Background()

	created, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.NoError(t, err)
	transferID := uuid.MustParse(created.ID)

	_, err = f.treasury.Confirm(ctx, transferID, uuid.New(), dto.ConfirmTransferRequest{ReceivedAmount: d("50")})
	require.NoError(t, err)

	_, err = f.treasury.Confirm(ctx, transferID, uuid.New(), dto.ConfirmTransferRequest{ReceivedAmount: d("45")})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindBusiness))

	// First confirmation untouched.
	stored, err := f.transfers.FindByID(ctx, transferID)
	require.NoError(t, err)
	assert.True(t, stored.ReceivedAmount.Equal(d("50")))
}

func TestConfirmUnknownTransfer(t *testing.T) {
	f := newTreasuryFixture()
	_, err := f.treasury.Confirm(context.Background(), uuid.New(), uuid.New(), dto.ConfirmTransferRequest{
		ReceivedAmount: d("10"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

// ── Queries ──────────────────────────────────────────────────────────────────

func TestListPendingOmitsConfirmed(t *testing.T) {
	f := newTreasuryFixture()
	ctx := context.Background()

	first := f.closedSession(t)
	second := f.closedSession(t)

	t1, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: first.String()})
	require.NoError(t, err)
	_, err = f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: second.String()})
	require.NoError(t, err)

	_, err = f.treasury.Confirm(ctx, uuid.MustParse(t1.ID), uuid.New(), dto.ConfirmTransferRequest{ReceivedAmount: d("50")})
	require.NoError(t, err)

	pending, err := f.treasury.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.String(), pending[0].SessionID)
}

func TestDailyConsolidationTotals(t *testing.T) {
	f := newTreasuryFixture()
	ctx := context.Background()

	first := f.closedSession(t)
	second := f.closedSession(t)

	t1, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: first.String()})
	require.NoError(t, err)
	_, err = f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: second.String()})
	require.NoError(t, err)

	_, err = f.treasury.Confirm(ctx, uuid.MustParse(t1.ID), uuid.New(), dto.ConfirmTransferRequest{ReceivedAmount: d("48")})
	require.NoError(t, err)

	report, err := f.treasury.DailyConsolidation(ctx, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TransferCount)
	assert.Equal(t, 1, report.ConfirmedCount)
	assert.True(t, report.TotalExpected.Equal(d("100")))
	assert.True(t, report.TotalReceived.Equal(d("48")))
	assert.True(t, report.TotalDifference.Equal(d("-2")))
}

func TestTransferAuditTrail(t *testing.T) {
	f := newTreasuryFixture()
	sessionID := f.closedSession(t)
	ctx := context.Background()

	created, err := f.treasury.Transfer(ctx, uuid.New(), dto.CreateTransferRequest{SessionID: sessionID.String()})
	require.NoError(t, err)
	_, err = f.treasury.Confirm(ctx, uuid.MustParse(created.ID), uuid.New(), dto.ConfirmTransferRequest{ReceivedAmount: d("50")})
	require.NoError(t, err)

	var names []string
	for _, ev := range f.recorder.events {
		names = append(names, ev.Event)
	}
	assert.Contains(t, names, audit.EventSessionOpened)
	assert.Contains(t, names, audit.EventSessionClosed)
	assert.Contains(t, names, audit.EventTransferCreated)
	assert.Contains(t, names, audit.EventReceiptConfirmed)
}
