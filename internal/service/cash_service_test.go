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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory CashRepository stub ────────────────────────────────────────────

type stubCashRepo struct {
	sessions     map[uuid.UUID]*model.CashSession
	transactions map[uuid.UUID][]model.CashTransaction
	counts       map[uuid.UUID][]model.CashCount

	createSessionErr error
	closeCalls       int
}

func newStubCashRepo() *stubCashRepo {
	return &stubCashRepo{
		sessions:     make(map[uuid.UUID]*model.CashSession),
		transactions: make(map[uuid.UUID][]model.CashTransaction),
		counts:       make(map[uuid.UUID][]model.CashCount),
	}
}

func (r *stubCashRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	if r.createSessionErr != nil {
		return r.createSessionErr
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cloned := *s
	r.sessions[s.ID] = &cloned
	return nil
}

func (r *stubCashRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *s
	return &cloned, nil
}

func (r *stubCashRepo) FindOpenByRegister(_ context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.CashRegisterID == registerID && s.Status == model.SessionOpen {
			cloned := *s
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCashRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.Status == model.SessionOpen {
			cloned := *s
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCashRepo) ListSessions(_ context.Context, _, _ int) ([]model.CashSession, int64, error) {
	out := make([]model.CashSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubCashRepo) CloseSession(_ context.Context, s *model.CashSession, counts []model.CashCount) error {
	r.closeCalls++
	cloned := *s
	r.sessions[s.ID] = &cloned
	r.counts[s.ID] = append(r.counts[s.ID], counts...)
	return nil
}

func (r *stubCashRepo) CreateTransaction(_ context.Context, t *model.CashTransaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	r.transactions[t.CashSessionID] = append(r.transactions[t.CashSessionID], *t)
	return nil
}

func (r *stubCashRepo) ListTransactions(_ context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error) {
	return r.transactions[sessionID], nil
}

func (r *stubCashRepo) ListCounts(_ context.Context, sessionID uuid.UUID) ([]model.CashCount, error) {
	return r.counts[sessionID], nil
}

func (r *stubCashRepo) SumCashTransactions(_ context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.transactions[sessionID] {
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

// ── RegisterRepository stub ──────────────────────────────────────────────────

type stubRegisterRepo struct {
	registers map[uuid.UUID]*model.CashRegister
}

func newStubRegisterRepo() *stubRegisterRepo {
	return &stubRegisterRepo{registers: make(map[uuid.UUID]*model.CashRegister)}
}

func (r *stubRegisterRepo) addRegister(active bool) uuid.UUID {
	id := uuid.New()
	r.registers[id] = &model.CashRegister{ID: id, Number: len(r.registers) + 1, Name: "Till", IsActive: active}
	return id
}

func (r *stubRegisterRepo) Create(_ context.Context, cr *model.CashRegister) error {
	if cr.ID == uuid.Nil {
		cr.ID = uuid.New()
	}
	r.registers[cr.ID] = cr
	return nil
}

func (r *stubRegisterRepo) List(_ context.Context, _ *uuid.UUID) ([]model.CashRegister, error) {
	out := make([]model.CashRegister, 0, len(r.registers))
	for _, cr := range r.registers {
		out = append(out, *cr)
	}
	return out, nil
}

func (r *stubRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	cr, ok := r.registers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cr, nil
}

func (r *stubRegisterRepo) FindActiveByNumber(_ context.Context, _ uuid.UUID, _ int) (*model.CashRegister, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRegisterRepo) Update(_ context.Context, cr *model.CashRegister) error {
	r.registers[cr.ID] = cr
	return nil
}

func (r *stubRegisterRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if cr, ok := r.registers[id]; ok {
		cr.IsActive = false
	}
	return nil
}

// ── Recorder stub ────────────────────────────────────────────────────────────

type stubRecorder struct {
	events []audit.Event
}

func (r *stubRecorder) Record(_ context.Context, ev audit.Event) {
	r.events = append(r.events, ev)
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func newCashFixture() (CashService, *stubCashRepo, *stubRegisterRepo, *stubRecorder) {
	cashRepo := newStubCashRepo()
	registerRepo := newStubRegisterRepo()
	recorder := &stubRecorder{}
	svc := NewCashService(cashRepo, registerRepo, recorder, testThresholds())
	return svc, cashRepo, registerRepo, recorder
}

func openSession(t *testing.T, svc CashService, registerID uuid.UUID, opening string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	operator := uuid.New()
	resp, err := svc.Open(context.Background(), operator, dto.OpenSessionRequest{
		CashRegisterID: registerID.String(),
		OpeningAmount:  d(opening),
	})
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id, operator
}

// ── Open ─────────────────────────────────────────────────────────────────────

func TestOpenSession(t *testing.T) {
	svc, _, registers, recorder := newCashFixture()
	registerID := registers.addRegister(true)

	operator := uuid.New()
	resp, err := svc.Open(context.Background(), operator, dto.OpenSessionRequest{
		CashRegisterID: registerID.String(),
		OpeningAmount:  d("50"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SessionOpen, resp.Status)
	assert.True(t, resp.OpeningAmount.Equal(d("50")))
	assert.Equal(t, operator.String(), resp.OperatorID)
	require.Len(t, recorder.events, 1)
	assert.Equal(t, audit.EventSessionOpened, recorder.events[0].Event)
}

func TestOpenSessionDuplicateRegisterConflicts(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	registerID := registers.addRegister(true)
	openSession(t, svc, registerID, "50")

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		CashRegisterID: registerID.String(),
		OpeningAmount:  d("50"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestOpenSessionIndexViolationMapsToConflict(t *testing.T) {
	// A concurrent open that slips past the pre-check hits the partial unique
	// index; the duplicated-key error must surface as a conflict.
	svc, cashRepo, registers, _ := newCashFixture()
	registerID := registers.addRegister(true)
	cashRepo.createSessionErr = gorm.ErrDuplicatedKey

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		CashRegisterID: registerID.String(),
		OpeningAmount:  d("50"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestOpenSessionRetiredRegisterRejected(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	registerID := registers.addRegister(false)

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		CashRegisterID: registerID.String(),
		OpeningAmount:  d("50"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindBusiness))
}

func TestOpenSessionUnknownRegister(t *testing.T) {
	svc, _, _, _ := newCashFixture()
	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		CashRegisterID: uuid.New().String(),
		OpeningAmount:  d("50"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

// ── Record ───────────────────────────────────────────────────────────────────

func TestRecordWithdrawalStoredNegative(t *testing.T) {
	svc, cashRepo, registers, _ := newCashFixture()
	sessionID, _ := openSession(t, svc, registers.addRegister(true), "100")

	resp, err := svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type:        model.TxWithdrawal,
		Amount:      d("30"),
		Description: "tip payout",
	})
	require.NoError(t, err)
	assert.True(t, resp.Amount.Equal(d("-30")))

	sum, err := cashRepo.SumCashTransactions(context.Background(), sessionID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(d("-30")))
}

func TestRecordZeroAmountRejected(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	sessionID, _ := openSession(t, svc, registers.addRegister(true), "100")

	_, err := svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type:        model.TxSale,
		Amount:      decimal.Zero,
		Description: "void entry",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))
}

func TestRecordOnClosedSessionRejected(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	sessionID, operator := openSession(t, svc, registers.addRegister(true), "100")

	_, err := svc.Close(context.Background(), sessionID, operator, dto.CloseSessionRequest{
		Counts: []dto.CountRow{{Denomination: d("100"), Quantity: 1, Total: d("100")}},
	})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type:        model.TxSale,
		Amount:      d("10"),
		Description: "too late",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindBusiness))
}

func TestRecordAdjustmentKeepsSign(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	sessionID, _ := openSession(t, svc, registers.addRegister(true), "100")

	resp, err := svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type:        model.TxAdjustment,
		Amount:      d("-2.50"),
		Description: "compensating entry for double-rung sale",
	})
	require.NoError(t, err)
	assert.True(t, resp.Amount.Equal(d("-2.50")))
}

// ── Close ────────────────────────────────────────────────────────────────────

func TestCloseSessionComputesCountedAmount(t *testing.T) {
	svc, _, registers, recorder := newCashFixture()
	sessionID, operator := openSession(t, svc, registers.addRegister(true), "50")

	_, err := svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type: model.TxSale, Amount: d("30"), Description: "table 4",
	})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type: model.TxSale, Amount: d("20"), Description: "table 7",
	})
	require.NoError(t, err)

	resp, err := svc.Close(context.Background(), sessionID, operator, dto.CloseSessionRequest{
		Counts: []dto.CountRow{
			{Denomination: d("50"), Quantity: 1, Total: d("50")},
			{Denomination: d("20"), Quantity: 2, Total: d("40")},
			{Denomination: d("10"), Quantity: 1, Total: d("10")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SessionClosed, resp.Session.Status)
	require.NotNil(t, resp.Session.CountedAmount)
	assert.True(t, resp.Session.CountedAmount.Equal(d("100")))
	assert.True(t, resp.Reconciliation.ExpectedCash.Equal(d("100")))
	assert.True(t, resp.Reconciliation.Difference.IsZero())
	assert.Equal(t, ClassNormal, resp.Reconciliation.Classification)

	require.Len(t, recorder.events, 2)
	assert.Equal(t, audit.EventSessionClosed, recorder.events[1].Event)
}

func TestCloseSessionBadCountRowWritesNothing(t *testing.T) {
	svc, cashRepo, registers, _ := newCashFixture()
	sessionID, operator := openSession(t, svc, registers.addRegister(true), "50")

	_, err := svc.Close(context.Background(), sessionID, operator, dto.CloseSessionRequest{
		Counts: []dto.CountRow{
			{Denomination: d("20"), Quantity: 2, Total: d("40")},
			{Denomination: d("10"), Quantity: 3, Total: d("35")}, // 10×3 ≠ 35
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	apiErr := apierror.From(err)
	assert.Contains(t, apiErr.Fields, "counts[1].total")

	// No partial write: session still open, no counts, no close call.
	assert.Zero(t, cashRepo.closeCalls)
	assert.Empty(t, cashRepo.counts[sessionID])
	session, err := cashRepo.FindSessionByID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionOpen, session.Status)
}

func TestCloseAlreadyClosedSessionRejected(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	sessionID, operator := openSession(t, svc, registers.addRegister(true), "50")

	counts := dto.CloseSessionRequest{
		Counts: []dto.CountRow{{Denomination: d("50"), Quantity: 1, Total: d("50")}},
	}
	_, err := svc.Close(context.Background(), sessionID, operator, counts)
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), sessionID, operator, counts)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindBusiness))
}

func TestCloseShortageClassifiedFromLedger(t *testing.T) {
	// opening 100, sales 100 → expected 200; counted 190 is a -5% warning.
	svc, _, registers, _ := newCashFixture()
	sessionID, operator := openSession(t, svc, registers.addRegister(true), "100")

	_, err := svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type: model.TxSale, Amount: d("100"), Description: "dinner service",
	})
	require.NoError(t, err)

	resp, err := svc.Close(context.Background(), sessionID, operator, dto.CloseSessionRequest{
		Counts: []dto.CountRow{{Denomination: d("10"), Quantity: 19, Total: d("190")}},
	})
	require.NoError(t, err)

	assert.True(t, resp.Reconciliation.Difference.Equal(d("-10")))
	assert.True(t, resp.Reconciliation.DifferencePercent.Equal(d("-5")))
	assert.Equal(t, ClassWarning, resp.Reconciliation.Classification)
}

// ── Report / Active ──────────────────────────────────────────────────────────

func TestReportIncludesLedgerAndReconciliation(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	sessionID, operator := openSession(t, svc, registers.addRegister(true), "50")

	_, err := svc.Record(context.Background(), sessionID, dto.RecordTransactionRequest{
		Type: model.TxSale, Amount: d("50"), Description: "lunch",
	})
	require.NoError(t, err)

	// Open session: ledger only, no counts, no reconciliation yet.
	report, err := svc.Report(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, report.Transactions, 1)
	assert.Nil(t, report.Reconciliation)

	_, err = svc.Close(context.Background(), sessionID, operator, dto.CloseSessionRequest{
		Counts: []dto.CountRow{{Denomination: d("100"), Quantity: 1, Total: d("100")}},
	})
	require.NoError(t, err)

	report, err = svc.Report(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, report.Counts, 1)
	require.NotNil(t, report.Reconciliation)
	assert.Equal(t, ClassNormal, report.Reconciliation.Classification)
}

func TestActiveSessionForOperator(t *testing.T) {
	svc, _, registers, _ := newCashFixture()
	sessionID, operator := openSession(t, svc, registers.addRegister(true), "50")

	resp, err := svc.Active(context.Background(), operator)
	require.NoError(t, err)
	assert.Equal(t, sessionID.String(), resp.ID)

	_, err = svc.Active(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
