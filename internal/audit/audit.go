// Package audit implements the structured audit sink for cash operations.
// Every lifecycle step (open, close, transfer, receipt) records an event.
// The sink is strictly best-effort: it logs synchronously and hands the event
// to an enqueue function for async persistence, and a failure in either path
// must never abort the business operation that produced the event.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Event names.
const (
	EventSessionOpened    = "session_opened"
	EventSessionClosed    = "session_closed"
	EventTransferCreated  = "transfer_created"
	EventReceiptConfirmed = "receipt_confirmed"
)

type Event struct {
	Event      string           `json:"event"`
	SessionID  *uuid.UUID       `json:"session_id,omitempty"`
	TransferID *uuid.UUID       `json:"transfer_id,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	ActorID    uuid.UUID        `json:"actor_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Recorder is the collaborator contract services depend on.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Sink logs each event and forwards it to enqueue for async persistence.
type Sink struct {
	enqueue func(ctx context.Context, ev Event) error
}

// NewSink builds a sink. enqueue may be nil (log-only mode, used in tests
// and the seed commands).
func NewSink(enqueue func(ctx context.Context, ev Event) error) *Sink {
	return &Sink{enqueue: enqueue}
}

func (s *Sink) Record(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	evt := log.Info().
		Str("event", ev.Event).
		Str("actor_id", ev.ActorID.String()).
		Time("occurred_at", ev.OccurredAt)
	if ev.SessionID != nil {
		evt = evt.Str("session_id", ev.SessionID.String())
	}
	if ev.TransferID != nil {
		evt = evt.Str("transfer_id", ev.TransferID.String())
	}
	if ev.Amount != nil {
		evt = evt.Str("amount", ev.Amount.StringFixed(2))
	}
	evt.Msg("audit")

	if s.enqueue == nil {
		return
	}
	if err := s.enqueue(ctx, ev); err != nil {
		// Best effort only — the business operation already succeeded.
		log.Warn().Err(err).Str("event", ev.Event).Msg("audit: enqueue failed")
	}
}
