package worker

// audit_worker.go
// Persists audit events dequeued from QueueAudit. Events are logged
// synchronously by the audit sink at record time; this worker only owns the
// durable copy, so a failure here never touched the business operation.

import (
	"context"
	"encoding/json"

	"restopos/internal/audit"
	"restopos/internal/model"
	"restopos/internal/repository"
)

type AuditWorker struct {
	repo repository.AuditRepository
}

func NewAuditWorker(repo repository.AuditRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

// Process writes one audit event as an append-only row.
func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var ev audit.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		// Malformed payloads are not retriable; let the pool count it out.
		return err
	}

	entry := &model.AuditEntry{
		Event:      ev.Event,
		SessionID:  ev.SessionID,
		TransferID: ev.TransferID,
		Amount:     ev.Amount,
		ActorID:    ev.ActorID,
		OccurredAt: ev.OccurredAt,
	}
	return w.repo.Create(ctx, entry)
}
