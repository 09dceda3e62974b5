package worker

// notify_worker.go
// Delivers treasury notifications from QueueNotify. When a supervisor
// transfers a session's cash, the treasurer gets an email with the expected
// amount so the physical hand-off can be checked against it.

import (
	"context"
	"encoding/json"
	"fmt"

	"restopos/internal/dto"
	"restopos/internal/infra"

	"github.com/rs/zerolog/log"
)

// TransferNotifyPayload is the job envelope sent to QueueNotify.
type TransferNotifyPayload struct {
	TransferID     string `json:"transfer_id"`
	SessionID      string `json:"session_id"`
	ExpectedAmount string `json:"expected_amount"`
	CreatedAt      string `json:"created_at"`
}

// QueueNotifier enqueues transfer notifications for async delivery. It is the
// production implementation of the treasury service's Notifier collaborator.
type QueueNotifier struct {
	dispatcher *Dispatcher
}

func NewQueueNotifier(dispatcher *Dispatcher) *QueueNotifier {
	return &QueueNotifier{dispatcher: dispatcher}
}

func (n *QueueNotifier) TransferCreated(ctx context.Context, t dto.TransferResponse) {
	payload := TransferNotifyPayload{
		TransferID:     t.ID,
		SessionID:      t.SessionID,
		ExpectedAmount: t.ExpectedAmount.StringFixed(2),
		CreatedAt:      t.CreatedAt,
	}
	if err := n.dispatcher.EnqueueNotify(ctx, payload); err != nil {
		// Best effort — the transfer itself already committed.
		log.Warn().Err(err).Str("transfer_id", t.ID).Msg("notify: enqueue failed")
	}
}

// NotifyWorker sends the queued notifications over SMTP.
type NotifyWorker struct {
	mailer *infra.Mailer
	to     string
}

func NewNotifyWorker(mailer *infra.Mailer, treasuryEmail string) *NotifyWorker {
	return &NotifyWorker{mailer: mailer, to: treasuryEmail}
}

func (w *NotifyWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload TransferNotifyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if w.to == "" {
		log.Warn().Msg("notify_worker: no treasury email configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Cash transfer pending: $%s", payload.ExpectedAmount)
	body := fmt.Sprintf(
		"A cash transfer is awaiting your confirmation.\n\n"+
			"Transfer:  %s\nSession:   %s\nExpected:  $%s\nCreated:   %s\n\n"+
			"Count the cash and confirm the received amount in the back office.",
		payload.TransferID, payload.SessionID, payload.ExpectedAmount, payload.CreatedAt,
	)

	if err := w.mailer.Send(w.to, subject, body, ""); err != nil {
		return err
	}
	log.Info().Str("transfer_id", payload.TransferID).Msg("notify_worker: treasury notified")
	return nil
}
