package worker

// email_worker.go
// Processes receipt email jobs from QueueEmail: renders the receipt to PDF and
// sends it to the customer through SMTP, behind the circuit breaker so a downed
// relay fails fast instead of stalling the pool.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vetpos/internal/infra"
	"vetpos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxEmailAttempts = 3

type EmailWorker struct {
	receipts       repository.ReceiptRepository
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	rdb            *redis.Client
	pdfStoragePath string
}

func NewEmailWorker(
	receipts repository.ReceiptRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
	pdfStoragePath string,
) *EmailWorker {
	return &EmailWorker{
		receipts:       receipts,
		mailer:         mailer,
		cb:             cb,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process renders the receipt PDF and emails it. Failed sends are retried with
// exponential backoff; a job that exhausts its attempts goes to the DLQ.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.Email == "" {
		log.Warn().Msg("email_worker: empty email — skipping")
		return
	}

	receiptID, err := uuid.Parse(payload.ReceiptID)
	if err != nil {
		log.Error().Str("receipt_id", payload.ReceiptID).Msg("email_worker: invalid receipt_id")
		return
	}

	rec, err := w.receipts.FindByID(ctx, receiptID)
	if err != nil {
		log.Error().Err(err).Str("receipt_id", payload.ReceiptID).Msg("email_worker: receipt not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(rec, w.pdfStoragePath)
	if err != nil {
		log.Warn().Err(err).Str("receipt_id", payload.ReceiptID).Msg("email_worker: PDF generation failed, sending without attachment")
		pdfPath = ""
	}

	subject := fmt.Sprintf("VetPOS — Receipt No. %d", rec.Number)
	body := fmt.Sprintf("Attached is your receipt.\nTotal: $%s", rec.TotalPrice.StringFixed(2))

	sendErr := withRetry(ctx, maxEmailAttempts, func(attempt int) error {
		return w.cb.Execute(func() error {
			return w.mailer.Send(payload.Email, subject, body, pdfPath)
		})
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("to", payload.Email).Msg("email_worker: failed after all attempts")
		SendToDLQ(ctx, w.rdb, QueueEmail, "receipt_email", raw, sendErr.Error(), maxEmailAttempts)
		return
	}
	log.Info().Str("to", payload.Email).Int("receipt_number", rec.Number).Msg("email_worker: receipt sent")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
