package worker

// review_worker.go
// Processes membership review jobs from QueueReview. The heavy lifting lives in
// the review service; this worker parses the job, runs the review, and emails
// the summary to the operations address when one is configured.

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"vetpos/internal/dto"
	"vetpos/internal/infra"

	"github.com/rs/zerolog/log"
)

// reviewRunner is the slice of the review service this worker consumes. The
// service layer enqueues jobs through this package, so the worker side must
// not import it back.
type reviewRunner interface {
	Run(ctx context.Context, year int) (*dto.ReviewResult, error)
}

type ReviewWorker struct {
	review      reviewRunner
	mailer      *infra.Mailer
	reportEmail string
}

func NewReviewWorker(review reviewRunner, mailer *infra.Mailer, reportEmail string) *ReviewWorker {
	return &ReviewWorker{review: review, mailer: mailer, reportEmail: reportEmail}
}

func (w *ReviewWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReviewJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("review_worker: invalid payload")
		return
	}
	year, err := strconv.Atoi(payload.Year)
	if err != nil {
		log.Error().Str("year", payload.Year).Msg("review_worker: invalid year")
		return
	}

	result, err := w.review.Run(ctx, year)
	if err != nil {
		log.Error().Err(err).Int("year", year).Msg("review_worker: review run failed")
		return
	}

	if w.reportEmail == "" {
		return
	}
	body := fmt.Sprintf(
		"Membership review for %d finished.\n\nCustomers reviewed: %d\nUpgraded: %d\nMaintained: %d\nDowngraded: %d\nFailed: %d\n",
		year,
		result.Summary.TotalCustomers,
		result.Summary.TotalUpgrades,
		result.Summary.TotalMaintained,
		result.Summary.TotalDowngrades,
		result.Summary.TotalFailures,
	)
	subject := fmt.Sprintf("VetPOS — Membership review %d", year)
	if err := w.mailer.Send(w.reportEmail, subject, body, ""); err != nil {
		log.Warn().Err(err).Str("to", w.reportEmail).Msg("review_worker: summary email failed")
	}
}
