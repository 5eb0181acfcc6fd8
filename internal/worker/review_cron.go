package worker

// review_cron.go
// Background goroutine that enqueues the yearly membership review on January 1.
// A Redis SETNX guard makes the trigger exactly-once across server replicas;
// the key carries a long TTL so a stuck run can be re-armed manually.

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	reviewCronTick = 1 * time.Hour
	reviewGuardTTL = 40 * 24 * time.Hour
)

// StartReviewCron launches a goroutine that ticks hourly and, on January 1,
// enqueues a review of the year that just ended. It respects the context for
// graceful shutdown.
func StartReviewCron(ctx context.Context, rdb *redis.Client, dispatcher *Dispatcher) {
	go func() {
		ticker := time.NewTicker(reviewCronTick)
		defer ticker.Stop()

		log.Info().Msg("review_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("review_cron: shutting down")
				return
			case <-ticker.C:
				maybeTrigger(ctx, rdb, dispatcher, time.Now())
			}
		}
	}()
}

func maybeTrigger(ctx context.Context, rdb *redis.Client, dispatcher *Dispatcher, now time.Time) {
	if now.Month() != time.January || now.Day() != 1 {
		return
	}
	reviewYear := now.Year() - 1

	guardKey := fmt.Sprintf("review:triggered:%d", reviewYear)
	ok, err := rdb.SetNX(ctx, guardKey, now.UTC().Format(time.RFC3339), reviewGuardTTL).Result()
	if err != nil {
		log.Error().Err(err).Msg("review_cron: guard check failed")
		return
	}
	if !ok {
		return // another replica already triggered this year's review
	}

	if err := dispatcher.EnqueueReview(ctx, ReviewJobPayload{Year: strconv.Itoa(reviewYear)}); err != nil {
		log.Error().Err(err).Int("year", reviewYear).Msg("review_cron: enqueue failed")
		// Release the guard so the next tick retries.
		_ = rdb.Del(ctx, guardKey).Err()
		return
	}
	log.Info().Int("year", reviewYear).Msg("review_cron: yearly review enqueued")
}
