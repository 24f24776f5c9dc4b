package worker

// retry_cron.go
// Background goroutine that periodically drains the notification DLQ back
// into the live queue once the SMTP circuit breaker has recovered. Alerts
// that died while the relay was down get a second life instead of waiting
// for manual intervention.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	CB  *infra.CircuitBreaker
	RDB *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s and,
// while the circuit is closed, requeues dead-lettered notification jobs.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is not closed, skip entirely — don't hammer a downed relay
	if cfg.CB.State() != infra.CBClosed {
		log.Debug().Msg("retry_cron: circuit breaker not closed, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueNotificaciones
	requeued := 0
	for i := 0; i < retryBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err != nil {
			break // empty DLQ or redis error; next tick retries
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("retry_cron: corrupt DLQ entry dropped")
			continue
		}

		// Attempts reset to zero: the failure belonged to the outage,
		// not the job.
		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to marshal requeued job")
			continue
		}
		if err := cfg.RDB.LPush(ctx, QueueNotificaciones, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to requeue job")
			continue
		}
		requeued++
	}

	if requeued > 0 {
		log.Info().Int("count", requeued).Msg("retry_cron: DLQ jobs requeued")
	}
}
