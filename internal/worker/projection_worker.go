package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hirewise/interview-assistant/internal/config"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/hirewise/interview-assistant/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ProjectionWorker consumes the projection queue and writes candidate status,
// final score, and summary to PostgreSQL. Session controllers never touch
// Postgres directly; every registry write flows through here.
type ProjectionWorker struct {
	candidateRepo *repository.CandidateRepository
	rdb           *redis.Client
	log           zerolog.Logger
}

// NewProjectionWorker creates a new ProjectionWorker.
func NewProjectionWorker(candidateRepo *repository.CandidateRepository, rdb *redis.Client, log zerolog.Logger) *ProjectionWorker {
	return &ProjectionWorker{
		candidateRepo: candidateRepo,
		rdb:           rdb,
		log:           log.With().Str("component", "projection_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ProjectionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ProjectionWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistProjectionsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var update model.ProjectionUpdate
	if err := json.Unmarshal([]byte(result[1]), &update); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.candidateRepo.UpdateProjection(ctx, &update); err != nil {
		w.log.Error().Err(err).
			Str("candidate_id", update.CandidateID.String()).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistProjectionsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

// drain processes all remaining items in the queue before shutdown.
func (w *ProjectionWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistProjectionsQueue).Result()
		if err != nil {
			break
		}

		var update model.ProjectionUpdate
		if err := json.Unmarshal([]byte(result), &update); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.candidateRepo.UpdateProjection(ctx, &update); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistProjectionsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
