package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirewise/interview-assistant/internal/config"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/redis/go-redis/v9"
)

// ProjectionQueue pushes candidate projection updates onto the Redis list
// drained by the projection worker. The push happens after the in-memory
// mutation it reflects, so the registry never gets ahead of session state.
type ProjectionQueue struct {
	rdb *redis.Client
}

// NewProjectionQueue creates a new ProjectionQueue.
func NewProjectionQueue(rdb *redis.Client) *ProjectionQueue {
	return &ProjectionQueue{rdb: rdb}
}

// Enqueue appends a projection update to the queue.
func (q *ProjectionQueue) Enqueue(ctx context.Context, p *model.ProjectionUpdate) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode projection: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistProjectionsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue projection: %w", err)
	}
	return nil
}
