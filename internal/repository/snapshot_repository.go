package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/config"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/redis/go-redis/v9"
)

// SnapshotRepository is the durable session snapshot store, keyed by candidate
// ID with last-write-wins semantics. Alongside each snapshot it maintains an
// index set of incomplete sessions so recovery checks are an explicit query
// instead of a scan over all keys.
type SnapshotRepository struct {
	rdb *redis.Client
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(rdb *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{rdb: rdb}
}

// Get retrieves a candidate's snapshot. Returns (nil, nil) when absent.
func (r *SnapshotRepository) Get(ctx context.Context, candidateID uuid.UUID) (*model.SessionState, error) {
	raw, err := r.rdb.Get(ctx, config.CacheKey.SessionSnapshotKey(candidateID.String())).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var state model.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &state, nil
}

// Put serializes and stores a snapshot, keeping the incomplete-sessions index
// in sync: a session enters the index once it has answers and leaves it on
// completion.
func (r *SnapshotRepository) Put(ctx context.Context, state *model.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	id := state.CandidateID.String()
	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.SessionSnapshotKey(id), raw, 0)
	pipe.SAdd(ctx, config.CacheKey.SessionsIndexKey(), id)
	if state.Resumable() {
		pipe.SAdd(ctx, config.CacheKey.IncompleteSessionsKey(), id)
	} else {
		pipe.SRem(ctx, config.CacheKey.IncompleteSessionsKey(), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// Delete removes a candidate's snapshot and its index entry.
func (r *SnapshotRepository) Delete(ctx context.Context, candidateID uuid.UUID) error {
	id := candidateID.String()
	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.SessionSnapshotKey(id))
	pipe.SRem(ctx, config.CacheKey.SessionsIndexKey(), id)
	pipe.SRem(ctx, config.CacheKey.IncompleteSessionsKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// ListIncomplete returns the candidate IDs whose sessions are resumable.
// Called once at startup to seed recovery prompts.
func (r *SnapshotRepository) ListIncomplete(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.rdb.SMembers(ctx, config.CacheKey.IncompleteSessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list incomplete sessions: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			// Skip malformed index entries rather than failing startup.
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteAll clears every snapshot and the incomplete index. Used by the
// interviewer reset action together with CandidateRepository.DeleteAll.
func (r *SnapshotRepository) DeleteAll(ctx context.Context) error {
	members, err := r.rdb.SMembers(ctx, config.CacheKey.SessionsIndexKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list snapshots for reset: %w", err)
	}

	pipe := r.rdb.Pipeline()
	for _, m := range members {
		pipe.Del(ctx, config.CacheKey.SessionSnapshotKey(m))
	}
	pipe.Del(ctx, config.CacheKey.SessionsIndexKey())
	pipe.Del(ctx, config.CacheKey.IncompleteSessionsKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("reset snapshots: %w", err)
	}
	return nil
}
