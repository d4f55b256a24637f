// Package session implements the interview session state machine: a
// per-candidate controller that walks a fixed question sequence under a
// per-question countdown, scores answers through an external gateway, and
// persists a snapshot after every mutation so an interrupted interview can be
// resumed. The manager on top implements the continue-or-discard recovery
// protocol.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/model"
)

// Sentinel errors surfaced to callers. Gateway failures are recoverable: the
// question stays active and the same answer may be retried.
var (
	ErrNoQuestions        = errors.New("question set is empty")
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrStaleSubmission    = errors.New("submission targets an already answered question")
	ErrSessionCompleted   = errors.New("session is already completed")
	ErrSessionClosed      = errors.New("session is closed")
	ErrScoringUnavailable = errors.New("scoring gateway unavailable")
	ErrNoRecoveryPending  = errors.New("no recovery decision pending")
	ErrRecoveryPending    = errors.New("recovery decision pending")
)

// Scorer scores one (question, answer) pair within a bounded range.
type Scorer interface {
	ScoreAnswer(ctx context.Context, question, answer string) (int, error)
}

// Summarizer produces a short natural-language summary of a full transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript []model.AnswerRecord) (string, error)
}

// SnapshotStore is the durable session store keyed by candidate ID.
// Get returns (nil, nil) when no snapshot exists.
type SnapshotStore interface {
	Get(ctx context.Context, candidateID uuid.UUID) (*model.SessionState, error)
	Put(ctx context.Context, state *model.SessionState) error
	Delete(ctx context.Context, candidateID uuid.UUID) error
	ListIncomplete(ctx context.Context) ([]uuid.UUID, error)
}

// ProjectionSink receives registry projection updates after each persisted
// mutation. Implementations must not block the controller for long.
type ProjectionSink interface {
	Enqueue(ctx context.Context, p *model.ProjectionUpdate) error
}

// Ticker delivers countdown ticks. Abstracted so tests can drive the clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a fresh ticker for each active question.
type TickerFactory func() Ticker

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

func newRealTicker() Ticker {
	return &realTicker{t: time.NewTicker(time.Second)}
}

// Config carries the session knobs from application configuration.
type Config struct {
	ScoreMin             int
	ScoreMax             int
	AllowEmptyAutoSubmit bool
	GatewayTimeout       time.Duration
	// NewTicker overrides the per-second countdown source. Nil selects a
	// real 1s ticker.
	NewTicker TickerFactory
}

func (c Config) neutralScore() int {
	return (c.ScoreMin + c.ScoreMax) / 2
}

func (c Config) tickerFactory() TickerFactory {
	if c.NewTicker != nil {
		return c.NewTicker
	}
	return newRealTicker
}

// EventType enumerates controller events published to stream subscribers.
type EventType string

const (
	EventTick      EventType = "tick"
	EventAnswer    EventType = "answer"
	EventCompleted EventType = "completed"
	EventSummary   EventType = "summary"
)

// Event is one controller notification: a countdown tick, a recorded answer,
// session completion, or the late-arriving summary.
type Event struct {
	Type             EventType `json:"type"`
	QuestionIndex    int       `json:"question_index"`
	RemainingSeconds int       `json:"remaining_seconds"`
	Auto             bool      `json:"auto,omitempty"`
	Score            *int      `json:"score,omitempty"`
	FinalScore       *int      `json:"final_score,omitempty"`
	Summary          string    `json:"summary,omitempty"`
}
