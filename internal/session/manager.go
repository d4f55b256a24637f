package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/rs/zerolog"
)

// Manager owns every live controller and implements the recovery protocol:
// on attach it checks the snapshot store exactly once and either starts a
// controller directly or parks the snapshot behind a continue-or-discard
// decision.
type Manager struct {
	cfg        Config
	scorer     Scorer
	summarizer Summarizer
	store      SnapshotStore
	sink       ProjectionSink
	log        zerolog.Logger

	mu          sync.Mutex
	controllers map[uuid.UUID]*Controller
	pending     map[uuid.UUID]*model.SessionState
}

// NewManager creates a session manager.
func NewManager(
	cfg Config,
	scorer Scorer,
	summarizer Summarizer,
	store SnapshotStore,
	sink ProjectionSink,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		cfg:         cfg,
		scorer:      scorer,
		summarizer:  summarizer,
		store:       store,
		sink:        sink,
		log:         log.With().Str("component", "session_manager").Logger(),
		controllers: make(map[uuid.UUID]*Controller),
		pending:     make(map[uuid.UUID]*model.SessionState),
	}
}

// ListIncompleteSessions returns the candidates with resumable snapshots.
// Called once at startup; the result is the exact set needing recovery
// prompts, no key scanning involved.
func (m *Manager) ListIncompleteSessions(ctx context.Context) ([]uuid.UUID, error) {
	return m.store.ListIncomplete(ctx)
}

// QuestionProvider supplies the question set for a fresh session start. It is
// only invoked when no resumable snapshot or live controller exists, so an
// expensive AI generation is not paid on every attach.
type QuestionProvider func(ctx context.Context) ([]model.QuestionDescriptor, error)

// Attach activates a candidate's session. Outcomes:
//   - a live or newly started controller (recovery == nil), or
//   - a pending recovery snapshot (controller == nil): the caller must
//     resolve continue-or-discard via Resolve before any submission.
//
// The snapshot check happens once per activation; repeated Attach calls while
// a decision is pending return the same snapshot without re-querying.
func (m *Manager) Attach(ctx context.Context, candidateID uuid.UUID, questions QuestionProvider) (*Controller, *model.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctrl, ok := m.controllers[candidateID]; ok {
		return ctrl, nil, nil
	}
	if snap, ok := m.pending[candidateID]; ok {
		clone := snap.Clone()
		return nil, &clone, nil
	}

	snap, err := m.store.Get(ctx, candidateID)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}

	if snap != nil {
		if verr := snap.Validate(); verr != nil {
			// Corrupt snapshot: fatal for this session only. Discard and
			// fall through to a fresh start.
			m.log.Error().Err(verr).Str("candidate_id", candidateID.String()).Msg("discarding corrupt snapshot")
			if derr := m.store.Delete(ctx, candidateID); derr != nil {
				return nil, nil, fmt.Errorf("delete corrupt snapshot: %w", derr)
			}
			snap = nil
		} else if snap.Completed {
			// Already finished: no prompt, attach in the terminal state.
			ctrl := m.startLocked(snap)
			return ctrl, nil, nil
		} else if snap.Resumable() {
			m.pending[candidateID] = snap
			clone := snap.Clone()
			return nil, &clone, nil
		} else {
			// Zero answers: nothing worth resuming.
			snap = nil
		}
	}

	state, err := m.freshLocked(ctx, candidateID, questions)
	if err != nil {
		return nil, nil, err
	}
	return m.startLocked(state), nil, nil
}

// Resolve applies the continue-or-discard decision for a pending recovery.
func (m *Manager) Resolve(ctx context.Context, candidateID uuid.UUID, resume bool) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.pending[candidateID]
	if !ok {
		return nil, ErrNoRecoveryPending
	}
	delete(m.pending, candidateID)

	if resume {
		// Restore index, answers, and countdown; answered questions are
		// never re-scored.
		return m.startLocked(snap), nil
	}

	if err := m.store.Delete(ctx, candidateID); err != nil {
		return nil, fmt.Errorf("discard snapshot: %w", err)
	}
	state, err := m.freshLocked(ctx, candidateID, func(context.Context) ([]model.QuestionDescriptor, error) {
		// A discarded session restarts over the same question set.
		return snap.Questions, nil
	})
	if err != nil {
		return nil, err
	}
	return m.startLocked(state), nil
}

// Get returns the live controller for a candidate, if any. A pending
// recovery yields ErrRecoveryPending so callers surface the prompt instead
// of a generic missing-session error.
func (m *Manager) Get(candidateID uuid.UUID) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctrl, ok := m.controllers[candidateID]; ok {
		return ctrl, nil
	}
	if _, ok := m.pending[candidateID]; ok {
		return nil, ErrRecoveryPending
	}
	return nil, ErrSessionClosed
}

// PendingRecovery returns the parked snapshot awaiting a decision, if any.
func (m *Manager) PendingRecovery(candidateID uuid.UUID) (*model.SessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.pending[candidateID]
	if !ok {
		return nil, false
	}
	clone := snap.Clone()
	return &clone, true
}

// ResetAll invalidates every live session and pending recovery. Durable state
// is cleared by the caller (registry + snapshot store); an active candidate
// sees their session close, not a crash.
func (m *Manager) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, ctrl := range m.controllers {
		ctrl.Close()
		delete(m.controllers, id)
	}
	for id := range m.pending {
		delete(m.pending, id)
	}
}

// Shutdown closes all controllers. Snapshots persist, so incomplete sessions
// surface as recovery prompts on the next start.
func (m *Manager) Shutdown() {
	m.ResetAll()
}

func (m *Manager) freshLocked(ctx context.Context, candidateID uuid.UUID, provider QuestionProvider) (*model.SessionState, error) {
	questions, err := provider(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	state := model.NewSessionState(candidateID, questions)
	if err := m.store.Put(ctx, state); err != nil {
		return nil, fmt.Errorf("persist fresh session: %w", err)
	}
	return state, nil
}

func (m *Manager) startLocked(state *model.SessionState) *Controller {
	ctrl := newController(m.cfg, m.scorer, m.summarizer, m.store, m.sink, m.log, state)
	m.controllers[state.CandidateID] = ctrl
	return ctrl
}
