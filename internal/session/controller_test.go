package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Fakes ──────────────────────────────────────────────────────────

// manualTicker shares one channel across timer restarts so tests can drive
// the countdown tick by tick.
type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) factory() TickerFactory {
	return func() Ticker { return m }
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

func (m *manualTicker) fire(n int) {
	for i := 0; i < n; i++ {
		m.ch <- time.Now()
	}
}

type fakeScorer struct {
	mu     sync.Mutex
	scores []int
	err    error
	calls  int
}

func (f *fakeScorer) ScoreAnswer(ctx context.Context, question, answer string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	score := f.scores[f.calls%len(f.scores)]
	f.calls++
	return score, nil
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSummarizer struct {
	mu      sync.Mutex
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript []model.AnswerRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type memStore struct {
	mu    sync.Mutex
	snaps map[uuid.UUID]model.SessionState
	puts  int
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[uuid.UUID]model.SessionState)}
}

func (s *memStore) Get(ctx context.Context, id uuid.UUID) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[id]
	if !ok {
		return nil, nil
	}
	clone := snap.Clone()
	return &clone, nil
}

func (s *memStore) Put(ctx context.Context, state *model.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[state.CandidateID] = state.Clone()
	s.puts++
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
	return nil
}

func (s *memStore) ListIncomplete(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, snap := range s.snaps {
		if snap.Resumable() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memStore) get(id uuid.UUID) (model.SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[id]
	return snap, ok
}

type memSink struct {
	mu      sync.Mutex
	updates []model.ProjectionUpdate
}

func (s *memSink) Enqueue(ctx context.Context, p *model.ProjectionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, *p)
	return nil
}

func (s *memSink) last() (model.ProjectionUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return model.ProjectionUpdate{}, false
	}
	return s.updates[len(s.updates)-1], true
}

// ─── Helpers ────────────────────────────────────────────────────────

func testQuestions() []model.QuestionDescriptor {
	return []model.QuestionDescriptor{
		{Text: "q0", Difficulty: model.DifficultyEasy, AllottedSeconds: 20},
		{Text: "q1", Difficulty: model.DifficultyEasy, AllottedSeconds: 20},
		{Text: "q2", Difficulty: model.DifficultyMedium, AllottedSeconds: 60},
		{Text: "q3", Difficulty: model.DifficultyMedium, AllottedSeconds: 60},
		{Text: "q4", Difficulty: model.DifficultyHard, AllottedSeconds: 120},
		{Text: "q5", Difficulty: model.DifficultyHard, AllottedSeconds: 120},
	}
}

type fixture struct {
	ctrl   *Controller
	ticker *manualTicker
	scorer *fakeScorer
	summ   *fakeSummarizer
	store  *memStore
	sink   *memSink
	id     uuid.UUID
}

func newFixture(t *testing.T, scorer *fakeScorer, summ *fakeSummarizer, questions []model.QuestionDescriptor) *fixture {
	t.Helper()

	ticker := newManualTicker()
	store := newMemStore()
	sink := &memSink{}
	id := uuid.New()

	cfg := Config{
		ScoreMin:       0,
		ScoreMax:       5,
		GatewayTimeout: time.Second,
		NewTicker:      ticker.factory(),
	}

	state := model.NewSessionState(id, questions)
	ctrl := newController(cfg, scorer, summ, store, sink, zerolog.Nop(), state)
	t.Cleanup(ctrl.Close)

	return &fixture{ctrl: ctrl, ticker: ticker, scorer: scorer, summ: summ, store: store, sink: sink, id: id}
}

func (f *fixture) waitForState(t *testing.T, cond func(model.SessionState) bool) model.SessionState {
	t.Helper()
	var last model.SessionState
	require.Eventually(t, func() bool {
		state, err := f.ctrl.State(context.Background())
		if err != nil {
			return false
		}
		last = state
		return cond(state)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestSubmitAdvancesThroughAllQuestions(t *testing.T) {
	scorer := &fakeScorer{scores: []int{4, 5, 3, 5, 4, 3}}
	f := newFixture(t, scorer, &fakeSummarizer{summary: "ok"}, testQuestions())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		state, err := f.ctrl.SubmitAnswer(ctx, "answer", i)
		require.NoError(t, err)
		assert.Equal(t, i+1, state.CurrentIndex)
		assert.Len(t, state.Answers, i+1)
		if i < 5 {
			assert.Equal(t, state.Questions[i+1].AllottedSeconds, state.RemainingSeconds)
			assert.False(t, state.Completed)
		}
	}

	state, err := f.ctrl.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.Completed)
	require.NotNil(t, state.FinalScore)
	// mean(4,5,3,5,4,3) = 4.0
	assert.Equal(t, 4, *state.FinalScore)
}

func TestFinalScoreRoundsHalfUp(t *testing.T) {
	questions := testQuestions()[:2]
	scorer := &fakeScorer{scores: []int{3, 4}}
	f := newFixture(t, scorer, &fakeSummarizer{summary: "ok"}, questions)
	ctx := context.Background()

	_, err := f.ctrl.SubmitAnswer(ctx, "a", 0)
	require.NoError(t, err)
	state, err := f.ctrl.SubmitAnswer(ctx, "b", 1)
	require.NoError(t, err)

	require.NotNil(t, state.FinalScore)
	assert.Equal(t, 4, *state.FinalScore) // mean 3.5 rounds up
}

func TestTimerAutoSubmitsStagedText(t *testing.T) {
	scorer := &fakeScorer{scores: []int{5}}
	f := newFixture(t, scorer, &fakeSummarizer{summary: "ok"}, testQuestions())
	ctx := context.Background()

	require.NoError(t, f.ctrl.Stage(ctx, "half-typed thought"))
	f.ticker.fire(20)

	state := f.waitForState(t, func(s model.SessionState) bool { return s.CurrentIndex == 1 })
	require.Len(t, state.Answers, 1)
	assert.Equal(t, "half-typed thought", state.Answers[0].Answer)
	assert.Equal(t, 1, scorer.callCount())
	assert.Equal(t, 20, state.RemainingSeconds)
	assert.False(t, state.Completed)
}

func TestEmptyAutoSubmitSeedsFloorScore(t *testing.T) {
	scorer := &fakeScorer{scores: []int{5}}
	f := newFixture(t, scorer, &fakeSummarizer{summary: "ok"}, testQuestions())

	f.ticker.fire(20)

	state := f.waitForState(t, func(s model.SessionState) bool { return s.CurrentIndex == 1 })
	require.Len(t, state.Answers, 1)
	assert.Equal(t, "", state.Answers[0].Answer)
	require.NotNil(t, state.Answers[0].Score)
	assert.Equal(t, 0, *state.Answers[0].Score)
	// The empty answer never reaches the scoring gateway.
	assert.Equal(t, 0, scorer.callCount())
}

func TestEmptyManualSubmitRejected(t *testing.T) {
	f := newFixture(t, &fakeScorer{scores: []int{5}}, &fakeSummarizer{summary: "ok"}, testQuestions())

	_, err := f.ctrl.SubmitAnswer(context.Background(), "   ", 0)
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	state, err := f.ctrl.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Answers)
}

func TestStaleSubmissionRejected(t *testing.T) {
	f := newFixture(t, &fakeScorer{scores: []int{5}}, &fakeSummarizer{summary: "ok"}, testQuestions())
	ctx := context.Background()

	_, err := f.ctrl.SubmitAnswer(ctx, "first", 0)
	require.NoError(t, err)

	// A late submit for the already-answered question is rejected, not
	// recorded against the next question.
	_, err = f.ctrl.SubmitAnswer(ctx, "late", 0)
	assert.ErrorIs(t, err, ErrStaleSubmission)

	state, err := f.ctrl.State(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Answers, 1)
}

func TestCompletedSessionRejectsSubmissions(t *testing.T) {
	questions := testQuestions()[:1]
	f := newFixture(t, &fakeScorer{scores: []int{5}}, &fakeSummarizer{summary: "ok"}, questions)
	ctx := context.Background()

	state, err := f.ctrl.SubmitAnswer(ctx, "only answer", 0)
	require.NoError(t, err)
	require.True(t, state.Completed)

	_, err = f.ctrl.SubmitAnswer(ctx, "extra", 1)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestScoringFailureKeepsQuestionActive(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("gateway down")}
	f := newFixture(t, scorer, &fakeSummarizer{summary: "ok"}, testQuestions())
	ctx := context.Background()

	_, err := f.ctrl.SubmitAnswer(ctx, "my answer", 0)
	assert.ErrorIs(t, err, ErrScoringUnavailable)

	// Nothing recorded; the same answer can be retried.
	state, err := f.ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Answers)

	scorer.mu.Lock()
	scorer.err = nil
	scorer.scores = []int{4}
	scorer.mu.Unlock()

	state, err = f.ctrl.SubmitAnswer(ctx, "my answer", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)
}

func TestScoringFailureOnAutoSubmitSeedsNeutralScore(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("gateway down")}
	f := newFixture(t, scorer, &fakeSummarizer{summary: "ok"}, testQuestions())

	require.NoError(t, f.ctrl.Stage(context.Background(), "staged"))
	f.ticker.fire(20)

	// The auto-submit cannot be retried by anyone, so the session moves on
	// with the neutral midpoint score.
	state := f.waitForState(t, func(s model.SessionState) bool { return s.CurrentIndex == 1 })
	require.NotNil(t, state.Answers[0].Score)
	assert.Equal(t, 2, *state.Answers[0].Score) // midpoint of 0..5
}

func TestSummaryFailureDoesNotAffectCompletion(t *testing.T) {
	questions := testQuestions()[:1]
	summ := &fakeSummarizer{err: errors.New("summary down")}
	f := newFixture(t, &fakeScorer{scores: []int{5}}, summ, questions)
	ctx := context.Background()

	state, err := f.ctrl.SubmitAnswer(ctx, "answer", 0)
	require.NoError(t, err)
	assert.True(t, state.Completed)
	require.NotNil(t, state.FinalScore)
	assert.Equal(t, 5, *state.FinalScore)

	// Give the summary goroutine a moment to fail; completion must hold.
	time.Sleep(50 * time.Millisecond)
	state, err = f.ctrl.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.Completed)
	assert.Empty(t, state.Summary)
}

func TestSummaryArrivesAfterCompletion(t *testing.T) {
	questions := testQuestions()[:1]
	f := newFixture(t, &fakeScorer{scores: []int{5}}, &fakeSummarizer{summary: "strong candidate"}, questions)
	ctx := context.Background()

	_, err := f.ctrl.SubmitAnswer(ctx, "answer", 0)
	require.NoError(t, err)

	state := f.waitForState(t, func(s model.SessionState) bool { return s.Summary != "" })
	assert.Equal(t, "strong candidate", state.Summary)

	// The summary reaches the registry projection too.
	update, ok := f.sink.last()
	require.True(t, ok)
	assert.Equal(t, "strong candidate", update.Summary)
	assert.Equal(t, model.CandidateStatusCompleted, update.Status)
}

func TestSnapshotPersistedAfterEachAnswer(t *testing.T) {
	f := newFixture(t, &fakeScorer{scores: []int{3}}, &fakeSummarizer{summary: "ok"}, testQuestions())
	ctx := context.Background()

	_, err := f.ctrl.SubmitAnswer(ctx, "answer", 0)
	require.NoError(t, err)

	snap, ok := f.store.get(f.id)
	require.True(t, ok)
	assert.Equal(t, 1, snap.CurrentIndex)
	require.Len(t, snap.Answers, 1)
	assert.NoError(t, snap.Validate())
}

func TestInvariantHoldsUnderTimerAndSubmitRace(t *testing.T) {
	scorer := &fakeScorer{scores: []int{3}}
	f := newFixture(t, scorer, &fakeSummarizer{summary: "ok"}, testQuestions())
	ctx := context.Background()

	// Drain the countdown to zero while a manual submit lands. Exactly one
	// answer may be recorded for question 0.
	go f.ticker.fire(20)
	f.ctrl.SubmitAnswer(ctx, "manual", 0)

	state := f.waitForState(t, func(s model.SessionState) bool { return s.CurrentIndex >= 1 })
	assert.Len(t, state.Answers, state.CurrentIndex)
	assert.NoError(t, (&state).Validate())
}

func TestClosedControllerReturnsSessionClosed(t *testing.T) {
	f := newFixture(t, &fakeScorer{scores: []int{3}}, &fakeSummarizer{summary: "ok"}, testQuestions())

	f.ctrl.Close()

	_, err := f.ctrl.SubmitAnswer(context.Background(), "answer", 0)
	assert.ErrorIs(t, err, ErrSessionClosed)
}
