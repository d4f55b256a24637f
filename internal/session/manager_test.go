package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, store *memStore, scorer *fakeScorer) *Manager {
	t.Helper()

	m := NewManager(
		Config{
			ScoreMin:       0,
			ScoreMax:       5,
			GatewayTimeout: time.Second,
			NewTicker:      newManualTicker().factory(),
		},
		scorer,
		&fakeSummarizer{summary: "ok"},
		store,
		&memSink{},
		zerolog.Nop(),
	)
	t.Cleanup(m.Shutdown)
	return m
}

func staticQuestions(qs []model.QuestionDescriptor) QuestionProvider {
	return func(context.Context) ([]model.QuestionDescriptor, error) {
		return qs, nil
	}
}

// seedSnapshot builds a mid-interview snapshot with n recorded answers.
func seedSnapshot(t *testing.T, store *memStore, id uuid.UUID, n int) *model.SessionState {
	t.Helper()

	questions := testQuestions()
	state := model.NewSessionState(id, questions)
	for i := 0; i < n; i++ {
		score := 4
		state.Answers = append(state.Answers, model.AnswerRecord{
			Question:        questions[i].Text,
			Answer:          "recorded",
			Difficulty:      questions[i].Difficulty,
			AllottedSeconds: questions[i].AllottedSeconds,
			Score:           &score,
		})
	}
	state.CurrentIndex = n
	state.RemainingSeconds = 42
	require.NoError(t, store.Put(context.Background(), state))
	return state
}

func TestAttachFreshSessionStartsAtZero(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()

	ctrl, recovery, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)
	require.Nil(t, recovery)
	require.NotNil(t, ctrl)

	state, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Answers)
	assert.Equal(t, 6, state.TotalQuestions)
	assert.Equal(t, 20, state.RemainingSeconds)

	// Fresh sessions are durable from the first moment.
	_, ok := store.get(id)
	assert.True(t, ok)
}

func TestAttachEmptyQuestionSetFails(t *testing.T) {
	m := newTestManager(t, newMemStore(), &fakeScorer{scores: []int{4}})

	_, _, err := m.Attach(context.Background(), uuid.New(), staticQuestions(nil))
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestAttachResumableSnapshotParksRecovery(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()
	seedSnapshot(t, store, id, 3)

	ctrl, recovery, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)
	assert.Nil(t, ctrl)
	require.NotNil(t, recovery)
	assert.Equal(t, 3, len(recovery.Answers))

	// No submissions are accepted until the decision lands.
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrRecoveryPending)

	// Repeated attaches return the same parked snapshot.
	ctrl, recovery2, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)
	assert.Nil(t, ctrl)
	require.NotNil(t, recovery2)
	assert.Equal(t, 3, len(recovery2.Answers))
}

func TestResolveContinueRestoresProgress(t *testing.T) {
	store := newMemStore()
	scorer := &fakeScorer{scores: []int{4}}
	m := newTestManager(t, store, scorer)
	ctx := context.Background()
	id := uuid.New()
	seedSnapshot(t, store, id, 3)

	_, _, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)

	ctrl, err := m.Resolve(ctx, id, true)
	require.NoError(t, err)

	state, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.CurrentIndex)
	assert.Len(t, state.Answers, 3)
	assert.Equal(t, 42, state.RemainingSeconds)
	// Resumption never re-scores recorded answers.
	assert.Equal(t, 0, scorer.callCount())
}

func TestResolveDiscardStartsOver(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()
	seedSnapshot(t, store, id, 3)

	_, _, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)

	ctrl, err := m.Resolve(ctx, id, false)
	require.NoError(t, err)

	state, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Answers)
	// The discarded session restarts over the same question sequence.
	assert.Equal(t, 6, state.TotalQuestions)
	assert.Equal(t, "q0", state.Questions[0].Text)
}

func TestResolveWithoutPendingDecisionFails(t *testing.T) {
	m := newTestManager(t, newMemStore(), &fakeScorer{scores: []int{4}})

	_, err := m.Resolve(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, ErrNoRecoveryPending)
}

func TestCorruptSnapshotIsDiscarded(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()

	// Answers out of step with the index: structurally invalid.
	state := model.NewSessionState(id, testQuestions())
	state.CurrentIndex = 4
	require.NoError(t, store.Put(ctx, state))

	ctrl, recovery, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)
	assert.Nil(t, recovery)
	require.NotNil(t, ctrl)

	// The corrupt snapshot never resumes; a fresh session replaces it.
	got, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentIndex)
}

func TestAttachCompletedSnapshotSkipsRecovery(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()

	state := seedSnapshot(t, store, id, 5)
	score := 4
	state.Answers = append(state.Answers, model.AnswerRecord{Question: "q5", Answer: "last", Score: &score})
	state.CurrentIndex = 6
	state.Completed = true
	final := 4
	state.FinalScore = &final
	require.NoError(t, store.Put(ctx, state))

	ctrl, recovery, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)
	assert.Nil(t, recovery)
	require.NotNil(t, ctrl)

	got, err := ctrl.State(ctx)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.FinalScore)
	assert.Equal(t, 4, *got.FinalScore)

	_, err = ctrl.SubmitAnswer(ctx, "late answer", 6)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestAttachZeroAnswerSnapshotStartsFresh(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()
	seedSnapshot(t, store, id, 0)

	// Nothing recorded yet, so there is nothing worth a recovery prompt.
	ctrl, recovery, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)
	assert.Nil(t, recovery)
	require.NotNil(t, ctrl)
}

func TestQuestionProviderOnlyInvokedForFreshStart(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()
	seedSnapshot(t, store, id, 2)

	calls := 0
	provider := func(context.Context) ([]model.QuestionDescriptor, error) {
		calls++
		return testQuestions(), nil
	}

	_, _, err := m.Attach(ctx, id, provider)
	require.NoError(t, err)
	_, err = m.Resolve(ctx, id, true)
	require.NoError(t, err)

	assert.Equal(t, 0, calls)
}

func TestListIncompleteSessions(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()

	resumable := uuid.New()
	seedSnapshot(t, store, resumable, 2)
	seedSnapshot(t, store, uuid.New(), 0)

	ids, err := m.ListIncompleteSessions(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, resumable, ids[0])
}

func TestResetAllClosesControllers(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store, &fakeScorer{scores: []int{4}})
	ctx := context.Background()
	id := uuid.New()

	ctrl, _, err := m.Attach(ctx, id, staticQuestions(testQuestions()))
	require.NoError(t, err)

	m.ResetAll()

	_, err = ctrl.State(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrSessionClosed)
}
