package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionStateDefaults(t *testing.T) {
	questions := DefaultQuestions()
	state := NewSessionState(uuid.New(), questions)

	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Answers)
	assert.Equal(t, len(questions), state.TotalQuestions)
	assert.False(t, state.Completed)
	assert.Equal(t, questions[0].AllottedSeconds, state.RemainingSeconds)
	assert.NoError(t, state.Validate())
}

func TestValidateDetectsCorruption(t *testing.T) {
	state := NewSessionState(uuid.New(), DefaultQuestions())

	state.CurrentIndex = 2 // no matching answers
	assert.Error(t, state.Validate())

	state = NewSessionState(uuid.New(), DefaultQuestions())
	state.Completed = true // nothing answered
	assert.Error(t, state.Validate())

	state = NewSessionState(uuid.New(), DefaultQuestions())
	state.TotalQuestions = 4 // question list out of step
	assert.Error(t, state.Validate())
}

func TestResumable(t *testing.T) {
	state := NewSessionState(uuid.New(), DefaultQuestions())
	assert.False(t, state.Resumable(), "zero answers is not worth resuming")

	score := 3
	state.Answers = append(state.Answers, AnswerRecord{Question: "q", Answer: "a", Score: &score})
	state.CurrentIndex = 1
	assert.True(t, state.Resumable())

	state.Completed = true
	assert.False(t, state.Resumable())
}

func TestCloneIsDeep(t *testing.T) {
	state := NewSessionState(uuid.New(), DefaultQuestions())
	score := 3
	state.Answers = append(state.Answers, AnswerRecord{Question: "q", Answer: "a", Score: &score})
	state.CurrentIndex = 1
	final := 3
	state.FinalScore = &final

	clone := state.Clone()
	*clone.Answers[0].Score = 5
	*clone.FinalScore = 5
	clone.Questions[0].Text = "mutated"

	require.NotNil(t, state.Answers[0].Score)
	assert.Equal(t, 3, *state.Answers[0].Score)
	assert.Equal(t, 3, *state.FinalScore)
	assert.NotEqual(t, "mutated", state.Questions[0].Text)
}

func TestDefaultQuestionTiers(t *testing.T) {
	questions := DefaultQuestions()
	require.Len(t, questions, 6)

	budgets := map[Difficulty]int{
		DifficultyEasy:   20,
		DifficultyMedium: 60,
		DifficultyHard:   120,
	}
	counts := map[Difficulty]int{}
	for _, q := range questions {
		counts[q.Difficulty]++
		assert.Equal(t, budgets[q.Difficulty], q.AllottedSeconds)
	}
	assert.Equal(t, 2, counts[DifficultyEasy])
	assert.Equal(t, 2, counts[DifficultyMedium])
	assert.Equal(t, 2, counts[DifficultyHard])
}
