package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is one scored (question, answer) pair. Records are appended in
// question order and never rewritten; a recorded score is immutable.
type AnswerRecord struct {
	Question        string     `json:"question"`
	Answer          string     `json:"answer"`
	Difficulty      Difficulty `json:"difficulty"`
	AllottedSeconds int        `json:"allotted_seconds"`
	Score           *int       `json:"score,omitempty"`
}

// SessionState is the durable per-candidate interview record. It is mutated
// by exactly one session controller and serialized to the snapshot store
// after every mutation.
//
// Invariants:
//   - len(Answers) == CurrentIndex at every observation point
//   - Completed == true iff len(Answers) == TotalQuestions; never reverts
//   - FinalScore is set exactly once, at the transition to Completed
type SessionState struct {
	CandidateID    uuid.UUID            `json:"candidate_id"`
	Questions      []QuestionDescriptor `json:"questions"`
	Answers        []AnswerRecord       `json:"answers"`
	CurrentIndex   int                  `json:"current_index"`
	TotalQuestions int                  `json:"total_questions"`
	Completed      bool                 `json:"completed"`
	FinalScore     *int                 `json:"final_score,omitempty"`
	Summary        string               `json:"summary,omitempty"`
	// RemainingSeconds is the countdown for the current question only. Not
	// part of the completion contract but persisted to support resumption.
	RemainingSeconds int       `json:"remaining_seconds"`
	StartedAt        time.Time `json:"started_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewSessionState returns the creation-time defaults for a candidate and
// question set: index 0, no answers, countdown at the first question's
// allotted time.
func NewSessionState(candidateID uuid.UUID, questions []QuestionDescriptor) *SessionState {
	now := time.Now()
	return &SessionState{
		CandidateID:      candidateID,
		Questions:        questions,
		Answers:          []AnswerRecord{},
		CurrentIndex:     0,
		TotalQuestions:   len(questions),
		Completed:        false,
		RemainingSeconds: questions[0].AllottedSeconds,
		StartedAt:        now,
		UpdatedAt:        now,
	}
}

// Validate checks the structural invariants of a snapshot. A violation means
// the snapshot is corrupt and must be discarded, never resumed.
func (s *SessionState) Validate() error {
	if len(s.Questions) != s.TotalQuestions {
		return fmt.Errorf("snapshot has %d questions, expected %d", len(s.Questions), s.TotalQuestions)
	}
	if len(s.Answers) != s.CurrentIndex {
		return fmt.Errorf("snapshot has %d answers but current index %d", len(s.Answers), s.CurrentIndex)
	}
	if s.CurrentIndex > s.TotalQuestions {
		return fmt.Errorf("snapshot index %d exceeds total questions %d", s.CurrentIndex, s.TotalQuestions)
	}
	if s.Completed != (len(s.Answers) == s.TotalQuestions) {
		return fmt.Errorf("snapshot completed flag %t inconsistent with %d/%d answers", s.Completed, len(s.Answers), s.TotalQuestions)
	}
	return nil
}

// Resumable reports whether a snapshot should trigger the continue-or-discard
// prompt: incomplete with at least one recorded answer.
func (s *SessionState) Resumable() bool {
	return !s.Completed && len(s.Answers) > 0
}

// Clone returns a deep copy safe to hand outside the controller goroutine.
func (s *SessionState) Clone() SessionState {
	out := *s
	out.Questions = append([]QuestionDescriptor(nil), s.Questions...)
	out.Answers = append([]AnswerRecord(nil), s.Answers...)
	if s.FinalScore != nil {
		v := *s.FinalScore
		out.FinalScore = &v
	}
	for i := range out.Answers {
		if s.Answers[i].Score != nil {
			v := *s.Answers[i].Score
			out.Answers[i].Score = &v
		}
	}
	return out
}

// SubmitAnswerRequest is the payload for a manual answer submission.
// QuestionIndex guards against a submit racing the timer: a submission for an
// already-advanced index is rejected instead of answering the wrong question.
type SubmitAnswerRequest struct {
	QuestionIndex *int   `json:"question_index" binding:"required,min=0"`
	Text          string `json:"text"`
}

// StageAnswerRequest stages draft answer text; the per-question timer submits
// whatever is staged when it expires.
type StageAnswerRequest struct {
	Text string `json:"text"`
}

// RecoveryDecisionRequest resolves a pending continue-or-discard prompt.
type RecoveryDecisionRequest struct {
	Action string `json:"action" binding:"required,oneof=continue discard"`
}
