package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/config"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/hirewise/interview-assistant/internal/session"
	"github.com/rs/zerolog"
)

// QuestionSource generates a resume-tailored question set.
type QuestionSource interface {
	GenerateQuestions(ctx context.Context, resumeText string) ([]model.QuestionDescriptor, error)
}

// InterviewService bridges the HTTP surface to the session manager: it
// resolves candidates, supplies question sets, and translates controller
// operations.
type InterviewService struct {
	cfg        *config.Config
	manager    *session.Manager
	candidates *CandidateService
	questions  QuestionSource
	log        zerolog.Logger
}

// NewInterviewService creates a new InterviewService.
func NewInterviewService(
	cfg *config.Config,
	manager *session.Manager,
	candidates *CandidateService,
	questions QuestionSource,
	log zerolog.Logger,
) *InterviewService {
	return &InterviewService{
		cfg:        cfg,
		manager:    manager,
		candidates: candidates,
		questions:  questions,
		log:        log.With().Str("component", "interview_service").Logger(),
	}
}

// StartResult is the outcome of a session start: either a live state or a
// pending recovery snapshot requiring a continue-or-discard decision.
type StartResult struct {
	State    *model.SessionState `json:"state,omitempty"`
	Recovery *RecoveryInfo       `json:"recovery,omitempty"`
}

// RecoveryInfo describes a resumable snapshot for the recovery prompt.
type RecoveryInfo struct {
	CandidateID      uuid.UUID `json:"candidate_id"`
	AnsweredCount    int       `json:"answered_count"`
	TotalQuestions   int       `json:"total_questions"`
	RemainingSeconds int       `json:"remaining_seconds"`
}

// Start activates a candidate's interview session. A fresh start generates
// questions from the stored resume (falling back to the default set); a
// resumable snapshot yields a recovery prompt instead.
func (s *InterviewService) Start(ctx context.Context, candidateID uuid.UUID) (*StartResult, error) {
	// Validate the candidate exists before any session work.
	if _, err := s.candidates.Get(ctx, candidateID); err != nil {
		return nil, err
	}

	ctrl, recovery, err := s.manager.Attach(ctx, candidateID, func(ctx context.Context) ([]model.QuestionDescriptor, error) {
		return s.questionSet(ctx, candidateID), nil
	})
	if err != nil {
		return nil, err
	}

	if recovery != nil {
		return &StartResult{Recovery: recoveryInfo(recovery)}, nil
	}

	state, err := ctrl.State(ctx)
	if err != nil {
		return nil, err
	}
	return &StartResult{State: &state}, nil
}

// Recovery returns the pending recovery prompt for a candidate, if any.
func (s *InterviewService) Recovery(candidateID uuid.UUID) (*RecoveryInfo, bool) {
	snap, ok := s.manager.PendingRecovery(candidateID)
	if !ok {
		return nil, false
	}
	return recoveryInfo(snap), true
}

// ResolveRecovery applies the continue-or-discard decision and returns the
// resulting live state.
func (s *InterviewService) ResolveRecovery(ctx context.Context, candidateID uuid.UUID, action string) (*model.SessionState, error) {
	ctrl, err := s.manager.Resolve(ctx, candidateID, action == "continue")
	if err != nil {
		return nil, err
	}
	state, err := ctrl.State(ctx)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// State returns the current session state for a candidate.
func (s *InterviewService) State(ctx context.Context, candidateID uuid.UUID) (*model.SessionState, error) {
	ctrl, err := s.manager.Get(candidateID)
	if err != nil {
		return nil, err
	}
	state, err := ctrl.State(ctx)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Stage stores draft answer text for the timer to auto-submit.
func (s *InterviewService) Stage(ctx context.Context, candidateID uuid.UUID, text string) error {
	ctrl, err := s.manager.Get(candidateID)
	if err != nil {
		return err
	}
	return ctrl.Stage(ctx, text)
}

// Submit records a manual answer for the question at the given index.
func (s *InterviewService) Submit(ctx context.Context, candidateID uuid.UUID, questionIndex int, text string) (*model.SessionState, error) {
	ctrl, err := s.manager.Get(candidateID)
	if err != nil {
		return nil, err
	}
	state, err := ctrl.SubmitAnswer(ctx, text, questionIndex)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Events subscribes to a candidate's controller event stream.
func (s *InterviewService) Events(candidateID uuid.UUID) (<-chan session.Event, error) {
	ctrl, err := s.manager.Get(candidateID)
	if err != nil {
		return nil, err
	}
	return ctrl.Events(), nil
}

// ListIncompleteSessions reports the candidates needing a recovery prompt.
// Called once at startup for logging and warm-up.
func (s *InterviewService) ListIncompleteSessions(ctx context.Context) ([]uuid.UUID, error) {
	return s.manager.ListIncompleteSessions(ctx)
}

// InvalidateAll closes every live session, used with the registry reset.
func (s *InterviewService) InvalidateAll() {
	s.manager.ResetAll()
}

// questionSet builds the question sequence for a fresh session: AI-generated
// from the resume when configured, otherwise the static default set. A
// generation failure degrades to the default set rather than blocking the
// interview.
func (s *InterviewService) questionSet(ctx context.Context, candidateID uuid.UUID) []model.QuestionDescriptor {
	if s.cfg.AIAPIKey == "" {
		return model.DefaultQuestions()
	}

	resumeText, err := s.candidates.ResumeText(ctx, candidateID)
	if err != nil || resumeText == "" {
		if err != nil {
			s.log.Warn().Err(err).Str("candidate_id", candidateID.String()).Msg("resume text unavailable, using default questions")
		}
		return model.DefaultQuestions()
	}

	questions, err := s.questions.GenerateQuestions(ctx, resumeText)
	if err != nil {
		s.log.Warn().Err(err).Str("candidate_id", candidateID.String()).Msg("question generation failed, using default questions")
		return model.DefaultQuestions()
	}
	return questions
}

func recoveryInfo(snap *model.SessionState) *RecoveryInfo {
	return &RecoveryInfo{
		CandidateID:      snap.CandidateID,
		AnsweredCount:    len(snap.Answers),
		TotalQuestions:   snap.TotalQuestions,
		RemainingSeconds: snap.RemainingSeconds,
	}
}

// String satisfies fmt.Stringer for logging.
func (r *RecoveryInfo) String() string {
	return fmt.Sprintf("%s: %d/%d answered", r.CandidateID, r.AnsweredCount, r.TotalQuestions)
}
