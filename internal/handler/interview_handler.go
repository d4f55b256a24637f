package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/hirewise/interview-assistant/internal/response"
	"github.com/hirewise/interview-assistant/internal/service"
	"github.com/hirewise/interview-assistant/internal/session"
	"github.com/hirewise/interview-assistant/internal/validator"
	"github.com/rs/zerolog"
)

// InterviewHandler handles the candidate-facing session endpoints.
type InterviewHandler struct {
	interviewService *service.InterviewService
	log              zerolog.Logger
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviewService *service.InterviewService, log zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
		log:              log.With().Str("component", "interview_handler").Logger(),
	}
}

// Start godoc
// POST /api/v1/candidates/:candidate_id/session/start
// Activates the candidate's session. Returns either the live state or a
// recovery prompt when an unfinished session exists.
func (h *InterviewHandler) Start(c *gin.Context) {
	candidateID, ok := h.candidateID(c)
	if !ok {
		return
	}

	result, err := h.interviewService.Start(c.Request.Context(), candidateID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	if result.Recovery != nil {
		response.Success(c, http.StatusOK, gin.H{"recovery": result.Recovery})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": result.State})
}

// GetState godoc
// GET /api/v1/candidates/:candidate_id/session/state
func (h *InterviewHandler) GetState(c *gin.Context) {
	candidateID, ok := h.candidateID(c)
	if !ok {
		return
	}

	state, err := h.interviewService.State(c.Request.Context(), candidateID)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// Stage godoc
// POST /api/v1/candidates/:candidate_id/session/stage
// Stores draft answer text for the timer to auto-submit on expiry.
func (h *InterviewHandler) Stage(c *gin.Context) {
	candidateID, ok := h.candidateID(c)
	if !ok {
		return
	}

	var req model.StageAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.interviewService.Stage(c.Request.Context(), candidateID, req.Text); err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Submit godoc
// POST /api/v1/candidates/:candidate_id/session/answer
// Records a manual answer for the question at the given index.
func (h *InterviewHandler) Submit(c *gin.Context) {
	candidateID, ok := h.candidateID(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.interviewService.Submit(c.Request.Context(), candidateID, *req.QuestionIndex, req.Text)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// GetRecovery godoc
// GET /api/v1/candidates/:candidate_id/session/recovery
// Returns the pending recovery prompt, if any.
func (h *InterviewHandler) GetRecovery(c *gin.Context) {
	candidateID, ok := h.candidateID(c)
	if !ok {
		return
	}

	info, pending := h.interviewService.Recovery(candidateID)
	if !pending {
		response.Fail(c, http.StatusNotFound, response.ErrNoRecoveryPending)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"recovery": info})
}

// ResolveRecovery godoc
// POST /api/v1/candidates/:candidate_id/session/recovery
// Applies the continue-or-discard decision.
func (h *InterviewHandler) ResolveRecovery(c *gin.Context) {
	candidateID, ok := h.candidateID(c)
	if !ok {
		return
	}

	var req model.RecoveryDecisionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.interviewService.ResolveRecovery(c.Request.Context(), candidateID, req.Action)
	if err != nil {
		h.failSession(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": state})
}

func (h *InterviewHandler) candidateID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("candidate_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failSession maps session and service errors onto the API error taxonomy.
func (h *InterviewHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCandidateNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, session.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, session.ErrSessionCompleted):
		response.Fail(c, http.StatusConflict, response.ErrSessionCompleted)
	case errors.Is(err, session.ErrEmptyAnswer):
		response.Fail(c, http.StatusBadRequest, response.ErrEmptyAnswer)
	case errors.Is(err, session.ErrStaleSubmission):
		response.Fail(c, http.StatusConflict, response.ErrStaleSubmission)
	case errors.Is(err, session.ErrRecoveryPending):
		response.Fail(c, http.StatusConflict, response.ErrRecoveryPending)
	case errors.Is(err, session.ErrNoRecoveryPending):
		response.Fail(c, http.StatusNotFound, response.ErrNoRecoveryPending)
	case errors.Is(err, session.ErrScoringUnavailable):
		response.Fail(c, http.StatusBadGateway, response.ErrScoringUnavailable)
	case errors.Is(err, session.ErrSessionClosed):
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
	default:
		h.log.Error().Err(err).Msg("session operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
