package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/hirewise/interview-assistant/internal/response"
	"github.com/hirewise/interview-assistant/internal/service"
	"github.com/hirewise/interview-assistant/internal/validator"
	"github.com/rs/zerolog"
)

// CandidateHandler handles candidate registration and the dashboard views.
type CandidateHandler struct {
	candidateService *service.CandidateService
	interviewService *service.InterviewService
	log              zerolog.Logger
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(
	candidateService *service.CandidateService,
	interviewService *service.InterviewService,
	log zerolog.Logger,
) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		interviewService: interviewService,
		log:              log.With().Str("component", "candidate_handler").Logger(),
	}
}

// UploadResume godoc
// POST /api/v1/candidates/upload
// Registers a candidate from an uploaded PDF resume. Contact fields are
// extracted from the document text.
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	candidate, err := h.candidateService.RegisterFromResume(c.Request.Context(), data, header)
	switch {
	case errors.Is(err, service.ErrFileTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	case errors.Is(err, service.ErrUnsupportedFileType):
		response.Fail(c, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("resume registration failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"candidate": candidate})
}

// Register godoc
// POST /api/v1/candidates
// Registers a candidate with manually entered contact details.
func (h *CandidateHandler) Register(c *gin.Context) {
	var req model.RegisterCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidate, err := h.candidateService.Register(c.Request.Context(), &req)
	if err != nil {
		h.log.Error().Err(err).Msg("candidate registration failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"candidate": candidate})
}

// List godoc
// GET /api/v1/interviewer/candidates?search=...
// Lists candidates for the dashboard, newest first.
func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.candidateService.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.log.Error().Err(err).Msg("candidate list failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"candidates": candidates})
}

// Detail godoc
// GET /api/v1/interviewer/candidates/:candidate_id
// Returns one candidate with their full answer transcript.
func (h *CandidateHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("candidate_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.candidateService.Detail(c.Request.Context(), id)
	if errors.Is(err, service.ErrCandidateNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("candidate detail failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"candidate": detail})
}

// ResetAll godoc
// DELETE /api/v1/interviewer/candidates
// Deletes every candidate, snapshot, and live session.
func (h *CandidateHandler) ResetAll(c *gin.Context) {
	// Close live controllers first so nothing re-persists mid-delete.
	h.interviewService.InvalidateAll()

	if err := h.candidateService.ResetAll(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("reset failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
