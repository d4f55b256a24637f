package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hirewise/interview-assistant/internal/middleware"
	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/hirewise/interview-assistant/internal/repository"
	"github.com/hirewise/interview-assistant/internal/response"
	"github.com/hirewise/interview-assistant/internal/service"
	"github.com/hirewise/interview-assistant/internal/validator"
)

// AuthHandler handles interviewer authentication endpoints.
type AuthHandler struct {
	authService     *service.AuthService
	interviewerRepo *repository.InterviewerRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, interviewerRepo *repository.InterviewerRepository) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		interviewerRepo: interviewerRepo,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Authenticates an interviewer and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	interviewer, err := h.interviewerRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(interviewer.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(interviewer.ID, interviewer.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"interviewer": gin.H{
			"id":    interviewer.ID,
			"name":  interviewer.Name,
			"email": interviewer.Email,
		},
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated interviewer.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	interviewer, err := h.interviewerRepo.GetByID(c.Request.Context(), claims.InterviewerID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"interviewer": gin.H{
			"id":    interviewer.ID,
			"name":  interviewer.Name,
			"email": interviewer.Email,
		},
	})
}
