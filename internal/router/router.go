package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hirewise/interview-assistant/internal/config"
	"github.com/hirewise/interview-assistant/internal/handler"
	"github.com/hirewise/interview-assistant/internal/middleware"
	"github.com/hirewise/interview-assistant/internal/response"
	"github.com/hirewise/interview-assistant/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Candidate *handler.CandidateHandler
	Interview *handler.InterviewHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the upload and auth surfaces (30 requests per minute per IP).
	publicLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(publicLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireInterviewerJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Candidate Group (Public) ───────────────────────────────────
	// The interview kiosk carries no credentials; a candidate is identified
	// by the ID issued at registration.
	candidates := router.Group("/api/v1/candidates")
	{
		candidates.POST("", publicLimiter.Middleware(), handlers.Candidate.Register)
		candidates.POST("/upload", publicLimiter.Middleware(), handlers.Candidate.UploadResume)

		candidates.POST("/:candidate_id/session/start", handlers.Interview.Start)
		candidates.GET("/:candidate_id/session/state", handlers.Interview.GetState)
		candidates.POST("/:candidate_id/session/stage", handlers.Interview.Stage)
		candidates.POST("/:candidate_id/session/answer", handlers.Interview.Submit)
		candidates.GET("/:candidate_id/session/recovery", handlers.Interview.GetRecovery)
		candidates.POST("/:candidate_id/session/recovery", handlers.Interview.ResolveRecovery)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/candidates/:candidate_id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Interviewer Group (JWT) ────────────────────────────────────
	interviewerAPI := router.Group("/api/v1/interviewer")
	interviewerAPI.Use(middleware.RequireInterviewerJWT(authService))
	{
		interviewerAPI.GET("/candidates", handlers.Candidate.List)
		interviewerAPI.GET("/candidates/:candidate_id", handlers.Candidate.Detail)
		interviewerAPI.DELETE("/candidates", handlers.Candidate.ResetAll)
	}

	return router
}
