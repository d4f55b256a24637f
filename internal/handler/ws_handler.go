package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hirewise/interview-assistant/internal/service"
	"github.com/hirewise/interview-assistant/internal/session"
	ws "github.com/hirewise/interview-assistant/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams session events to the candidate and accepts stage and
// submit actions over the same connection.
type WSHandler struct {
	interviewService *service.InterviewService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(interviewService *service.InterviewService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		interviewService: interviewService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/candidates/:candidate_id/stream
// Upgrades to WebSocket for countdown ticks, answer confirmations, and
// completion events.
func (h *WSHandler) SessionStream(c *gin.Context) {
	candidateID, err := uuid.Parse(c.Param("candidate_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate ID"})
		return
	}

	// The session must already be active; the stream never starts one.
	events, err := h.interviewService.Events(candidateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("candidate_id", candidateID.String()).Logger()
	wsLog.Info().Msg("Candidate connected")

	if state, err := h.interviewService.State(c.Request.Context(), candidateID); err == nil {
		ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: state})
	}

	// Writer goroutine: forwards controller events until the session closes
	// or the read loop ends the connection.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for ev := range events {
			if err := ws.WriteTyped(conn, toWireEvent(ev)); err != nil {
				return
			}
		}
	}()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionStage:
			if err := h.interviewService.Stage(c.Request.Context(), candidateID, msg.Answer); err != nil {
				ws.WriteError(conn, err.Error())
			}
		case ws.ActionSubmit:
			if _, err := h.interviewService.Submit(c.Request.Context(), candidateID, msg.QuestionIndex, msg.Answer); err != nil {
				ws.WriteError(conn, err.Error())
			}
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}

	conn.Close()
	<-closed
}

func toWireEvent(ev session.Event) ws.EventResponse {
	out := ws.EventResponse{
		QuestionIndex:    ev.QuestionIndex,
		RemainingSeconds: ev.RemainingSeconds,
		Auto:             ev.Auto,
		Score:            ev.Score,
		FinalScore:       ev.FinalScore,
		Summary:          ev.Summary,
	}
	switch ev.Type {
	case session.EventTick:
		out.Event = ws.EventTick
	case session.EventAnswer:
		out.Event = ws.EventAnswer
	case session.EventCompleted:
		out.Event = ws.EventCompleted
	case session.EventSummary:
		out.Event = ws.EventSummary
	}
	return out
}
