package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStage  Action = "stage"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload covers every client message; the action discriminates.
type RequestPayload struct {
	Action Action `json:"action"`
	// QuestionIndex echoes the question the client believes is active.
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventState     Event = "state"
	EventTick      Event = "tick"
	EventAnswer    Event = "answer"
	EventCompleted Event = "completed"
	EventSummary   Event = "summary"
	EventPong      Event = "pong"
)

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// EventResponse wraps a controller event for the wire.
type EventResponse struct {
	Event            Event  `json:"event"`
	QuestionIndex    int    `json:"question_index"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Auto             bool   `json:"auto,omitempty"`
	Score            *int   `json:"score,omitempty"`
	FinalScore       *int   `json:"final_score,omitempty"`
	Summary          string `json:"summary,omitempty"`
}

// StateResponse carries a full session state snapshot.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}
