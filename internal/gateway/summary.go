package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hirewise/interview-assistant/internal/gateway/prompts"
	"github.com/hirewise/interview-assistant/internal/model"
)

type summaryPayload struct {
	Summary string `json:"summary"`
}

// Summarize asks the model for a short hiring note over the full transcript.
// An empty string is a valid, non-error outcome.
func (c *Client) Summarize(ctx context.Context, transcript []model.AnswerRecord) (string, error) {
	raw, err := c.complete(ctx, prompts.SummarizeTranscript(transcript), "", 0.3)
	if err != nil {
		return "", err
	}

	var p summaryPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// Unstructured output: use the raw text rather than dropping it.
		return strings.TrimSpace(raw), nil
	}
	return strings.TrimSpace(p.Summary), nil
}
