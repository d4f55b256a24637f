package gateway

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hirewise/interview-assistant/internal/gateway/prompts"
)

type scorePayload struct {
	Score json.Number `json:"score"`
}

// ScoreAnswer asks the model to score one answer. The returned value is
// always within [scoreMin, scoreMax]; a response that cannot be parsed as an
// in-range integer falls back to the neutral midpoint score.
func (c *Client) ScoreAnswer(ctx context.Context, question, answer string) (int, error) {
	raw, err := c.complete(ctx, prompts.ScoreAnswer(question, c.scoreMin, c.scoreMax), answer, 0.1)
	if err != nil {
		return 0, err
	}
	return parseScore(raw, c.scoreMin, c.scoreMax), nil
}

// NeutralScore is the defined fallback for unparseable gateway output.
func (c *Client) NeutralScore() int {
	return neutralScore(c.scoreMin, c.scoreMax)
}

func neutralScore(min, max int) int {
	return (min + max) / 2
}

// parseScore extracts an integer score from the model's JSON output,
// clamping it into range. Garbage yields the neutral midpoint: the gateway's
// output is untrusted and must never abort a submission on shape alone.
func parseScore(raw string, min, max int) int {
	var p scorePayload
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		if n, err := p.Score.Int64(); err == nil {
			return clamp(int(n), min, max)
		}
		// Some models return fractional scores; round rather than reject.
		if f, err := p.Score.Float64(); err == nil {
			return clamp(int(f+0.5), min, max)
		}
	}

	// Last resort: a bare number in the body.
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return clamp(n, min, max)
	}

	return neutralScore(min, max)
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
