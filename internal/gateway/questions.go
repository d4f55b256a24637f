package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hirewise/interview-assistant/internal/gateway/prompts"
	"github.com/hirewise/interview-assistant/internal/model"
)

const questionCount = 6

type questionsPayload struct {
	Questions []struct {
		Text            string `json:"text"`
		Difficulty      string `json:"difficulty"`
		AllottedSeconds int    `json:"allotted_seconds"`
	} `json:"questions"`
}

// GenerateQuestions asks the model for a resume-tailored question set. The
// output is validated question by question; anything malformed fails the call
// so the caller can fall back to the static default set.
func (c *Client) GenerateQuestions(ctx context.Context, resumeText string) ([]model.QuestionDescriptor, error) {
	raw, err := c.complete(ctx, prompts.GenerateQuestions(resumeText), "", 0.5)
	if err != nil {
		return nil, err
	}

	var p questionsPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("parse questions response: %w", err)
	}
	if len(p.Questions) != questionCount {
		return nil, fmt.Errorf("expected %d questions, got %d", questionCount, len(p.Questions))
	}

	out := make([]model.QuestionDescriptor, 0, questionCount)
	for i, q := range p.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, fmt.Errorf("question %d has empty text", i)
		}
		difficulty, seconds, err := normalizeTier(q.Difficulty, q.AllottedSeconds)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, model.QuestionDescriptor{
			Text:            text,
			Difficulty:      difficulty,
			AllottedSeconds: seconds,
		})
	}
	return out, nil
}

// normalizeTier maps the model's difficulty string to a known tier and pins
// the allotted time to the tier's budget when the model returns a bad value.
func normalizeTier(difficulty string, seconds int) (model.Difficulty, int, error) {
	var tier model.Difficulty
	var budget int

	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		tier, budget = model.DifficultyEasy, 20
	case "medium":
		tier, budget = model.DifficultyMedium, 60
	case "hard":
		tier, budget = model.DifficultyHard, 120
	default:
		return "", 0, fmt.Errorf("unknown difficulty %q", difficulty)
	}

	if seconds <= 0 {
		seconds = budget
	}
	return tier, seconds, nil
}
