// Package prompts builds the system prompts for the AI gateways. The model's
// output is untrusted text; every prompt pins down an exact JSON shape so the
// callers can parse defensively.
package prompts

import (
	"fmt"
	"strings"

	"github.com/hirewise/interview-assistant/internal/model"
)

// ScoreAnswer builds the system prompt for scoring a single answer within the
// configured range.
func ScoreAnswer(question string, scoreMin, scoreMax int) string {
	var sb strings.Builder
	sb.WriteString("You are a technical interviewer scoring a candidate's answer.\n\n")
	sb.WriteString("QUESTION: " + question + "\n\n")
	sb.WriteString(fmt.Sprintf("Score the answer on a scale from %d (worst) to %d (best).\n", scoreMin, scoreMax))
	sb.WriteString("An empty or irrelevant answer gets the minimum score.\n")
	sb.WriteString("Judge correctness, depth, and clarity. Do not reward length alone.\n\n")
	sb.WriteString("Respond ONLY with a JSON object:\n")
	sb.WriteString(fmt.Sprintf(`{"score": <integer %d to %d>}`, scoreMin, scoreMax))
	sb.WriteString("\n")
	return sb.String()
}

// SummarizeTranscript builds the system prompt for the final candidate summary.
func SummarizeTranscript(transcript []model.AnswerRecord) string {
	var sb strings.Builder
	sb.WriteString("You are a technical interviewer writing a hiring note.\n")
	sb.WriteString("Below is the full interview transcript. Write a short summary ")
	sb.WriteString("(2-3 sentences) of the candidate's performance: strengths, gaps, overall impression.\n\n")

	for i, a := range transcript {
		sb.WriteString(fmt.Sprintf("Q%d [%s]: %s\n", i+1, a.Difficulty, a.Question))
		answer := a.Answer
		if strings.TrimSpace(answer) == "" {
			answer = "(no answer given)"
		}
		sb.WriteString("A: " + answer + "\n\n")
	}

	sb.WriteString("Respond ONLY with a JSON object:\n")
	sb.WriteString(`{"summary": "<2-3 sentence summary>"}`)
	sb.WriteString("\n")
	return sb.String()
}

// GenerateQuestions builds the system prompt for resume-tailored question
// generation: two questions per difficulty tier with fixed time budgets.
func GenerateQuestions(resumeText string) string {
	var sb strings.Builder
	sb.WriteString("You are preparing a screening interview for the candidate whose resume is below.\n")
	sb.WriteString("Generate exactly 6 interview questions tailored to their background:\n")
	sb.WriteString("- 2 easy questions (20 seconds each)\n")
	sb.WriteString("- 2 medium questions (60 seconds each)\n")
	sb.WriteString("- 2 hard questions (120 seconds each)\n\n")
	sb.WriteString("RESUME:\n" + resumeText + "\n\n")
	sb.WriteString("Respond ONLY with a JSON object:\n")
	sb.WriteString(`{"questions": [{"text": "<question>", "difficulty": "easy|medium|hard", "allotted_seconds": <20|60|120>}, ...]}`)
	sb.WriteString("\n")
	return sb.String()
}
