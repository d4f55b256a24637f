package model

// Difficulty tiers for interview questions.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionDescriptor is one entry of the fixed question sequence handed to a
// session. Immutable once the session starts.
type QuestionDescriptor struct {
	Text            string     `json:"text"`
	Difficulty      Difficulty `json:"difficulty"`
	AllottedSeconds int        `json:"allotted_seconds"`
}

// DefaultQuestions is the static fallback set used when AI question
// generation is disabled or fails: two questions per tier, 20/60/120 seconds.
func DefaultQuestions() []QuestionDescriptor {
	return []QuestionDescriptor{
		{Text: "Tell us about a recent project you worked on and your role in it.", Difficulty: DifficultyEasy, AllottedSeconds: 20},
		{Text: "What part of your resume are you most proud of, and why?", Difficulty: DifficultyEasy, AllottedSeconds: 20},
		{Text: "Describe a technical decision you made that you later regretted. What did you learn?", Difficulty: DifficultyMedium, AllottedSeconds: 60},
		{Text: "How do you approach debugging a problem you have never seen before?", Difficulty: DifficultyMedium, AllottedSeconds: 60},
		{Text: "Walk us through how you would design a system to handle a 10x traffic increase.", Difficulty: DifficultyHard, AllottedSeconds: 120},
		{Text: "Describe the hardest production incident you handled end to end.", Difficulty: DifficultyHard, AllottedSeconds: 120},
	}
}
