package models

import "fmt"

// Difficulty levels accepted for a question.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// NoAnswerProvided is the sentinel chosen-option text for a question the
// member did not answer (or answered with an unusable token).
const NoAnswerProvided = "no answer provided"

// Option is one answer choice of a question. The position of an option in
// the Options slice is significant: position i maps to display letter 'A'+i.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a single multiple-choice question.
type Question struct {
	Text        string   `json:"text"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Topic       string   `json:"topic,omitempty"`
}

// Quiz is an immutable set of multiple-choice questions on one topic.
// A quiz is created once (by the authoring adapter or a curator) and is
// never mutated afterwards; grading works on it read-only.
type Quiz struct {
	Title                    string     `json:"title"`
	Description              string     `json:"description,omitempty"`
	Topic                    string     `json:"topic"`
	Questions                []Question `json:"questions"`
	EstimatedDurationMinutes int        `json:"estimatedDurationMinutes"`
}

// QuestionVerdict is the graded outcome for one question.
type QuestionVerdict struct {
	QuestionText     string
	ChosenOptionText string
	IsCorrect        bool
	Explanation      string
}

// GradingResult is the scored outcome of matching a submitted answer
// sequence against a quiz.
type GradingResult struct {
	ScorePercent float64
	CorrectCount int
	TotalCount   int
	PerQuestion  []QuestionVerdict
}

// QuizCompletion records that a member finished a quiz. Owned by the member
// profile store; the grading pipeline only writes these.
type QuizCompletion struct {
	QuizID      int64
	Score       float64
	CompletedAt int64
}

// ShapeError reports a quiz that fails its structural invariants.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "invalid quiz shape: " + e.Reason
}

// Validate checks the structural invariants of an authoring-time quiz:
// at least one question, at least two options per question, exactly one
// option marked correct per question, and a known difficulty when one is
// set. It is the only admission control between untrusted generation
// output and the rest of the pipeline.
func (q *Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return &ShapeError{Reason: "quiz has no questions"}
	}

	for i, question := range q.Questions {
		if len(question.Options) < 2 {
			return &ShapeError{Reason: fmt.Sprintf("question %d has %d options, need at least 2", i+1, len(question.Options))}
		}

		correct := 0
		for _, opt := range question.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return &ShapeError{Reason: fmt.Sprintf("question %d has %d options marked correct, need exactly 1", i+1, correct)}
		}

		switch question.Difficulty {
		case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		default:
			return &ShapeError{Reason: fmt.Sprintf("question %d has unknown difficulty %q", i+1, question.Difficulty)}
		}
	}

	return nil
}
