package quiz

import (
	"fmt"

	"github.com/c2p-community/c2pbot/models"
)

// MismatchPolicy controls how Grade treats a submitted answer sequence
// whose length differs from the quiz's question count.
type MismatchPolicy int

const (
	// TruncateToShortest grades only the paired prefix: questions without
	// a submitted answer are excluded from both the numerator and the
	// denominator of the percentage. This tolerance for partial
	// submissions is deliberate, not an accident of iteration bounds.
	TruncateToShortest MismatchPolicy = iota

	// RejectOnMismatch refuses to grade when the counts differ.
	RejectOnMismatch
)

// Grade scores a submitted answer sequence against a quiz using the
// TruncateToShortest policy. It is deterministic, never mutates the quiz,
// and raises no error for malformed answers: an unusable token is graded
// as incorrect with the "no answer provided" sentinel.
func Grade(q *models.Quiz, answers []string) models.GradingResult {
	considered := len(q.Questions)
	if len(answers) < considered {
		considered = len(answers)
	}

	result := models.GradingResult{
		TotalCount:  considered,
		PerQuestion: make([]models.QuestionVerdict, 0, considered),
	}

	for i := 0; i < considered; i++ {
		question := q.Questions[i]
		verdict := models.QuestionVerdict{
			QuestionText:     question.Text,
			ChosenOptionText: models.NoAnswerProvided,
			Explanation:      question.Explanation,
		}

		if index, ok := NormalizeAnswer(answers[i], len(question.Options)); ok {
			opt := question.Options[index]
			verdict.ChosenOptionText = opt.Text
			verdict.IsCorrect = opt.IsCorrect
		}

		if verdict.IsCorrect {
			result.CorrectCount++
		}
		result.PerQuestion = append(result.PerQuestion, verdict)
	}

	if considered > 0 {
		result.ScorePercent = float64(result.CorrectCount) / float64(considered) * 100
	}

	return result
}

// GradeStrict is the RejectOnMismatch counterpart of Grade: it returns an
// error when the answer count does not match the question count.
func GradeStrict(q *models.Quiz, answers []string) (models.GradingResult, error) {
	if len(answers) != len(q.Questions) {
		return models.GradingResult{}, fmt.Errorf("answer count %d does not match question count %d", len(answers), len(q.Questions))
	}
	return Grade(q, answers), nil
}
