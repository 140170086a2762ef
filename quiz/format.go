package quiz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/c2p-community/c2pbot/models"
)

// replyInstruction advertises the reply grammar. It must stay in sync with
// ParseQuizReply, which tokenizes replies written in this grammar.
const replyInstruction = "Reply with the question number and your choice for each question (example: Q1-C, Q2-A, Q3-B)"

// OptionLetter returns the display letter for an option position:
// 0 -> "A", 1 -> "B", and so on.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// RenderQuiz renders a quiz as a single chat message. Options are lettered
// strictly by their position in the options slice, never by correctness,
// so the rendered text does not leak the answer key.
func RenderQuiz(q *models.Quiz) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🧠 *QUIZ: %s* 🧠\n\n", q.Title)
	if q.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", q.Description)
	}

	for i, question := range q.Questions {
		fmt.Fprintf(&b, "*Q%d: %s*\n", i+1, question.Text)
		for j, opt := range question.Options {
			fmt.Fprintf(&b, "%s) %s\n", OptionLetter(j), opt.Text)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "⏱️ Estimated duration: %d minutes\n", q.EstimatedDurationMinutes)
	b.WriteString(replyInstruction)

	return b.String()
}

// RenderResult renders a grading result as a single chat message: the
// score line, one block per question with a correctness marker, and an
// encouragement line keyed to the score. Explanations are shown only for
// questions answered incorrectly.
func RenderResult(r *models.GradingResult) string {
	var b strings.Builder

	b.WriteString("📊 *QUIZ RESULTS* 📊\n\n")
	fmt.Fprintf(&b, "Score: %.0f%% (%d/%d)\n\n", r.ScorePercent, r.CorrectCount, r.TotalCount)

	for i, verdict := range r.PerQuestion {
		fmt.Fprintf(&b, "*Q%d: %s*\n", i+1, verdict.QuestionText)
		fmt.Fprintf(&b, "Your answer: %s\n", verdict.ChosenOptionText)
		if verdict.IsCorrect {
			b.WriteString("✅ Correct\n")
		} else {
			b.WriteString("❌ Incorrect\n")
			if verdict.Explanation != "" {
				fmt.Fprintf(&b, "📝 %s\n", verdict.Explanation)
			}
		}
		b.WriteString("\n")
	}

	// Thresholds are inclusive on the lower bound of each tier.
	switch {
	case r.ScorePercent >= 80:
		b.WriteString("🌟 Excellent work! Keep it up!")
	case r.ScorePercent >= 60:
		b.WriteString("👍 Good job! Keep practicing.")
	default:
		b.WriteString("💪 Keep at it! Don't hesitate to review the concepts.")
	}

	return b.String()
}

// replyTokenPattern matches one token of the advertised reply grammar:
// a question number and a letter or numeric choice, e.g. "Q1-C" or "q2 - 0".
var replyTokenPattern = regexp.MustCompile(`(?i)\bQ(\d+)\s*-\s*([A-Za-z]\b|\d+)`)

// maxReplyQuestions bounds the question numbers accepted from a reply so
// that a token like "Q100000000-A" cannot balloon the answers slice.
const maxReplyQuestions = 100

// ParseQuizReply tokenizes a free-text reply written in the grammar that
// RenderQuiz advertises. The returned slice is indexed by question (Q1 at
// index 0) and holds the raw token for each answered question, "" for
// questions the reply skipped. Tokens are raw: validation against the
// option count is the normalizer's job.
func ParseQuizReply(text string) []string {
	matches := replyTokenPattern.FindAllStringSubmatch(text, -1)

	var answers []string
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > maxReplyQuestions {
			continue
		}
		for len(answers) < n {
			answers = append(answers, "")
		}
		// First occurrence of a question number wins.
		if answers[n-1] == "" {
			answers[n-1] = m[2]
		}
	}

	return answers
}

// RenderSessionReminder renders a reminder message for an upcoming
// community session.
func RenderSessionReminder(s *models.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🗓️ *REMINDER: UPCOMING SESSION - %s* 🗓️\n\n", s.Title)
	fmt.Fprintf(&b, "📆 Date and time: %s\n", s.Date.Format("Monday, 2 January 2006 at 15:04"))
	fmt.Fprintf(&b, "⏱️ Duration: %d minutes\n\n", s.DurationMinutes)

	if len(s.Topics) > 0 {
		b.WriteString("🔍 *Topics covered:*\n")
		for _, topic := range s.Topics {
			fmt.Fprintf(&b, "• %s\n", topic)
		}
		b.WriteString("\n")
	}

	if len(s.PrepExercises) > 0 {
		b.WriteString("📝 *Preparation exercises:*\n")
		for i, ex := range s.PrepExercises {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ex.Title)
			if ex.Description != "" {
				fmt.Fprintf(&b, "   %s\n", ex.Description)
			}
			if ex.Link != "" {
				fmt.Fprintf(&b, "   Link: %s\n", ex.Link)
			}
		}
	}

	b.WriteString("\nDon't forget to bring your questions! 🚀")

	return b.String()
}
