package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/c2p-community/c2pbot/models"
)

// Stages at which quiz generation can fail.
const (
	StageCompletion = "completion"
	StageExtraction = "extraction"
	StageParse      = "parse"
	StageShape      = "shape"
)

// Defaults applied by Generate when the caller passes zero values.
const (
	DefaultQuestionCount = 3
	DefaultDifficulty    = models.DifficultyMedium
)

// ErrNoJSONFound indicates that no JSON-like span could be located in the
// model's reply.
var ErrNoJSONFound = errors.New("no JSON payload found in model reply")

// GenerationError wraps any failure of the authoring pipeline with the
// stage it occurred at. Callers see this one type, never a raw parse error.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("quiz generation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Completer is the generative-model interface the authoring adapter
// consumes. The reply is free text with no schema guarantee.
type Completer interface {
	Complete(ctx context.Context, prompt, system string) (string, error)
}

// Generator authors quizzes by prompting a generative model and extracting
// a well-formed quiz from its free-text reply. It is stateless and safe
// for concurrent use.
type Generator struct {
	llm Completer
}

// NewGenerator creates a quiz generator backed by the given model client.
func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

const generationSystemContext = `You are an assistant specialized in teaching the C programming language for the C2P (C First Steps) community.
Your goal is to help members understand C programming concepts in a clear and pedagogical way.`

// Generate produces a validated quiz on the given topic. questionCount and
// difficulty fall back to DefaultQuestionCount and DefaultDifficulty when
// zero-valued. Any failure — model call, extraction, parse, or shape — is
// returned as a *GenerationError; no retry or repair is attempted here,
// retry policy belongs to the caller.
func (g *Generator) Generate(ctx context.Context, topic string, questionCount int, difficulty string) (*models.Quiz, error) {
	if questionCount <= 0 {
		questionCount = DefaultQuestionCount
	}
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}

	prompt := buildQuizPrompt(topic, questionCount, difficulty)

	reply, err := g.llm.Complete(ctx, prompt, generationSystemContext)
	if err != nil {
		return nil, &GenerationError{Stage: StageCompletion, Err: err}
	}

	candidate, err := extractJSON(reply)
	if err != nil {
		return nil, &GenerationError{Stage: StageExtraction, Err: err}
	}

	var q models.Quiz
	if err := json.Unmarshal([]byte(candidate), &q); err != nil {
		return nil, &GenerationError{Stage: StageParse, Err: err}
	}

	if err := q.Validate(); err != nil {
		return nil, &GenerationError{Stage: StageShape, Err: err}
	}

	if q.Topic == "" {
		q.Topic = topic
	}

	log.Printf("Generated quiz %q with %d questions on topic %q", q.Title, len(q.Questions), q.Topic)
	return &q, nil
}

// buildQuizPrompt fully specifies the JSON shape the model must return so
// that extraction and parsing have a fighting chance.
func buildQuizPrompt(topic string, questionCount int, difficulty string) string {
	return fmt.Sprintf(`Generate a quiz of %d multiple-choice questions (4 options each) on the topic "%s" in the C programming language.
The difficulty level is: %s.

For each question:
1. Provide the question statement
2. Offer 4 answer options (A, B, C, D)
3. Mark exactly one option as correct
4. Provide a brief explanation for the correct answer

Return the data as JSON with this structure:
{
  "title": "Quiz on %s",
  "description": "Description of the quiz",
  "topic": "%s",
  "estimatedDurationMinutes": 10,
  "questions": [
    {
      "text": "Question statement",
      "options": [
        {"text": "Option A", "isCorrect": true/false},
        {"text": "Option B", "isCorrect": true/false},
        ...
      ],
      "explanation": "Explanation of the correct answer",
      "difficulty": "%s",
      "topic": "%s"
    },
    ...
  ]
}`, questionCount, topic, difficulty, topic, topic, difficulty, topic)
}

// extractRule is one strategy for locating a JSON payload inside free text.
// Rules are tried in order and the first match wins; new fallback
// strategies are appended without disturbing earlier ones.
type extractRule struct {
	name  string
	apply func(string) (string, bool)
}

var extractRules = []extractRule{
	{name: "fenced-json-block", apply: extractFencedJSON},
	{name: "brace-span", apply: extractBraceSpan},
}

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

func extractFencedJSON(reply string) (string, bool) {
	m := fencedJSONPattern.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractBraceSpan takes the greedy span from the first '{' to the last
// '}' in the reply.
func extractBraceSpan(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return reply[start : end+1], true
}

// extractJSON runs the prioritized rule list over an untrusted model reply
// and returns the candidate JSON string with any residual fence markers
// stripped.
func extractJSON(reply string) (string, error) {
	for _, rule := range extractRules {
		if candidate, ok := rule.apply(reply); ok {
			candidate = strings.ReplaceAll(candidate, "```json", "")
			candidate = strings.ReplaceAll(candidate, "```", "")
			return strings.TrimSpace(candidate), nil
		}
	}
	return "", ErrNoJSONFound
}
