package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// defaultTopics are the C language topics the bot offers quizzes on when
// QUIZ_TOPICS is not set.
var defaultTopics = []string{
	"basics",
	"variables",
	"pointers",
	"structures",
	"functions",
	"memory-allocation",
	"arrays",
	"strings",
	"files",
	"preprocessor",
}

// Config holds all the configuration for the application
type Config struct {
	BotToken     string
	ClaudeAPIKey string
	ClaudeModel  string
	DatabasePath string
	QuizTopics   []string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		return nil, errors.New("BOT_TOKEN environment variable is required")
	}

	claudeAPIKey := os.Getenv("CLAUDE_API_KEY")
	if claudeAPIKey == "" {
		return nil, errors.New("CLAUDE_API_KEY environment variable is required")
	}

	claudeModel := os.Getenv("CLAUDE_MODEL")
	if claudeModel == "" {
		claudeModel = "claude-3-opus-20240229"
	}

	// Set database path with default
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/c2pbot.db"
	}

	topics := defaultTopics
	if raw := os.Getenv("QUIZ_TOPICS"); raw != "" {
		topics = nil
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
		if len(topics) == 0 {
			return nil, errors.New("QUIZ_TOPICS must contain at least one topic")
		}
	}

	return &Config{
		BotToken:     botToken,
		ClaudeAPIKey: claudeAPIKey,
		ClaudeModel:  claudeModel,
		DatabasePath: dbPath,
		QuizTopics:   topics,
	}, nil
}
