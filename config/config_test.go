package config_test

import (
	"testing"

	"github.com/c2p-community/c2pbot/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "test-token")
	t.Setenv("CLAUDE_API_KEY", "test-key")
}

func TestLoad_RequiresBotToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("CLAUDE_API_KEY", "test-key")

	if _, err := config.Load(); err == nil {
		t.Error("expected error when BOT_TOKEN is missing")
	}
}

func TestLoad_RequiresClaudeAPIKey(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test-token")
	t.Setenv("CLAUDE_API_KEY", "")

	if _, err := config.Load(); err == nil {
		t.Error("expected error when CLAUDE_API_KEY is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PATH", "")
	t.Setenv("CLAUDE_MODEL", "")
	t.Setenv("QUIZ_TOPICS", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DatabasePath != "./data/c2pbot.db" {
		t.Errorf("unexpected default database path %q", cfg.DatabasePath)
	}
	if cfg.ClaudeModel == "" {
		t.Error("expected a default Claude model")
	}
	if len(cfg.QuizTopics) == 0 {
		t.Error("expected default quiz topics")
	}
}

func TestLoad_ParsesTopicList(t *testing.T) {
	setRequired(t)
	t.Setenv("QUIZ_TOPICS", "pointers, arrays , files")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"pointers", "arrays", "files"}
	if len(cfg.QuizTopics) != len(want) {
		t.Fatalf("expected %d topics, got %v", len(want), cfg.QuizTopics)
	}
	for i, topic := range want {
		if cfg.QuizTopics[i] != topic {
			t.Errorf("topic %d: expected %q, got %q", i, topic, cfg.QuizTopics[i])
		}
	}
}
