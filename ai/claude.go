package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	claudeAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	apiTimeoutSec    = 60
	maxTokens        = 1000
)

// Client manages interactions with the Claude messages API.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a new Claude API client.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: apiTimeoutSec * time.Second,
		},
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	ID      string                 `json:"id,omitempty"`
	Content []claudeContent        `json:"content"`
	Usage   map[string]interface{} `json:"usage,omitempty"`
}

// Complete sends a prompt with a system context to Claude and returns the
// reply text. The reply is free text: callers must not assume any
// structure in it.
func (c *Client) Complete(ctx context.Context, prompt, system string) (string, error) {
	startTime := time.Now()

	reqBody := claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []claudeMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature: 0.7,
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	// Log the request payload (truncated for clarity)
	reqJSONStr := string(reqJSON)
	if len(reqJSONStr) > 200 {
		log.Printf("Claude request payload (truncated): %s...", reqJSONStr[:200])
	} else {
		log.Printf("Claude request payload: %s", reqJSONStr)
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeoutSec*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewBuffer(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	log.Printf("Sending request to Claude API...")
	resp, err := c.httpClient.Do(req)
	reqDuration := time.Since(startTime)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Printf("Claude API request timed out after %v", reqDuration)
			return "", fmt.Errorf("Claude API request timed out: %w", err)
		}
		return "", fmt.Errorf("failed to send request to Claude: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("Received response from Claude API in %v with status code: %d", reqDuration, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("failed to parse Claude response: %w", err)
	}

	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("no content in API response")
	}

	text := claudeResp.Content[0].Text
	log.Printf("Claude completion finished in %v. Content length: %d", time.Since(startTime), len(text))

	return text, nil
}

// AnswerQuestion asks Claude to answer a C programming question at the
// member's level, handing the model the member's recent questions as
// conversational context.
func (c *Client) AnswerQuestion(ctx context.Context, question, level string, recentQuestions []string) (string, error) {
	if level == "" {
		level = "beginner"
	}
	return c.Complete(ctx, tutorPrompt(question, level), tutorSystemContext(level, recentQuestions))
}

func tutorPrompt(question, level string) string {
	return fmt.Sprintf(`Question about the C language: "%s"

Answer this question about the C language in a pedagogical way.
Explain the concepts clearly and use well-commented code examples when needed.
Adapt your answer for a %s level.`, question, level)
}

func tutorSystemContext(level string, recentQuestions []string) string {
	system := fmt.Sprintf(`You are an assistant specialized in teaching the C programming language for the C2P (C First Steps) community.
Your goal is to help members understand C programming concepts in a clear and pedagogical way.

- Answer with precise and concise explanations
- Use simple, well-commented code examples when relevant
- Keep a pedagogical and encouraging tone

The member's level is: %s`, level)

	if len(recentQuestions) > 0 {
		system += fmt.Sprintf("\nHere are the member's recent questions: %s", strings.Join(recentQuestions, ", "))
	}

	return system
}
