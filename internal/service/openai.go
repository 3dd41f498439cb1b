package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"energy-advisor/internal/config"
)

const defaultSystemMessage = "You are an energy advisory assistant. Answer precisely and follow the requested output format exactly."

// OpenAIClient talks to an OpenAI-compatible chat-completions API. Failures
// are returned as sentinel-prefixed strings, never as errors; the stages
// treat those as "extraction found nothing" or fall back to deterministic
// templates.
type OpenAIClient struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewOpenAIClient creates a client for the configured OpenAI-compatible API.
func NewOpenAIClient(cfg config.OpenAIConfig, log *zap.SugaredLogger) *OpenAIClient {
	return &OpenAIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

var _ TextGenerator = (*OpenAIClient)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-prompt completion using the configured model.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) string {
	return c.Respond(ctx, defaultSystemMessage, prompt, c.cfg.Model)
}

// Respond sends a system+user message pair to the given model and returns
// the assistant text. On any failure the result is a string prefixed with
// "AI network error", "AI API error" or "AI parsing error".
func (c *OpenAIClient) Respond(ctx context.Context, systemMessage, userPrompt, modelName string) string {
	if !c.cfg.Enabled() {
		return fmt.Sprintf("%s: API key not configured", aiAPIErrorPrefix)
	}
	if modelName == "" {
		modelName = c.cfg.Model
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: modelName,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return fmt.Sprintf("%s: %v", aiParsingErrorPrefix, err)
	}

	url := strings.TrimSuffix(c.cfg.APIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("%s: %v", aiNetworkErrorPrefix, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("chat completion request failed", "error", err)
		return fmt.Sprintf("%s: %v", aiNetworkErrorPrefix, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Sprintf("%s: %v", aiNetworkErrorPrefix, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warnw("chat completion API error", "status", resp.StatusCode)
		return fmt.Sprintf("%s: status %d: %s", aiAPIErrorPrefix, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Sprintf("%s: %v", aiParsingErrorPrefix, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return fmt.Sprintf("%s: no content in response", aiParsingErrorPrefix)
	}

	return parsed.Choices[0].Message.Content
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
