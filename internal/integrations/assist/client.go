package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"carebridge/internal/integrations/config"
	"carebridge/internal/shared/logger"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key is set for the assist proxies.
var ErrNotConfigured = errors.New("assist integration is not configured")

const storySystemPrompt = "You are a warm, gentle storyteller helping a person " +
	"with memory loss revisit happy moments. Keep stories short, simple and " +
	"positive. Use plain language and short sentences."

// Client proxies story generation and text-to-speech through an
// OpenAI-compatible API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	voice   string
	http    *http.Client
	log     logger.Logger
}

// NewClient creates an assist client. Configured reports false when the API
// key is absent.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	return &Client{
		baseURL: cfg.AssistBaseURL,
		apiKey:  cfg.AssistAPIKey,
		model:   cfg.AssistModel,
		voice:   cfg.AssistVoice,
		http:    &http.Client{Timeout: cfg.AssistTimeout},
		log:     log,
	}
}

// Configured reports whether the upstream API is usable.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateStory produces a short memory story from the prompt.
func (c *Client) GenerateStory(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: storySystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	res, err := c.post(ctx, "/chat/completions", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.log.Warn("Story generation upstream error", zap.Int("status", res.StatusCode))
		return "", fmt.Errorf("assist upstream returned %d", res.StatusCode)
	}

	var payload chatResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("assist upstream returned no choices")
	}
	return payload.Choices[0].Message.Content, nil
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// Speech synthesizes the text as MP3 audio.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(speechRequest{
		Model: "tts-1",
		Input: text,
		Voice: c.voice,
	})
	if err != nil {
		return nil, err
	}

	res, err := c.post(ctx, "/audio/speech", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.log.Warn("Speech synthesis upstream error", zap.Int("status", res.StatusCode))
		return nil, fmt.Errorf("assist upstream returned %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.http.Do(req)
}
