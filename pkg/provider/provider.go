// Package provider is the HTTP client for the upstream model service. One
// client serves both model boundaries: text embeddings and chat completions,
// over the OpenAI-compatible wire format (which Ollama also speaks).
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/askdb-ai/askdb/pkg/config"
	"github.com/askdb-ai/askdb/pkg/models"
)

// ErrEmptyEmbedding is returned when the upstream answers with no vector or
// an empty one. A zero vector is never substituted: it would silently skew
// every downstream similarity comparison.
var ErrEmptyEmbedding = errors.New("provider: upstream returned empty embedding")

// ErrEmptyCompletion is returned when a chat completion carries no choices.
var ErrEmptyCompletion = errors.New("provider: upstream returned empty completion")

// Client calls the configured model endpoint. It performs no retries; retry
// policy belongs to the caller.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
}

// New creates a Client with a timeout-bounded HTTP client.
func New(cfg config.ProviderConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Embed turns text into a dense vector using the configured embedding model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("provider: embed called with empty text")
	}

	reqBody := models.EmbeddingsRequest{
		Model: c.cfg.EmbedModel,
		Input: []string{text},
	}

	var resp models.EmbeddingsResponse
	if err := c.post(ctx, "/embeddings", reqBody, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return resp.Data[0].Embedding, nil
}

// Complete sends a single-turn prompt to the configured chat model and
// returns the raw completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := models.ChatCompletionRequest{
		Model:    c.cfg.ChatModel,
		Messages: []models.ChatMessage{{Role: "user", Content: prompt}},
	}

	var resp models.ChatCompletionResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("provider: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("provider: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider: upstream %s returned %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("provider: decode response: %w", err)
	}
	return nil
}
