package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askdb-ai/askdb/pkg/config"
	"github.com/askdb-ai/askdb/pkg/models"
	"github.com/google/go-cmp/cmp"
)

func newTestClient(upstream *httptest.Server) *Client {
	return New(config.ProviderConfig{
		URL:        upstream.URL,
		APIKey:     "sk-test",
		EmbedModel: "test-embed",
		ChatModel:  "test-chat",
	})
}

func TestEmbed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("expected API key header")
		}
		var req models.EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "test-embed" {
			t.Errorf("expected test-embed, got %s", req.Model)
		}
		json.NewEncoder(w).Encode(models.EmbeddingsResponse{
			Data: []models.EmbeddingData{{Index: 0, Embedding: []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer upstream.Close()

	vec, err := newTestClient(upstream).Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{0.1, 0.2, 0.3}, vec); diff != "" {
		t.Errorf("embedding mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbedEmptyVector(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.EmbeddingsResponse{})
	}))
	defer upstream.Close()

	_, err := newTestClient(upstream).Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmptyEmbedding) {
		t.Errorf("expected ErrEmptyEmbedding, got %v", err)
	}
}

func TestEmbedUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer upstream.Close()

	if _, err := newTestClient(upstream).Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error for upstream 404")
	}
}

func TestEmbedEmptyText(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should not be called for empty text")
	}))
	defer upstream.Close()

	if _, err := newTestClient(upstream).Embed(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestComplete(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.ChatCompletionResponse{
			Choices: []models.Choice{
				{Message: models.ChatMessage{Role: "assistant", Content: "SELECT 1"}},
			},
		})
	}))
	defer upstream.Close()

	text, err := newTestClient(upstream).Complete(context.Background(), "write a query")
	if err != nil {
		t.Fatal(err)
	}
	if text != "SELECT 1" {
		t.Errorf("expected SELECT 1, got %q", text)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ChatCompletionResponse{})
	}))
	defer upstream.Close()

	_, err := newTestClient(upstream).Complete(context.Background(), "write a query")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}
