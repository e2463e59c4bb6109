package models

// Row is one result row, keyed by column name. Row order within a result is
// significant; column order is carried separately in AskResponse.Columns.
type Row map[string]any

// AskRequest is the inbound question payload.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the answer to a question: the rows produced by the compiled
// query, or the cached row set for a semantically equivalent question. Rows
// is always non-nil; an internal failure degrades to an empty result rather
// than an error.
type AskResponse struct {
	Question string   `json:"question"`
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
	Cached   bool     `json:"cached"`
}

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is an OpenAI-compatible chat completion request.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

// ChatCompletionResponse is an OpenAI-compatible chat completion response.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// EmbeddingsRequest is an OpenAI-compatible embeddings request.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingsResponse is an OpenAI-compatible embeddings response.
type EmbeddingsResponse struct {
	Object string          `json:"object"`
	Model  string          `json:"model"`
	Data   []EmbeddingData `json:"data"`
}

// EmbeddingData is one embedding vector within an embeddings response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}
