package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/askdb-ai/askdb/pkg/engine"
	"github.com/askdb-ai/askdb/pkg/models"
)

// fakeAsker implements Asker for testing.
type fakeAsker struct {
	res engine.Result
	err error
}

func (f *fakeAsker) Ask(_ context.Context, _ string) (engine.Result, error) {
	return f.res, f.err
}

// fakeSchema implements SchemaSource for testing.
type fakeSchema struct {
	schema models.TableSchema
}

func (f *fakeSchema) Describe(_ context.Context, _ string) (models.TableSchema, error) {
	return f.schema, nil
}

// fakeCache implements CacheStatter for testing.
type fakeCache struct {
	stats models.CacheStats
}

func (f *fakeCache) Stats() (models.CacheStats, error) { return f.stats, nil }

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, out.String())
	}
	return resp
}

func TestInitialize(t *testing.T) {
	srv := New(&fakeAsker{}, &fakeSchema{}, "movies", nil, nil, "test")
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	json.Unmarshal(data, &result)

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocol version = %s, want 2024-11-05", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "askdb" {
		t.Errorf("server name = %s, want askdb", result.ServerInfo.Name)
	}
}

func TestToolsList(t *testing.T) {
	srv := New(&fakeAsker{}, &fakeSchema{}, "movies", nil, nil, "test")
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	json.Unmarshal(data, &result)

	if len(result.Tools) != 4 {
		t.Errorf("got %d tools, want 4", len(result.Tools))
	}

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"askdb_ask", "askdb_schema", "askdb_cache_stats", "askdb_audit_search"} {
		if !names[want] {
			t.Errorf("missing tool: %s", want)
		}
	}
}

func TestToolCallAsk(t *testing.T) {
	asker := &fakeAsker{res: engine.Result{
		Response: models.AskResponse{
			Question: "Top 10 action movies?",
			Columns:  []string{"Title", "Rating"},
			Rows:     []models.Row{{"Title": "Heat", "Rating": 8.3}},
		},
	}}
	srv := New(asker, &fakeSchema{}, "movies", nil, nil, "test")

	params, _ := json.Marshal(ToolCallParams{
		Name:      "askdb_ask",
		Arguments: json.RawMessage(`{"question":"Top 10 action movies?"}`),
	})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`3`),
		Method:  "tools/call",
		Params:  params,
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	json.Unmarshal(data, &result)

	if len(result.Content) == 0 {
		t.Fatal("expected content")
	}
	if !strings.Contains(result.Content[0].Text, "Heat") {
		t.Errorf("expected Heat in output, got: %s", result.Content[0].Text)
	}
}

func TestToolCallAskMissingQuestion(t *testing.T) {
	srv := New(&fakeAsker{}, &fakeSchema{}, "movies", nil, nil, "test")

	params, _ := json.Marshal(ToolCallParams{Name: "askdb_ask", Arguments: json.RawMessage(`{}`)})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`4`),
		Method:  "tools/call",
		Params:  params,
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	json.Unmarshal(data, &result)

	if !result.IsError {
		t.Error("expected error result for missing question")
	}
}

func TestToolCallSchema(t *testing.T) {
	schema := &fakeSchema{schema: models.TableSchema{
		Table: "movies",
		Columns: []models.Column{
			{Name: "Title", Type: models.ColumnText},
			{Name: "Rating", Type: models.ColumnFloat},
		},
	}}
	srv := New(&fakeAsker{}, schema, "movies", nil, nil, "test")

	params, _ := json.Marshal(ToolCallParams{Name: "askdb_schema"})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`5`),
		Method:  "tools/call",
		Params:  params,
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	json.Unmarshal(data, &result)

	if !strings.Contains(result.Content[0].Text, "Rating") {
		t.Errorf("expected Rating in output, got: %s", result.Content[0].Text)
	}
}

func TestToolCallCacheStats(t *testing.T) {
	cache := &fakeCache{stats: models.CacheStats{Entries: 42, Hits: 10, Misses: 5}}
	srv := New(&fakeAsker{}, &fakeSchema{}, "movies", cache, nil, "test")

	params, _ := json.Marshal(ToolCallParams{Name: "askdb_cache_stats"})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`6`),
		Method:  "tools/call",
		Params:  params,
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	json.Unmarshal(data, &result)

	if !strings.Contains(result.Content[0].Text, "42") {
		t.Errorf("expected entry count in output, got: %s", result.Content[0].Text)
	}
}

func TestToolCallCacheNotConfigured(t *testing.T) {
	srv := New(&fakeAsker{}, &fakeSchema{}, "movies", nil, nil, "test")

	params, _ := json.Marshal(ToolCallParams{Name: "askdb_cache_stats"})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`7`),
		Method:  "tools/call",
		Params:  params,
	})

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	json.Unmarshal(data, &result)

	if !strings.Contains(result.Content[0].Text, "not configured") {
		t.Errorf("expected 'not configured', got: %s", result.Content[0].Text)
	}
}

func TestUnknownTool(t *testing.T) {
	srv := New(&fakeAsker{}, &fakeSchema{}, "movies", nil, nil, "test")

	params, _ := json.Marshal(ToolCallParams{Name: "nonexistent"})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`8`),
		Method:  "tools/call",
		Params:  params,
	})

	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("expected method not found error, got %+v", resp.Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	srv := New(&fakeAsker{}, &fakeSchema{}, "movies", nil, nil, "test")

	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`9`),
		Method:  "bogus/method",
	})

	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("expected method not found error, got %+v", resp.Error)
	}
}
