package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/askdb-ai/askdb/pkg/models"
)

// toolHandler is a function that handles a tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"askdb_ask":          handleAsk,
	"askdb_schema":       handleSchema,
	"askdb_cache_stats":  handleCacheStats,
	"askdb_audit_search": handleAuditSearch,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "askdb_ask",
		Description: "Answer a natural-language question about the dataset. Semantically similar questions are served from cache.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"question"},
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "The question to answer",
				},
			},
		},
	},
	{
		Name:        "askdb_schema",
		Description: "Show the column names and types of the queried table.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "askdb_cache_stats",
		Description: "Show semantic cache statistics (entries, hits, misses).",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "askdb_audit_search",
		Description: "Search the ask audit log with optional filters.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cache_status": map[string]any{
					"type":        "string",
					"description": "Filter by cache status: hit, miss, or error (optional)",
				},
				"since": map[string]any{
					"type":        "string",
					"description": "Start date in YYYY-MM-DD format (optional)",
				},
			},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

type askArgs struct {
	Question string `json:"question"`
}

func handleAsk(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args askArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Question == "" {
		return errorResult("question is required")
	}

	res, err := s.engine.Ask(ctx, args.Question)
	if err != nil {
		// The response is still well-formed; surface the degradation as text.
		return textResult(formatAskResult(res.Response) + "\n(degraded: " + err.Error() + ")")
	}
	return textResult(formatAskResult(res.Response))
}

func handleSchema(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	schema, err := s.schema.Describe(ctx, s.table)
	if err != nil {
		return errorResult("Error reading schema: " + err.Error())
	}
	return textResult(formatSchema(schema))
}

func handleCacheStats(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	if s.cache == nil {
		return textResult("Cache is not configured.")
	}
	stats, err := s.cache.Stats()
	if err != nil {
		return errorResult("Error fetching cache stats: " + err.Error())
	}
	return textResult(formatCacheStats(stats))
}

type auditSearchArgs struct {
	CacheStatus string `json:"cache_status"`
	Since       string `json:"since"`
}

func handleAuditSearch(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	if s.auditor == nil {
		return textResult("Audit logging is not configured.")
	}
	var args auditSearchArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}

	opts := models.AuditQueryOpts{
		CacheStatus: args.CacheStatus,
		Limit:       50,
	}
	if args.Since != "" {
		t, err := time.Parse("2006-01-02", args.Since)
		if err != nil {
			return errorResult("Invalid since date (use YYYY-MM-DD): " + err.Error())
		}
		opts.Since = t
	}

	records, err := s.auditor.Query(ctx, opts)
	if err != nil {
		return errorResult("Error searching audit log: " + err.Error())
	}
	return textResult(formatAuditRecords(records))
}
