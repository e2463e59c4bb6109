// Package compiler turns a natural-language question into a SQL query by
// prompting a generative model with the table schema.
//
// The produced text is NOT validated or sandboxed in any way: whatever the
// model emits (after fence stripping) is executed as-is downstream. Callers
// own the blast radius of that decision.
package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/askdb-ai/askdb/pkg/models"
)

// ErrEmptySchema is returned when the relation has no columns to ground the
// prompt in.
var ErrEmptySchema = fmt.Errorf("compiler: schema has no columns")

// CompletionProvider is the generative model boundary.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Compiler compiles questions against one relation.
type Compiler struct {
	provider CompletionProvider
}

// New creates a Compiler backed by the given completion provider.
func New(provider CompletionProvider) *Compiler {
	return &Compiler{provider: provider}
}

// Compile builds a schema-grounded prompt for question and returns the
// model's answer sanitized into a bare query string. The empty string plus a
// non-nil error signals "cannot proceed"; it must never be executed.
func (c *Compiler) Compile(ctx context.Context, schema models.TableSchema, question string) (string, error) {
	if schema.Empty() {
		return "", ErrEmptySchema
	}

	raw, err := c.provider.Complete(ctx, BuildPrompt(schema, question))
	if err != nil {
		return "", fmt.Errorf("compiler: %w", err)
	}

	query := StripFences(raw)
	if query == "" {
		return "", fmt.Errorf("compiler: model produced no query text")
	}
	return query, nil
}

// BuildPrompt renders the instruction prompt for one question. It is a pure
// function of the schema and question: every column appears with its type,
// in schema order.
func BuildPrompt(schema models.TableSchema, question string) string {
	var b strings.Builder
	b.WriteString("You are a SQL generator. Write a single SQL query that answers the question below.\n\n")
	fmt.Fprintf(&b, "Table: %s\nColumns:\n", schema.Table)
	for _, col := range schema.Columns {
		fmt.Fprintf(&b, "  - %s (%s)\n", col.Name, col.Type)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\n", question)
	b.WriteString("Respond with only the SQL query. No explanation, no markdown.")
	return b.String()
}

// StripFences removes markdown code-fence markup the model may wrap around
// its answer and trims surrounding whitespace.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag such as "sql" on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.ContainsAny(s[:idx], " \t") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
