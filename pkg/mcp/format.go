package mcp

import (
	"fmt"
	"strings"

	"github.com/askdb-ai/askdb/pkg/models"
)

// formatAskResult formats an answer as a text table in column order.
func formatAskResult(resp models.AskResponse) string {
	var b strings.Builder
	if resp.Cached {
		b.WriteString("(served from semantic cache)\n")
	}
	if len(resp.Rows) == 0 {
		b.WriteString("No rows.")
		return b.String()
	}

	for i, col := range resp.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(col)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, row := range resp.Rows {
		for i, col := range resp.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			fmt.Fprintf(&b, "%v", row[col])
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "(%d rows)", len(resp.Rows))
	return b.String()
}

// formatSchema formats the relation schema as a text table.
func formatSchema(s models.TableSchema) string {
	if s.Empty() {
		return fmt.Sprintf("Table %s has no columns.", s.Table)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", s.Table)
	fmt.Fprintf(&b, "%-30s %s\n", "Column", "Type")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, c := range s.Columns {
		fmt.Fprintf(&b, "%-30s %s\n", c.Name, c.Type)
	}
	return b.String()
}

// formatCacheStats formats cache statistics.
func formatCacheStats(stats models.CacheStats) string {
	total := stats.Hits + stats.Misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("Entries: %d\nHits:    %d\nMisses:  %d\nHit rate: %.1f%%",
		stats.Entries, stats.Hits, stats.Misses, hitRate)
}

// formatAuditRecords formats audit records as a text table.
func formatAuditRecords(records []models.AskRecord) string {
	if len(records) == 0 {
		return "No audit records found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-6s %6s %8s  %s\n",
		"Time", "Cache", "Rows", "Latency", "Question")
	b.WriteString(strings.Repeat("-", 90) + "\n")
	for _, r := range records {
		q := r.Question
		if len(q) > 40 {
			q = q[:37] + "..."
		}
		fmt.Fprintf(&b, "%-20s %-6s %6d %6dms  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.CacheStatus, r.RowCount, r.LatencyMs, q)
	}
	return b.String()
}
