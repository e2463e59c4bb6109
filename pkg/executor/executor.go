// Package executor runs compiled query text against the relational store.
// The text is executed exactly as given; it is assumed pre-formed by the
// compiler and is not rewritten, parameterized, or checked for safety.
package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/askdb-ai/askdb/pkg/models"
)

// Executor executes queries over one database handle.
type Executor struct {
	db *sql.DB
}

// New creates an Executor.
func New(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Execute runs query and returns the result columns and rows in result
// order. A query that legitimately yields zero rows returns an empty slice
// and a nil error; store-level failures return a non-nil error and no rows.
func (e *Executor) Execute(ctx context.Context, query string) ([]string, []models.Row, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	out := []models.Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(models.Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return cols, out, nil
}

// normalizeValue makes scanned values JSON-friendly: byte slices become
// strings, everything else passes through.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
