// Package schema reads the column layout of the queried relation. The
// schema is read fresh on every call since it gates the prompt the compiler
// builds; callers must not cache it across requests.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/askdb-ai/askdb/pkg/models"
)

// Inspector introspects one relational store. Driver is "sqlite" or "pgx".
type Inspector struct {
	db     *sql.DB
	driver string
}

// New creates an Inspector over the given database handle.
func New(db *sql.DB, driver string) *Inspector {
	return &Inspector{db: db, driver: driver}
}

// Describe returns the ordered column list of table.
func (i *Inspector) Describe(ctx context.Context, table string) (models.TableSchema, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch i.driver {
	case "pgx":
		rows, err = i.db.QueryContext(ctx,
			`SELECT column_name, data_type FROM information_schema.columns
			 WHERE table_name = $1 ORDER BY ordinal_position`, table)
	default:
		rows, err = i.db.QueryContext(ctx,
			`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	}
	if err != nil {
		return models.TableSchema{}, fmt.Errorf("describe %s: %w", table, err)
	}
	defer rows.Close()

	s := models.TableSchema{Table: table}
	for rows.Next() {
		var name, rawType string
		if err := rows.Scan(&name, &rawType); err != nil {
			return models.TableSchema{}, fmt.Errorf("scan column: %w", err)
		}
		s.Columns = append(s.Columns, models.Column{Name: name, Type: normalizeType(rawType)})
	}
	if err := rows.Err(); err != nil {
		return models.TableSchema{}, fmt.Errorf("describe %s: %w", table, err)
	}
	return s, nil
}

// normalizeType maps driver-specific type names onto the compiler's column
// type enum. Unknown types fall back to TEXT.
func normalizeType(raw string) models.ColumnType {
	t := strings.ToUpper(raw)
	switch {
	case strings.Contains(t, "INT"):
		return models.ColumnInteger
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"),
		strings.Contains(t, "DOUB"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "DECIMAL"):
		return models.ColumnFloat
	case strings.Contains(t, "BOOL"):
		return models.ColumnBoolean
	case strings.Contains(t, "BLOB"), strings.Contains(t, "BYTEA"):
		return models.ColumnBlob
	case strings.Contains(t, "TIME"), strings.Contains(t, "DATE"):
		return models.ColumnTimestamp
	default:
		return models.ColumnText
	}
}
