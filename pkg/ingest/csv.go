// Package ingest loads a flat CSV file into the relational store, inferring
// column types from the data. It is a bootstrap adapter for demo datasets,
// not a general ETL tool: the target table is dropped and recreated, and the
// insert placeholders assume the sqlite driver.
package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/askdb-ai/askdb/pkg/models"
)

// LoadCSV reads path (header row required) into table, replacing any
// existing table of that name. It returns the inferred columns and the
// number of rows inserted.
func LoadCSV(ctx context.Context, db *sql.DB, table, path string) ([]models.Column, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("ingest: %s has no header row", path)
	}

	header := records[0]
	rows := records[1:]
	cols := inferColumns(header, rows)

	if err := createTable(ctx, db, table, cols); err != nil {
		return nil, 0, err
	}

	n, err := insertRows(ctx, db, table, cols, rows)
	if err != nil {
		return nil, 0, err
	}
	return cols, n, nil
}

// inferColumns assigns each header a type by scanning its values: all
// integers → INTEGER, all numeric → FLOAT, anything else → TEXT. Empty
// values are ignored for inference and stored as NULL.
func inferColumns(header []string, rows [][]string) []models.Column {
	cols := make([]models.Column, len(header))
	for i, name := range header {
		cols[i] = models.Column{Name: strings.TrimSpace(name), Type: inferType(rows, i)}
	}
	return cols
}

func inferType(rows [][]string, col int) models.ColumnType {
	sawValue := false
	allInt, allFloat := true, true
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		sawValue = true
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloat = false
		}
	}
	switch {
	case !sawValue:
		return models.ColumnText
	case allInt:
		return models.ColumnInteger
	case allFloat:
		return models.ColumnFloat
	default:
		return models.ColumnText
	}
}

func createTable(ctx context.Context, db *sql.DB, table string, cols []models.Column) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(table))); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), sqlType(c.Type))
	}
	stmt := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(table), strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, db *sql.DB, table string, cols []models.Column, rows [][]string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ingest tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "),
	))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		values := make([]any, len(cols))
		for j, c := range cols {
			var raw string
			if j < len(row) {
				raw = strings.TrimSpace(row[j])
			}
			v, err := convertValue(raw, c.Type)
			if err != nil {
				return 0, fmt.Errorf("row %d column %s: %w", i+1, c.Name, err)
			}
			values[j] = v
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ingest tx: %w", err)
	}
	return len(rows), nil
}

func convertValue(raw string, t models.ColumnType) (any, error) {
	if raw == "" {
		return nil, nil
	}
	switch t {
	case models.ColumnInteger:
		return strconv.ParseInt(raw, 10, 64)
	case models.ColumnFloat:
		return strconv.ParseFloat(raw, 64)
	default:
		return raw, nil
	}
}

func sqlType(t models.ColumnType) string {
	switch t {
	case models.ColumnInteger:
		return "INTEGER"
	case models.ColumnFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// quoteIdent quotes an identifier, escaping embedded quotes. Works for both
// sqlite and PostgreSQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
