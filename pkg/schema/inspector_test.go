package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/askdb-ai/askdb/pkg/models"
	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDescribe(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE movies (
		"Title"  TEXT,
		"Genre"  TEXT,
		"Rating" REAL,
		"Year"   INTEGER
	)`)
	if err != nil {
		t.Fatal(err)
	}

	s, err := New(db, "sqlite").Describe(context.Background(), "movies")
	if err != nil {
		t.Fatal(err)
	}

	want := models.TableSchema{
		Table: "movies",
		Columns: []models.Column{
			{Name: "Title", Type: models.ColumnText},
			{Name: "Genre", Type: models.ColumnText},
			{Name: "Rating", Type: models.ColumnFloat},
			{Name: "Year", Type: models.ColumnInteger},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribeMissingTable(t *testing.T) {
	db := openTestDB(t)

	s, err := New(db, "sqlite").Describe(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Empty() {
		t.Errorf("expected empty schema for missing table, got %+v", s)
	}
}

func TestNormalizeType(t *testing.T) {
	cases := []struct {
		raw  string
		want models.ColumnType
	}{
		{"TEXT", models.ColumnText},
		{"varchar(255)", models.ColumnText},
		{"INTEGER", models.ColumnInteger},
		{"bigint", models.ColumnInteger},
		{"REAL", models.ColumnFloat},
		{"double precision", models.ColumnFloat},
		{"numeric", models.ColumnFloat},
		{"boolean", models.ColumnBoolean},
		{"BLOB", models.ColumnBlob},
		{"bytea", models.ColumnBlob},
		{"timestamp with time zone", models.ColumnTimestamp},
		{"date", models.ColumnTimestamp},
		{"uuid", models.ColumnText},
	}
	for _, tc := range cases {
		if got := normalizeType(tc.raw); got != tc.want {
			t.Errorf("normalizeType(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
