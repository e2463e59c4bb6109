package models

// ColumnType is the normalized type of a relation column, used when
// grounding generated SQL in the table schema.
type ColumnType string

const (
	ColumnText      ColumnType = "TEXT"
	ColumnInteger   ColumnType = "INTEGER"
	ColumnFloat     ColumnType = "FLOAT"
	ColumnBoolean   ColumnType = "BOOLEAN"
	ColumnBlob      ColumnType = "BLOB"
	ColumnTimestamp ColumnType = "TIMESTAMP"
)

// Column describes a single column of the queried relation.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// TableSchema is the ordered column list of one relation. Column order is
// stable within a process lifetime; consumers rely on it when building
// prompts.
type TableSchema struct {
	Table   string   `json:"table"`
	Columns []Column `json:"columns"`
}

// Empty reports whether the schema carries no usable columns.
func (s TableSchema) Empty() bool {
	return len(s.Columns) == 0
}
