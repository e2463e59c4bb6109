package models

import "time"

// AuditConfig controls the ask audit log.
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DBPath        string `yaml:"db_path"`
	RetentionDays int    `yaml:"retention_days"`
	MaxQuerySize  int    `yaml:"max_query_size"`
}

// AskRecord is one audited question/answer cycle.
type AskRecord struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Query       string    `json:"query"`
	CacheStatus string    `json:"cache_status"`
	RowCount    int       `json:"row_count"`
	LatencyMs   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuditQueryOpts filters audit log queries. Zero values mean no filter.
type AuditQueryOpts struct {
	CacheStatus string
	Since       time.Time
	Limit       int
}

// AuditStat is an aggregate count of asks per day.
type AuditStat struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
	Hits  int64  `json:"hits"`
}
