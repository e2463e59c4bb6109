// Package audit records every answered question, with the generated SQL,
// cache status, and latency, in a dedicated SQLite database.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/askdb-ai/askdb/pkg/models"
)

// Logger writes and queries ask records.
type Logger struct {
	db   *sql.DB
	cfg  models.AuditConfig
	done chan struct{}
	wg   sync.WaitGroup
}

// New opens the audit database, creates the schema, and starts the
// retention loop.
func New(cfg models.AuditConfig) (*Logger, error) {
	db, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}

	l := &Logger{
		db:   db,
		cfg:  cfg,
		done: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.retentionLoop()

	return l, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS ask_log (
		id           TEXT PRIMARY KEY,
		question     TEXT NOT NULL,
		query        TEXT,
		cache_status TEXT NOT NULL,
		row_count    INTEGER,
		latency_ms   INTEGER,
		created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_ask_created ON ask_log(created_at)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_ask_status ON ask_log(cache_status)`)
	return err
}

// Record inserts an ask record. A nil Logger is a no-op so callers can wire
// audit unconditionally.
func (l *Logger) Record(ctx context.Context, rec models.AskRecord) error {
	if l == nil || l.db == nil {
		return nil
	}

	query := rec.Query
	if l.cfg.MaxQuerySize > 0 && len(query) > l.cfg.MaxQuerySize {
		query = query[:l.cfg.MaxQuerySize]
	}

	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO ask_log
		 (id, question, query, cache_status, row_count, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Question, query, rec.CacheStatus,
		rec.RowCount, rec.LatencyMs, rec.CreatedAt,
	)
	return err
}

// Query returns ask records matching the given options, newest first.
func (l *Logger) Query(ctx context.Context, opts models.AuditQueryOpts) ([]models.AskRecord, error) {
	q := `SELECT id, question, query, cache_status, row_count, latency_ms, created_at
		FROM ask_log WHERE 1=1`
	var args []any

	if opts.CacheStatus != "" {
		q += " AND cache_status = ?"
		args = append(args, opts.CacheStatus)
	}
	if !opts.Since.IsZero() {
		q += " AND created_at >= ?"
		args = append(args, opts.Since)
	}

	q += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var records []models.AskRecord
	for rows.Next() {
		var r models.AskRecord
		var query sql.NullString
		if err := rows.Scan(&r.ID, &r.Question, &query, &r.CacheStatus,
			&r.RowCount, &r.LatencyMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		r.Query = query.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stats returns per-day ask counts with cache hits broken out.
func (l *Logger) Stats(ctx context.Context) ([]models.AuditStat, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT date(created_at) AS day, count(*) AS cnt,
		        sum(CASE WHEN cache_status = 'hit' THEN 1 ELSE 0 END) AS hits
		 FROM ask_log GROUP BY day ORDER BY day DESC`)
	if err != nil {
		return nil, fmt.Errorf("audit stats: %w", err)
	}
	defer rows.Close()

	var stats []models.AuditStat
	for rows.Next() {
		var s models.AuditStat
		var day sql.NullString
		if err := rows.Scan(&day, &s.Count, &s.Hits); err != nil {
			return nil, fmt.Errorf("scan audit stat: %w", err)
		}
		s.Day = day.String
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Cleanup deletes records older than the configured retention period. A
// non-positive retention keeps everything.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	if l.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -l.cfg.RetentionDays)
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM ask_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit cleanup: %w", err)
	}
	return res.RowsAffected()
}

// Close stops the retention goroutine and closes the database.
func (l *Logger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.db.Close()
}

func (l *Logger) retentionLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			_, _ = l.Cleanup(context.Background())
		}
	}
}
