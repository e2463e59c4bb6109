// Package vector is the semantic cache store: question embeddings with their
// compiled query and serialized response, persisted in SQLite with
// brute-force cosine search. Entries are written once and never updated;
// retention is an operator concern (Clear), not pipeline behavior.
package vector

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/askdb-ai/askdb/pkg/models"
)

// Store is the sqlite-backed vector cache.
type Store struct {
	db     *sql.DB
	dim    int
	hits   atomic.Int64
	misses atomic.Int64
}

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	id         TEXT PRIMARY KEY,
	question   TEXT NOT NULL,
	query      TEXT NOT NULL,
	response   BLOB NOT NULL,
	embedding  BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// New opens the cache database at dbPath and ensures the schema. dim is the
// embedding dimension every stored and queried vector must have.
func New(dbPath string, dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vector: dimension must be positive, got %d", dim)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &Store{db: db, dim: dim}, nil
}

// Upsert stores a cache entry, replacing any entry with the same id.
func (s *Store) Upsert(ctx context.Context, e models.CacheEntry) error {
	if e.ID == "" {
		return fmt.Errorf("vector: upsert with empty id")
	}
	if len(e.Embedding) != s.dim {
		return fmt.Errorf("vector: upsert dimension %d, store expects %d", len(e.Embedding), s.dim)
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (id, question, query, response, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Question, e.Query, e.Response, encodeEmbedding(e.Embedding), createdAt,
	)
	if err != nil {
		return fmt.Errorf("cache upsert: %w", err)
	}
	return nil
}

// Search returns up to topK entries ordered by descending cosine similarity
// to vec. An empty store yields an empty result, not an error. Entries whose
// stored embedding cannot be scored are skipped.
func (s *Store) Search(ctx context.Context, vec []float32, topK int) ([]models.SimilarityMatch, error) {
	if topK <= 0 {
		return nil, nil
	}
	if len(vec) != s.dim {
		return nil, fmt.Errorf("vector: search dimension %d, store expects %d", len(vec), s.dim)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, query, response, embedding, created_at FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("cache search: %w", err)
	}
	defer rows.Close()

	var matches []models.SimilarityMatch
	for rows.Next() {
		var e models.CacheEntry
		var blob []byte
		if err := rows.Scan(&e.ID, &e.Question, &e.Query, &e.Response, &blob, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		emb, err := decodeEmbedding(blob)
		if err != nil {
			continue
		}
		score, err := cosineSimilarity(vec, emb)
		if err != nil {
			continue
		}
		e.Embedding = emb
		matches = append(matches, models.SimilarityMatch{Entry: e, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache search: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// RecordHit increments the per-process hit counter. The hit decision itself
// (threshold comparison) belongs to the orchestrator.
func (s *Store) RecordHit() { s.hits.Add(1) }

// RecordMiss increments the per-process miss counter.
func (s *Store) RecordMiss() { s.misses.Add(1) }

// Stats returns cache performance metrics.
func (s *Store) Stats() (models.CacheStats, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{
		Entries: count,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}, nil
}

// Clear removes all cache entries.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
