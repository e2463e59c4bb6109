package models

import "time"

// CacheEntry stores one answered question in the semantic cache. Response is
// the serialized row set captured at insertion time; on a cache hit it is
// returned verbatim, never re-executed.
type CacheEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Query     string    `json:"query"`
	Response  []byte    `json:"response"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SimilarityMatch pairs a cache entry with its cosine similarity to a query
// embedding. Score is in [-1, 1]; higher is more similar.
type SimilarityMatch struct {
	Entry CacheEntry
	Score float64
}

// CacheStats reports semantic cache performance metrics. Hit and miss
// counters are per-process.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
