package vector

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/askdb-ai/askdb/pkg/models"
	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T, dim int) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "cache_test.db"), dim)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEncodingRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75, 0}
	out, err := decodeEmbedding(encodeEmbedding(in))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeInvalidBlob(t *testing.T) {
	if _, err := decodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for blob length not a multiple of 4")
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cosineSimilarity(tc.a, tc.b)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if _, err := cosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Error("expected error for dimension mismatch")
	}
	if _, err := cosineSimilarity([]float32{0, 0}, []float32{1, 1}); err == nil {
		t.Error("expected error for zero-magnitude vector")
	}
}

func TestUpsertAndSearch(t *testing.T) {
	s := newTestStore(t, 3)
	ctx := context.Background()

	entries := []models.CacheEntry{
		{ID: "a", Question: "top movies", Query: "SELECT 1", Response: []byte(`{"rows":[]}`), Embedding: []float32{1, 0, 0}},
		{ID: "b", Question: "worst movies", Query: "SELECT 2", Response: []byte(`{"rows":[]}`), Embedding: []float32{0, 1, 0}},
		{ID: "c", Question: "best movies", Query: "SELECT 3", Response: []byte(`{"rows":[]}`), Embedding: []float32{0.9, 0.1, 0}},
	}
	for _, e := range entries {
		if err := s.Upsert(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Entry.ID != "a" {
		t.Errorf("expected top match a, got %s", matches[0].Entry.ID)
	}
	if matches[1].Entry.ID != "c" {
		t.Errorf("expected second match c, got %s", matches[1].Entry.ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches not in descending score order")
	}
}

// A vector looked up immediately after upsert must match itself above the
// 0.95 hit threshold.
func TestSelfSimilarityExceedsThreshold(t *testing.T) {
	s := newTestStore(t, 4)
	ctx := context.Background()

	vec := []float32{0.12, -0.7, 0.33, 0.51}
	err := s.Upsert(ctx, models.CacheEntry{
		ID: "self", Question: "q", Query: "SELECT 1", Response: []byte("{}"), Embedding: vec,
	})
	if err != nil {
		t.Fatal(err)
	}

	matches, err := s.Search(ctx, vec, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Score <= 0.95 {
		t.Errorf("self similarity %v should exceed 0.95", matches[0].Score)
	}
}

func TestSearchEmptyStore(t *testing.T) {
	s := newTestStore(t, 3)
	matches, err := s.Search(context.Background(), []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestDimensionMismatch(t *testing.T) {
	s := newTestStore(t, 3)
	ctx := context.Background()

	err := s.Upsert(ctx, models.CacheEntry{ID: "x", Embedding: []float32{1, 2}})
	if err == nil {
		t.Error("expected upsert error for wrong dimension")
	}
	if _, err := s.Search(ctx, []float32{1, 2}, 1); err == nil {
		t.Error("expected search error for wrong dimension")
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	for _, resp := range []string{"first", "second"} {
		err := s.Upsert(ctx, models.CacheEntry{
			ID: "same", Question: "q", Query: "SELECT 1", Response: []byte(resp), Embedding: []float32{1, 0},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 {
		t.Errorf("expected 1 entry after replace, got %d", stats.Entries)
	}

	matches, err := s.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if string(matches[0].Entry.Response) != "second" {
		t.Errorf("expected replaced response, got %s", matches[0].Entry.Response)
	}
}

func TestStatsAndClear(t *testing.T) {
	s := newTestStore(t, 2)
	ctx := context.Background()

	_ = s.Upsert(ctx, models.CacheEntry{ID: "a", Response: []byte("{}"), Embedding: []float32{1, 0}})
	s.RecordHit()
	s.RecordMiss()
	s.RecordMiss()

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	stats, _ = s.Stats()
	if stats.Entries != 0 {
		t.Errorf("expected 0 entries after clear, got %d", stats.Entries)
	}
}
