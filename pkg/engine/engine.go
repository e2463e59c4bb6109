// Package engine composes the ask pipeline: embed the question, look for a
// semantically similar cached answer, and on a miss compile and execute a
// fresh query before writing it back to the cache.
//
// The pipeline is fail-soft: every step failure degrades to an empty,
// well-formed response. Ask additionally returns the typed step error so the
// calling adapter can observe what degraded; end users only ever see a
// (possibly empty) row set.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/askdb-ai/askdb/pkg/models"
	"github.com/google/uuid"
)

// Step failure taxonomy. Ask wraps the underlying cause with one of these so
// callers can branch with errors.Is.
var (
	ErrProviderUnavailable = errors.New("engine: model provider unavailable")
	ErrCacheUnavailable    = errors.New("engine: cache unavailable")
	ErrCompilationEmpty    = errors.New("engine: no usable query produced")
	ErrExecutionFailure    = errors.New("engine: query execution failed")
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CacheStore is the vector cache boundary.
type CacheStore interface {
	Search(ctx context.Context, vec []float32, topK int) ([]models.SimilarityMatch, error)
	Upsert(ctx context.Context, e models.CacheEntry) error
	RecordHit()
	RecordMiss()
}

// SchemaSource supplies the current relation schema. It is read fresh for
// every compilation.
type SchemaSource interface {
	Describe(ctx context.Context, table string) (models.TableSchema, error)
}

// QueryCompiler turns (schema, question) into a query string.
type QueryCompiler interface {
	Compile(ctx context.Context, schema models.TableSchema, question string) (string, error)
}

// QueryExecutor runs a query string against the relational store.
type QueryExecutor interface {
	Execute(ctx context.Context, query string) ([]string, []models.Row, error)
}

// Options are the orchestrator policy knobs.
type Options struct {
	// Table is the single relation questions are answered against.
	Table string
	// Threshold is the cosine similarity the top match must strictly exceed
	// to count as a cache hit.
	Threshold float64
	// TopK is the number of matches requested per lookup.
	TopK int
}

// Result is the outcome of one pipeline run. Query is the SQL that produced
// (or originally produced, on a hit) the response; empty when no query was
// compiled.
type Result struct {
	Response models.AskResponse
	Query    string
}

// Engine is the cache-aside orchestrator.
type Engine struct {
	embedder Embedder
	cache    CacheStore
	schema   SchemaSource
	compiler QueryCompiler
	executor QueryExecutor
	opts     Options
}

// New wires an Engine. cache may be nil, which disables the cache-aside path
// entirely (every question compiles and executes fresh).
func New(embedder Embedder, cache CacheStore, schema SchemaSource, compiler QueryCompiler, executor QueryExecutor, opts Options) *Engine {
	return &Engine{
		embedder: embedder,
		cache:    cache,
		schema:   schema,
		compiler: compiler,
		executor: executor,
		opts:     opts,
	}
}

// cachedPayload is the serialized row-set snapshot stored in a cache entry.
type cachedPayload struct {
	Columns []string     `json:"columns"`
	Rows    []models.Row `json:"rows"`
}

// Ask answers a question. The returned Response is always well-formed; on
// any internal failure it carries empty rows and the error identifies the
// failed step. A non-nil error alongside populated rows means the answer was
// served but the cache write was lost.
func (e *Engine) Ask(ctx context.Context, question string) (Result, error) {
	res := Result{Response: models.AskResponse{Question: question, Rows: []models.Row{}}}

	vec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// A failed lookup is a miss, not a fatal error; remember it so the
	// caller can still see the degradation.
	var cacheErr error
	if e.cache != nil {
		hit, hitRes, err := e.lookup(ctx, question, vec)
		if err != nil {
			cacheErr = fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
		if hit {
			e.cache.RecordHit()
			return hitRes, nil
		}
		e.cache.RecordMiss()
	}

	schema, err := e.schema.Describe(ctx, e.opts.Table)
	if err != nil {
		return res, fmt.Errorf("%w: schema: %v", ErrCompilationEmpty, err)
	}

	query, err := e.compiler.Compile(ctx, schema, question)
	if err != nil || query == "" {
		return res, fmt.Errorf("%w: %v", ErrCompilationEmpty, err)
	}
	res.Query = query

	cols, rows, err := e.executor.Execute(ctx, query)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrExecutionFailure, err)
	}
	res.Response.Columns = cols
	res.Response.Rows = rows

	if e.cache != nil {
		if err := e.store(ctx, question, query, vec, cols, rows); err != nil {
			// Response is served either way; the entry is just not cached.
			cacheErr = fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
	}
	return res, cacheErr
}

// lookup searches the cache and applies the hit threshold to the top match.
// On a hit the stored row set is returned verbatim; the originally compiled
// query is never re-executed, so staleness against since-changed data is an
// accepted tradeoff.
func (e *Engine) lookup(ctx context.Context, question string, vec []float32) (bool, Result, error) {
	matches, err := e.cache.Search(ctx, vec, e.opts.TopK)
	if err != nil {
		return false, Result{}, err
	}
	if len(matches) == 0 || matches[0].Score <= e.opts.Threshold {
		return false, Result{}, nil
	}

	entry := matches[0].Entry
	var payload cachedPayload
	if err := json.Unmarshal(entry.Response, &payload); err != nil {
		// Corrupt entry: degrade to a miss rather than failing the request.
		return false, Result{}, fmt.Errorf("decode cached response: %w", err)
	}
	if payload.Rows == nil {
		payload.Rows = []models.Row{}
	}
	return true, Result{
		Response: models.AskResponse{
			Question: question,
			Columns:  payload.Columns,
			Rows:     payload.Rows,
			Cached:   true,
		},
		Query: entry.Query,
	}, nil
}

// store writes a fresh cache entry for a served miss.
func (e *Engine) store(ctx context.Context, question, query string, vec []float32, cols []string, rows []models.Row) error {
	payload, err := json.Marshal(cachedPayload{Columns: cols, Rows: rows})
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return e.cache.Upsert(ctx, models.CacheEntry{
		ID:        newEntryID(),
		Question:  question,
		Query:     query,
		Response:  payload,
		Embedding: vec,
		CreatedAt: time.Now().UTC(),
	})
}

// newEntryID builds a unique entry id from the current time plus a random
// suffix, so concurrent misses for the same question cannot collide.
func newEntryID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}
