// Package server is the HTTP surface of askdb. It owns routing, CORS, and
// request validation; everything behind POST /v1/ask is delegated to the
// engine, which never fails hard: internal failures surface to clients as
// an empty result.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/askdb-ai/askdb/pkg/audit"
	"github.com/askdb-ai/askdb/pkg/config"
	"github.com/askdb-ai/askdb/pkg/engine"
	"github.com/askdb-ai/askdb/pkg/models"
	"github.com/google/uuid"
)

// Asker answers natural-language questions.
type Asker interface {
	Ask(ctx context.Context, question string) (engine.Result, error)
}

// SchemaSource serves the current relation schema.
type SchemaSource interface {
	Describe(ctx context.Context, table string) (models.TableSchema, error)
}

// Server is the askdb HTTP API.
type Server struct {
	cfg     *config.Config
	engine  Asker
	schema  SchemaSource
	auditor *audit.Logger
	mux     *http.ServeMux
}

// New creates a Server wired with all dependencies. auditor may be nil.
func New(cfg *config.Config, asker Asker, schema SchemaSource, auditor *audit.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  asker,
		schema:  schema,
		auditor: auditor,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/v1/ask", s.handleAsk)
	s.mux.HandleFunc("/v1/schema", s.handleSchema)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler with permissive CORS for browser
// clients.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("askdb listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeJSONError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	reqStart := time.Now()
	res, err := s.engine.Ask(r.Context(), req.Question)
	if err != nil {
		// Fail-soft: the response below is still well-formed.
		log.Printf("ask degraded: %v", err)
	}

	cacheStatus := "miss"
	switch {
	case res.Response.Cached:
		cacheStatus = "hit"
	case err != nil && !errors.Is(err, engine.ErrCacheUnavailable):
		cacheStatus = "error"
	}

	if s.auditor != nil {
		entry := models.AskRecord{
			ID:          uuid.NewString(),
			Question:    req.Question,
			Query:       res.Query,
			CacheStatus: cacheStatus,
			RowCount:    len(res.Response.Rows),
			LatencyMs:   time.Since(reqStart).Milliseconds(),
			CreatedAt:   time.Now().UTC(),
		}
		go func() {
			if err := s.auditor.Record(context.Background(), entry); err != nil {
				log.Printf("audit record error: %v", err)
			}
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	if res.Response.Cached {
		w.Header().Set("X-Askdb-Cache", "hit")
	} else {
		w.Header().Set("X-Askdb-Cache", "miss")
	}
	_ = json.NewEncoder(w).Encode(res.Response)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	schema, err := s.schema.Describe(r.Context(), s.cfg.Data.Table)
	if err != nil {
		log.Printf("schema error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to read schema")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(schema)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"code":%d}}`, message, code)
}
