// Package http exposes the ledger over a small JSON API. Handlers are thin:
// they parse, call the ledger or the core views, and serialize.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"receber/internal/cache"
	"receber/internal/core"
	"receber/internal/services"
	"receber/internal/store"
)

type Server struct {
	ledger           *services.Ledger
	themes           store.Store
	summaries        *cache.LRU[core.MonthSummary]
	projectionMonths int
}

// NewServer wires the routes and returns a ready-to-run http.Server; the
// caller sets timeouts and drives shutdown.
func NewServer(addr string, ledger *services.Ledger, themes store.Store, projectionMonths int) *http.Server {
	if projectionMonths < 1 {
		projectionMonths = 6
	}
	s := &Server{
		ledger:           ledger,
		themes:           themes,
		summaries:        cache.NewLRU[core.MonthSummary](64, 5*time.Minute),
		projectionMonths: projectionMonths,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleHealth)
	mux.HandleFunc("/api/state", s.withLogging(s.handleState))
	mux.HandleFunc("/api/people", s.withLogging(s.handlePeople))
	mux.HandleFunc("/api/people/", s.withLogging(s.handlePerson))
	mux.HandleFunc("/api/transactions", s.withLogging(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withLogging(s.handleTransaction))
	mux.HandleFunc("/api/summary", s.withLogging(s.handleSummary))
	mux.HandleFunc("/api/projection", s.withLogging(s.handleProjection))
	mux.HandleFunc("/api/breakdown", s.withLogging(s.handleBreakdown))
	mux.HandleFunc("/api/export.csv", s.withLogging(s.handleExportCSV))
	mux.HandleFunc("/api/theme", s.withLogging(s.handleTheme))

	return &http.Server{Addr: addr, Handler: mux}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		next(rec, r)

		slog.InfoContext(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID)
	}
}
