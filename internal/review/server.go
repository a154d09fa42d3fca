// Package review exposes the HTTP interface for inspecting crawled listings
// and toggling their reviewed flag. It is a pure consumer of the listing
// store; the crawl engine never imports it.
package review

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"jobtrawler/internal/listing"
	"jobtrawler/internal/metrics"
)

// Server wires the review routes to the listing store.
type Server struct {
	router chi.Router
	store  listing.Store
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store listing.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(s.logging)
	r.Use(recoverer(logger))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1/listings", func(r chi.Router) {
		r.Get("/", s.listListings)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getListing)
			r.Post("/reviewed", s.setReviewed)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listListings(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListAll(r.Context())
	if err != nil {
		s.logger.Error("list listings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read store")
		return
	}

	sortKey := strings.ToLower(r.URL.Query().Get("sort"))
	descending := strings.EqualFold(r.URL.Query().Get("order"), "desc")
	sortListings(records, sortKey, descending)

	writeJSON(w, http.StatusOK, map[string]any{
		"listings": records,
		"count":    len(records),
	})
}

func (s *Server) getListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	records, err := s.store.ListAll(r.Context())
	if err != nil {
		s.logger.Error("read store failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read store")
		return
	}
	for _, rec := range records {
		if rec.ID == id {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	writeError(w, http.StatusNotFound, "listing not found")
}

type reviewedRequest struct {
	Reviewed bool `json:"reviewed"`
}

func (s *Server) setReviewed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req reviewedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.store.SetReviewed(r.Context(), id, req.Reviewed); err != nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "reviewed": req.Reviewed})
}

// sortListings orders records by the requested column; unknown keys keep
// insertion order.
func sortListings(records []listing.Stored, key string, descending bool) {
	var less func(a, b listing.Stored) bool
	switch key {
	case "title":
		less = func(a, b listing.Stored) bool { return a.Record.Title < b.Record.Title }
	case "location":
		less = func(a, b listing.Stored) bool { return a.Record.Location < b.Record.Location }
	case "salary":
		less = func(a, b listing.Stored) bool { return a.Record.Salary < b.Record.Salary }
	case "reviewed":
		less = func(a, b listing.Stored) bool { return !a.Reviewed && b.Reviewed }
	case "added":
		less = func(a, b listing.Stored) bool { return a.AddedAt.Before(b.AddedAt) }
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		if descending {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", zap.Any("panic", rec))
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
