// internal/httpserver/server.go
//
// HTTP server wiring for the Connections backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Puzzle endpoints: mounted under /puzzles (see routes_puzzles.go).
//   - Stats facts and manual sync.
//
// Notes:
//   - CORS is origin-aware for a single local client (CLIENT_ORIGIN).
//   - Every handler goes through session.Service, which serializes mutations
//     per puzzle and persists after each one.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/nyt"
	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/session"
	"github.com/robalobadob/connections/internal/store"
)

// Server bundles the router and the session service.
type Server struct {
	r      *chi.Mux
	svc    *session.Service
	origin string
}

// DefaultRequestTimeout bounds handlers when no fetch timeout is configured.
const DefaultRequestTimeout = 15 * time.Second

// RequestTimeout is the handler budget for a given upstream fetch timeout:
// room for both the v2 and the v1 attempt plus local work.
func RequestTimeout(fetchTimeout time.Duration) time.Duration {
	if fetchTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return 2*fetchTimeout + 5*time.Second
}

// New constructs a Server, installs middleware, and registers routes.
// fetchTimeout is the upstream client's per-request timeout; zero uses the default budget.
func New(svc *session.Service, clientOrigin string, fetchTimeout time.Duration) *Server {
	if clientOrigin == "" {
		clientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), svc: svc, origin: clientOrigin}

	// --- middleware ---
	timeout := RequestTimeout(fetchTimeout)
	s.r.Use(chimw.RequestID)        // add X-Request-ID
	s.r.Use(chimw.RealIP)           // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)              // zerolog request line
	s.r.Use(chimw.Recoverer)        // recover from panics
	s.r.Use(chimw.Timeout(timeout)) // bound handler time (includes upstream fetch)
	s.r.Use(jsonContentType)        // default JSON responses
	s.r.Use(s.cors)                 // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"connections-go","endpoints":["/health","/puzzles","/stats","POST /sync"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountPuzzles(s.r)
	s.r.Get("/stats", s.handleStats)
	s.r.Post("/sync", s.handleSync)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorRes{Error: "not_found", Path: r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog logs method, path, status and duration for every request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("dur", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// ------------------------------ STATS ---------------------------------------

type statsRes struct {
	Games []puzzle.Facts `json:"games"`
}

// handleStats returns the raw per-game facts; aggregation is left to the client.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	facts, err := s.svc.Facts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsRes{Games: facts})
}

type syncRes struct {
	Date  string `json:"date"`
	Added bool   `json:"added"`
}

// handleSync fetches today's puzzle if it is not stored yet.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	added, err := s.svc.Sync(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, syncRes{Date: s.svc.Today(), Added: added})
}

// ------------------------------ helpers -------------------------------------

type errorRes struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidDate),
		errors.Is(err, session.ErrInvalidGuess),
		errors.Is(err, session.ErrNotInPlay):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, nyt.ErrNotFound), errors.Is(err, nyt.ErrDecode):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorRes{Error: err.Error()})
}
