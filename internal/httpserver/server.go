// internal/httpserver/server.go
//
// HTTP server wiring for the tree navigation service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request metrics).
//   - Public endpoints: "/", "/health", "/metrics", "/stats".
//   - Session endpoints: mounted under /session (see routes_session.go).
//
// Notes:
//   - The tree is loaded and validated once by the caller and only read here,
//     so handlers share it without locking.
//   - Sessions live in a store.Store; the chain of codes is the whole state,
//     and a signed token of it lets any instance resume a session.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/fiveletters/internal/stats"
	"github.com/robalobadob/fiveletters/internal/store"
	"github.com/robalobadob/fiveletters/internal/tree"
)

// Config holds the service settings that come from the environment.
type Config struct {
	TreeName     string        // reported by /stats and used to look up stats runs
	ClientOrigin string        // CORS origin, default http://localhost:5173
	JWTSecret    string        // HS256 key for session tokens
	TokenTTL     time.Duration // session token lifetime
}

// Server bundles router, tree, session store and optional stats history.
type Server struct {
	r       *chi.Mux
	tree    *tree.Tree
	store   store.Store
	runs    *stats.Store
	cfg     Config
	metrics *metrics
	report  stats.Report
	nodes   int
	depth   int
	locks   sync.Map // session ID -> *sync.Mutex
}

// New constructs a Server, installs middleware, and registers routes.
// runs may be nil when no catalog database is configured.
func New(t *tree.Tree, st store.Store, runs *stats.Store, cfg Config) *Server {
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev_secret_change_me"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 14 * 24 * time.Hour
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		r:       chi.NewRouter(),
		tree:    t,
		store:   st,
		runs:    runs,
		cfg:     cfg,
		metrics: newMetrics(reg),
		report:  stats.FromTree(t),
		nodes:   t.Root.Size(),
		depth:   t.Root.Depth(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(s.metrics.instrument)
	s.r.Use(jsonContentType)
	s.r.Use(cors(cfg.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "fiveletters",
			"tree":    cfg.TreeName,
			"endpoints": []string{
				"/health", "/metrics", "/stats",
				"POST /session/new", "GET /session/{id}", "POST /session/{id}/toggle",
				"POST /session/{id}/forward", "POST /session/{id}/back",
				"GET /session/{id}/token", "POST /session/resume",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.r.Get("/stats", s.handleStats)

	s.mountSessions(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start serves HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

type statsRes struct {
	Tree       string       `json:"tree"`
	WordLength int          `json:"wordLength"`
	RootWord   string       `json:"rootWord"`
	Nodes      int          `json:"nodes"`
	Depth      int          `json:"depth"`
	Report     stats.Report `json:"report"`
	Runs       []stats.Run  `json:"runs,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res := statsRes{
		Tree:       s.cfg.TreeName,
		WordLength: s.tree.Length,
		RootWord:   s.tree.Decode(s.tree.Root.Word),
		Nodes:      s.nodes,
		Depth:      s.depth,
		Report:     s.report,
	}
	if s.runs != nil && s.cfg.TreeName != "" {
		runs, err := s.runs.Runs(r.Context(), s.cfg.TreeName, 5)
		if err != nil {
			log.Warn().Err(err).Msg("load stats runs")
		}
		res.Runs = runs
	}
	writeJSON(w, http.StatusOK, res)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
