package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lazypower/habits/internal/commands"
	"github.com/lazypower/habits/internal/store"
)

// Options configures optional server behavior.
type Options struct {
	AllowedOrigins []string
	Logger         *zap.Logger

	// OnFatal receives command errors that mean the store is corrupt.
	OnFatal func(error)
}

// Server is the habits HTTP command bridge.
type Server struct {
	db       *store.DB
	commands *commands.Dispatcher
	router   chi.Router
	log      *zap.Logger
	onFatal  func(error)
	origins  []string
	version  string
	started  time.Time
}

// New creates a new Server over db and the command dispatcher.
func New(db *store.DB, cmds *commands.Dispatcher, version string, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		db:       db,
		commands: cmds,
		log:      log.Named("http"),
		onFatal:  opts.OnFatal,
		origins:  opts.AllowedOrigins,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/commands", s.handleListCommands)
		r.Post("/invoke/{command}", s.handleInvoke)
	})
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := s.db.Healthy(r.Context())
	version, err := s.db.SchemaVersion()

	code, status := http.StatusOK, "ok"
	body := map[string]any{
		"version":        s.version,
		"uptime":         time.Since(s.started).Seconds(),
		"db":             dbOK,
		"db_path":        s.db.Path,
		"schema_version": version,
	}
	if err != nil {
		s.log.Warn("health: schema version", zap.Error(err))
		body["schema_error"] = err.Error()
	}
	if !dbOK || err != nil {
		code, status = http.StatusServiceUnavailable, "degraded"
	}
	body["status"] = status
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
