package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// errBadQuery marks malformed query parameters other than node keys.
var errBadQuery = errors.New("invalid query parameter")

// Server exposes the read-only explorer over a JSON API.
type Server struct {
	Engine   ports.Explorer
	Version  string
	maxDepth int
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	observe  func(route string, status int)
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDefaultDepth sets the maxDepth applied when a request omits it.
func WithDefaultDepth(depth int) Option {
	return func(s *Server) {
		s.maxDepth = depth
	}
}

// WithMetrics mounts /metrics for gatherer and reports every request to observe.
// Either argument may be nil.
func WithMetrics(gatherer prometheus.Gatherer, observe func(route string, status int)) Option {
	return func(s *Server) {
		s.gatherer = gatherer
		s.observe = observe
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = strings.TrimSpace(version)
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Explorer, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		maxDepth: domain.DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/actors", s.GetActors)
	r.Get("/dialogues/search", s.SearchDialogues)
	r.Get("/tree", s.GetTree)
	r.Get("/connections", s.GetConnections)
	r.Get("/outcomes", s.GetOutcomes)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.Version != "" {
		resp["version"] = s.Version
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetActors handles the GET /actors request.
func (s *Server) GetActors(w http.ResponseWriter, r *http.Request) {
	actors, err := s.Engine.ListActors(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, actors)
}

// SearchDialogues handles the GET /dialogues/search?actor=&keyword= request.
func (s *Server) SearchDialogues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keyword := q.Get("keyword")
	if keyword == "" {
		s.writeError(w, r, fmt.Errorf("%w: keyword is required", errBadQuery))
		return
	}
	matches, err := s.Engine.SearchDialogues(r.Context(), q.Get("actor"), keyword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, matches)
}

// GetTree handles the GET /tree?conversationId=&dialogueId=&maxDepth= request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	depth := s.maxDepth
	if raw := r.URL.Query().Get("maxDepth"); raw != "" {
		depth, err = strconv.Atoi(raw)
		if err != nil || depth < 0 {
			s.writeError(w, r, fmt.Errorf("%w: maxDepth must be a non-negative integer, got %q", errBadQuery, raw))
			return
		}
	}

	tree, err := s.Engine.Explore(r.Context(), key, depth)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tree)
}

// GetConnections handles the GET /connections?conversationId=&dialogueId= request.
func (s *Server) GetConnections(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.Engine.Connections(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// GetOutcomes handles the GET /outcomes?conversationId=&dialogueId= request.
func (s *Server) GetOutcomes(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	outcomes, err := s.Engine.Outcomes(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcomes)
}

func parseKey(r *http.Request) (domain.NodeKey, error) {
	var key domain.NodeKey
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"conversationId", &key.ConversationID},
		{"dialogueId", &key.DialogueID},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			return key, fmt.Errorf("%w: %s is required", domain.ErrInvalidKey, p.name)
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return key, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidKey, p.name, raw)
		}
		*p.dst = v
	}
	return key, key.Validate()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidKey), errors.Is(err, errBadQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}
