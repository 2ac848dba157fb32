package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/calculator"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/runner"
	"github.com/aretw0/keypad/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine defines what the HTTP adapter needs from a keypad engine.
// The observed variants report each change under the session lock so
// streamed diffs follow commit order.
type Engine interface {
	ports.SessionEngine
	ApplyObserved(ctx context.Context, sessionID string, observe session.ChangeFunc, actions ...domain.Action) (domain.State, error)
	ResetObserved(ctx context.Context, sessionID string, observe session.ChangeFunc) error
	Watch(ctx context.Context) (<-chan string, error)
}

var _ Engine = (*keypad.Engine)(nil)

// Server holds the handlers of the keypad HTTP API.
type Server struct {
	Engine       Engine
	Streams      *StreamManager
	Logger       *slog.Logger
	Gatherer     prometheus.Gatherer
	MaxInputSize int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// WithMetrics exposes gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = gatherer
	}
}

// WithMaxInputSize bounds the length of a key line.
func WithMaxInputSize(size int) Option {
	return func(s *Server) {
		s.MaxInputSize = size
	}
}

// NewServer creates the server without a router.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine: engine,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.Logger)
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/dispatch", s.Dispatch)
	r.Post("/evaluate", s.Evaluate)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/actions", s.ApplySessionActions)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Keypad API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ActionsRequest carries either explicit actions or a key line. Actions win when both are set.
type ActionsRequest struct {
	Actions []domain.Action `json:"actions,omitempty"`
	Keys    string          `json:"keys,omitempty"`
}

// DispatchRequest is the body of POST /dispatch.
type DispatchRequest struct {
	ActionsRequest
	State domain.State `json:"state"`
}

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Operator string `json:"operator"`
}

// Dispatch handles the POST /dispatch request.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var body DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	actions, err := s.resolveActions(body.ActionsRequest)
	if err != nil {
		s.writeError(w, err)
		return
	}

	next, err := runner.DispatchActions(r.Context(), s.Engine, body.State, actions...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runner.NewFrame("", next))
}

// Evaluate handles the POST /evaluate request.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	op, err := domain.ParseOperator(body.Operator)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"result": calculator.Evaluate(body.Previous, body.Current, op),
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Engine.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	state, err := s.Engine.Start(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	s.writeJSON(w, http.StatusCreated, runner.NewFrame(id, state))
}

// GetSession handles the GET /sessions/{sessionId} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	state, err := s.Engine.Load(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runner.NewFrame(id, state))
}

// DeleteSession handles the DELETE /sessions/{sessionId} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if err := s.Engine.ResetObserved(r.Context(), id, s.observer(id)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplySessionActions handles the POST /sessions/{sessionId}/actions request.
func (s *Server) ApplySessionActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")

	var body ActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	actions, err := s.resolveActions(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	next, err := s.Engine.ApplyObserved(r.Context(), id, s.observer(id), actions...)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, runner.NewFrame(id, next))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	} else if err != nil {
		s.Logger.Error("Failed to load OpenAPI spec", "err", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "keypad-http",
		"version":     strings.TrimSpace(keypad.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.streamStoreChanges(w, r, flusher)
		return
	}

	var watchList []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				watchList = append(watchList, f)
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.Logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// streamStoreChanges emits the ID of every session changed in the store,
// including changes made by other processes sharing it.
func (s *Server) streamStoreChanges(w http.ResponseWriter, r *http.Request, flusher http.Flusher) {
	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
		return
	}
	s.Logger.Info("SSE: Subscribing to store changes")

	writeSSEHeaders(w)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: session\ndata: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func writeSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func matchesWatch(msg string, watchList []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		if diff.Touches(field) {
			return true
		}
	}
	return false
}

// observer broadcasts the diff of every committed change of sessionID.
func (s *Server) observer(sessionID string) session.ChangeFunc {
	return func(old *domain.State, next domain.State) {
		s.broadcast(sessionID, old, next)
	}
}

func (s *Server) broadcast(sessionID string, old *domain.State, next domain.State) {
	diff := domain.Diff(sessionID, old, next)
	if diff == nil {
		s.Logger.Debug("No diff calculated", "session_id", sessionID)
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.Logger.Error("Diff encode failed", "err", err)
		return
	}
	s.Streams.Broadcast(sessionID, string(payload))
}

func (s *Server) resolveActions(req ActionsRequest) ([]domain.Action, error) {
	if len(req.Actions) > 0 {
		for _, a := range req.Actions {
			if err := a.Validate(); err != nil {
				return nil, err
			}
		}
		return req.Actions, nil
	}

	keys, err := runner.SanitizeInputLimit(req.Keys, s.MaxInputSize)
	if err != nil {
		return nil, err
	}
	return runner.ParseKeys(keys)
}

var errBadRequest = errors.New("invalid request body")

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrUnknownKey),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.Logger.Error("Request failed", "err", err)
	} else {
		s.Logger.Warn("Request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}
