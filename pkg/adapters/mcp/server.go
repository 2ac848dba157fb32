package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/keypad"
	"github.com/aretw0/keypad/internal/logging"
	"github.com/aretw0/keypad/pkg/calculator"
	"github.com/aretw0/keypad/pkg/domain"
	"github.com/aretw0/keypad/pkg/ports"
	"github.com/aretw0/keypad/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	sessionsURI        = "keypad://sessions"
	sessionURITemplate = "keypad://sessions/{id}"
)

// FrameResponse mirrors the Frame schema of the HTTP API.
type FrameResponse struct {
	SessionID string         `json:"session_id,omitempty" jsonschema_description:"Session the state belongs to"`
	State     domain.State   `json:"state" jsonschema_description:"Calculator state after the keys were applied"`
	Display   runner.Display `json:"display" jsonschema_description:"Two-line display rendering of the state"`
}

// EvaluateResponse is the output of the evaluate tool.
type EvaluateResponse struct {
	Result string `json:"result" jsonschema_description:"Formatted result, empty when an operand is not a number"`
}

// PressKeysArgs are the arguments of the press_keys tool.
type PressKeysArgs struct {
	SessionID string `json:"session_id"`
	Keys      string `json:"keys"`
}

// DispatchArgs are the arguments of the dispatch tool.
type DispatchArgs struct {
	State domain.State `json:"state"`
	Keys  string       `json:"keys"`
}

// EvaluateArgs are the arguments of the evaluate tool.
type EvaluateArgs struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Operator string `json:"operator"`
}

// Server wraps a keypad engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.SessionEngine
	logger    *slog.Logger
	maxInput  int
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxInputSize bounds the length of a key line.
func WithMaxInputSize(size int) Option {
	return func(s *Server) {
		s.maxInput = size
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.SessionEngine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("keypad-mcp", strings.TrimSpace(keypad.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: press_keys
	pressTool := mcp.NewTool("press_keys",
		mcp.WithDescription("Press calculator keys on a stored session, e.g. \"12+3=\". "+
			"Keys: digits, '.', + - * / ÷ x, '=' evaluate, '<' or 'del' delete, 'c' or 'ac' clear."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to apply the keys to; created on first use")),
		mcp.WithString("keys", mcp.Required(), mcp.Description("Key sequence")),
		mcp.WithOutputSchema[FrameResponse](),
	)
	s.mcpServer.AddTool(pressTool, mcp.NewStructuredToolHandler(s.handlePressKeys))

	// TOOL: dispatch
	dispatchTool := mcp.NewTool("dispatch",
		mcp.WithDescription("Apply keys to a caller-supplied state without storing anything."),
		mcp.WithObject("state", mcp.Description("Current state; omit to start from a cleared keypad")),
		mcp.WithString("keys", mcp.Required(), mcp.Description("Key sequence")),
		mcp.WithOutputSchema[FrameResponse](),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	// TOOL: evaluate
	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a single binary operation the way the keypad does."),
		mcp.WithString("previous", mcp.Required(), mcp.Description("Left operand")),
		mcp.WithString("current", mcp.Required(), mcp.Description("Right operand")),
		mcp.WithString("operator", mcp.Required(), mcp.Description("One of + - * ÷ (aliases / x ×)")),
		mcp.WithOutputSchema[EvaluateResponse](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	// TOOL: reset_session
	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Remove a stored session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to remove")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.engine.Reset(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
		}
		return mcp.NewToolResultText("session " + id + " cleared"), nil
	})
}

func (s *Server) parseKeys(keys string) ([]domain.Action, error) {
	clean, err := runner.SanitizeInputLimit(keys, s.maxInput)
	if err != nil {
		s.logger.Warn("MCP: Input rejected", "err", err, "size", len(keys))
		return nil, fmt.Errorf("input rejected: %w", err)
	}
	return runner.ParseKeys(clean)
}

func (s *Server) handlePressKeys(ctx context.Context, request mcp.CallToolRequest, args PressKeysArgs) (FrameResponse, error) {
	if args.SessionID == "" {
		return FrameResponse{}, errors.New("session_id is required")
	}
	actions, err := s.parseKeys(args.Keys)
	if err != nil {
		return FrameResponse{}, err
	}

	state, err := s.engine.Apply(ctx, args.SessionID, actions...)
	if err != nil {
		return FrameResponse{}, fmt.Errorf("press keys failed: %w", err)
	}
	return newFrameResponse(args.SessionID, state), nil
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args DispatchArgs) (FrameResponse, error) {
	actions, err := s.parseKeys(args.Keys)
	if err != nil {
		return FrameResponse{}, err
	}

	state, err := runner.DispatchActions(ctx, s.engine, args.State, actions...)
	if err != nil {
		return FrameResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return newFrameResponse("", state), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args EvaluateArgs) (EvaluateResponse, error) {
	op, err := domain.ParseOperator(args.Operator)
	if err != nil {
		return EvaluateResponse{}, err
	}
	return EvaluateResponse{Result: calculator.Evaluate(args.Previous, args.Current, op)}, nil
}

func newFrameResponse(sessionID string, state domain.State) FrameResponse {
	return FrameResponse{
		SessionID: sessionID,
		State:     state,
		Display:   runner.NewDisplay(state),
	}
}

func (s *Server) registerResources() {
	// EXPOSE: keypad://sessions
	s.mcpServer.AddResource(mcp.NewResource(sessionsURI, "Stored Sessions",
		mcp.WithResourceDescription("IDs of every stored keypad session"),
		mcp.WithMIMEType("application/json"),
	), s.readSessions)

	// EXPOSE: keypad://sessions/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sessionURITemplate, "Session State",
		mcp.WithTemplateDescription("State and display of one stored session"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readSession)
}

func (s *Server) readSessions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.engine.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, err := json.Marshal(map[string][]string{"sessions": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sessions: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sessionsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) readSession(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, sessionsURI+"/")
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid session uri %q", uri)
	}

	state, err := s.engine.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	jsonBytes, err := json.Marshal(newFrameResponse(id, state))
	if err != nil {
		return nil, fmt.Errorf("failed to encode session %s: %w", id, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
