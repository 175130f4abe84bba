// Package server provides the HTTP handlers and routing for the MCP server.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"slack-mcp/internal/config"
	"slack-mcp/internal/logging"
	"slack-mcp/internal/metrics"
	"slack-mcp/internal/protocol"
	"slack-mcp/internal/session"
	"slack-mcp/internal/tools"
)

const (
	restTimeout       = 60 * time.Second
	keepAliveInterval = 25 * time.Second
	maxBodyBytes      = 4 << 20
)

// Options wires the server's collaborators.
type Options struct {
	Dispatcher     *tools.Dispatcher
	Registry       *session.Registry
	Credentials    config.CredentialSource
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
}

// Server contains the configured router and the state shared by both MCP transports.
type Server struct {
	router     *chi.Mux
	dispatcher *tools.Dispatcher
	registry   *session.Registry
	handler    *protocol.Handler
	creds      config.CredentialSource
	metrics    *metrics.Metrics
	log        *slog.Logger
	started    time.Time
}

// New constructs a Server with middleware and routes configured.
func New(o Options) *Server {
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Credentials == nil {
		o.Credentials = config.LoadCredentials
	}
	if o.Registry == nil {
		o.Registry = session.NewRegistry(session.WithLogger(o.Logger), session.WithMetrics(o.Metrics))
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		router:     chi.NewRouter(),
		dispatcher: o.Dispatcher,
		registry:   o.Registry,
		handler:    protocol.NewHandler(o.Dispatcher, o.Logger),
		creds:      o.Credentials,
		metrics:    o.Metrics,
		log:        o.Logger,
		started:    time.Now(),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", mcpSessionIDHeader, mcpProtocolVersionHeader, lastEventIDHeader},
		ExposedHeaders:   []string{mcpSessionIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Streamable HTTP transport.
	s.router.Post("/mcp", s.handleStreamablePost)
	s.router.Get("/mcp", s.handleStreamableGet)
	s.router.Delete("/mcp", s.handleStreamableDelete)

	// Legacy SSE transport.
	s.router.Get("/sse", s.handleSSEStream("/message"))
	s.router.Get("/sse/mcp", s.handleSSEStream("/sse/mcp"))
	s.router.Post("/message", s.handleSSEMessage)
	s.router.Post("/sse/mcp", s.handleSSEMessage)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(restTimeout))
		r.Get("/mcp/tools", s.handleListTools)
		r.Post("/mcp/call", s.handleCall)
	})

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// Registry exposes the session registry for shutdown.
func (s *Server) Registry() *session.Registry { return s.registry }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok", Message: "Slack MCP Server is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	creds := s.creds()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "healthy",
		UptimeSeconds:    time.Since(s.started).Seconds(),
		HasSlackBotToken: creds.HasBotToken(),
		HasSlackTeamID:   creds.HasTeamID(),
		Sessions:         s.registry.Len(),
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ToolsResponse{Tools: s.dispatcher.Catalog().Definitions()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	res := s.dispatcher.Dispatch(r.Context(), tools.Request{Name: req.Name, Arguments: req.Args})
	writeJSON(w, http.StatusOK, res)
}
