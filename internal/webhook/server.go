// Package webhook is the HTTP surface of the relay: the Tavus callback
// endpoint, the roster/debug endpoints, and the live event feed.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxhall/tavus-relay/internal/config"
	"github.com/voxhall/tavus-relay/internal/dispatch"
	"github.com/voxhall/tavus-relay/internal/eventlog"
	"github.com/voxhall/tavus-relay/internal/logging"
	"github.com/voxhall/tavus-relay/internal/roster"
	"github.com/voxhall/tavus-relay/internal/storage"
	"github.com/voxhall/tavus-relay/internal/tavus"
)

// Server handles webhook deliveries from the Tavus platform.
type Server struct {
	cfg        config.Config
	log        *logging.Logger
	engine     *roster.Engine
	dispatcher *dispatch.Dispatcher

	// Optional collaborators; nil disables the feature.
	eventLog *eventlog.Writer
	tavus    *tavus.Client
	uploader *storage.Uploader

	feed       *Feed
	upgrader   websocket.Upgrader
	startedAt  time.Time
	httpServer *http.Server
}

// ServerOption configures the webhook server.
type ServerOption func(*Server)

// WithEventLog enables raw payload persistence.
func WithEventLog(w *eventlog.Writer) ServerOption {
	return func(s *Server) { s.eventLog = w }
}

// WithTavus enables outbound echo calls (join announcements).
func WithTavus(c *tavus.Client) ServerOption {
	return func(s *Server) { s.tavus = c }
}

// WithUploader enables the recording upload endpoint.
func WithUploader(u *storage.Uploader) ServerOption {
	return func(s *Server) { s.uploader = u }
}

// New creates a webhook server.
func New(cfg config.Config, log *logging.Logger, engine *roster.Engine, dispatcher *dispatch.Dispatcher, opts ...ServerOption) *Server {
	s := &Server{
		cfg:        cfg,
		log:        log.Sub("webhook"),
		engine:     engine,
		dispatcher: dispatcher,
		feed:       NewFeed(log.Sub("feed")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(cfg.Server.AllowedOrigins),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkWebSocketOrigin validates WebSocket Origin headers. Without
// configured origins only same-origin (no Origin header) clients pass.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins serving. It blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := withMiddleware(mux, s.log, s.cfg.Server.AllowedOrigins)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Bool("secured", s.cfg.Webhook.Secret != "").
		Msg("webhook server starting")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down webhook server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.feed.CloseAll()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}
