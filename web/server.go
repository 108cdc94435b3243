// Package web serves the calculator to browsers: a keypad page driven over a
// websocket, one session per connection, and a JSON API over a shared session.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gophersatwork/abacus"
)

const shutdownTimeout = 5 * time.Second

// Server holds the store shared by every session.
type Server struct {
	cfg      Config
	store    *abacus.FileStore
	log      *zap.Logger
	upgrader websocket.Upgrader

	// Every session records into the same history and theme.
	history *abacus.History
	theme   *abacus.ThemePreference

	// api is the session behind the JSON API.
	api *abacus.Calculator

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer validates cfg and opens the store.
func NewServer(cfg Config, log *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var store *abacus.FileStore
	if cfg.DataDir == "" {
		store = abacus.OpenMemoryStore()
	} else {
		var err error
		store, err = abacus.OpenStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
	}

	s := &Server{
		cfg:   cfg,
		store: store,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		history: abacus.NewHistory(store),
		theme:   abacus.NewThemePreference(store),
		clients: make(map[*client]struct{}),
	}
	if err := s.history.Load(); err != nil {
		log.Warn("history unavailable, starting empty", zap.Error(err))
	}
	if _, err := s.theme.Load(); err != nil {
		log.Warn("theme unavailable, using light", zap.Error(err))
	}
	s.api = s.newSession(nil)
	return s, nil
}

// newSession starts a calculator on the shared history and theme.
func (s *Server) newSession(onReset func(abacus.Display)) *abacus.Calculator {
	options := []abacus.Option{
		abacus.WithLogger(s.log.Named("session")),
		abacus.WithErrorTimeout(s.cfg.ErrorTimeout),
		abacus.WithHistory(s.history),
		abacus.WithThemePreference(s.theme),
	}
	if onReset != nil {
		options = append(options, abacus.WithResetHook(onReset))
	}
	return abacus.New(s.store, options...)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", s.handleIndex())
	mux.Handle("GET /ws", s.handleWebSocket())

	mux.Handle("GET /api/display", s.handleDisplay())
	mux.Handle("POST /api/press", s.handlePress())
	mux.Handle("GET /api/history", s.handleHistory())
	mux.Handle("DELETE /api/history", s.handleClearHistory())
	mux.Handle("POST /api/history/select", s.handleSelectHistory())
	mux.Handle("POST /api/theme/toggle", s.handleToggleTheme())
	mux.Handle("GET /api/health", s.handleHealth())

	return Chain(mux,
		Recover(s.log),
		Logger(s.log.Named("http")),
		Security,
	)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr), zap.String("data", s.cfg.DataDir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close ends every websocket session and the API session.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	s.api.Close()
}

// Sessions returns the number of connected websocket sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}
