package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/downhill/internal/core/events/bus"
	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/system"
)

// Source is the simulation as seen by spectators.
type Source interface {
	Latest() system.Snapshot
	Submit(system.Command) error
}

// Config holds server configuration
type Config struct {
	// Network settings
	ListenAddr string `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`
	MaxClients int    `json:"max_clients" yaml:"max_clients" toml:"max_clients"`
	// Token, when set, is required to send input.
	Token string `json:"token" yaml:"token" toml:"token"`

	// Message settings
	MaxMessageSize int           `json:"max_message_size" yaml:"max_message_size" toml:"max_message_size"`
	SendBuffer     int           `json:"send_buffer" yaml:"send_buffer" toml:"send_buffer"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`

	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8080",
		MaxClients:      64,
		MaxMessageSize:  4 * 1024,
		SendBuffer:      16,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("%w: listen address required", ErrInvalidConfig)
	case c.MaxClients < 1:
		return fmt.Errorf("%w: max clients must be at least 1", ErrInvalidConfig)
	case c.MaxMessageSize < 64:
		return fmt.Errorf("%w: max message size too small", ErrInvalidConfig)
	case c.SendBuffer < 1:
		return fmt.Errorf("%w: send buffer must be at least 1", ErrInvalidConfig)
	case c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// Server publishes simulation snapshots to spectators over HTTP and
// websockets and forwards their input to the simulation.
type Server struct {
	config Config
	source Source
	auth   TokenAuth
	logger log.Log

	sub     bus.Subscription
	clients sync.Map // client id -> *client
	count   atomic.Int64

	running atomic.Bool
	closed  atomic.Bool
}

// NewServer creates the server and subscribes it to tick events.
func NewServer(config Config, source Source, eventBus bus.EventBus, logger log.Log) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		source: source,
		auth:   NewTokenAuth(config.Token),
		logger: logger.With(log.String("component", "server")),
	}

	sub, err := bus.On(eventBus, system.EventTickCompleted, func(snap system.Snapshot) error {
		s.broadcast(snap)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to ticks: %w", err)
	}
	s.sub = sub

	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("max_clients", config.MaxClients),
		log.Bool("auth", s.auth.Enabled()),
	)
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /terrain", s.handleTerrain)
	mux.HandleFunc("GET /rider", s.handleRider)
	mux.HandleFunc("POST /command", s.auth.Wrap(s.handleCommand))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.Close()

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.ListenAddr, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}

// Close drops all spectators and stops listening to ticks. Multiple calls
// are safe.
func (s *Server) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	_ = s.sub.Cancel()
	s.clients.Range(func(_, value any) bool {
		value.(*client).close()
		return true
	})
}

// ClientCount returns the number of connected spectators.
func (s *Server) ClientCount() int { return int(s.count.Load()) }
