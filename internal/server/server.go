// Package server wires the platform manager to its host surfaces: the poll
// and discovery workers, the HTTP API with its WebSocket stream and the MQTT
// bridge.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/ptxhome/ptxswitchd/internal/config"
	"github.com/ptxhome/ptxswitchd/internal/events"
	"github.com/ptxhome/ptxswitchd/internal/http/handlers"
	"github.com/ptxhome/ptxswitchd/internal/http/mw"
	"github.com/ptxhome/ptxswitchd/internal/http/routes"
	"github.com/ptxhome/ptxswitchd/internal/mqtt"
	"github.com/ptxhome/ptxswitchd/internal/platform"
	"github.com/ptxhome/ptxswitchd/internal/ws"
	"github.com/ptxhome/ptxswitchd/pkg/ptx"
)

// MQTTDialer opens a broker connection for the bridge.
type MQTTDialer func(cfg config.MQTTConfig, logger *slog.Logger) (mqtt.Conn, error)

// ResolverFactory creates the mDNS resolver for the discovery worker.
type ResolverFactory func() (ptx.Resolver, error)

// Option customizes a Server.
type Option func(*Server)

// WithVersion sets the build information served by /api/v1/version.
func WithVersion(info handlers.VersionInfo) Option {
	return func(s *Server) { s.version = info }
}

// WithMQTTDialer replaces the paho dialer.
func WithMQTTDialer(d MQTTDialer) Option {
	return func(s *Server) { s.dialMQTT = d }
}

// WithResolver replaces the mDNS resolver used for discovery.
func WithResolver(f ResolverFactory) Option {
	return func(s *Server) { s.newResolver = f }
}

// Server manages the ptxswitchd daemon.
type Server struct {
	logger      *slog.Logger
	cfg         *config.Config
	manager     *platform.Manager
	bus         *events.Bus
	version     handlers.VersionInfo
	dialMQTT    MQTTDialer
	newResolver ResolverFactory

	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once

	listener   net.Listener
	httpServer *http.Server
}

// New creates a server. The manager must publish to bus.
func New(logger *slog.Logger, cfg *config.Config, manager *platform.Manager, bus *events.Bus, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	rootCtx, rootCancel := context.WithCancel(context.Background())
	s := &Server{
		logger:  logger,
		cfg:     cfg,
		manager: manager,
		bus:     bus,
		version: handlers.VersionInfo{Version: "dev", Commit: "none", Date: "unknown"},
		dialMQTT: func(c config.MQTTConfig, l *slog.Logger) (mqtt.Conn, error) {
			return mqtt.Dial(c, l)
		},
		newResolver: ptx.NewResolver,
		rootCtx:     rootCtx,
		rootCancel:  rootCancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the HTTP router: request logging and rate limiting at the
// Chi level, API key auth on protected Huma operations and the WebSocket
// endpoint.
func (s *Server) Handler(hub *ws.Hub) http.Handler {
	keys := mw.NewKeySet(s.cfg.API.Keys)

	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(s.cfg.API.RateLimit))

	api := humachi.New(router, routes.NewHumaConfig(s.version.Version, ""))
	api.UseMiddleware(mw.HumaAuth(api, s.logger, keys))

	routes.Register(api, &routes.Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: handlers.VersionCheck(s.version),
		Switch:       &handlers.SwitchHandler{Switches: s.manager},
		Device:       &handlers.DeviceHandler{Devices: s.manager},
		Logging:      &handlers.LoggingHandler{Logger: s.logger},
	})

	snapshot := func() any {
		return handlers.SwitchesFromSnapshots(s.manager.Snapshots())
	}
	router.With(mw.RawAPIKeyAuth(s.logger, keys)).Get("/api/v1/ws", ws.Handler(hub, s.logger, snapshot))
	return router
}

// Start launches the workers and listeners. It returns once the HTTP
// listener is bound; everything else runs in the background until Stop.
func (s *Server) Start() error {
	s.logger.Info("server: starting ptxswitchd", "version", s.version.Version)

	s.manager.StartPollWorker(s.rootCtx, s.cfg.Poll.Interval)

	if s.cfg.Discovery.Enabled {
		resolver, err := s.newResolver()
		if err != nil {
			s.logger.Error("server: discovery disabled", "error", err)
		} else {
			s.manager.StartDiscoveryWorker(s.rootCtx, s.cfg.Discovery.Interval, s.cfg.Discovery.Timeout, resolver)
		}
	}

	if s.cfg.API.ListenAddress != "" {
		if err := s.startHTTP(); err != nil {
			s.rootCancel()
			return err
		}
	}

	if s.cfg.MQTT.Enabled {
		s.startMQTT()
	}
	return nil
}

func (s *Server) startHTTP() error {
	if len(s.cfg.API.Keys) == 0 {
		s.logger.Warn("server: no API keys configured, HTTP API is unauthenticated")
	}

	listener, err := net.Listen("tcp", s.cfg.API.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.API.ListenAddress, err)
	}
	s.listener = listener

	hub := ws.NewHub(s.logger, s.bus)
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("server: panic in WebSocket hub", "recover", r)
			}
		}()
		hub.Run(s.rootCtx)
	})

	s.httpServer = &http.Server{
		Handler:     s.Handler(hub),
		ReadTimeout: 15 * time.Second,
		// WriteTimeout must cover the slowest device round trip.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("server: HTTP API listening", "address", listener.Addr().String())

	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("server: panic in HTTP server goroutine", "recover", r)
			}
		}()
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server: HTTP server failed", "error", err)
		}
		s.logger.Info("server: HTTP server stopped")
	})
	return nil
}

// startMQTT connects the bridge. A broker that cannot be reached is logged
// and the daemon keeps running without it.
func (s *Server) startMQTT() {
	conn, err := s.dialMQTT(s.cfg.MQTT, s.logger)
	if err != nil {
		s.logger.Error("server: MQTT bridge disabled", "broker", s.cfg.MQTT.Broker, "error", err)
		return
	}
	bridge := mqtt.NewBridge(conn, s.cfg.MQTT, s.manager, s.bus, s.logger)
	s.wg.Go(func() {
		if err := bridge.Run(s.rootCtx); err != nil {
			s.logger.Error("server: MQTT bridge failed", "error", err)
		}
	})
}

// Addr returns the bound HTTP address, or "" when the API is disabled.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop cancels every worker and waits for them to finish.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("server: shutting down")
		s.rootCancel()

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				s.logger.Error("server: HTTP server shutdown failed", "error", err)
			}
		}

		s.wg.Wait()
		s.manager.Wait()
		s.logger.Info("server: shut down gracefully")
	})
}
