// Package httpapi exposes the dashboard over REST and WebSocket.
package httpapi

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"trading-dashboard/internal/dashboard"
	"trading-dashboard/internal/observability"
	"trading-dashboard/internal/push"
	"trading-dashboard/internal/relay"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string
	AdminToken   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server serves the dashboard API.
type Server struct {
	router  *mux.Router
	server  *http.Server
	service *dashboard.Service
	relay   *relay.Relay
	hub     *push.Hub
	metrics *observability.Metrics
	logger  *log.Logger
	config  ServerConfig
}

// NewServer wires the service, relay, and push hub into an HTTP server.
// relay, hub, and metrics may be nil; the matching routes degrade.
func NewServer(config ServerConfig, service *dashboard.Service, rly *relay.Relay, hub *push.Hub, metrics *observability.Metrics, logger *log.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		relay:   rly,
		hub:     hub,
		metrics: metrics,
		logger:  logger,
		config:  config,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.metricsMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(jsonContentTypeMiddleware)

	api.HandleFunc("/config-types", s.handleConfigTypes).Methods(http.MethodGet)

	api.HandleFunc("/cache/stats", s.handleCacheStats).Methods(http.MethodGet)
	api.HandleFunc("/cache/clear", s.handleCacheClear).Methods(http.MethodPost)

	api.HandleFunc("/instances", s.handleInstances).Methods(http.MethodGet)
	api.HandleFunc("/instances/{instance}/{endpoint}", s.handleInstanceProbe).Methods(http.MethodGet)
	api.HandleFunc("/instances/{instance}/admin/{action:.+}", s.handleAdmin).Methods(http.MethodPost)

	api.HandleFunc("/ws/live/{config_type}/{run_id}", s.handleLiveSocket).Methods(http.MethodGet)

	api.HandleFunc("/{config_type}/runs", s.handleRuns).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/runs/{run_id}/summary", s.handleRunSummary).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/runs/{run_id}/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/runs/{run_id}/trades", s.handleTrades).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/runs/{run_id}/trades/{trade_id}", s.handleTradeDetails).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/runs/{run_id}/logs/{name}", s.handleTailLog).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/aggregate", s.handleAggregate).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/runs/{run_id}/positions", s.handlePositions).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/live", s.handleLive).Methods(http.MethodGet)
	api.HandleFunc("/{config_type}/live/{run_id}", s.handleLive).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Printf("http server listening on %s", s.config.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its push loops.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Shutdown()
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		s.logger.Printf("%s %s %d %v %s",
			r.Method, r.URL.Path, wrapper.statusCode, time.Since(start), r.RemoteAddr)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(wrapper.statusCode)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// responseWrapper captures HTTP status codes for logging and metrics.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade work through the wrapper.
func (rw *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
