package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"splicer/internal/api"
	"splicer/internal/config"
	"splicer/internal/jobs"
	"splicer/internal/logging"
	"splicer/internal/media/ffprobe"
)

const (
	roleBase   = "base"
	roleTarget = "target"

	resultPath = "/api/jobs/current/result"
)

// ProbeFunc inspects an uploaded clip.
type ProbeFunc func(ctx context.Context, name string, data []byte) (ffprobe.Result, error)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "server")
		}
	}
}

// WithProbe replaces the ffprobe-backed clip inspector.
func WithProbe(probe ProbeFunc) Option {
	return func(s *Server) {
		if probe != nil {
			s.probe = probe
		}
	}
}

type input struct {
	handle jobs.MediaHandle
	info   api.MediaInfo
}

// Server is the HTTP surface over a jobs.Manager.
type Server struct {
	cfg     *config.Config
	manager *jobs.Manager
	logger  *slog.Logger
	probe   ProbeFunc

	mu     sync.Mutex
	inputs map[string]*input

	router   *mux.Router
	upgrader websocket.Upgrader

	listener net.Listener
	server   *http.Server
	stopOnce sync.Once
}

// New builds a server for manager. Nothing listens until Start.
func New(cfg *config.Config, manager *jobs.Manager, opts ...Option) (*Server, error) {
	if cfg == nil || manager == nil {
		return nil, errors.New("server requires config and job manager")
	}
	s := &Server{
		cfg:     cfg,
		manager: manager,
		logger:  logging.NewNop(),
		inputs:  make(map[string]*input),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.probe = func(ctx context.Context, name string, data []byte) (ffprobe.Result, error) {
		return ffprobe.InspectBytes(ctx, cfg.Engine.FFprobeBinary, name, data)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, metricsMiddleware(defaultMetricsConfig()))

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/inputs", s.handleListInputs).Methods(http.MethodGet)
	a.HandleFunc("/inputs/{role:base|target}", s.handlePutInput).Methods(http.MethodPut)
	a.HandleFunc("/inputs/{role:base|target}", s.handleGetInput).Methods(http.MethodGet)
	a.HandleFunc("/inputs/{role:base|target}", s.handleDeleteInput).Methods(http.MethodDelete)
	a.HandleFunc("/timecode", s.handleTimecode).Methods(http.MethodGet)
	a.HandleFunc("/presets", s.handlePresets).Methods(http.MethodGet)
	a.HandleFunc("/jobs", s.handleSubmit).Methods(http.MethodPost)
	a.HandleFunc("/jobs/current", s.handleCurrent).Methods(http.MethodGet)
	a.HandleFunc("/jobs/current", s.handleReset).Methods(http.MethodDelete)
	a.HandleFunc("/jobs/current/result", s.handleResult).Methods(http.MethodGet)
	a.HandleFunc("/jobs/current/events", s.handleEvents).Methods(http.MethodGet)
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured bind address and serves until ctx is done
// or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down, waiting up to the configured shutdown
// timeout for requests in flight. Only the first call has an effect.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	s.stopOnce.Do(s.shutdown)
}

func (s *Server) shutdown() {
	wait := time.Duration(s.cfg.Server.ShutdownTimeout) * time.Second
	if wait <= 0 {
		wait = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown incomplete", logging.Error(err))
	}
}
