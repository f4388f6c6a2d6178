package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// snapshot is the latest loop output. Err is set once the loop halted.
type snapshot struct {
	subject engine.Subject
	stats   engine.AgeStats
	at      time.Time
	err     error
}

// Server publishes the live statistics, the anniversary feed and the local facts
// generator on the loopback interface.
type Server struct {
	Port     string
	Clock    engine.Clock
	Facts    http.Handler        // Mounted at the facts route when set
	Gatherer prometheus.Gatherer // Exposed at /metrics when set

	// Both caches are read on every request and replaced whole by writers,
	// so readers never take a lock.
	calendar atomic.Pointer[cacheItem]
	latest   atomic.Pointer[snapshot]
}

// NewServer creates a server for port with the real clock.
func NewServer(port string) *Server {
	return &Server{
		Port:  port,
		Clock: engine.RealClock{},
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(config.RouteStats, s.handleStats)
	r.Get(config.RouteTimeline, s.handleTimeline)
	r.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)
	r.Get(config.RouteHealth, s.handleHealth)

	if s.Facts != nil {
		r.Handle(config.RouteFacts, s.Facts)
	}
	if s.Gatherer != nil {
		r.Handle(config.RouteMetrics, promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Addr is the loopback address the server binds.
func (s *Server) Addr() string {
	return config.LocalhostBindAddr + config.AddrSeparator + s.Port
}

// Start binds the port and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles connections on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, ln.Addr().String(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// OnStats stores the latest snapshot. It makes Server an engine.Observer.
func (s *Server) OnStats(subject engine.Subject, stats engine.AgeStats) {
	s.latest.Store(&snapshot{subject: subject, stats: stats, at: s.Clock.Now()})
}

// OnError records the halt; /api/stats reports it until a new subject starts.
func (s *Server) OnError(subject engine.Subject, err error) {
	prev := s.latest.Load()
	snap := &snapshot{subject: subject, at: s.Clock.Now(), err: err}
	if prev != nil && prev.subject.ID == subject.ID {
		snap.stats = prev.stats
	}
	s.latest.Store(snap)
}
