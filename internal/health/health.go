// Package health serves liveness, readiness and detailed health endpoints.
// Checks run concurrently, each under its own timeout.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fd1az/arbitrage-scanner/internal/logger"
)

const defaultCheckTimeout = 3 * time.Second

// Status is the /health response body.
type Status struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Version   string           `json:"version,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Check is the outcome of one registered check.
type Check struct {
	Healthy   bool   `json:"healthy"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// CheckFunc reports whether a dependency is healthy, with a short explanation.
type CheckFunc func(ctx context.Context) (bool, string)

type Server struct {
	port         int
	version      string
	checkTimeout time.Duration
	log          logger.LoggerInterface

	mu     sync.RWMutex
	checks map[string]CheckFunc
	extra  map[string]http.Handler

	server *http.Server
}

func NewServer(port int, version string, log logger.LoggerInterface) *Server {
	return &Server{
		port:         port,
		version:      version,
		checkTimeout: defaultCheckTimeout,
		log:          log,
		checks:       make(map[string]CheckFunc),
		extra:        make(map[string]http.Handler),
	}
}

// RegisterCheck adds or replaces a named check.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Handle mounts an additional handler, e.g. /metrics. Call before Start.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extra[pattern] = h
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /live", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("alive"))
	})

	s.mu.RLock()
	for pattern, h := range s.extra {
		mux.Handle(pattern, h)
	}
	s.mu.RUnlock()

	return mux
}

// Start listens in the background.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(context.Background(), "health server stopped", "port", s.port, "error", err)
		}
	}()

	s.log.Info(context.Background(), "health server listening", "port", s.port)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// run executes every check concurrently. A check that outlives its timeout
// is reported unhealthy.
func (s *Server) run(ctx context.Context) map[string]Check {
	s.mu.RLock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		checks[k] = v
	}
	s.mu.RUnlock()

	var mu sync.Mutex
	results := make(map[string]Check, len(checks))

	g := new(errgroup.Group)
	for name, check := range checks {
		g.Go(func() error {
			res := s.runOne(ctx, check)
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Server) runOne(ctx context.Context, check CheckFunc) Check {
	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	started := time.Now()
	done := make(chan Check, 1)
	go func() {
		ok, msg := check(ctx)
		done <- Check{Healthy: ok, Message: msg}
	}()

	var res Check
	select {
	case res = <-done:
	case <-ctx.Done():
		res = Check{Message: "check timed out"}
	}
	res.LatencyMs = time.Since(started).Milliseconds()
	return res
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := Status{
		Status:    "ok",
		Checks:    s.run(r.Context()),
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	code := http.StatusOK
	for _, c := range status.Checks {
		if !c.Healthy {
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// handleReady names the first failing check in alphabetical order.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.run(r.Context())

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if c := results[name]; !c.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "not ready: %s: %s", name, c.Message)
			return
		}
	}
	_, _ = w.Write([]byte("ready"))
}
