// Package http exposes the simulation engine over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"

	"fincast/internal/middleware/ratelimit"
	"fincast/internal/middleware/trace"
	"fincast/internal/storage"
)

// RunRecorder receives finished simulation runs. Implemented by the SQLite
// store directly and by the AMQP publishing adapter.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec storage.RunRecord) error
}

// RunLister reads back persisted run history.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
}

// ScenarioStore saves and lists named scenarios for periodic refresh.
type ScenarioStore interface {
	SaveScenario(ctx context.Context, sc storage.Scenario) (int64, error)
	ListScenarios(ctx context.Context) ([]storage.Scenario, error)
}

// Server wires the simulation handlers behind tracing and rate limiting.
// Any collaborator may be nil: the matching endpoints degrade gracefully.
type Server struct {
	http.Server
	recorder  RunRecorder
	runs      RunLister
	scenarios ScenarioStore

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, rec RunRecorder, runs RunLister, scenarios ScenarioStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		recorder:  rec,
		runs:      runs,
		scenarios: scenarios,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/forecast", s.withRateLimit(s.handleForecast))
	mux.HandleFunc("/api/payoff", s.withRateLimit(s.handlePayoff))
	mux.HandleFunc("/api/runs", s.handleListRuns)
	mux.HandleFunc("/api/scenarios", s.withRateLimit(s.handleScenarios))

	traced := trace.NewMiddleware(clientIP)
	s.Server = http.Server{
		Addr:    addr,
		Handler: traced.Middleware(mux),
	}
	return s
}

// Shutdown stops the limiter's cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRateLimit throttles mutating requests per client address.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next(w, r)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
