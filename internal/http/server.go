package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finman/internal/log"
	"finman/internal/middleware/ratelimit"
	"finman/internal/middleware/security"
	"finman/internal/middleware/trace"
)

type Server struct {
	http.Server
	ledger  Ledger
	logger  *log.Logger
	tracer  *trace.Middleware
	guard   *security.LoopbackGuard
	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:  ledger,
		logger:  logger,
		tracer:  trace.NewMiddleware(logger),
		guard:   security.NewLoopbackGuard(),
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("PUT /api/budgets/{category}", s.handleSetBudget)
	mux.HandleFunc("GET /api/reports/balance", s.handleBalance)
	mux.HandleFunc("GET /api/reports/spending", s.handleSpending)
	mux.HandleFunc("GET /api/reports/budget-vs-actual", s.handleBudgetVsActual)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(clientKey, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError("rate limit exceeded, try again later").Write(w)
	})
	guard := s.guard.Middleware(func(w http.ResponseWriter, r *http.Request) {
		ForbiddenError("the ledger API only accepts local requests").Write(w)
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = headers.Middleware(handler)
	handler = guard(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// clientKey identifies a caller for rate limiting. Every caller is local,
// so the peer port tells concurrent scripts apart no better than the IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Run serves until ctx is cancelled, then shuts down within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln, timeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening",
			log.FieldOperation, log.OpStartup,
			"addr", ln.Addr().String())
		if err := s.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("HTTP server shutting down", log.FieldOperation, log.OpShutdown)
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
