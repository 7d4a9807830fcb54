// Package server assembles the HTTP handler: Connect services behind the
// auth and logging interceptors, plus health and metrics endpoints.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/duesbook/internal/auth"
	"github.com/mmynk/duesbook/internal/ledger"
	"github.com/mmynk/duesbook/internal/middleware"
	"github.com/mmynk/duesbook/internal/service"
	"github.com/mmynk/duesbook/internal/storage"
	"github.com/mmynk/duesbook/pkg/api/apiconnect"
)

// Server is the duesbook HTTP API server.
type Server struct {
	book          *ledger.Book
	people        storage.PersonStore
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// New creates a new API server.
func New(book *ledger.Book, people storage.PersonStore, authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *Server {
	return &Server{
		book:          book,
		people:        people,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// AuthService accepts anonymous Register and Login calls.
	logging := middleware.LoggingInterceptor()
	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		service.NewAuthService(s.authenticator, s.jwtManager, s.people, s.logger),
		connect.WithInterceptors(middleware.OptionalAuth(s.jwtManager), logging),
	)
	r.Mount(authPath, authHandler)

	protected := connect.WithInterceptors(middleware.RequireAuth(s.jwtManager), logging)

	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(service.NewExpenseService(s.book), protected)
	r.Mount(expensePath, expenseHandler)

	duesPath, duesHandler := apiconnect.NewDuesServiceHandler(service.NewDuesService(s.book), protected)
	r.Mount(duesPath, duesHandler)

	return r
}

// requestLogger logs all incoming requests
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimw.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
