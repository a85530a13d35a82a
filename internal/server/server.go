package server

import (
	"context"
	"net/http"
	"time"

	"github.com/ihadi/timetrack-be/internal/auth"
	"github.com/ihadi/timetrack-be/internal/config"
	"github.com/ihadi/timetrack-be/internal/http/handlers"
	"github.com/ihadi/timetrack-be/internal/middleware"
	"github.com/ihadi/timetrack-be/internal/storage"
)

// Stores bundles the persistence interfaces the routes depend on.
type Stores struct {
	Users   storage.UserStore
	Entries storage.EntryStore
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, stores Stores) *Server {
	mux := http.NewServeMux()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	policy := auth.NewDomainPolicy(cfg.OrgDomain)
	limiter := middleware.NewRateLimiter(cfg.AuthRateRPS, cfg.AuthRateBurst)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(stores.Users, tokens, policy, limiter).Register(mux)
	handlers.NewEntryHandler(stores.Entries, tokens).Register(mux)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
