package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hongminglow/civic-engine/internal/auth"
	"github.com/hongminglow/civic-engine/internal/config"
	"github.com/hongminglow/civic-engine/internal/economy"
	"github.com/hongminglow/civic-engine/internal/http/handlers"
	"github.com/hongminglow/civic-engine/internal/middleware"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server. Engine routes
// sit behind the auth middleware; register, login, and health are public.
func New(cfg config.Config, engine *economy.Engine, log zerolog.Logger) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(engine, tokens).Register(mux)

	api := http.NewServeMux()
	handlers.NewProfileHandler(engine).Register(api)
	handlers.NewWalletHandler(engine).Register(api)
	handlers.NewJobsHandler(engine).Register(api)
	handlers.NewGovernanceHandler(engine).Register(api)
	mux.Handle("/", middleware.Authenticate(tokens, api))

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, mux))

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
