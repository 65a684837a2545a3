package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jjudge-oj/accounts/config"
	"github.com/jjudge-oj/accounts/internal/auth"
	"github.com/jjudge-oj/accounts/internal/db"
	"github.com/jjudge-oj/accounts/internal/handlers"
	"github.com/jjudge-oj/accounts/internal/mq"
	"github.com/jjudge-oj/accounts/internal/services"
	"github.com/jjudge-oj/accounts/internal/store"
)

const (
	defaultPort           = 8080
	defaultRequestTimeout = 60 * time.Second
	usersMountPath        = "/api/v1/users"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
	closers    []func(context.Context) error
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	s := &Server{logger: logger}

	userRepo, err := s.openUserRepository(ctx, cfg)
	if err != nil {
		_ = s.closeAll(context.Background())
		return nil, err
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency)
	tokens := auth.NewTokenService(jwtSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(userRepo, hasher, tokens).
		WithMaxListCount(cfg.ListMaxCount)

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = s.closeAll(context.Background())
		return nil, err
	}
	if broker != nil {
		s.closers = append(s.closers, func(context.Context) error { return broker.Close() })
		userService.WithEvents(services.NewUserEventPublisher(broker, cfg.MQ.UserEventsChannel, logger))
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(timeout),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route(usersMountPath, func(r chi.Router) {
		handlers.UserRouter(r, userService, logger)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = defaultPort
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) openUserRepository(ctx context.Context, cfg config.Config) (services.UserRepository, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		s.logger.Warn("using in-memory user store; data is lost on restart")
		return store.NewMemoryUserRepository(), nil
	case config.StorePostgres:
		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s.closers = append(s.closers, func(context.Context) error { return dbConn.Close() })
		return store.NewUserRepository(dbConn), nil
	case "", config.StoreMongo:
		database, err := db.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		s.closers = append(s.closers, database.Client().Disconnect)
		repo := store.NewMongoUserRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure user indexes: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then releases the store and broker connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	return errors.Join(err, s.closeAll(ctx))
}

func (s *Server) closeAll(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
