package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"repo-popularity/docs"
	"repo-popularity/internal/application/service"
	"repo-popularity/internal/config"
	"repo-popularity/internal/database"
	"repo-popularity/internal/domain/events"
	"repo-popularity/internal/domain/popularity"
	"repo-popularity/internal/domain/repo"
	"repo-popularity/internal/github"
	infraGitHub "repo-popularity/internal/infrastructure/github"
	"repo-popularity/internal/infrastructure/persistence"
	"repo-popularity/internal/middleware"
	"repo-popularity/internal/presentation/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 30 * time.Second

// Server is the HTTP API with all of its dependencies wired
type Server struct {
	cfg    *config.Config
	log    *logrus.Logger
	db     *database.DB
	router *gin.Engine
}

// NewPopularityService wires the GitHub client and metrics fetcher into a
// PopularityService. repoRepo may be nil when only ad-hoc identifiers are classified.
func NewPopularityService(cfg *config.GitHubConfig, repoRepo repo.RepositoryRepo, dispatcher *events.Dispatcher, log logrus.FieldLogger) (*service.PopularityService, error) {
	client, err := github.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	fetcher := infraGitHub.NewMetricsFetcher(client, popularity.ParseCredentialPolicy(cfg.CredentialPolicy), log)
	return service.NewPopularityService(repoRepo, fetcher, dispatcher), nil
}

// NewDispatcher returns an event dispatcher that logs every domain event
func NewDispatcher(log logrus.FieldLogger) *events.Dispatcher {
	dispatcher := events.NewDispatcher(log)
	for _, eventType := range []string{
		repo.EventTypeRepositoryAdded,
		repo.EventTypeRepositoryRenamed,
		repo.EventTypeRepositoryRemoved,
		popularity.EventTypePopularityChecked,
	} {
		dispatcher.Register(eventType, events.LogHandler(log))
	}
	return dispatcher
}

// New connects to the database and builds the router
func New(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	s, err := NewWithDB(cfg, log, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB builds the router on an existing database handle
func NewWithDB(cfg *config.Config, log *logrus.Logger, db *database.DB) (*Server, error) {
	dispatcher := NewDispatcher(log)

	// Infrastructure
	repositoryRepository := persistence.NewRepositoryRepository(db)

	// Application services
	popularityService, err := NewPopularityService(&cfg.GitHub, repositoryRepository, dispatcher, log)
	if err != nil {
		return nil, err
	}
	repositoryService := service.NewRepositoryService(repositoryRepository, dispatcher, linkBase(cfg))

	// HTTP handlers
	healthHandler := handlers.NewHealthHandler(popularityService, cfg.GitHub.CanaryRepository)
	repositoryHandler := handlers.NewRepositoryHandler(repositoryService, popularityService)

	authMiddleware, err := middleware.NewAuthMiddleware(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth middleware: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(&cfg.CORS)))

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint (no auth required)
		v1.GET("/health", healthHandler.Health)

		repos := v1.Group("/repos")
		repos.Use(authMiddleware.RequireAuth())
		{
			repos.GET("", repositoryHandler.ListRepositories)
			repos.POST("", repositoryHandler.CreateRepository)
			repos.GET("/:id", repositoryHandler.GetRepository)
			repos.PUT("/:id", repositoryHandler.UpdateRepository)
			repos.DELETE("/:id", repositoryHandler.DeleteRepository)
			repos.GET("/:id/popular", repositoryHandler.Popular)
		}
	}

	// Swagger documentation
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{cfg: cfg, log: log, db: db, router: router}, nil
}

// Serve applies the schema when migrate is set and then runs until ctx is
// cancelled. The database is closed on every return path.
func (s *Server) Serve(ctx context.Context, migrate bool) error {
	defer s.Close()

	if migrate {
		if err := s.Migrate(ctx); err != nil {
			return err
		}
	}
	return s.Run(ctx)
}

// Close releases the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Migrate applies the database schema
func (s *Server) Migrate(ctx context.Context) error {
	if err := s.db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
// It leaves the database open; callers pair it with Close or use Serve.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.GetServerAddress(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info("server exited")
	return nil
}

func linkBase(cfg *config.Config) string {
	base := cfg.Server.PublicURL
	if base == "" {
		base = "http://" + cfg.GetServerAddress()
	}
	return base + "/api/v1/repos"
}

func corsConfig(cfg *config.CORSConfig) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}

	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
