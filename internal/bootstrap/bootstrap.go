// Package bootstrap assembles the application's dependency graph.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/admitflow/admitflow/docs" // swagger docs registration

	"github.com/admitflow/admitflow/internal/app/controllers"
	"github.com/admitflow/admitflow/internal/app/migrations"
	"github.com/admitflow/admitflow/internal/app/repositories"
	"github.com/admitflow/admitflow/internal/app/routes"
	"github.com/admitflow/admitflow/internal/app/services"
	"github.com/admitflow/admitflow/internal/config"
	"github.com/admitflow/admitflow/internal/db"
	"github.com/admitflow/admitflow/internal/middleware"
	"github.com/admitflow/admitflow/internal/pkg/auth"
	"github.com/admitflow/admitflow/internal/pkg/docstore"
	"github.com/admitflow/admitflow/internal/pkg/helpers"
	"github.com/admitflow/admitflow/internal/pkg/logger"
	"github.com/admitflow/admitflow/internal/seed"
)

// Dependencies holds the wired application components
type Dependencies struct {
	Repos                 *repositories.Container
	Services              *services.Container
	AuthController        *controllers.AuthController
	ApplicationController *controllers.ApplicationController
	AdminController       *controllers.AdminController
	ProgramController     *controllers.ProgramController
	UserController        *controllers.UserController
	AuthMiddleware        *middleware.AuthMiddleware
	JWTService            *auth.JWTService
	DocumentStore         docstore.DocumentStore
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger() (*config.Config, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	logger.Info().Str("level", cfg.Logging.Level).Str("format", cfg.Logging.Format).Msg("Logger configured")
	return cfg, nil
}

// SetupDatabase connects to Postgres, runs migrations, and seeds
// default data.
func SetupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	pool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info().Msg("Database connection established")

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		pool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}
	if err := migrations.NewMigrator(pool).MigrateFromDirectory(migrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	logger.Info().Msg("Database migrations applied")

	if err := seed.CreateDefaultData(context.Background(), pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seeding default data failed: %w", err)
	}

	return pool, nil
}

// BuildDependencies wires repositories, services, controllers, and
// middleware together.
func BuildDependencies(cfg *config.Config, pool *pgxpool.Pool) (*Dependencies, error) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	docStore, err := docstore.NewLocalStore(cfg.Server.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	repos := repositories.NewContainer(pool)
	svcs := services.NewContainer(repos, docStore, jwtService)

	return &Dependencies{
		Repos:    repos,
		Services: svcs,
		AuthController: controllers.NewAuthController(svcs.Auth),
		ApplicationController: controllers.NewApplicationController(
			svcs.Applications, svcs.Transitions, svcs.Lifecycle, svcs.Documents,
		),
		AdminController:   controllers.NewAdminController(svcs.Users),
		ProgramController: controllers.NewProgramController(svcs.Programs),
		UserController:    controllers.NewUserController(svcs.Users),
		AuthMiddleware:    middleware.NewAuthMiddleware(jwtService),
		JWTService:        jwtService,
		DocumentStore:     docStore,
	}, nil
}

// SetupRouter builds the gin engine with middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	routes.SetupRouter(
		router,
		deps.AuthController,
		deps.ApplicationController,
		deps.AdminController,
		deps.ProgramController,
		deps.UserController,
		deps.AuthMiddleware,
	)

	return router
}
