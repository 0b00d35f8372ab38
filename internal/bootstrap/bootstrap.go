package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/controllers"
	"github.com/mesconnect/backend/internal/app/migrations"
	"github.com/mesconnect/backend/internal/app/repositories"
	"github.com/mesconnect/backend/internal/app/routes"
	"github.com/mesconnect/backend/internal/app/services"
	"github.com/mesconnect/backend/internal/config"
	"github.com/mesconnect/backend/internal/db"
	"github.com/mesconnect/backend/internal/middleware"
	"github.com/mesconnect/backend/internal/pkg/auth"
	"github.com/mesconnect/backend/internal/pkg/logger"
	"github.com/mesconnect/backend/internal/seed"
)

// Dependencies contains the wired application components
type Dependencies struct {
	Repos      *repositories.Repositories
	JWTService *auth.JWTService

	AuthService       services.AuthService
	ConnectionService services.ConnectionService
	ChatService       services.ChatService
	ConfessionService services.ConfessionService
	EventService      services.EventService
	GroupService      services.GroupService

	AuthController       *controllers.AuthController
	ConnectionController *controllers.ConnectionController
	ChatController       *controllers.ChatController
	ConfessionController *controllers.ConfessionController
	EventController      *controllers.EventController
	GroupController      *controllers.GroupController

	AuthMiddleware *middleware.AuthMiddleware
}

// LoadConfigAndSetupLogger loads the configuration and configures the global logger
func LoadConfigAndSetupLogger() (*config.Config, error) {
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "text",
	})

	logger.Info().
		Str("mode", cfg.Server.Mode).
		Str("port", cfg.Server.Port).
		Msg("Configuration loaded")

	return cfg, nil
}

// SetupDatabase connects to PostgreSQL, runs migrations and seeds default data
func SetupDatabase(ctx context.Context, cfg *config.Config) (*db.PostgresDB, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrator := migrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory("migrations"); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seed.CreateDefaultData(ctx, database, logger.With("component", "seed")); err != nil {
		// Seeding problems should not prevent startup
		logger.Warn().Err(err).Msg("Database seeding finished with errors")
	}

	logger.Info().Msg("Database ready")
	return database, nil
}

// BuildDependencies constructs repositories, services and controllers
func BuildDependencies(cfg *config.Config, database *db.PostgresDB) *Dependencies {
	repos := repositories.NewRepositories(database)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenDuration(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	authService := services.NewAuthService(repos.UserRepository, jwtService, logger.With("service", "auth"))
	connectionService := services.NewConnectionService(repos.ConnectionRepository, repos.UserRepository, logger.With("service", "connection"))
	chatService := services.NewChatService(repos.MessageRepository, repos.UserRepository, logger.With("service", "chat"))
	confessionService := services.NewConfessionService(repos.ConfessionRepository, repos.UserRepository, logger.With("service", "confession"))
	eventService := services.NewEventService(repos.EventRepository, logger.With("service", "event"))
	groupService := services.NewGroupService(repos.GroupRepository, logger.With("service", "group"))

	return &Dependencies{
		Repos:      repos,
		JWTService: jwtService,

		AuthService:       authService,
		ConnectionService: connectionService,
		ChatService:       chatService,
		ConfessionService: confessionService,
		EventService:      eventService,
		GroupService:      groupService,

		AuthController:       controllers.NewAuthController(authService),
		ConnectionController: controllers.NewConnectionController(connectionService),
		ChatController:       controllers.NewChatController(chatService),
		ConfessionController: controllers.NewConfessionController(confessionService),
		EventController:      controllers.NewEventController(eventService),
		GroupController:      controllers.NewGroupController(groupService),

		AuthMiddleware: middleware.NewAuthMiddleware(jwtService),
	}
}

// SetupRouter creates the gin engine and registers middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(gin.Recovery())

	routes.SetupRouter(
		router,
		deps.AuthController,
		deps.ConnectionController,
		deps.ChatController,
		deps.ConfessionController,
		deps.EventController,
		deps.GroupController,
		deps.AuthMiddleware,
	)

	return router
}
