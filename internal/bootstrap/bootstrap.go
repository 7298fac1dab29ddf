package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/devcamper/internal/app/auth"
	appControllers "github.com/yigit/devcamper/internal/app/controllers"
	appMigrations "github.com/yigit/devcamper/internal/app/migrations"
	appRepos "github.com/yigit/devcamper/internal/app/repositories"
	appRoutes "github.com/yigit/devcamper/internal/app/routes"
	appServices "github.com/yigit/devcamper/internal/app/services"
	"github.com/yigit/devcamper/internal/config"
	"github.com/yigit/devcamper/internal/db"
	appMiddleware "github.com/yigit/devcamper/internal/middleware"
	pkgAuth "github.com/yigit/devcamper/internal/pkg/auth"
	"github.com/yigit/devcamper/internal/pkg/email"
	"github.com/yigit/devcamper/internal/pkg/filestorage"
	"github.com/yigit/devcamper/internal/pkg/geocoder"
	"github.com/yigit/devcamper/internal/pkg/helpers"
	"github.com/yigit/devcamper/internal/pkg/logger"
	"github.com/yigit/devcamper/internal/seed"
)

// Default locations of the configuration files, relative to the working directory
var (
	ConfigPath = filepath.Join("configs", "config.yaml")
	EnvPath    = filepath.Join("config", "config.env")
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	BootcampService    *appServices.BootcampService
	CourseService      *appServices.CourseService
	AuthService        *appServices.AuthService
	UserService        *appServices.UserService
	AuthController     *appControllers.AuthController
	BootcampController *appControllers.BootcampController
	CourseController   *appControllers.CourseController
	UserController     *appControllers.UserController
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	AuthzService       *appAuth.AuthorizationService
	Geocoder           geocoder.Geocoder
	Mailer             email.Mailer
	FileStorage        *filestorage.LocalStorage
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath, EnvPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(dbPool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	tokenRepo := appRepos.NewTokenRepository(dbPool)
	if removed, err := tokenRepo.CleanupExpiredTokens(ctx); err != nil {
		lgr.Warn().Err(err).Msg("Failed to clean up expired refresh tokens")
	} else if removed > 0 {
		lgr.Info().Int64("removed", removed).Msg("Expired refresh tokens cleaned up")
	}
	resetRepo := appRepos.NewPasswordResetTokenRepository(dbPool)
	if removed, err := resetRepo.DeleteExpiredTokens(ctx); err != nil {
		lgr.Warn().Err(err).Msg("Failed to clean up password reset tokens")
	} else if removed > 0 {
		lgr.Info().Int64("removed", removed).Msg("Stale password reset tokens cleaned up")
	}

	// a missing admin does not prevent startup
	seeder := seed.New(dbPool, lgr)
	if err := seeder.CreateDefaultAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.UploadPath, "/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Geocoder, err = geocoder.New(geocoder.Config{
		Provider:   cfg.Geocoder.Provider,
		APIKey:     cfg.Geocoder.APIKey,
		BaseURL:    cfg.Geocoder.BaseURL,
		Timeout:    cfg.Geocoder.Timeout,
		MaxRetries: cfg.Geocoder.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize geocoder: %w", err)
	}
	if _, disabled := deps.Geocoder.(geocoder.Disabled); disabled {
		lgr.Warn().Msg("Geocoder API key not set; bootcamps are stored without location and radius search is unavailable")
	}

	deps.Mailer = email.NewSMTPMailer(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr)
	if cfg.SMTP.Host == "" {
		lgr.Warn().Msg("SMTP host not set; password reset links are logged instead of emailed")
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 30*24*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 60*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthzService = appAuth.NewAuthorizationService()

	// Initialize services
	deps.BootcampService = appServices.NewBootcampService(
		deps.Repos.BootcampRepository,
		deps.Geocoder,
		deps.FileStorage,
		deps.AuthzService,
		cfg.Server.MaxFileUpload,
		lgr,
	)
	deps.CourseService = appServices.NewCourseService(deps.Repos.CourseRepository, deps.Repos.BootcampRepository, deps.AuthzService)
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.Repos.ResetRepository,
		deps.Mailer,
		deps.JWTService,
		lgr,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.BootcampController = appControllers.NewBootcampController(deps.BootcampService)
	deps.CourseController = appControllers.NewCourseController(deps.CourseService)
	deps.UserController = appControllers.NewUserController(deps.UserService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxFileUpload
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	router.Use(appMiddleware.ErrorHandler())
	router.NoRoute(appMiddleware.NotFoundHandler())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.BootcampController,
		deps.CourseController,
		deps.UserController,
		deps.AuthMiddleware,
		appRoutes.ResultSources{
			Bootcamps: deps.Repos.BootcampRepository,
			Courses:   deps.Repos.CourseRepository,
			Users:     deps.Repos.UserRepository,
		},
		cfg.Server.MaxFileUpload,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
