package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/emre/scolaris/docs" // Import generated swagger docs
	appControllers "github.com/emre/scolaris/internal/app/controllers"
	appMigrations "github.com/emre/scolaris/internal/app/migrations"
	appRepos "github.com/emre/scolaris/internal/app/repositories"
	appRoutes "github.com/emre/scolaris/internal/app/routes"
	appServices "github.com/emre/scolaris/internal/app/services"
	"github.com/emre/scolaris/internal/config"
	"github.com/emre/scolaris/internal/db"
	appMiddleware "github.com/emre/scolaris/internal/middleware"
	pkgAuth "github.com/emre/scolaris/internal/pkg/auth"
	"github.com/emre/scolaris/internal/pkg/filestorage"
	"github.com/emre/scolaris/internal/pkg/helpers"
	"github.com/emre/scolaris/internal/pkg/logger"
	"github.com/emre/scolaris/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.AuthService
	SchoolService        appServices.SchoolService
	AdmissionService     appServices.AdmissionService
	StudentService       appServices.StudentService
	GuardianService      appServices.GuardianService
	AttendanceService    appServices.AttendanceService
	BehaviorService      appServices.BehaviorService
	InvoiceService       appServices.InvoiceService
	AuthController       *appControllers.AuthController
	SchoolController     *appControllers.SchoolController
	AdmissionController  *appControllers.AdmissionController
	StudentController    *appControllers.StudentController
	GuardianController   *appControllers.GuardianController
	AttendanceController *appControllers.AttendanceController
	BehaviorController   *appControllers.BehaviorController
	InvoiceController    *appControllers.InvoiceController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Logger               zerolog.Logger
	FileStorage          *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, cfg, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 30*24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.Repos.TokenRepository, deps.JWTService, lgr)
	deps.SchoolService = appServices.NewSchoolService(deps.Repos.SchoolRepository, lgr)
	deps.AdmissionService = appServices.NewAdmissionService(
		deps.Repos.AdmissionRepository,
		deps.Repos.StudentRepository,
		deps.Repos.GuardianRepository,
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, lgr)
	deps.GuardianService = appServices.NewGuardianService(deps.Repos.GuardianRepository, lgr)
	deps.AttendanceService = appServices.NewAttendanceService(deps.Repos.AttendanceRepository, deps.Repos.StudentRepository, lgr)
	deps.BehaviorService = appServices.NewBehaviorService(deps.Repos.BehaviorRepository, deps.Repos.StudentRepository, lgr)
	deps.InvoiceService = appServices.NewInvoiceService(deps.Repos.InvoiceRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.SchoolController = appControllers.NewSchoolController(deps.SchoolService)
	deps.AdmissionController = appControllers.NewAdmissionController(deps.AdmissionService, deps.FileStorage)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.GuardianController = appControllers.NewGuardianController(deps.GuardianService)
	deps.AttendanceController = appControllers.NewAttendanceController(deps.AttendanceService)
	deps.BehaviorController = appControllers.NewBehaviorController(deps.BehaviorService)
	deps.InvoiceController = appControllers.NewInvoiceController(deps.InvoiceService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.SchoolController,
		deps.AdmissionController,
		deps.StudentController,
		deps.GuardianController,
		deps.AttendanceController,
		deps.BehaviorController,
		deps.InvoiceController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
