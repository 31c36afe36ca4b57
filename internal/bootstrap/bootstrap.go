package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/monchobi/artschool/internal/app/controllers"
	appMigrations "github.com/monchobi/artschool/internal/app/migrations"
	appRepos "github.com/monchobi/artschool/internal/app/repositories"
	appRoutes "github.com/monchobi/artschool/internal/app/routes"
	appServices "github.com/monchobi/artschool/internal/app/services"
	"github.com/monchobi/artschool/internal/config"
	"github.com/monchobi/artschool/internal/db"
	appMiddleware "github.com/monchobi/artschool/internal/middleware"
	pkgAuth "github.com/monchobi/artschool/internal/pkg/auth"
	"github.com/monchobi/artschool/internal/pkg/cache"
	"github.com/monchobi/artschool/internal/pkg/email"
	"github.com/monchobi/artschool/internal/pkg/events"
	"github.com/monchobi/artschool/internal/pkg/filestorage"
	"github.com/monchobi/artschool/internal/pkg/helpers"
	"github.com/monchobi/artschool/internal/pkg/logger"
	"github.com/monchobi/artschool/internal/pkg/metrics"
	"github.com/monchobi/artschool/internal/pkg/observability"
	"github.com/monchobi/artschool/internal/pkg/payment"
	"github.com/monchobi/artschool/internal/pkg/validation"
	"github.com/monchobi/artschool/internal/pkg/websocket"
	"github.com/monchobi/artschool/internal/seed"
)

const defaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	EnrollmentService appServices.EnrollmentService
	ReviewService     appServices.ReviewService
	CatalogService    appServices.CatalogService
	AuthService       *appServices.AuthService
	ReportService     *appServices.ReportService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService

	Hub         *websocket.Hub
	Kafka       *events.KafkaPublisher
	Redis       *redis.Client
	FileStorage *filestorage.LocalStorage
	Logger      zerolog.Logger
}

// Close stops background workers and releases connections other than the database.
func (d *Dependencies) Close() {
	if d.Hub != nil {
		d.Hub.Stop()
	}
	if d.Kafka != nil {
		d.Kafka.Close()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:      cfg.Logging.Level,
		Pretty:     strings.ToLower(cfg.Logging.Format) == "text",
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	lgr.Info().Stringer("logLevel", logger.ParseLevel(cfg.Logging.Level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool, lgr).Up(); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if err := validation.RegisterCustomRules(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(database)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	catalogCache := setupCache(cfg, deps, lgr)
	publisher := setupPublisher(cfg, deps, lgr)
	cacheTTL := helpers.ParseDuration(cfg.Redis.CatalogTTL, 2*time.Minute)

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.Port == 465,
	}, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// Initialize services
	deps.EnrollmentService = appServices.NewEnrollmentService(
		deps.Repos.EnrollmentRepository,
		deps.Repos.PaymentRepository,
		payment.NewProvider(cfg.Stripe.SecretKey, lgr),
		publisher,
		catalogCache,
		mailer,
		appServices.EnrollmentConfig{
			RestoreSeatOnCancel: cfg.Enrollment.RestoreSeatOnCancel,
			Currency:            cfg.Stripe.Currency,
		},
		lgr,
	)
	deps.ReviewService = appServices.NewReviewService(
		deps.Repos.ClassRepository,
		deps.FileStorage,
		publisher,
		catalogCache,
		cacheTTL,
		mailer,
		lgr,
	)
	deps.CatalogService = appServices.NewCatalogService(deps.Repos.ClassRepository, catalogCache, cacheTTL, lgr)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.ReportService = appServices.NewReportService(
		deps.Repos.ClassRepository,
		deps.Repos.EnrollmentRepository,
		deps.Repos.PaymentRepository,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		User:       appControllers.NewUserController(deps.AuthService),
		Catalog:    appControllers.NewCatalogController(deps.CatalogService),
		Enrollment: appControllers.NewEnrollmentController(deps.EnrollmentService),
		Submission: appControllers.NewSubmissionController(deps.ReviewService),
		Report:     appControllers.NewReportController(deps.ReportService),
		Feed:       websocket.NewHandler(deps.Hub, cfg.Server.CORSOrigins, lgr),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := seed.CreateDefaultData(ctx, deps.Repos.ClassRepository, deps.AuthService, seed.Options{
		AdminEmails: cfg.Admin.Emails,
		DemoClasses: cfg.Admin.SeedDemo,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return deps, nil
}

// setupCache connects to redis when an address is configured. Without one, or
// when redis cannot be reached, every lookup misses.
func setupCache(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) cache.Cache {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis address not configured - catalog cache disabled")
		return cache.Noop{}
	}

	rdb := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable - catalog cache disabled")
		_ = rdb.Close()
		return cache.Noop{}
	}

	deps.Redis = rdb
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Catalog cache connected")
	return cache.NewRedisCache(rdb)
}

// setupPublisher fans domain events out to the websocket hub and, when
// brokers are configured, to kafka.
func setupPublisher(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) events.Publisher {
	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run()

	publishers := events.Fanout{deps.Hub}
	if len(cfg.Kafka.Brokers) > 0 {
		deps.Kafka = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID, 1024, lgr)
		deps.Kafka.Start()
		publishers = append(publishers, deps.Kafka)
		lgr.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka event publisher started")
	}
	return publishers
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, database *db.PostgresDB, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
		appMiddleware.RequestTimeout(helpers.ParseDuration(cfg.Server.RequestTimeout, 5*time.Second)),
	)

	appRoutes.SetupSwagger(router, "")
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.Static("/uploads", deps.FileStorage.BasePath())
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context()); err != nil {
			observability.CaptureErr(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
