package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "quiz-admin/docs"
	"quiz-admin/internal/auth"
	"quiz-admin/internal/config"
	"quiz-admin/internal/database"
	"quiz-admin/internal/handlers"
	"quiz-admin/internal/middleware"
	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"
	"quiz-admin/internal/routes"
	"quiz-admin/internal/services"
	"quiz-admin/internal/storage"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

const version = "1.0.0"

// @title Quiz Admin API
// @version 1.0
// @description Back office for the quiz app: packages, question banks and phrases in Kazakh and Russian
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load environment variables
	loadEnvFile()

	// Load configuration
	cfg := config.Load()

	// Setup logger
	log := setupLogger()

	rules, err := config.LoadUploadRules(cfg.Storage.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load upload rules: %v", err)
	}
	cfg.Storage.Rules = rules

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := setupStorage(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	devMode := cfg.IsDevelopment()

	adminRepo := repository.NewAdminRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	slotRepo := repository.NewSlotRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(adminRepo, tokens, cfg.Auth, log)
	slotService := services.NewSlotService(slotRepo, store, cfg.Storage.Rules, log)
	packageService := services.NewPackageService(packageRepo, slotService, log)
	questionService := services.NewResourceService(models.KindQuestions, slotService)
	phraseService := services.NewResourceService(models.KindPhrases, slotService)
	reconciler := services.NewReconciler(slotRepo, store, cfg.Reconcile.Grace, log)

	h := routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, log, devMode),
		Packages:    handlers.NewPackageHandler(packageService, log, devMode),
		Public:      handlers.NewPublicHandler(packageService, questionService, phraseService, log, devMode),
		Questions:   handlers.NewUploadHandler(questionService, "Questions", log, devMode),
		Phrases:     handlers.NewUploadHandler(phraseService, "Phrases", log, devMode),
		Maintenance: handlers.NewMaintenanceHandler(reconciler, log, devMode),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Quiz Admin API",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: false,
		ErrorHandler:          customErrorHandler(log, devMode),
	})

	setupMiddleware(app)

	health := handlers.HealthCheck(db, version)
	app.Get("/health", health)
	app.Get("/api/health", health)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Setup API routes
	routes.Setup(app, h, middleware.RequireAdmin(authService))

	go reconciler.Run(ctx, cfg.Reconcile.Interval)

	// Graceful shutdown
	go gracefulShutdown(app, stop, log)

	log.WithFields(logrus.Fields{
		"port":    cfg.Server.Port,
		"env":     cfg.Env,
		"storage": cfg.Storage.Driver,
	}).Info("Quiz Admin API starting")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start HTTP server: %v", err)
	}
}

func setupLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	if os.Getenv("GO_ENV") == "dev" || os.Getenv("GO_ENV") == "development" {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func setupStorage(ctx context.Context, cfg *config.Config, log *logrus.Logger) (storage.BlobStore, error) {
	if cfg.Storage.Driver == config.StorageDriverMinIO {
		return storage.NewMinIOStore(ctx, &cfg.MinIO, log)
	}

	store, err := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err != nil {
		return nil, err
	}
	log.WithField("dir", store.Root()).Info("Using local file storage")
	return store, nil
}

func setupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.New().String()
		},
	}))

	app.Use(helmet.New())

	// Logger middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Disposition",
		MaxAge:           86400, // 24 hours
	}))

	app.Use(middleware.Metrics())
}

func customErrorHandler(log *logrus.Logger, devMode bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		log.WithError(err).WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     code,
			"request_id": c.Locals("requestid"),
		}).Error("Request error")

		detail := ""
		if devMode && code >= fiber.StatusInternalServerError {
			detail = err.Error()
		}
		return utils.ErrorWithDetailResponse(c, code, message, detail)
	}
}

func gracefulShutdown(app *fiber.App, stop context.CancelFunc, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stop()

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Errorf("Error during shutdown: %v", err)
	}

	log.Info("Server shutdown complete")
}

func loadEnvFile() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{})
	log.SetOutput(os.Stdout)

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "dev"
	}

	execDir, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not get working directory: %v", err)
		return
	}

	envFile := filepath.Join(execDir, "envs", ".env."+env)
	if err := godotenv.Load(envFile); err != nil {
		log.Warnf("Could not load environment file %s: %v", envFile, err)

		defaultEnvFile := filepath.Join(execDir, "envs", ".env")
		if err := godotenv.Load(defaultEnvFile); err != nil {
			log.Warnf("Could not load default environment file: %v", err)
		} else {
			log.Infof("Environment loaded from default file %s", defaultEnvFile)
		}
	} else {
		log.Infof("Environment loaded from file %s", envFile)
	}
}
