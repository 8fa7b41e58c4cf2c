package main

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/fadilmartias/converge/internal/config"
	"github.com/fadilmartias/converge/internal/domain/fiber/handler"
	"github.com/fadilmartias/converge/internal/metrics"
	"github.com/fadilmartias/converge/internal/middleware"
	"github.com/fadilmartias/converge/internal/repository"
	"github.com/fadilmartias/converge/internal/service"
	"github.com/fadilmartias/converge/internal/usecase"
	"github.com/fadilmartias/converge/internal/util"
	"github.com/fadilmartias/converge/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	logger.Init(appConfig.LogLevel)
	backendConfig := config.LoadBackendConfig()
	resumeConfig := config.LoadResumeConfig()

	db := ConnectDB()
	m := metrics.New()

	session, err := service.NewSessionService(context.Background(), repository.NewSessionRepository(db))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to restore session")
	}

	backend := service.NewBackendService(backendConfig, session, m)
	matcher := service.NewMatchService(backendConfig, m)
	ratings := usecase.NewRatingUsecase(service.NewRatingService(backendConfig, m))

	var opener util.DocumentOpener
	if resumeConfig.ExtractionEnabled {
		opener = util.OpenFitzDocument
	} else {
		logger.Warn().Msg("resume text extraction disabled")
	}
	pipeline := usecase.NewResumePipeline(util.NewResumeExtractor(opener, m), resumeConfig)

	directory := usecase.NewProjectDirectory(backend)
	registry := usecase.NewLifecycleRegistry(backend, matcher, ratings, session, directory)
	account := usecase.NewAccountUsecase(backend, pipeline, registry)
	inbox := usecase.NewInboxUsecase(backend, session, directory, registry)
	resume := usecase.NewResumeUsecase(backend, pipeline, resumeConfig)

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: int(resumeConfig.MaxBytes) + 1<<20,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(ctx, util.ErrorResponseFormat{Code: code, Message: message}, err)
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New(healthcheck.Config{
		ReadinessProbe: func(c *fiber.Ctx) bool {
			sqlDB, err := db.DB()
			return err == nil && sqlDB.PingContext(c.UserContext()) == nil
		},
	}))
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	app.Use(middleware.RateLimiter(middleware.GlobalLimit, m))

	handler.NewAuthHandler(account, resumeConfig.MaxBytes).RegisterRoutes(app)
	handler.NewProfileHandler(account).RegisterRoutes(app)
	handler.NewResumeHandler(resume, resumeConfig.MaxBytes, m).RegisterRoutes(app)
	handler.NewProjectHandler(registry, directory, m).RegisterRoutes(app)
	handler.NewInboxHandler(inbox).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			logger.Debug().Int("goroutines", runtime.NumGoroutine()).Msg("runtime stats")
		}
	}()

	logger.Info().
		Str("port", appConfig.Port).
		Str("primary_backend", backendConfig.PrimaryURL).
		Str("match_backend", backendConfig.MatchURL).
		Str("rating_backend", backendConfig.RatingURL).
		Bool("authenticated", session.IsAuthenticated()).
		Msg("server running")
	if err := app.Listen(appConfig.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := repository.OpenSessionDB(dbConfig)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", dbConfig.Driver).Msg("could not connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not get database instance")
	}
	if dbConfig.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else if appConfig.IsProduction() {
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetMaxOpenConns(200)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db
}
