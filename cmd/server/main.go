package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/career-intel/internal/bootstrap"
	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/domain/fiber/handler"
	applogger "github.com/fadilmartias/career-intel/internal/logger"
	"github.com/fadilmartias/career-intel/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	zl, err := applogger.New(appConfig.LogJSON, appConfig.LogDebug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
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

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(logger.New())
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
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	db, err := bootstrap.ConnectDB(zl)
	if err != nil {
		zl.Fatal("database setup failed", zap.Error(err))
	}
	uc, err := bootstrap.NewCareerReportUsecase(ctx, db, zl)
	if err != nil {
		zl.Fatal("engine setup failed", zap.Error(err))
	}
	handler.NewCareerReportHandler(uc).RegisterRoutes(app.Group("/api"))

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				zl.Debug("runtime stats", zap.Int("goroutines", runtime.NumGoroutine()))
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			zl.Error("shutdown failed", zap.Error(err))
		}
	}()

	zl.Info("server running", zap.String("port", appConfig.Port))
	if err := app.Listen(appConfig.Port); err != nil {
		zl.Fatal("listen failed", zap.Error(err))
	}
}
