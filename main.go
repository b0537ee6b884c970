package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"

	"studytrack/config"
	"studytrack/database"
	"studytrack/logger"
	"studytrack/repository"
	"studytrack/routers"
	"studytrack/services"
	"studytrack/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.ConnectDb(cfg, appLog)
	if err != nil {
		appLog.Fatal("database connection failed", "driver", cfg.DBDriver, "error", err)
	}

	loc := cfg.Location()
	users := repository.NewUserRepository(db.Db)
	planRepo := repository.NewPlanRepository(db.Db)
	sourceRepo := repository.NewSourceRepository(db.Db)

	youtube := utils.NewYouTubeClient(cfg.YouTubeApiURL, cfg.YouTubeApiKey, cfg.RequestTimeout)
	mailer := utils.NewMailer(cfg.SendgridApiKey, cfg.EmailSender, cfg.EmailSenderName, appLog)

	plans := services.NewPlanService(planRepo, sourceRepo, time.Now, loc, appLog)
	sources := services.NewSourceService(sourceRepo, planRepo, youtube, time.Now, appLog)

	app := fiber.New(fiber.Config{
		AppName:      "studytrack",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  90 * time.Second,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CorsOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE",                   // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization,X-Request-ID", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency} ${respHeader:X-Request-ID}\n",
	}))

	routers.SetupRoutes(app, routers.Deps{
		Config:  cfg,
		DB:      db,
		Users:   users,
		Plans:   plans,
		Sources: sources,
		Mailer:  mailer,
		Log:     appLog,
	})

	var reminders *utils.ReminderScheduler
	if strings.TrimSpace(cfg.ReminderCron) != "" {
		digest := services.NewReminderService(planRepo, users, time.Now, loc)
		reminders, err = utils.NewReminderScheduler(cfg.ReminderCron, loc, digest, mailer, appLog)
		if err != nil {
			appLog.Fatal("reminder scheduler", "error", err)
		}
		reminders.Start()
	}

	// Start server non-blocking
	go func() {
		appLog.Info("Server is running", "port", cfg.Port, "env", cfg.AppEnv, "timezone", cfg.Timezone)
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLog.Fatal("server error", "error", err)
		}
	}()

	// graceful shutdown, then close the pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if reminders != nil {
		select {
		case <-reminders.Stop().Done():
		case <-ctx.Done():
		}
	}
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLog.Warn("server shutdown", "error", err)
	}
	if err := db.Close(); err != nil {
		appLog.Warn("database close", "error", err)
	}
}
