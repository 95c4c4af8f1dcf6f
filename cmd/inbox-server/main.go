package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"ai.lyftr.inbox/internal/boot"
	"ai.lyftr.inbox/internal/handlers"
	"ai.lyftr.inbox/internal/messagestore"
	"ai.lyftr.inbox/internal/service/ingest"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
)

func logLevel(name string) log.Lvl {
	switch name {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	default:
		return log.INFO
	}
}

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}
	log.SetLevel(logLevel(config.LogLevel))
	if !config.IsReady() {
		log.Warn("WEBHOOK_SECRET is not set, every webhook will be rejected")
	}

	store, err := messagestore.New(config.DatabasePath())
	if err != nil {
		log.Fatalf("opening message store: %+v", err)
	}
	defer store.Close()
	log.Infof("%s %s: message store ready at %s", boot.AppName, boot.AppVersion, config.DatabasePath())

	ingestService := ingest.New(config.WebhookSecret, store)

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("inbox"))
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())

	server.Logger.SetLevel(logLevel(config.LogLevel))

	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     headers,
		AllowCredentials: true,
	}))

	server.POST("/webhook", handlers.Webhook(ingestService))
	server.GET("/messages", handlers.ListMessages(store))
	server.GET("/stats", handlers.GetStats(store))
	server.GET("/health/live", handlers.HealthLive())
	server.GET("/health/ready", handlers.HealthReady(config, store))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
