package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	internalhttp "github.com/whitelisthub/whitelist-hub/internal/api/http"
	"github.com/whitelisthub/whitelist-hub/internal/credentials"
	"github.com/whitelisthub/whitelist-hub/internal/db"
	"github.com/whitelisthub/whitelist-hub/internal/hub"
	"github.com/whitelisthub/whitelist-hub/internal/requests"
	"github.com/whitelisthub/whitelist-hub/internal/ws"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("Whitelist Hub Server", "version", AppVersion)

	ctx := context.Background()

	var creds credentials.Store
	if config.Database.Url != "" {
		if err := db.RunMigrations(config.Database.Url); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		pool, err := db.InitDB(ctx, config.Database.Url)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		creds = credentials.NewPostgresStore(pool)
	} else {
		fileStore, err := credentials.NewFileStore(config.Storage.DataDir)
		if err != nil {
			slog.Error("Failed to open credential store", "error", err)
			os.Exit(1)
		}
		creds = fileStore
		slog.Info("Using file credential store", "data_dir", config.Storage.DataDir)
	}

	connectionHub := hub.New(creds)
	agentServer := ws.NewServer(connectionHub)

	requestService, err := requests.NewService(config.Storage.DataDir, connectionHub)
	if err != nil {
		slog.Error("Failed to open request store", "error", err)
		os.Exit(1)
	}

	services := &internalhttp.Services{
		Hub:         connectionHub,
		Credentials: creds,
		Requests:    requestService,
		Agent:       agentServer,
		Auth:        config.Auth,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"PUT", "PATCH", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services, config.Http)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Http.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
