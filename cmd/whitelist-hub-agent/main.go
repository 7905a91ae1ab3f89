package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/whitelisthub/whitelist-hub/internal/agent"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("Whitelist Hub Agent", "version", AppVersion)

	if config.Agent.APIKey == "" {
		slog.Error("API_KEY is required")
		os.Exit(1)
	}

	client := agent.NewClient(config.Agent, func(action, username string) {
		slog.Info("Whitelist updated", "action", action, "username", username)
	})
	client.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received shutdown signal", "signal", sig)

	client.Stop()
	slog.Info("Shutdown complete")
}
