// Package main provides the entry point for the BookCourier API server.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/bookcourier/bookcourier-server/internal/di"
	"github.com/bookcourier/bookcourier-server/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		logger.New(logger.Config{Writer: os.Stderr}).Fatal("Failed to bootstrap server", "error", err)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdownable providers close in reverse dependency order: the HTTP
	// server drains first, the store closes last.
	if err := injector.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown error")
	}

	log.Info("Server stopped")
}
