package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/comigor/tenant-console/internal/chat"
	"github.com/comigor/tenant-console/internal/config"
	"github.com/comigor/tenant-console/internal/directory"
	"github.com/comigor/tenant-console/internal/identity"
	"github.com/comigor/tenant-console/internal/logger"
	"github.com/comigor/tenant-console/internal/rules"
	"github.com/comigor/tenant-console/internal/server"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creator, err := rules.NewCreator(*cfg)
	if err != nil {
		logger.L.Error("failed to build rule creator", "error", err)
		os.Exit(1)
	}

	dir, closeDir, err := directory.Open(ctx, *cfg)
	if err != nil {
		logger.L.Error("failed to open directory", "error", err)
		os.Exit(1)
	}
	defer closeDir()

	sessions := server.NewSessions(func(op identity.Context) *chat.Session {
		return chat.NewSession(creator, cfg.Rules.TenantID, chat.WithOperator(op))
	})
	router := server.NewRouter(server.Deps{
		Sessions:  sessions,
		Directory: dir,
		Identity:  identity.NewParser(cfg.Identity.Secret, cfg.Rules.TenantID),
	})

	// Start server
	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: serverAddr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("shutdown error", "error", err)
		}
	}()

	logger.L.Info("starting server", "address", serverAddr, "rules_provider", cfg.Rules.Provider, "directory_provider", cfg.Directory.Provider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
