package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/comigor/tenant-console/internal/chat"
	"github.com/comigor/tenant-console/internal/config"
	"github.com/comigor/tenant-console/internal/directory"
	"github.com/comigor/tenant-console/internal/identity"
	"github.com/comigor/tenant-console/internal/logger"
	"github.com/comigor/tenant-console/internal/rules"
	"github.com/comigor/tenant-console/internal/terminal"
)

func main() {
	_ = godotenv.Load()

	// keep diagnostics out of the transcript
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	// Ctrl+C resolves a pending exchange to the fallback reply and ends Run
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the operator is whoever the configured token names; without one the
	// console runs as an anonymous local operator
	op := identity.Context{UserID: "local", TenantID: cfg.Rules.TenantID}
	if cfg.Identity.Token != "" {
		op, err = identity.NewParser(cfg.Identity.Secret, cfg.Rules.TenantID).Parse(cfg.Identity.Token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	ctx = identity.WithContext(ctx, op)

	creator, err := rules.NewCreator(*cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dir, closeDir, err := directory.Open(ctx, *cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeDir()

	session := chat.NewSession(creator, cfg.Rules.TenantID,
		chat.WithOperator(op),
		chat.WithClipboard(chat.SystemClipboard{}))

	console := terminal.New(session, dir, op.TenantID, os.Stdout)
	if err := console.Run(ctx, os.Stdin); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Shutting down...")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
