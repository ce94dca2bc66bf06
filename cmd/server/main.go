// Command server runs the venue and artist booking site.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/fyyur/internal/app"
	"github.com/iliyamo/fyyur/internal/config"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "fyyur: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	_, closeLog, err := app.SetupLogging(cfg.LogLevel, cfg.ErrorLog)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return a.Run(ctx)
}
