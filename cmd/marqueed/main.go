// Command marqueed runs the marquee daemon headless: it loads the
// configuration, holds the instance lock, and serves the HTTP API until
// interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"marquee/internal/config"
	"marquee/internal/daemon"
	"marquee/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "marqueed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, _, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Start(ctx); err != nil {
		return err
	}
	logger.Info("daemon started", logging.String("address", d.Addr()))

	<-ctx.Done()
	d.Stop()
	return nil
}
