// Package main is the entry point for the taskdeck CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskdeck/internal/backend/supabase"
	"taskdeck/internal/cli"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/logger"
	"taskdeck/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config) (service.Backend, error) {
		level := cfg.LogLevel
		if cfg.Debug {
			level = "debug"
		}
		if err := logger.Init(level); err != nil {
			return nil, err
		}
		return supabase.New(cfg), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	logger.Sync()
	os.Exit(code)
}
