package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agentrepl/config"
	"agentrepl/model"
	"agentrepl/provider"
	"agentrepl/tools"
	"agentrepl/ui"

	"go.uber.org/zap"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Printf("agentrepl %s (%s)\n", Version, License)
			return
		case "--print-config":
			fmt.Print(config.GenerateSettingsTemplate())
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.NewDebugLogger(cfg.ConfigDir())
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := provider.InitializeProvider(cfg, logger)
	if err != nil {
		return err
	}

	registry, err := tools.NewDefaultRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	console := ui.NewConsole(os.Stdin, os.Stdout, cfg.Display.RenderMarkdown, logger)
	console.ShowBanner(p.Name(), provider.DisplayName(p))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := model.NewController(p, registry, console, cfg, logger)
	if err := controller.Run(ctx); err != nil {
		logger.Error("conversation ended with error", zap.Error(err))
		return err
	}

	logger.Info("conversation ended", zap.Int("messages", controller.History().Len()))
	return nil
}
