package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
	"github.com/nathantilsley/eval-gate/internal/platform/actions"
	"github.com/nathantilsley/eval-gate/internal/platform/config"
	"github.com/nathantilsley/eval-gate/internal/platform/logger"
	"github.com/nathantilsley/eval-gate/internal/platform/telemetry"
)

func main() {
	if err := run(); err != nil {
		if fatal := domain.AsFatal(err); fatal != nil {
			actions.New().Error(fatal.Error())
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Secrets must be masked before anything can log them.
	commander := actions.New()
	commander.MaskAll(cfg.OpenAIKey, cfg.AnthropicKey, cfg.AzureKey, cfg.AppPrivateKey)

	log := logger.New(cfg.LogLevel, commander)

	if cfg.WorkingDir != "" {
		if err := os.Chdir(cfg.WorkingDir); err != nil {
			return fmt.Errorf("entering working directory: %w", err)
		}
	}

	ctx := context.Background()
	tel, err := telemetry.New(ctx, cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	container, err := NewContainer(cfg, log, tel)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}

	trigger, err := container.ParseTrigger()
	if err != nil {
		return fmt.Errorf("parsing trigger event: %w", err)
	}

	return container.GateService.Execute(ctx, trigger)
}
