// Package main provides the eval-gate action binary: it decides whether
// changed files warrant an LLM evaluation run and reports the outcome.
package main

import (
	"fmt"
	"log/slog"
	"os"

	gogithub "github.com/google/go-github/v68/github"

	configdeps "github.com/nathantilsley/eval-gate/internal/gate/adapters/config_deps"
	evalcli "github.com/nathantilsley/eval-gate/internal/gate/adapters/eval_cli"
	eventin "github.com/nathantilsley/eval-gate/internal/gate/adapters/event_in"
	gitcli "github.com/nathantilsley/eval-gate/internal/gate/adapters/git_cli"
	githubout "github.com/nathantilsley/eval-gate/internal/gate/adapters/github_out"
	globfs "github.com/nathantilsley/eval-gate/internal/gate/adapters/glob_fs"
	linediff "github.com/nathantilsley/eval-gate/internal/gate/adapters/line_diff"
	summaryout "github.com/nathantilsley/eval-gate/internal/gate/adapters/summary_out"
	"github.com/nathantilsley/eval-gate/internal/gate/app"
	"github.com/nathantilsley/eval-gate/internal/gate/domain"
	"github.com/nathantilsley/eval-gate/internal/gate/ports"
	"github.com/nathantilsley/eval-gate/internal/platform/cache"
	"github.com/nathantilsley/eval-gate/internal/platform/config"
	ghclient "github.com/nathantilsley/eval-gate/internal/platform/github"
	"github.com/nathantilsley/eval-gate/internal/platform/telemetry"
)

// Container holds all application dependencies.
type Container struct {
	Config      config.Config
	Logger      *slog.Logger
	Events      *eventin.Adapter
	GateService ports.GateUseCase
}

// NewContainer builds and wires all dependencies.
func NewContainer(cfg config.Config, log *slog.Logger, tel *telemetry.Telemetry) (*Container, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	git, err := gitcli.New(workDir, log)
	if err != nil {
		return nil, fmt.Errorf("creating git adapter: %w", err)
	}

	glob := globfs.New()
	extractor := configdeps.New(glob, workDir, log)
	resolver := app.NewChangeSetResolver(git, log)

	cacheDir, err := cache.New(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("preparing eval cache: %w", err)
	}

	env := evalcli.Env{
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		AzureKey:     cfg.AzureKey,
	}
	if cacheDir != nil {
		env.CachePath = cacheDir.Path()
	}

	eval, err := evalcli.New(cfg.EvalBinary, workDir, env, evalcli.Options{
		Share:          cfg.Share,
		Table:          cfg.Table,
		MaxConcurrency: cfg.MaxConcurrency,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating eval adapter: %w", err)
	}

	var reporter ports.ReportingPort
	if !cfg.NoComment {
		client, err := newGitHubClient(cfg)
		if err != nil {
			return nil, err
		}
		reporter = githubout.New(client, cfg.Owner, cfg.Repo, log)
	} else {
		log.Info("PR comments disabled")
	}

	summary := summaryout.New(cfg.StepSummaryPath, log)

	opts := app.Options{
		ConfigPath:       cfg.ConfigPath,
		PromptGlobs:      cfg.PromptGlobs,
		ForceRun:         cfg.ForceRun,
		UseConfigPrompts: cfg.UseConfigPrompts,
		FailOnError:      cfg.FailOnError,
	}
	if cacheDir != nil {
		opts.CacheSize = cacheDir.Size
	}

	service, err := app.NewGateService(
		resolver,
		git,
		extractor,
		glob,
		eval,
		linediff.New(),
		reporter,
		summary,
		opts,
		log,
		tel.Tracer,
		tel.Meter,
	)
	if err != nil {
		return nil, fmt.Errorf("creating gate service: %w", err)
	}

	return &Container{
		Config:      cfg,
		Logger:      log,
		Events:      eventin.New(log),
		GateService: service,
	}, nil
}

// ParseTrigger reads the event payload file the runner provides and builds
// the trigger context for this invocation.
func (c *Container) ParseTrigger() (domain.TriggerContext, error) {
	var payload []byte
	if c.Config.EventPath != "" {
		data, err := os.ReadFile(c.Config.EventPath)
		if err != nil {
			return domain.TriggerContext{}, fmt.Errorf("reading event payload: %w", err)
		}
		payload = data
	}

	return c.Events.Parse(c.Config.EventName, payload, eventin.DispatchOverrides{
		Files:   c.Config.FilesOverride,
		BaseRef: c.Config.BaseRef,
	})
}

func newGitHubClient(cfg config.Config) (*gogithub.Client, error) {
	if cfg.AppID != 0 {
		client, err := ghclient.NewAppClient(cfg.AppID, cfg.InstallationID, cfg.AppPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("creating github app client: %w", err)
		}
		return client, nil
	}
	return ghclient.NewTokenClient(cfg.GitHubToken), nil
}
