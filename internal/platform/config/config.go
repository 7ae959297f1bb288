// Package config provides application configuration from the action's
// input environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds everything one gate invocation needs, loaded once from the
// environment. Core packages receive it by parameter and never read the
// ambient environment themselves.
type Config struct {
	// Runner-provided context
	EventName       string
	EventPath       string // JSON payload file
	Owner           string
	Repo            string
	WorkingDir      string
	StepSummaryPath string

	// Authentication: a plain token, or GitHub App credentials
	GitHubToken    string
	AppID          int64
	InstallationID int64
	AppPrivateKey  string // PEM file contents

	// Gate behavior
	ConfigPath       string
	PromptGlobs      []string
	ForceRun         bool
	UseConfigPrompts bool
	FailOnError      bool
	NoComment        bool

	// Evaluation CLI
	EvalBinary     string
	Share          bool
	Table          bool
	MaxConcurrency int
	CachePath      string

	// Provider secrets
	OpenAIKey    string
	AnthropicKey string
	AzureKey     string

	// Manual dispatch overrides
	FilesOverride []string
	BaseRef       string

	LogLevel    string
	OTelEnabled bool
}

// Load reads the runner context and the INPUT_* variables GitHub sets for
// declared action inputs, validates required fields, and applies defaults.
func Load() (Config, error) {
	cfg := Config{
		ConfigPath: "promptfooconfig.yaml",
		EvalBinary: "promptfoo",
		Table:      true,
		LogLevel:   "info",
	}

	if err := loadRunnerContext(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadInputs(&cfg); err != nil {
		return Config{}, err
	}

	cfg.OTelEnabled = os.Getenv("OTEL_ENABLED") == "true"
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

func loadRunnerContext(cfg *Config) error {
	cfg.EventName = os.Getenv("GITHUB_EVENT_NAME")
	if cfg.EventName == "" {
		return errors.New("GITHUB_EVENT_NAME is required")
	}
	cfg.EventPath = os.Getenv("GITHUB_EVENT_PATH")
	cfg.StepSummaryPath = os.Getenv("GITHUB_STEP_SUMMARY")

	repository := os.Getenv("GITHUB_REPOSITORY")
	if repository != "" {
		owner, repo, ok := strings.Cut(repository, "/")
		if !ok {
			return fmt.Errorf("invalid GITHUB_REPOSITORY %q", repository)
		}
		cfg.Owner, cfg.Repo = owner, repo
	}
	return nil
}

func loadInputs(cfg *Config) error {
	cfg.GitHubToken = input("github-token")
	cfg.AppPrivateKey = input("private-key")

	var err error
	if cfg.AppID, err = inputInt64("app-id"); err != nil {
		return err
	}
	if cfg.InstallationID, err = inputInt64("installation-id"); err != nil {
		return err
	}

	if v := input("config"); v != "" {
		cfg.ConfigPath = v
	}
	cfg.PromptGlobs = inputList("prompts")
	cfg.ForceRun = inputBool("force-run")
	cfg.UseConfigPrompts = inputBool("use-config-prompts")
	cfg.FailOnError = inputBool("fail-on-error")
	cfg.NoComment = inputBool("no-comment")

	if v := input("promptfoo-binary"); v != "" {
		cfg.EvalBinary = v
	}
	cfg.Share = !inputBool("no-share")
	cfg.Table = !inputBool("no-table")
	if cfg.MaxConcurrency, err = inputInt("max-concurrency"); err != nil {
		return err
	}
	cfg.CachePath = input("cache-path")

	cfg.OpenAIKey = input("openai-api-key")
	cfg.AnthropicKey = input("anthropic-api-key")
	cfg.AzureKey = input("azure-api-key")

	cfg.FilesOverride = inputList("files")
	cfg.BaseRef = input("base-ref")
	cfg.WorkingDir = input("working-directory")

	if !cfg.NoComment && cfg.GitHubToken == "" && cfg.AppID == 0 {
		return errors.New("github-token (or app-id/installation-id/private-key) is required unless no-comment is set")
	}
	if cfg.AppID != 0 && (cfg.InstallationID == 0 || cfg.AppPrivateKey == "") {
		return errors.New("app-id requires installation-id and private-key")
	}
	return nil
}

// input returns the value of a declared action input. GitHub uppercases
// input names and prefixes them with INPUT_, leaving hyphens in place.
func input(name string) string {
	return strings.TrimSpace(os.Getenv("INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))))
}

// inputList splits a multiline input into trimmed, non-empty entries.
// Commas work as separators too.
func inputList(name string) []string {
	raw := input(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func inputBool(name string) bool {
	return strings.EqualFold(input(name), "true")
}

func inputInt(name string) (int, error) {
	v := input(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s input %q: %w", name, v, err)
	}
	return n, nil
}

func inputInt64(name string) (int64, error) {
	v := input(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s input %q: %w", name, v, err)
	}
	return n, nil
}
