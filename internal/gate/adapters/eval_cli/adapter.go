// Package evalcli shells out to the external evaluation CLI.
package evalcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/nathantilsley/eval-gate/api"
	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// Env is the explicit environment handed to the eval subprocess. Secrets
// live only here and cross the process boundary exactly once, at spawn
// time.
type Env struct {
	OpenAIKey    string
	AnthropicKey string
	AzureKey     string
	CachePath    string
}

func (e Env) vars() []string {
	var vars []string
	if e.OpenAIKey != "" {
		vars = append(vars, "OPENAI_API_KEY="+e.OpenAIKey)
	}
	if e.AnthropicKey != "" {
		vars = append(vars, "ANTHROPIC_API_KEY="+e.AnthropicKey)
	}
	if e.AzureKey != "" {
		vars = append(vars, "AZURE_OPENAI_API_KEY="+e.AzureKey)
	}
	if e.CachePath != "" {
		vars = append(vars, "PROMPTFOO_CACHE_PATH="+e.CachePath)
	}
	return vars
}

// Options tune how the CLI is invoked.
type Options struct {
	Share          bool
	Table          bool
	MaxConcurrency int
}

// Adapter implements ports.EvalPort by running the evaluation binary.
type Adapter struct {
	bin     string
	workDir string
	env     Env
	opts    Options
	logger  *slog.Logger
}

// New creates an eval adapter. It verifies the binary is available on PATH
// at construction time.
func New(bin, workDir string, env Env, opts Options, logger *slog.Logger) (*Adapter, error) {
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("evaluation binary %q not found: %w", bin, err)
	}
	return &Adapter{bin: resolved, workDir: workDir, env: env, opts: opts, logger: logger}, nil
}

// Run evaluates the config against the given prompt files and parses the
// JSON output. A non-zero exit with a readable output file is a normal
// "failures present" outcome, not an error.
func (a *Adapter) Run(ctx context.Context, configPath string, prompts []string) (domain.EvalResult, error) {
	outputPath := filepath.Join(os.TempDir(), fmt.Sprintf("eval-gate-%s.json", uuid.NewString()))

	args := buildArgs(configPath, prompts, outputPath, a.opts)
	a.logger.Info("running evaluation", "bin", a.bin, "args", args)

	cmd := exec.CommandContext(ctx, a.bin, args...)
	cmd.Dir = a.workDir
	cmd.Env = append(os.Environ(), a.env.vars()...)

	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	output, parseErr := parseOutput(outputPath)
	if parseErr != nil {
		if runErr != nil {
			return domain.EvalResult{}, domain.NewFatal(domain.CodeEvalFailed,
				fmt.Sprintf("evaluation CLI failed: %s\nstderr: %s", runErr, stderr.String()),
				"check the config path and provider credentials")
		}
		return domain.EvalResult{}, fmt.Errorf("reading evaluation output: %w", parseErr)
	}

	return domain.EvalResult{
		Stats: domain.EvalStats{
			Successes: output.Results.Stats.Successes,
			Failures:  output.Results.Stats.Failures,
			Errors:    output.Results.Stats.Errors,
		},
		ShareURL:   output.ShareableURL,
		OutputPath: outputPath,
	}, nil
}

func buildArgs(configPath string, prompts []string, outputPath string, opts Options) []string {
	args := []string{"eval", "-c", configPath, "-o", outputPath}
	if len(prompts) > 0 {
		args = append(args, "--prompts")
		args = append(args, prompts...)
	}
	if opts.Share {
		args = append(args, "--share")
	}
	if !opts.Table {
		args = append(args, "--no-table")
	}
	if opts.MaxConcurrency > 0 {
		args = append(args, "--max-concurrency", strconv.Itoa(opts.MaxConcurrency))
	}
	return args
}

func parseOutput(path string) (api.EvalOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.EvalOutput{}, err
	}
	var out api.EvalOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return api.EvalOutput{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}
