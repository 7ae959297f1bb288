package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	gogithub "github.com/google/go-github/v68/github"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	configdeps "github.com/nathantilsley/eval-gate/internal/gate/adapters/config_deps"
	gitcli "github.com/nathantilsley/eval-gate/internal/gate/adapters/git_cli"
	githubout "github.com/nathantilsley/eval-gate/internal/gate/adapters/github_out"
	globfs "github.com/nathantilsley/eval-gate/internal/gate/adapters/glob_fs"
	linediff "github.com/nathantilsley/eval-gate/internal/gate/adapters/line_diff"
	summaryout "github.com/nathantilsley/eval-gate/internal/gate/adapters/summary_out"
	"github.com/nathantilsley/eval-gate/internal/gate/app"
	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

const (
	configFile = "promptfooconfig.yaml"
	promptFile = "prompts/greeting.txt"
)

// recordingEval stands in for the evaluation CLI so the flow needs no
// provider credentials.
type recordingEval struct {
	prompts []string
	calls   int
}

func (e *recordingEval) Run(_ context.Context, _ string, prompts []string) (domain.EvalResult, error) {
	e.calls++
	e.prompts = prompts
	return domain.EvalResult{
		Stats:    domain.EvalStats{Successes: 2},
		ShareURL: "https://app.example.com/eval/e2e",
	}, nil
}

// TestE2E_PullRequestFlow drives the whole gate against a real git
// repository and a stubbed GitHub API: clone, fetch, diff, decide, evaluate,
// comment, and summarize.
func TestE2E_PullRequestFlow(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git not on PATH, skipping e2e test: %v", err)
	}

	origin := setupOriginRepo(t)

	work := filepath.Join(t.TempDir(), "work")
	runGit(t, "", "clone", "-q", "file://"+origin, work)
	runGit(t, work, "checkout", "-q", "feature/tone")
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	// Stub GitHub API capturing the PR comment.
	var commentBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/prompts/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, "[]")
		case http.MethodPost:
			var comment gogithub.IssueComment
			if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
				t.Errorf("decoding comment: %v", err)
			}
			commentBody = comment.GetBody()
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id": 1}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := gogithub.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/api/v3/")
	if err != nil {
		t.Fatal(err)
	}
	client.BaseURL = baseURL

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	git, err := gitcli.New(work, logger)
	if err != nil {
		t.Fatal(err)
	}
	glob := globfs.New()
	deps := configdeps.New(glob, work, logger)
	resolver := app.NewChangeSetResolver(git, logger)
	eval := &recordingEval{}
	reporter := githubout.New(client, "acme", "prompts", logger)
	summaryPath := filepath.Join(t.TempDir(), "summary.md")
	summary := summaryout.New(summaryPath, logger)

	svc, err := app.NewGateService(
		resolver,
		git,
		deps,
		glob,
		eval,
		linediff.New(),
		reporter,
		summary,
		app.Options{
			ConfigPath:  configFile,
			PromptGlobs: []string{"prompts/*.txt"},
		},
		logger,
		tracenoop.NewTracerProvider().Tracer("e2e"),
		metricnoop.NewMeterProvider().Meter("e2e"),
	)
	if err != nil {
		t.Fatal(err)
	}

	trigger := domain.TriggerContext{
		Kind:     domain.TriggerPullRequest,
		BaseRef:  "main",
		HeadRef:  "feature/tone",
		PRNumber: 7,
	}
	if err := svc.Execute(context.Background(), trigger); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if eval.calls != 1 {
		t.Fatalf("evaluation ran %d times, want 1", eval.calls)
	}
	if len(eval.prompts) != 1 || eval.prompts[0] != promptFile {
		t.Errorf("eval prompts = %v, want [%s]", eval.prompts, promptFile)
	}

	for _, want := range []string{
		"All evaluations passed",
		"| 2 | 0 | 0 |",
		"https://app.example.com/eval/e2e",
	} {
		if !strings.Contains(commentBody, want) {
			t.Errorf("PR comment missing %q:\n%s", want, commentBody)
		}
	}

	summaryData, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"### Prompt changes",
		"-Hello. Answer formally.",
		"+Hey there! Answer casually.",
	} {
		if !strings.Contains(string(summaryData), want) {
			t.Errorf("summary missing %q:\n%s", want, summaryData)
		}
	}
}

// setupOriginRepo builds the repository the gate clones from: a main branch
// with a config and one prompt, and a feature branch rewording that prompt.
func setupOriginRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	runGit(t, dir, "init", "-q", "-b", "main")

	writeFile(t, dir, configFile, `
description: greeting quality
prompts:
  - file://prompts/greeting.txt
providers:
  - openai:gpt-4
tests:
  - vars:
      name: Ada
    assert:
      - type: contains
        value: hello
`)
	writeFile(t, dir, promptFile, "Hello. Answer formally.\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "base config and prompt")

	runGit(t, dir, "checkout", "-q", "-b", "feature/tone")
	writeFile(t, dir, promptFile, "Hey there! Answer casually.\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "reword greeting")

	runGit(t, dir, "checkout", "-q", "main")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=e2e",
		"GIT_AUTHOR_EMAIL=e2e@test.invalid",
		"GIT_COMMITTER_NAME=e2e",
		"GIT_COMMITTER_EMAIL=e2e@test.invalid",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
