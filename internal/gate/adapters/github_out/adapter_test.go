package githubout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// TestPostCommentReplacesStaleAcrossPages covers the upsert: marker comments
// on every page of the listing are deleted before the new comment is created,
// not just those on the first page.
func TestPostCommentReplacesStaleAcrossPages(t *testing.T) {
	var deleted []string
	var created int

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/prompts/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("page") == "2" {
				io.WriteString(w, `[{"id": 2, "body": "<!-- eval-gate -->\nstale page two"}]`)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, r.URL.Path))
			io.WriteString(w, `[{"id": 1, "body": "<!-- eval-gate -->\nstale page one"}, {"id": 9, "body": "unrelated"}]`)
		case http.MethodPost:
			created++
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id": 3}`)
		}
	})
	mux.HandleFunc("/repos/acme/prompts/issues/comments/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected %s on %s", r.Method, r.URL.Path)
			return
		}
		deleted = append(deleted, path.Base(r.URL.Path))
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := gogithub.NewClient(server.Client())
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	client.BaseURL = base

	adapter := New(client, "acme", "prompts", slog.New(slog.NewTextHandler(io.Discard, nil)))
	report := domain.RunReport{
		Trigger:  domain.TriggerContext{Kind: domain.TriggerPullRequest, PRNumber: 5},
		Decision: domain.Decision{ShouldRun: true, Reason: domain.ReasonFilesChanged},
		Eval:     &domain.EvalResult{Stats: domain.EvalStats{Successes: 1}},
	}
	if err := adapter.PostComment(context.Background(), report); err != nil {
		t.Fatalf("PostComment returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"1", "2"}, deleted); diff != "" {
		t.Errorf("deleted comments mismatch (-want +got):\n%s", diff)
	}
	if created != 1 {
		t.Errorf("comment creations = %d, want 1", created)
	}
}

func TestFormatCommentPassed(t *testing.T) {
	report := domain.RunReport{
		Trigger: domain.TriggerContext{Kind: domain.TriggerPullRequest, PRNumber: 12},
		Decision: domain.Decision{
			ShouldRun: true,
			Reason:    domain.ReasonFilesChanged,
		},
		Eval: &domain.EvalResult{
			Stats:    domain.EvalStats{Successes: 5},
			ShareURL: "https://app.example.com/eval/abc",
		},
	}

	body := FormatComment(report)

	for _, want := range []string{
		commentMarker,
		"## LLM Evaluation",
		"✅ All evaluations passed.",
		"| 5 | 0 | 0 |",
		"[View full results](https://app.example.com/eval/abc)",
		"Triggered by PullRequest (FilesChanged)",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("comment missing %q:\n%s", want, body)
		}
	}
}

func TestFormatCommentFailed(t *testing.T) {
	report := domain.RunReport{
		Trigger:  domain.TriggerContext{Kind: domain.TriggerPullRequest, PRNumber: 12},
		Decision: domain.Decision{ShouldRun: true, Reason: domain.ReasonConfigChanged},
		Eval: &domain.EvalResult{
			Stats: domain.EvalStats{Successes: 3, Failures: 2, Errors: 1},
		},
	}

	body := FormatComment(report)

	if !strings.Contains(body, "❌ Some evaluations failed.") {
		t.Errorf("comment missing failure banner:\n%s", body)
	}
	if !strings.Contains(body, "| 3 | 2 | 1 |") {
		t.Errorf("comment missing stats row:\n%s", body)
	}
	if strings.Contains(body, "View full results") {
		t.Errorf("comment has share link without a share URL:\n%s", body)
	}
}

func TestFormatCommentSkipped(t *testing.T) {
	report := domain.RunReport{
		Trigger: domain.TriggerContext{Kind: domain.TriggerPullRequest, PRNumber: 12},
		Decision: domain.Decision{
			ShouldRun: false,
			Reason:    domain.ReasonNoChangesDetected,
		},
	}

	body := FormatComment(report)

	if !strings.Contains(body, commentMarker) {
		t.Errorf("comment missing marker:\n%s", body)
	}
	if !strings.Contains(body, "Skipped: no prompt, config, or dependency changes detected.") {
		t.Errorf("comment missing skip text:\n%s", body)
	}
	if strings.Contains(body, "| Passed |") {
		t.Errorf("skipped comment should not render a stats table:\n%s", body)
	}
}
