// Package eventin turns raw CI event payloads into trigger contexts.
package eventin

import (
	"encoding/json"
	"fmt"
	"log/slog"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// Event names delivered by the CI platform.
const (
	EventPullRequest       = "pull_request"
	EventPullRequestTarget = "pull_request_target"
	EventPush              = "push"
	EventWorkflowDispatch  = "workflow_dispatch"
)

// DispatchOverrides carries the manual-dispatch inputs that shortcut or
// redirect change detection.
type DispatchOverrides struct {
	Files   []string // explicit file list; skips git entirely when set
	BaseRef string   // compared against HEAD; defaults to HEAD~1 downstream
}

// Adapter parses webhook payloads into domain trigger contexts.
type Adapter struct {
	logger *slog.Logger
}

// New creates an event adapter.
func New(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Parse builds the TriggerContext for the given event name and JSON
// payload. A pull-request event without a pull-request body is fatal;
// unknown event names degrade to the Unsupported variant.
func (a *Adapter) Parse(eventName string, payload []byte, overrides DispatchOverrides) (domain.TriggerContext, error) {
	switch eventName {
	case EventPullRequest, EventPullRequestTarget:
		return a.parsePullRequest(payload)
	case EventPush:
		return a.parsePush(payload)
	case EventWorkflowDispatch:
		a.logger.Info("manual dispatch",
			"filesOverride", len(overrides.Files), "baseRef", overrides.BaseRef)
		return domain.TriggerContext{
			Kind:            domain.TriggerManualDispatch,
			FilesOverride:   overrides.Files,
			BaseRefOverride: overrides.BaseRef,
		}, nil
	default:
		a.logger.Warn("unsupported event", "event", eventName)
		return domain.TriggerContext{
			Kind:      domain.TriggerUnsupported,
			EventName: eventName,
		}, nil
	}
}

func (a *Adapter) parsePullRequest(payload []byte) (domain.TriggerContext, error) {
	if len(payload) == 0 {
		return domain.TriggerContext{}, domain.NewFatal(domain.CodeMissingPayload,
			"pull_request event has no payload",
			"ensure GITHUB_EVENT_PATH points at the event file")
	}
	var event gogithub.PullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.TriggerContext{}, fmt.Errorf("parsing pull_request payload: %w", err)
	}
	if event.PullRequest == nil {
		return domain.TriggerContext{}, domain.NewFatal(domain.CodeMissingPayload,
			"pull_request event carries no pull request",
			"run this action on pull_request or pull_request_target triggers only")
	}

	return domain.TriggerContext{
		Kind:     domain.TriggerPullRequest,
		BaseRef:  event.GetPullRequest().GetBase().GetRef(),
		HeadRef:  event.GetPullRequest().GetHead().GetRef(),
		PRNumber: event.GetPullRequest().GetNumber(),
	}, nil
}

func (a *Adapter) parsePush(payload []byte) (domain.TriggerContext, error) {
	if len(payload) == 0 {
		// No payload means no SHAs; the resolver degrades to all-files.
		return domain.TriggerContext{Kind: domain.TriggerPush}, nil
	}
	var event gogithub.PushEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.TriggerContext{}, fmt.Errorf("parsing push payload: %w", err)
	}

	return domain.TriggerContext{
		Kind:      domain.TriggerPush,
		BeforeSHA: event.GetBefore(),
		AfterSHA:  event.GetAfter(),
	}, nil
}
