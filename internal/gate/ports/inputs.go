package ports

import (
	"context"

	"github.com/nathantilsley/eval-gate/internal/gate/domain"
)

// GateUseCase is the driving port for one gate invocation: resolve what
// changed, decide whether to evaluate, run the evaluation, and report.
type GateUseCase interface {
	Execute(ctx context.Context, trigger domain.TriggerContext) error
}
