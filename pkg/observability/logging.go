package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/turing/pkg/domain"
)

// LoggingHooks logs run events. Steps are logged at Debug, outcomes at Info/Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step",
				"run_id", e.RunID,
				"machine", e.Machine,
				"step", e.Entry.Step,
				"rule", e.Entry.Transition.String(),
				"head", e.Entry.Head,
			)
		},
		OnHalt: func(ctx context.Context, e *domain.HaltEvent) {
			logger.InfoContext(ctx, "run_halted",
				"run_id", e.RunID,
				"machine", e.Machine,
				"state", e.State,
				"steps", e.Steps,
			)
		},
		OnReject: func(ctx context.Context, e *domain.HaltEvent) {
			logger.WarnContext(ctx, "run_rejected",
				"run_id", e.RunID,
				"machine", e.Machine,
				"state", e.State,
				"steps", e.Steps,
				"err", e.Err,
			)
		},
	}
}
