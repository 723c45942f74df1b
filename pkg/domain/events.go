package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep   EventType = "step"
	EventHalt   EventType = "halt"
	EventReject EventType = "reject"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Machine   string    `json:"machine,omitempty"`
}

// StepEvent is emitted after every successfully applied transition.
type StepEvent struct {
	EventBase
	Entry TraceEntry `json:"entry"`
	// Cells is the tape after the step, one element per cell. Entry.Tape
	// joins them, which loses cell boundaries for multi-character symbols.
	Cells []Symbol `json:"-"`
}

// HaltEvent is emitted when a run stops, either on a final state or on a missing rule.
type HaltEvent struct {
	EventBase
	State State  `json:"state"`
	Steps int    `json:"steps"`
	Tape  string `json:"tape"`
	Err   error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks only observe: they cannot alter the run.
type LifecycleHooks struct {
	OnStep   func(context.Context, *StepEvent)
	OnHalt   func(context.Context, *HaltEvent)
	OnReject func(context.Context, *HaltEvent)
}

// MergeHooks combines several hook sets; callbacks run in argument order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range all {
		h := h
		if h.OnStep != nil {
			prev := merged.OnStep
			merged.OnStep = func(ctx context.Context, e *StepEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnStep(ctx, e)
			}
		}
		if h.OnHalt != nil {
			prev := merged.OnHalt
			merged.OnHalt = func(ctx context.Context, e *HaltEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnHalt(ctx, e)
			}
		}
		if h.OnReject != nil {
			prev := merged.OnReject
			merged.OnReject = func(ctx context.Context, e *HaltEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnReject(ctx, e)
			}
		}
	}
	return merged
}
