package turing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/mattn/go-runewidth"
)

// Runner renders the execution of an engine using provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
//
// Wire it through hooks so rendering follows every step the engine applies:
//
//	r := turing.NewRunner(os.Stdout)
//	eng, _ := turing.New(m, tape, turing.WithLifecycleHooks(r.Hooks()))
//	r.Finish(eng, eng.Run(ctx))
type Runner struct {
	Output io.Writer
	// JSON switches the per-step output to one JSON trace entry per line.
	JSON bool
	// Quiet disables the per-step output; Finish still reports the outcome.
	Quiet bool
	// Highlight decorates the tape line (e.g. colouring the cell under the head).
	Highlight TapeHighlighter
	// Renderer transforms the markdown produced by Report (e.g. glamour).
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the content before outputting it.
type ContentRenderer func(string) (string, error)

// TapeHighlighter renders the tape cells as one line, decorating the head cell.
// This allows for terminal styling without coupling the core package.
type TapeHighlighter func(cells []domain.Symbol, head int) string

// NewRunner creates a Runner writing to w.
func NewRunner(w io.Writer) *Runner {
	return &Runner{Output: w}
}

// Hooks returns the lifecycle hooks that render each step as it happens.
func (r *Runner) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			if r.Quiet || r.Output == nil {
				return
			}
			cells := e.Cells
			if cells == nil {
				cells = domain.SplitTape(e.Entry.Tape)
			}
			r.renderStep(e.Entry, cells)
		},
	}
}

// RenderStep writes one step: the tape and a caret line under the head,
// or the JSON entry in JSON mode. The tape is split one rune per cell; hooks
// render from the engine's cells instead.
func (r *Runner) RenderStep(entry domain.TraceEntry) {
	r.renderStep(entry, domain.SplitTape(entry.Tape))
}

func (r *Runner) renderStep(entry domain.TraceEntry, cells []domain.Symbol) {
	if r.JSON {
		_ = json.NewEncoder(r.Output).Encode(entry)
		return
	}
	tape := entry.Tape
	if r.Highlight != nil {
		tape = r.Highlight(cells, entry.Head)
	}
	fmt.Fprintln(r.Output, tape)
	fmt.Fprintln(r.Output, HeadMarker(cells, entry.Head))
}

// Finish reports how the run ended. It returns runErr unchanged so callers can
// write `return r.Finish(eng, eng.Run(ctx))`.
func (r *Runner) Finish(eng *Engine, runErr error) error {
	if r.Output == nil || r.JSON {
		return runErr
	}
	var noTransition *domain.NoTransitionError
	var limit *domain.StepLimitError
	switch {
	case runErr == nil:
		fmt.Fprintln(r.Output, "Final state reached.")
	case errors.As(runErr, &noTransition):
		fmt.Fprintf(r.Output, "Rejected after %d steps: %v\n", eng.Steps(), runErr)
	case errors.As(runErr, &limit):
		fmt.Fprintf(r.Output, "Suspended after %d steps: %v\n", eng.Steps(), runErr)
	default:
		fmt.Fprintf(r.Output, "Stopped after %d steps: %v\n", eng.Steps(), runErr)
	}
	return runErr
}

// PrintTrace writes every entry of the trace log, one per line.
func (r *Runner) PrintTrace(trace []domain.TraceEntry) {
	if r.JSON {
		for _, entry := range trace {
			_ = json.NewEncoder(r.Output).Encode(entry)
		}
		return
	}
	for _, entry := range trace {
		fmt.Fprintln(r.Output, FormatEntry(entry))
	}
}

// Report writes a markdown summary of the run: outcome and trace table.
func (r *Runner) Report(eng *Engine) error {
	var sb strings.Builder
	m := eng.Machine()
	fmt.Fprintf(&sb, "# %s\n\n", m.Name)
	fmt.Fprintf(&sb, "- **Status:** %s\n", eng.Status())
	fmt.Fprintf(&sb, "- **State:** `%s`\n", eng.State())
	fmt.Fprintf(&sb, "- **Steps:** %d\n", eng.Steps())
	fmt.Fprintf(&sb, "- **Tape:** `%s`\n\n", eng.TapeString())

	trace := eng.Trace()
	if len(trace) > 0 {
		sb.WriteString("| Step | Read | Rule | Tape | Head |\n")
		sb.WriteString("|---:|:---:|---|---|---:|\n")
		for _, e := range trace {
			fmt.Fprintf(&sb, "| %d | `%s` | `%s` | `%s` | %d |\n",
				e.Step, e.Read, e.Transition.String(), e.Tape, e.Head)
		}
	}

	content := sb.String()
	if r.Renderer != nil {
		rendered, err := r.Renderer(content)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		content = rendered
	}
	_, err := io.WriteString(r.Output, content)
	return err
}

// FormatEntry renders an entry as (state, read, (next, write, move), tape).
func FormatEntry(entry domain.TraceEntry) string {
	t := entry.Transition
	return fmt.Sprintf("('%s', '%s', ('%s', '%s', '%s'), '%s')",
		entry.State, entry.Read, t.Next, t.Write, t.Move, entry.Tape)
}

// HeadMarker returns a line with a caret under the first column of the head cell.
// The offset is the display width of the cells before the head.
func HeadMarker(cells []domain.Symbol, head int) string {
	head = min(max(head, 0), len(cells))
	width := 0
	for _, sym := range cells[:head] {
		width += runewidth.StringWidth(string(sym))
	}
	return strings.Repeat(" ", width) + "^"
}
