package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/internal/validator"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/encoder"
	"github.com/aretw0/turing/pkg/library"
)

// OutputOptions controls how a run is rendered.
type OutputOptions struct {
	JSON   bool
	Quiet  bool
	Report bool
	// Color highlights the head cell and renders the report with glamour.
	Color bool
}

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Source MachineSource
	// Tape is the initial tape; empty uses the machine sample tape.
	Tape        string
	MaxSteps    int
	Save        string
	Interactive bool
	Output      OutputOptions
}

// Run executes a machine and renders every step to out.
// In interactive mode the description is asked on in, with the selected
// machine (or the binary multiplier) as defaults.
func (a *App) Run(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	var (
		m    *domain.Machine
		tape []domain.Symbol
		err  error
	)
	if opts.Interactive {
		defaults := library.BinaryMultiplier()
		if opts.Source != (MachineSource{}) {
			if defaults, err = a.ResolveMachine(ctx, opts.Source); err != nil {
				return err
			}
		}
		if opts.Tape != "" {
			defaults.SampleTape = opts.Tape
		}
		m, tape, err = NewPrompter(in, out).Describe(defaults)
		if err != nil {
			return err
		}
	} else {
		if m, err = a.ResolveMachine(ctx, opts.Source); err != nil {
			return err
		}
		src := opts.Tape
		if src == "" {
			src = m.SampleTape
		}
		tape = domain.SplitTape(src)
	}

	r := a.newRunner(out, opts.Output)
	engineOpts := a.engineOptions(r, opts.MaxSteps)

	var eng *turing.Engine
	var runErr error
	if opts.Save != "" {
		eng, runErr = a.Sessions.Start(ctx, opts.Save, m, tape, engineOpts...)
	} else {
		eng, err = turing.New(m, tape, engineOpts...)
		if err == nil {
			runErr = eng.Run(ctx)
		}
	}
	if eng == nil {
		if err == nil {
			err = runErr
		}
		return err
	}
	return a.finish(r, eng, runErr, opts.Output)
}

// ResumeOptions contains the configuration for the resume command.
type ResumeOptions struct {
	RunID    string
	MaxSteps int
	Output   OutputOptions
}

// Resume continues a saved run and saves it again.
func (a *App) Resume(ctx context.Context, opts ResumeOptions, out io.Writer) error {
	r := a.newRunner(out, opts.Output)
	eng, runErr := a.Sessions.Resume(ctx, opts.RunID, a.engineOptions(r, opts.MaxSteps)...)
	if eng == nil {
		return runErr
	}
	return a.finish(r, eng, runErr, opts.Output)
}

// Trace prints the trace log of a saved run.
func (a *App) Trace(ctx context.Context, runID string, output OutputOptions, out io.Writer) error {
	snap, err := a.Sessions.Load(ctx, runID)
	if err != nil {
		return err
	}
	r := a.newRunner(out, output)
	r.PrintTrace(snap.Trace)
	if !output.JSON {
		fmt.Fprintf(out, "Status: %s after %d steps, tape %q\n", snap.Status, snap.Steps, snap.TapeString())
	}
	return nil
}

// Encode prints the canonical encoding of a machine.
func (a *App) Encode(ctx context.Context, src MachineSource, reject []string, out io.Writer) error {
	m, err := a.ResolveMachine(ctx, src)
	if err != nil {
		return err
	}
	states := make([]domain.State, len(reject))
	for i, s := range reject {
		states[i] = domain.State(s)
	}
	code, err := encoder.EncodeMachine(m, states...)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, code)
	return nil
}

// Graph prints the Mermaid flowchart of a machine, overlaying a saved run if runID is set.
func (a *App) Graph(ctx context.Context, src MachineSource, runID string, out io.Writer) error {
	var overlay *graph.GraphOverlay
	var m *domain.Machine
	if runID != "" {
		snap, err := a.Sessions.Load(ctx, runID)
		if err != nil {
			return err
		}
		m = snap.Machine
		overlay = graph.OverlayFromTrace(m.Initial, snap.Trace)
	} else {
		var err error
		if m, err = a.ResolveMachine(ctx, src); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, graph.GenerateMermaid(m, overlay))
	return err
}

// Validate prints the findings for a machine and fails when there are errors.
func (a *App) Validate(ctx context.Context, src MachineSource, out io.Writer) error {
	m, err := a.ResolveMachine(ctx, src)
	if err != nil {
		return err
	}
	report := validator.Validate(m)
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(out, "error: %s\n", e)
	}
	if err := report.Err(); err != nil {
		return &ExitError{Code: ExitConfiguration, Err: err}
	}
	fmt.Fprintf(out, "%s: %d states, %d rules, OK\n", m.Name, len(m.States), len(m.Transitions))
	return nil
}

// Export prints a machine as a YAML document.
func (a *App) Export(ctx context.Context, src MachineSource, out io.Writer) error {
	m, err := a.ResolveMachine(ctx, src)
	if err != nil {
		return err
	}
	data, err := compiler.Marshal(m)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// ListMachines prints the known machine names.
func (a *App) ListMachines(ctx context.Context, out io.Writer) error {
	names, err := a.Loader.ListMachines(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

// ListRuns prints the saved run IDs.
func (a *App) ListRuns(ctx context.Context, out io.Writer) error {
	ids, err := a.Sessions.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func (a *App) newRunner(out io.Writer, output OutputOptions) *turing.Runner {
	r := turing.NewRunner(out)
	r.JSON = output.JSON
	r.Quiet = output.Quiet
	if output.Color {
		r.Highlight = tui.NewHighlighter()
		r.Renderer = tui.NewRenderer()
	}
	return r
}

func (a *App) engineOptions(r *turing.Runner, maxSteps int) []turing.Option {
	return []turing.Option{
		turing.WithLogger(a.Logger),
		turing.WithMaxSteps(maxSteps),
		turing.WithLifecycleHooks(r.Hooks()),
	}
}

func (a *App) finish(r *turing.Runner, eng *turing.Engine, runErr error, output OutputOptions) error {
	runErr = r.Finish(eng, runErr)
	if output.Report && !output.JSON {
		if err := r.Report(eng); err != nil {
			a.Logger.Warn("failed to render report", "err", err)
		}
	}
	return runErr
}
