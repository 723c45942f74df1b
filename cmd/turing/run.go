package main

import (
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [machine]",
	Short: "Run a machine and print every step",
	Long: `Runs a machine on a tape, printing the tape and a caret under the head after
every step. Without arguments the built-in binary multiplier runs on its sample tape.

Exit status is 3 when the machine rejects (no transition) and 4 when the step
budget runs out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		file, _ := flags.GetString("file")
		tape, _ := flags.GetString("tape")
		save, _ := flags.GetString("save")
		interactive, _ := flags.GetBool("interactive")
		output := outputOptions(cmd)

		if interactive && !output.JSON {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		return app.Run(cmd.Context(), cli.RunOptions{
			Source:      source(args, file),
			Tape:        tape,
			MaxSteps:    cfg.MaxSteps,
			Save:        save,
			Interactive: interactive,
			Output:      output,
		}, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Continue a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Resume(cmd.Context(), cli.ResumeOptions{
			RunID:    args[0],
			MaxSteps: cfg.MaxSteps,
			Output:   outputOptions(cmd),
		}, cmd.OutOrStdout())
	},
}

var traceCmd = &cobra.Command{
	Use:   "trace <run-id>",
	Short: "Print the trace log of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		return app.Trace(cmd.Context(), args[0], cli.OutputOptions{JSON: jsonMode}, cmd.OutOrStdout())
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListRuns(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd, resumeCmd, traceCmd, runsCmd)

	runCmd.Flags().StringP("file", "f", "", "machine document (YAML/JSON) to run instead of a named machine")
	runCmd.Flags().StringP("tape", "t", "", "initial tape (defaults to the machine sample tape)")
	runCmd.Flags().String("save", "", "persist the run under this ID")
	runCmd.Flags().BoolP("interactive", "i", false, "describe the machine interactively")
	for _, c := range []*cobra.Command{runCmd, resumeCmd} {
		c.Flags().Bool("json", false, "print one JSON trace entry per step")
		c.Flags().BoolP("quiet", "q", false, "only print the outcome")
		c.Flags().Bool("report", false, "print a markdown report of the run")
		c.Flags().Bool("no-color", false, "disable terminal styling")
	}
	traceCmd.Flags().Bool("json", false, "print JSON trace entries")
}

func outputOptions(cmd *cobra.Command) cli.OutputOptions {
	flags := cmd.Flags()
	jsonMode, _ := flags.GetBool("json")
	quiet, _ := flags.GetBool("quiet")
	report, _ := flags.GetBool("report")
	noColor, _ := flags.GetBool("no-color")
	return cli.OutputOptions{
		JSON:   jsonMode,
		Quiet:  quiet,
		Report: report,
		Color:  !noColor && !jsonMode && tui.IsTerminal(),
	}
}

func source(args []string, file string) cli.MachineSource {
	src := cli.MachineSource{File: file}
	if len(args) > 0 {
		src.Name = args[0]
	}
	return src
}
