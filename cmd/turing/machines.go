package main

import (
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [machine]",
	Short: "Print the canonical encoding of a machine",
	Long: `Prints the positional string encoding of a machine: states, symbols and
directions become runs of 1s separated by 0s, sections by 00.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		reject, _ := cmd.Flags().GetStringSlice("reject")
		return app.Encode(cmd.Context(), source(args, file), reject, cmd.OutOrStdout())
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [machine]",
	Short: "Print the transition table as a Mermaid flowchart",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		runID, _ := cmd.Flags().GetString("run")
		return app.Graph(cmd.Context(), source(args, file), runID, cmd.OutOrStdout())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [machine]",
	Short: "Check a machine for undeclared references and unreachable states",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		return app.Validate(cmd.Context(), source(args, file), cmd.OutOrStdout())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [machine]",
	Short: "Print a machine as a YAML document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		return app.Export(cmd.Context(), source(args, file), cmd.OutOrStdout())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available machines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListMachines(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd, graphCmd, validateCmd, exportCmd, listCmd)

	for _, c := range []*cobra.Command{encodeCmd, graphCmd, validateCmd, exportCmd} {
		c.Flags().StringP("file", "f", "", "machine document (YAML/JSON) instead of a named machine")
	}
	encodeCmd.Flags().StringSlice("reject", nil, "reject states to encode")
	graphCmd.Flags().String("run", "", "overlay the states visited by a saved run")
}
