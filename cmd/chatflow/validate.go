package main

import (
	"fmt"

	"github.com/aretw0/chatflow/internal/validator"
	"github.com/aretw0/chatflow/pkg/flowfile"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <flow-file>",
	Short: "Check a flow for structural errors",
	Long: `Reports errors (missing start node, dangling connections, cycles, unreachable nodes,
missing fields) that block activation, and warnings that do not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := flowfile.Load(args[0])
		if err != nil {
			return err
		}

		result := validator.Validate(flow.Nodes, flow.Connections)
		out := cmd.OutOrStdout()
		for _, e := range result.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if !result.Valid {
			return fmt.Errorf("flow is invalid: %d errors", len(result.Errors))
		}
		fmt.Fprintln(out, "Flow is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
