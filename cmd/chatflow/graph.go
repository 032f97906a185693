package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/chatflow/internal/cli"
	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/flowfile"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <flow-file>",
	Short: "Export the flow as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the flow. With --trace, one turn is run with the
given input and the visited nodes are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := flowfile.Load(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if cmd.Flags().Changed("trace") {
			input, _ := cmd.Flags().GetString("trace")
			var vars map[string]any
			if raw, _ := cmd.Flags().GetString("vars"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &vars); err != nil {
					return fmt.Errorf("error parsing --vars JSON: %w", err)
				}
			}
			overlay, _, err = cli.TraceTurn(context.Background(), flow, input, vars)
			if err != nil {
				return err
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("trace", "", "Run one turn with this input and highlight the visited nodes")
	graphCmd.Flags().String("vars", "", "Variables for --trace as a JSON object")
}
