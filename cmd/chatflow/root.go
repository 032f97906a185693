package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/chatflow/internal/config"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatflow",
	Short: "chatflow validates and runs chatbot conversation flows",
	Long: `chatflow interprets chatbot flows: graphs of message, question, condition, action,
handover, input and api_call nodes. Use it to validate flow files, chat with them locally,
or serve them over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file (default ./chatflow.toml, then ~/.chatflow.toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the configuration and builds the logger it describes.
// --debug forces the debug level.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewWithWriter(os.Stderr, logging.Format(cfg.Log.Format), level), nil
}
