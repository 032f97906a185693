package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/chatflow/internal/cli"
	"github.com/aretw0/chatflow/internal/presentation/tui"
	"github.com/aretw0/chatflow/pkg/flowfile"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat <flow-file>",
	Short: "Chat with a flow in the terminal",
	Long: `Loads a flow file, activates it and runs an interactive session. Each line you type
is one turn; variables carry over between turns. Type 'exit' or 'quit' to leave.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		flow, err := flowfile.Load(args[0])
		if err != nil {
			return err
		}

		opts := cli.ChatOptions{}
		opts.BotID, _ = cmd.Flags().GetString("bot")
		opts.ConversationID, _ = cmd.Flags().GetString("session")
		if raw, _ := cmd.Flags().GetString("vars"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &opts.Variables); err != nil {
				return fmt.Errorf("error parsing --vars JSON: %w", err)
			}
		}

		plain, _ := cmd.Flags().GetBool("plain")
		out := cmd.OutOrStdout()
		if fd := int(os.Stdout.Fd()); !plain && term.IsTerminal(fd) {
			width, _, err := term.GetSize(fd)
			if err != nil {
				width = 0
			}
			renderer, err := tui.NewRenderer(width)
			if err != nil {
				return err
			}
			opts.Renderer = renderer
			tui.PrintBanner(out)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.BuildRuntime(ctx, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		return cli.RunChat(ctx, rt.Engine, flow, cmd.InOrStdin(), out, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("vars", "", "Initial variables as a JSON object")
	chatCmd.Flags().String("bot", cli.DefaultChatBotID, "Bot ID the flow is installed under")
	chatCmd.Flags().String("session", "", "Conversation ID (default <bot>-chat)")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering")
}
