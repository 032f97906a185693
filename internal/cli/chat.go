package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/presentation/tui"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/sanitizer"
)

// DefaultChatBotID is the bot a local chat session runs as.
const DefaultChatBotID = "local"

// ChatOptions configures a local chat session.
type ChatOptions struct {
	BotID          string
	ConversationID string
	// Variables seed the conversation, overriding the flow's declared defaults.
	Variables map[string]any
	Renderer  tui.Renderer
}

// RunChat activates flow on the engine and runs a read-eval-print loop over in/out.
// Each line is one turn; "exit" or "quit" ends the session.
func RunChat(ctx context.Context, eng *chatflow.Engine, flow *domain.Flow, in io.Reader, out io.Writer, opts ChatOptions) error {
	if opts.BotID == "" {
		opts.BotID = DefaultChatBotID
	}
	if opts.ConversationID == "" {
		opts.ConversationID = opts.BotID + "-chat"
	}
	if opts.Renderer == nil {
		opts.Renderer = tui.PlainRenderer()
	}

	if err := installFlow(ctx, eng, opts.BotID, flow, opts.Variables); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			fmt.Fprintln(out, "Bye!")
			return nil
		}

		clean, err := sanitizer.Sanitize(line)
		if err != nil {
			fmt.Fprintf(out, "Input rejected: %v\n> ", err)
			continue
		}

		result, err := eng.Converse(ctx, opts.BotID, opts.ConversationID, clean)
		if err != nil {
			return fmt.Errorf("turn failed: %w", err)
		}

		markdown := result.Response
		if actions := tui.FormatActions(result.Actions); actions != "" {
			markdown += "\n\n" + actions
		}
		rendered, err := opts.Renderer(markdown)
		if err != nil {
			rendered = markdown + "\n"
		}
		fmt.Fprint(out, rendered)
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

// installFlow stores flow as the newest version of botID and activates it.
func installFlow(ctx context.Context, eng *chatflow.Engine, botID string, flow *domain.Flow, vars map[string]any) error {
	if _, err := eng.Provision(ctx, botID); err != nil && !errors.Is(err, domain.ErrFlowExists) {
		return err
	}

	variables := append([]domain.Variable(nil), flow.Variables...)
	for name, value := range vars {
		variables = append(variables, domain.Variable{Name: name, DefaultValue: value})
	}

	if _, _, err := eng.UpdateFlow(ctx, botID, domain.FlowUpdate{
		Nodes:       flow.Nodes,
		Connections: flow.Connections,
		Variables:   variables,
	}); err != nil {
		return err
	}
	_, err := eng.Activate(ctx, botID)
	return err
}
