package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/sanitizer"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NodeTypesURI is the static resource describing the node kinds.
const NodeTypesURI = "chatflow://node-types"

// ValidateArgs are the arguments of the validate_flow tool.
type ValidateArgs struct {
	Nodes       string `json:"nodes"`
	Connections string `json:"connections"`
}

// ExecuteArgs are the arguments of the execute_turn tool.
type ExecuteArgs struct {
	Flow      string `json:"flow"`
	Input     string `json:"input"`
	Variables string `json:"variables"`
}

// ConverseArgs are the arguments of the converse tool.
type ConverseArgs struct {
	BotID          string `json:"bot_id"`
	ConversationID string `json:"conversation_id"`
	Input          string `json:"input"`
}

// Server wraps a FlowService and exposes it as an MCP Server.
type Server struct {
	service   ports.FlowService
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for rejected tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(service ports.FlowService, opts ...Option) *Server {
	s := &Server{
		service:   service,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("chatflow-mcp", strings.TrimSpace(chatflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	validateTool := mcp.NewTool("validate_flow",
		mcp.WithDescription("Check the structure of a flow graph. Returns errors (block activation) and warnings."),
		mcp.WithString("nodes", mcp.Required(), mcp.Description("JSON array of nodes")),
		mcp.WithString("connections", mcp.Description("JSON array of connections (optional)")),
		mcp.WithOutputSchema[domain.ValidationResult](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	executeTool := mcp.NewTool("execute_turn",
		mcp.WithDescription("Run one conversation turn against a flow without storing anything."),
		mcp.WithString("flow", mcp.Required(), mcp.Description("JSON flow document with nodes and connections")),
		mcp.WithString("input", mcp.Required(), mcp.Description("User input string")),
		mcp.WithString("variables", mcp.Description("JSON object of variable bindings (optional)")),
		mcp.WithOutputSchema[domain.TurnResult](),
	)
	s.mcpServer.AddTool(executeTool, mcp.NewStructuredToolHandler(s.handleExecute))

	converseTool := mcp.NewTool("converse",
		mcp.WithDescription("Run one turn of a stored conversation against the bot's active flow."),
		mcp.WithString("bot_id", mcp.Required(), mcp.Description("Bot ID")),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation ID")),
		mcp.WithString("input", mcp.Required(), mcp.Description("User input string")),
		mcp.WithOutputSchema[domain.TurnResult](),
	)
	s.mcpServer.AddTool(converseTool, mcp.NewStructuredToolHandler(s.handleConverse))

	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Get the latest flow version of a bot."),
		mcp.WithString("bot_id", mcp.Required(), mcp.Description("Bot ID")),
	), s.handleGetFlow)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (domain.ValidationResult, error) {
	var nodes []domain.Node
	if err := json.Unmarshal([]byte(args.Nodes), &nodes); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("invalid nodes: %w", err)
	}
	var connections []domain.Connection
	if args.Connections != "" {
		if err := json.Unmarshal([]byte(args.Connections), &connections); err != nil {
			return domain.ValidationResult{}, fmt.Errorf("invalid connections: %w", err)
		}
	}
	return s.service.Validate(nodes, connections), nil
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest, args ExecuteArgs) (domain.TurnResult, error) {
	var flow domain.Flow
	if err := json.Unmarshal([]byte(args.Flow), &flow); err != nil {
		return domain.TurnResult{}, fmt.Errorf("invalid flow: %w", err)
	}
	vars := map[string]any{}
	if args.Variables != "" {
		if err := json.Unmarshal([]byte(args.Variables), &vars); err != nil {
			return domain.TurnResult{}, fmt.Errorf("invalid variables: %w", err)
		}
	}

	clean, err := sanitizer.Sanitize(args.Input)
	if err != nil {
		s.logger.Warn("MCP execute_turn: input rejected", "err", err, "size", len(args.Input))
		return domain.TurnResult{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.service.Execute(ctx, &flow, clean, vars), nil
}

func (s *Server) handleConverse(ctx context.Context, request mcp.CallToolRequest, args ConverseArgs) (domain.TurnResult, error) {
	clean, err := sanitizer.Sanitize(args.Input)
	if err != nil {
		s.logger.Warn("MCP converse: input rejected", "err", err, "size", len(args.Input))
		return domain.TurnResult{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.service.Converse(ctx, args.BotID, args.ConversationID, clean)
}

func (s *Server) handleGetFlow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	botID, err := request.RequireString("bot_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	flow, err := s.service.GetFlow(ctx, botID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get flow failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(flow)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

type nodeTypeInfo struct {
	Type        domain.NodeType `json:"type"`
	Description string          `json:"description"`
}

var nodeTypeDescriptions = map[domain.NodeType]string{
	domain.NodeTypeMessage:   "Emits its interpolated content.",
	domain.NodeTypeQuestion:  "Emits its interpolated content; options are a presentation hint.",
	domain.NodeTypeCondition: "Evaluates its conditions (AND) and reports whether they were met.",
	domain.NodeTypeAction:    "Surfaces its declared actions to the host.",
	domain.NodeTypeHandover:  "Marks a hand-off to a human agent.",
	domain.NodeTypeInput:     "Stores the user input in its variable and echoes its content.",
	domain.NodeTypeAPICall:   "Calls an HTTP API and stores the JSON response in its variable.",
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(NodeTypesURI, "Node Types",
		mcp.WithResourceDescription("The node kinds a flow may contain"),
		mcp.WithMIMEType("application/json"),
	), s.readNodeTypes)
}

func (s *Server) readNodeTypes(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	types := domain.NodeTypes()
	infos := make([]nodeTypeInfo, 0, len(types))
	for _, t := range types {
		infos = append(infos, nodeTypeInfo{Type: t, Description: nodeTypeDescriptions[t]})
	}
	jsonBytes, err := json.Marshal(infos)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node types: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NodeTypesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
