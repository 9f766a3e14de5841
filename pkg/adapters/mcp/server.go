// Package mcp exposes registered targets as MCP tools. Tool calls go through
// the dispatcher, so agents observe the same advice as any other caller.
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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
)

const rulesURI = "weft://rules"

// Engine is the part of *weft.Engine the MCP server needs.
type Engine interface {
	Invoke(ctx context.Context, target string, args ...any) (any, error)
	Chain(target string) (chain.Chain, error)
	Rules() []domain.Rule
	Targets() []domain.Target
}

// Server wraps an Engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
	tools     map[string]string
}

// NewServer creates an MCP server with one tool per target registered at call time.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("weft-mcp", strings.TrimSpace(weft.Version)),
		logger:    logger,
		tools:     make(map[string]string),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ToolName maps a qualified target name to an MCP tool name.
func ToolName(target string) string {
	return strings.ReplaceAll(target, ".", "_")
}

// Tools returns the tool name to target mapping.
func (s *Server) Tools() map[string]string {
	out := make(map[string]string, len(s.tools))
	for k, v := range s.tools {
		out[k] = v
	}
	return out
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+hostFor(addr)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func hostFor(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func (s *Server) registerTools() {
	for _, t := range s.engine.Targets() {
		opts := []mcp.ToolOption{
			mcp.WithDescription(fmt.Sprintf("Invoke %s through its advice chain.", t.Name)),
		}
		for _, p := range t.Params {
			opts = append(opts, mcp.WithString(p, mcp.Required(), mcp.Description("Argument "+p)))
		}
		name := ToolName(t.Name)
		s.tools[name] = t.Name
		s.mcpServer.AddTool(mcp.NewTool(name, opts...), s.invokeHandler(t))
	}

	s.mcpServer.AddTool(mcp.NewTool("describe_chain",
		mcp.WithDescription("List the advice that applies to a target, in execution order."),
		mcp.WithString("target", mcp.Required(), mcp.Description("Qualified target name")),
	), s.handleDescribeChain)
}

func (s *Server) invokeHandler(t domain.Target) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		given := request.GetArguments()
		args := make([]any, 0, len(t.Params))
		for _, p := range t.Params {
			v, ok := given[p]
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("missing argument %q", p)), nil
			}
			args = append(args, v)
		}

		res, err := s.engine.Invoke(ctx, t.Name, args...)
		if err != nil {
			s.logger.Warn("MCP invoke failed", "target", t.Name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if res == nil {
			return mcp.NewToolResultText("null"), nil
		}
		jsonBytes, err := json.Marshal(res)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
}

func (s *Server) handleDescribeChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.engine.Chain(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonBytes, _ := json.Marshal(c.Steps())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(rulesURI, "Registered interception rules",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		rules := s.engine.Rules()
		summaries := make([]domain.RuleSummary, 0, len(rules))
		for _, r := range rules {
			summaries = append(summaries, r.Summary())
		}
		jsonBytes, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("encode rules: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      rulesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

var _ Engine = (*weft.Engine)(nil)
