// Package mcp exposes an Editor to Model Context Protocol clients, so an
// assistant can read the skeleton and drive history and poses.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/act"
	"github.com/aretw0/act/internal/config"
	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/pkg/domain"
	"github.com/aretw0/act/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs served by the server.
const (
	SkeletonURI = "act://skeleton"
	HistoryURI  = "act://history"
)

// SkeletonResponse is the marker set of one context.
type SkeletonResponse struct {
	Context string          `json:"context" jsonschema_description:"Skeleton context, scene or avatar"`
	Style   string          `json:"style" jsonschema_description:"Marker style, current, saved or default"`
	Markers []render.Marker `json:"markers" jsonschema_description:"One marker per drawn bone"`
}

// HistoryStep summarizes one undo or redo command.
type HistoryStep struct {
	Root  string `json:"root" jsonschema_description:"Bone the command tree starts at"`
	Bones int    `json:"bones" jsonschema_description:"Number of bones recorded"`
}

// HistoryResponse lists both stacks of the active context, top first.
type HistoryResponse struct {
	Context string        `json:"context" jsonschema_description:"Active skeleton context"`
	Undo    []HistoryStep `json:"undo" jsonschema_description:"Undo stack, top first"`
	Redo    []HistoryStep `json:"redo" jsonschema_description:"Redo stack, top first"`
}

// Editor is the part of act.Editor exposed over MCP.
type Editor interface {
	Active() (domain.ContextKind, *domain.Skeleton)
	Markers(kind domain.ContextKind, style config.Style) []render.Marker
	History() (undo, redo []*domain.MoveCmd)
	Undo() error
	Redo() error
	SaveProject(ctx context.Context) error
	SavePose(ctx context.Context, name string) error
	LoadPose(ctx context.Context, name string) error
}

// Server wraps an Editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor, opts ...Option) *Server {
	s := &Server{
		editor:    editor,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("act-mcp", strings.TrimSpace(act.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	skeletonTool := mcp.NewTool("get_skeleton",
		mcp.WithDescription("Get the bone markers of a skeleton context."),
		mcp.WithString("context", mcp.Description("scene or avatar (defaults to the active context)")),
		mcp.WithString("style", mcp.Description("current, saved or default (defaults to current)")),
		mcp.WithOutputSchema[SkeletonResponse](),
	)
	s.mcpServer.AddTool(skeletonTool, mcp.NewStructuredToolHandler(s.handleSkeleton))

	historyTool := mcp.NewTool("get_history",
		mcp.WithDescription("List the undo and redo steps of the active skeleton."),
		mcp.WithOutputSchema[HistoryResponse](),
	)
	s.mcpServer.AddTool(historyTool, mcp.NewStructuredToolHandler(s.handleHistory))

	undoTool := mcp.NewTool("undo",
		mcp.WithDescription("Revert the last history step of the active skeleton."),
		mcp.WithOutputSchema[HistoryResponse](),
	)
	s.mcpServer.AddTool(undoTool, mcp.NewStructuredToolHandler(s.handleUndo))

	redoTool := mcp.NewTool("redo",
		mcp.WithDescription("Reapply the last undone step of the active skeleton."),
		mcp.WithOutputSchema[HistoryResponse](),
	)
	s.mcpServer.AddTool(redoTool, mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("save_project",
		mcp.WithDescription("Save the open project under its current name."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := s.editor.SaveProject(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
		}
		return mcp.NewToolResultText("project saved"), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("save_pose",
		mcp.WithDescription("Store the current pose of the active skeleton."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Pose name")),
	), s.poseHandler("saved", s.editor.SavePose))

	s.mcpServer.AddTool(mcp.NewTool("apply_pose",
		mcp.WithDescription("Apply a stored pose to the active skeleton."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Pose name")),
	), s.poseHandler("applied", s.editor.LoadPose))
}

func (s *Server) poseHandler(verb string, fn func(context.Context, string) error) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := fn(ctx, name); err != nil {
			s.logger.Warn("MCP pose tool failed", "pose", name, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("pose %s: %v", name, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("pose %s %s", name, verb)), nil
	}
}

// Handler methods for structured tools

func (s *Server) handleSkeleton(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SkeletonResponse, error) {
	kind, _ := s.editor.Active()
	if c, ok := args["context"].(string); ok && c != "" {
		parsed, err := domain.ParseContextKind(c)
		if err != nil {
			return SkeletonResponse{}, err
		}
		kind = parsed
	}
	styleName, _ := args["style"].(string)
	style, err := config.ParseStyle(styleName)
	if err != nil {
		return SkeletonResponse{}, err
	}
	if styleName == "" {
		styleName = "current"
	}
	markers := s.editor.Markers(kind, style)
	if markers == nil {
		markers = []render.Marker{}
	}
	return SkeletonResponse{Context: kind.String(), Style: styleName, Markers: markers}, nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (HistoryResponse, error) {
	return s.history(), nil
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (HistoryResponse, error) {
	if err := s.editor.Undo(); err != nil {
		return HistoryResponse{}, fmt.Errorf("undo failed: %w", err)
	}
	return s.history(), nil
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (HistoryResponse, error) {
	if err := s.editor.Redo(); err != nil {
		return HistoryResponse{}, fmt.Errorf("redo failed: %w", err)
	}
	return s.history(), nil
}

func (s *Server) history() HistoryResponse {
	kind, _ := s.editor.Active()
	undo, redo := s.editor.History()
	return HistoryResponse{
		Context: kind.String(),
		Undo:    steps(undo),
		Redo:    steps(redo),
	}
}

func steps(cmds []*domain.MoveCmd) []HistoryStep {
	out := make([]HistoryStep, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, HistoryStep{Root: c.ModelName, Bones: c.Size()})
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SkeletonURI, "Active Skeleton Markers",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp, err := s.handleSkeleton(ctx, mcp.CallToolRequest{}, nil)
		if err != nil {
			return nil, err
		}
		return jsonResource(SkeletonURI, resp)
	})

	s.mcpServer.AddResource(mcp.NewResource(HistoryURI, "Active Skeleton History",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(HistoryURI, s.history())
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
