package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"subgate/internal/auth"
	"subgate/internal/oauth"
)

// Server exposes the gateway's tool operations over MCP streamable HTTP.
// Inbound request headers are stashed into each tool call's context so the
// invoker can extract the caller's bearer token.
type Server struct {
	service   *Service
	oauth     *oauth.Client
	mcpServer *server.MCPServer
	handler   http.Handler
}

// NewServer creates the MCP server and registers all tools.
func NewServer(service *Service, oauthClient *oauth.Client, version string) *Server {
	mcpServer := server.NewMCPServer(
		"subgate",
		version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		service:   service,
		oauth:     oauthClient,
		mcpServer: mcpServer,
	}
	s.registerTools()

	s.handler = server.NewStreamableHTTPServer(
		mcpServer,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return auth.WithHeaders(ctx, r.Header)
		}),
	)
	return s
}

// Handler returns the streamable HTTP handler to mount on the gateway mux.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	getSubmissionTool := mcp.NewTool("get_submission",
		mcp.WithDescription("Fetch a single submission from the Submission API by its numeric ID"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Submission ID, a positive integer"),
		),
	)
	s.mcpServer.AddTool(getSubmissionTool, s.handleGetSubmission)

	listSubmissionsTool := mcp.NewTool("list_submissions",
		mcp.WithDescription("List submissions, optionally filtered by status and capped at a maximum count"),
		mcp.WithString("status",
			mcp.Description("Filter by status: pending, approved, or rejected"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of submissions to return"),
		),
	)
	s.mcpServer.AddTool(listSubmissionsTool, s.handleListSubmissions)

	createSubmissionTool := mcp.NewTool("create_submission",
		mcp.WithDescription("Create a new submission"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Submission title"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Submission content"),
		),
	)
	s.mcpServer.AddTool(createSubmissionTool, s.handleCreateSubmission)

	loginTool := mcp.NewTool("login",
		mcp.WithDescription("Start an interactive OAuth login. Returns an authorization URL to complete in the browser."),
		mcp.WithNumber("wait_seconds",
			mcp.Description("Block up to this many seconds for the browser flow to complete and report the outcome"),
		),
	)
	s.mcpServer.AddTool(loginTool, s.handleLogin)

	authStatusTool := mcp.NewTool("auth_status",
		mcp.WithDescription("Report whether the gateway currently holds a fresh user access token"),
	)
	s.mcpServer.AddTool(authStatusTool, s.handleAuthStatus)
}

func (s *Server) handleGetSubmission(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	id, err := integerArg(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	submission, err := s.service.GetSubmission(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(submission)
}

func (s *Server) handleListSubmissions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	status := ""
	if raw, exists := args["status"]; exists {
		value, ok := raw.(string)
		if !ok {
			return mcp.NewToolResultError((&auth.ValidationError{Parameter: "status", Reason: "must be a string"}).Error()), nil
		}
		status = value
	}

	limit := 0
	if _, exists := args["limit"]; exists {
		value, err := integerArg(args, "limit")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit = int(value)
	}

	list, err := s.service.ListSubmissions(ctx, status, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list)
}

func (s *Server) handleCreateSubmission(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, err := stringArg(args, "title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	submission, err := s.service.CreateSubmission(ctx, title, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(submission)
}

// integerArg reads a required integer argument. JSON numbers arrive as
// float64; a fractional value is rejected rather than truncated.
func integerArg(args map[string]interface{}, name string) (int64, error) {
	raw, exists := args[name]
	if !exists {
		return 0, &auth.ValidationError{Parameter: name, Reason: "is required"}
	}
	value, ok := raw.(float64)
	if !ok {
		return 0, &auth.ValidationError{Parameter: name, Reason: "must be a number"}
	}
	if value != math.Trunc(value) {
		return 0, &auth.ValidationError{Parameter: name, Reason: "must be an integer"}
	}
	return int64(value), nil
}

// stringArg reads a required string argument.
func stringArg(args map[string]interface{}, name string) (string, error) {
	raw, exists := args[name]
	if !exists {
		return "", &auth.ValidationError{Parameter: name, Reason: "is required"}
	}
	value, ok := raw.(string)
	if !ok {
		return "", &auth.ValidationError{Parameter: name, Reason: "must be a string"}
	}
	return value, nil
}

// jsonResult renders a successful operation result as pretty-printed JSON
// tool output.
func jsonResult(value interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
