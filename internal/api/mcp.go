package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/prompt"
	"github.com/ironcoachapp/ironcoach/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. Operator is the identity
// every MCP call runs as; the stdio transport has no bearer token to verify.
type MCPDeps struct {
	Store    *storage.Store
	Chat     Responder
	Operator auth.Identity
}

// Responder abstracts the conversational turn for the MCP layer.
type Responder interface {
	Respond(ctx context.Context, caller auth.Identity, message string) (string, error)
}

// NewMCPServer creates an MCP server with all ironcoach tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"ironcoach",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("ironcoach — tough-love motivational coach with persistent goals and chat history."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("motivate",
			mcp.WithDescription("Send a message to the coach and get a motivational reply. The exchange is recorded in chat history."),
			mcp.WithString("message", mcp.Description("What to tell the coach"), mcp.Required()),
		),
		mcpMotivate(deps),
	)

	s.AddTool(
		mcp.NewTool("set_goal",
			mcp.WithDescription("Set the goal the coach holds you accountable to."),
			mcp.WithString("goal", mcp.Description("The goal text"), mcp.Required()),
		),
		mcpSetGoal(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"coach://profile",
			"Coach Profile",
			mcp.WithResourceDescription("Current coaching profile (tone, intensity, goal) as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"coach://history",
			"Recent History",
			mcp.WithResourceDescription("Last 10 chat turns, oldest first"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceHistory(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"coach://prompt-contract",
			"Prompt Contract",
			mcp.WithResourceDescription("The system prompt the coach is driven by"),
			mcp.WithMIMEType("text/markdown"),
		),
		mcpResourceContract(),
	)

	return s
}

func mcpMotivate(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		reply, err := deps.Chat.Respond(ctx, deps.Operator, message)
		if err != nil {
			return mcpError(fmt.Sprintf("coach unavailable: %v", err)), nil
		}

		return mcpText(reply), nil
	}
}

func mcpSetGoal(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		goal, err := req.RequireString("goal")
		if err != nil {
			return mcpError("goal is required"), nil
		}
		goal = strings.TrimSpace(goal)
		if goal == "" {
			return mcpError("goal must not be empty"), nil
		}

		p, err := deps.Store.GetProfile(deps.Operator.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			p = storage.Profile{
				UserID:    deps.Operator.UserID,
				Email:     deps.Operator.Email,
				Tone:      defaultTone,
				Intensity: defaultIntensity,
			}
		} else if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}

		p.Goal = goal
		p.UpdatedAt = time.Now().UTC()
		if err := deps.Store.UpsertProfile(p); err != nil {
			return mcpError(fmt.Sprintf("failed to save goal: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Goal set: %s", goal)), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Store.GetProfile(deps.Operator.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			p = storage.Profile{
				UserID:    deps.Operator.UserID,
				Tone:      defaultTone,
				Intensity: defaultIntensity,
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceHistory(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		turns, err := deps.Store.RecentTurns(deps.Operator.UserID, 10)
		if err != nil {
			return nil, fmt.Errorf("failed to get history: %w", err)
		}

		b, err := json.Marshal(prompt.Chronological(turns))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal history: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceContract() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     prompt.Contract(),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
