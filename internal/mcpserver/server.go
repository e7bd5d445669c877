// Package mcpserver exposes vault and note operations as MCP (Model Context
// Protocol) tools over stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nbaradar/obsidian-mcp-server/internal/notestore"
	"github.com/nbaradar/obsidian-mcp-server/internal/session"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// Server wraps the MCP server with the vault and note tools.
type Server struct {
	mcp      *server.MCPServer
	notes    *notestore.Service
	registry *vault.Registry
	sessions *session.Store
	log      *slog.Logger
}

// New creates an MCP server with all tools registered.
func New(notes *notestore.Service, registry *vault.Registry, sessions *session.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{notes: notes, registry: registry, sessions: sessions, log: logger}

	s.mcp = server.NewMCPServer(
		"obsidian-mcp-server",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.registerVaultTools()
	s.registerNoteTools()
	s.registerSectionTools()
	s.registerFrontmatterTools()
	s.registerSearchTools()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) registerVaultTools() {
	s.mcp.AddTool(mcp.NewTool("list_vaults",
		mcp.WithDescription("List the configured vaults, with the default and the session's active vault marked."),
	), s.listVaults)

	s.mcp.AddTool(mcp.NewTool("set_active_vault",
		mcp.WithDescription("Set the active vault for this session. Later tool calls without an explicit vault argument use it."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of a configured vault")),
	), s.setActiveVault)
}

// sessionKey identifies the caller for per-session vault selection. Outside
// a live MCP session (direct handler calls in tests) everything shares one
// default key.
func (s *Server) sessionKey(ctx context.Context) string {
	if cs := server.ClientSessionFromContext(ctx); cs != nil {
		return cs.SessionID()
	}
	return session.DefaultKey
}

// vaultFor resolves the vault for a tool call: an explicit "vault" argument
// wins, otherwise the session's active vault.
func (s *Server) vaultFor(ctx context.Context, req mcp.CallToolRequest) (vault.Vault, error) {
	return s.sessions.Resolve(req.GetString("vault", ""), s.sessionKey(ctx))
}

// jsonResult renders a tool payload as indented JSON.
func jsonResult(payload any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

type vaultInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
	Exists      bool   `json:"exists"`
	Default     bool   `json:"default"`
	Active      bool   `json:"active"`
}

func (s *Server) listVaults(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active := s.sessions.ActiveName(s.sessionKey(ctx))
	infos := make([]vaultInfo, 0)
	for _, v := range s.registry.All() {
		infos = append(infos, vaultInfo{
			Name:        v.Name,
			Path:        v.Root,
			Description: v.Description,
			Exists:      v.Exists,
			Default:     v.Name == s.registry.DefaultName(),
			Active:      v.Name == active,
		})
	}
	return jsonResult(map[string]any{"vaults": infos, "active": active}), nil
}

func (s *Server) setActiveVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.sessions.SetActive(s.sessionKey(ctx), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.log.Info("active vault changed", slog.String("vault", v.Name))
	return jsonResult(map[string]any{
		"active": v.Name,
		"path":   v.Root,
		"status": "vault_selected",
	}), nil
}
