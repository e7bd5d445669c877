package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const sortArgDesc = "Sort order: name (ascending), modified or size (descending). Defaults to name"
const metadataArgDesc = "Include modified time and size for each note (default false)"

func (s *Server) registerSearchTools() {
	s.mcp.AddTool(mcp.NewTool("list_obsidian_notes",
		mcp.WithDescription("List every markdown note in the vault."),
		mcp.WithBoolean("include_metadata", mcp.Description(metadataArgDesc)),
		mcp.WithString("sort_by", mcp.Description(sortArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_obsidian_notes",
		mcp.WithDescription("Find notes whose title or path contains the query, case-insensitively."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to look for in note paths")),
		mcp.WithBoolean("include_metadata", mcp.Description(metadataArgDesc)),
		mcp.WithString("sort_by", mcp.Description(sortArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("search_obsidian_content",
		mcp.WithDescription("Search note contents for a case-insensitive substring. Returns the ten best matching notes with context snippets."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for inside notes")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("search_notes_by_tag",
		mcp.WithDescription("Find notes by frontmatter tags. A leading # on a tag is ignored and matching is case-insensitive."),
		mcp.WithArray("tags", mcp.Required(), mcp.Description("Tags to match"), mcp.Items(map[string]any{"type": "string"})),
		mcp.WithBoolean("match_all", mcp.Description("Require every tag to be present (default: any tag matches)")),
		mcp.WithBoolean("include_metadata", mcp.Description(metadataArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.searchByTags)

	s.mcp.AddTool(mcp.NewTool("list_notes_in_folder",
		mcp.WithDescription("List the markdown notes in one folder of the vault."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Vault-relative folder path")),
		mcp.WithBoolean("recursive", mcp.Description("Descend into subfolders (default false)")),
		mcp.WithBoolean("include_metadata", mcp.Description(metadataArgDesc)),
		mcp.WithString("sort_by", mcp.Description(sortArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.listFolder)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.ListNotes(ctx, v, req.GetBool("include_metadata", false), req.GetString("sort_by", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.SearchNotes(ctx, v, query, req.GetBool("include_metadata", false), req.GetString("sort_by", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.SearchContent(ctx, v, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) searchByTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags := req.GetStringSlice("tags", nil)
	if len(tags) == 0 {
		return mcp.NewToolResultError("tags must be a non-empty list of strings"), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.SearchByTags(ctx, v, tags, req.GetBool("match_all", false), req.GetBool("include_metadata", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) listFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.ListFolder(ctx, v, folder,
		req.GetBool("recursive", false),
		req.GetBool("include_metadata", false),
		req.GetString("sort_by", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}
