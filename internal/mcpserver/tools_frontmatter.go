package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerFrontmatterTools() {
	s.mcp.AddTool(mcp.NewTool("read_obsidian_frontmatter",
		mcp.WithDescription("Read a note's YAML frontmatter as structured data. A note without a block yields an empty object."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.readFrontmatter)

	s.mcp.AddTool(mcp.NewTool("update_obsidian_frontmatter",
		mcp.WithDescription("Deep-merge fields into a note's frontmatter. Nested objects merge recursively; lists and scalars replace wholesale."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithObject("frontmatter", mcp.Required(), mcp.Description("Fields to merge into the existing frontmatter")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.updateFrontmatter)

	s.mcp.AddTool(mcp.NewTool("replace_obsidian_frontmatter",
		mcp.WithDescription("Replace a note's entire frontmatter block. An empty object removes the block."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithObject("frontmatter", mcp.Required(), mcp.Description("Complete replacement frontmatter")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.replaceFrontmatter)

	s.mcp.AddTool(mcp.NewTool("delete_obsidian_frontmatter",
		mcp.WithDescription("Strip the frontmatter block from a note, leaving the body untouched."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.deleteFrontmatter)
}

// frontmatterArg extracts the "frontmatter" object argument.
func frontmatterArg(req mcp.CallToolRequest) (map[string]any, bool) {
	args := req.GetArguments()
	raw, ok := args["frontmatter"]
	if !ok {
		return nil, false
	}
	meta, ok := raw.(map[string]any)
	return meta, ok
}

func (s *Server) readFrontmatter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.ReadFrontmatter(ctx, v, note)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) updateFrontmatter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, ok := frontmatterArg(req)
	if !ok {
		return mcp.NewToolResultError("frontmatter must be an object"), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.UpdateFrontmatter(ctx, v, note, meta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) replaceFrontmatter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, ok := frontmatterArg(req)
	if !ok {
		return mcp.NewToolResultError("frontmatter must be an object"), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.ReplaceFrontmatter(ctx, v, note, meta)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) deleteFrontmatter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.DeleteFrontmatter(ctx, v, note)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}
