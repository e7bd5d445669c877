package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nbaradar/obsidian-mcp-server/internal/notestore"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

const headingArgDesc = "Heading text to match, case- and whitespace-insensitively, without the leading # characters"

func (s *Server) registerSectionTools() {
	s.mcp.AddTool(mcp.NewTool("insert_after_heading_obsidian_note",
		mcp.WithDescription("Insert content immediately below a heading line, before the existing section body."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("heading", mcp.Required(), mcp.Description(headingArgDesc)),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content to insert")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.sectionTool((*notestore.Service).InsertAfterHeading))

	s.mcp.AddTool(mcp.NewTool("append_to_section_obsidian_note",
		mcp.WithDescription("Append content at the end of a heading's section, before the next heading of any level."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("heading", mcp.Required(), mcp.Description(headingArgDesc)),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content to append")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.sectionTool((*notestore.Service).AppendToSection))

	s.mcp.AddTool(mcp.NewTool("replace_section_obsidian_note",
		mcp.WithDescription("Replace a heading's entire section body, subsections included. The heading line itself is kept."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("heading", mcp.Required(), mcp.Description(headingArgDesc)),
		mcp.WithString("content", mcp.Required(), mcp.Description("Replacement markdown content")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.sectionTool((*notestore.Service).ReplaceSection))

	s.mcp.AddTool(mcp.NewTool("delete_section_obsidian_note",
		mcp.WithDescription("Delete a heading together with its section body and nested subsections."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("heading", mcp.Required(), mcp.Description(headingArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.deleteSection)
}

// sectionTool adapts the three content-carrying section edits, which share
// an identical argument shape.
func (s *Server) sectionTool(op func(*notestore.Service, context.Context, vault.Vault, string, string, string) (*notestore.SectionResult, error)) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		note, err := req.RequireString("note")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		heading, err := req.RequireString("heading")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, err := s.vaultFor(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := op(s.notes, ctx, v, note, heading, content)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(res), nil
	}
}

func (s *Server) deleteSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	heading, err := req.RequireString("heading")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.DeleteSection(ctx, v, note, heading)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}
