package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const noteArgDesc = "Note title or vault-relative path, with or without the .md extension (e.g. \"Meeting Notes\" or \"Projects/Roadmap\")"
const vaultArgDesc = "Vault to operate on (defaults to the session's active vault)"

func (s *Server) registerNoteTools() {
	s.mcp.AddTool(mcp.NewTool("create_obsidian_note",
		mcp.WithDescription("Create a new markdown note. Fails if a note already exists at that path; parent folders are created as needed."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full markdown content of the new note")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("retrieve_obsidian_note",
		mcp.WithDescription("Read the full content of a note, with its checksum."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.retrieveNote)

	s.mcp.AddTool(mcp.NewTool("replace_obsidian_note",
		mcp.WithDescription("Replace the entire content of an existing note."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("content", mcp.Required(), mcp.Description("New markdown content")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.replaceNote)

	s.mcp.AddTool(mcp.NewTool("append_to_obsidian_note",
		mcp.WithDescription("Append content to the end of an existing note."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content to append")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.appendNote)

	s.mcp.AddTool(mcp.NewTool("prepend_to_obsidian_note",
		mcp.WithDescription("Insert content at the beginning of an existing note."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content to prepend")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.prependNote)

	s.mcp.AddTool(mcp.NewTool("delete_obsidian_note",
		mcp.WithDescription("Delete a note from the vault."),
		mcp.WithString("note", mcp.Required(), mcp.Description(noteArgDesc)),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("move_obsidian_note",
		mcp.WithDescription("Move or rename a note, optionally rewriting [[wikilinks]] and markdown links across the vault."),
		mcp.WithString("old_note", mcp.Required(), mcp.Description("Current "+noteArgDesc)),
		mcp.WithString("new_note", mcp.Required(), mcp.Description("New "+noteArgDesc)),
		mcp.WithBoolean("update_links", mcp.Description("Rewrite links in other notes to the new name (default true)")),
		mcp.WithString("vault", mcp.Description(vaultArgDesc)),
	), s.moveNote)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
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
	res, err := s.notes.Create(ctx, v, note, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) retrieveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.Retrieve(ctx, v, note)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) replaceNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
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
	res, err := s.notes.Replace(ctx, v, note, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) appendNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
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
	res, err := s.notes.Append(ctx, v, note, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) prependNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
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
	res, err := s.notes.Prepend(ctx, v, note, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.Delete(ctx, v, note)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) moveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldNote, err := req.RequireString("old_note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newNote, err := req.RequireString("new_note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := s.vaultFor(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.notes.Move(ctx, v, oldNote, newNote, req.GetBool("update_links", true))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}
