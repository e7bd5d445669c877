package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
	"github.com/nbaradar/obsidian-mcp-server/internal/notestore"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// Handler holds API route handlers.
type Handler struct {
	notes    *notestore.Service
	registry *vault.Registry
}

// NewHandler creates a new Handler.
func NewHandler(notes *notestore.Service, registry *vault.Registry) *Handler {
	return &Handler{notes: notes, registry: registry}
}

// notePath extracts the note path from the URL (everything after /notes/).
// Supports encoded slashes from OpenAPI clients (e.g. Projects%2FRoadmap).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// requestVault resolves the ?vault= query parameter, falling back to the
// default vault. The REST surface has no sessions; vault selection is
// per-request.
func (h *Handler) requestVault(r *http.Request) (vault.Vault, error) {
	if name := r.URL.Query().Get("vault"); name != "" {
		return h.registry.Get(name)
	}
	return h.registry.Default(), nil
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNoteNotFound),
		errors.Is(err, apperr.ErrFolderNotFound),
		errors.Is(err, apperr.ErrHeadingNotFound),
		errors.Is(err, apperr.ErrVaultNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNoteAlreadyExists), errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidIdentifier),
		errors.Is(err, apperr.ErrInvalidFolderPath),
		errors.Is(err, apperr.ErrFrontmatterParse),
		errors.Is(err, apperr.ErrUnsupportedFieldType),
		errors.Is(err, apperr.ErrFrontmatterTooLarge),
		errors.Is(err, apperr.ErrNotUTF8):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /notes.
//
//	@Summary		List notes, optionally scoped to a folder
//	@Tags			notes
//	@Produce		json
//	@Param			vault		query		string	false	"Vault name (default vault otherwise)"
//	@Param			folder		query		string	false	"Folder to list"
//	@Param			recursive	query		bool	false	"Descend into subfolders (folder listings only)"
//	@Param			metadata	query		bool	false	"Include modified time and size"
//	@Param			sort		query		string	false	"Sort field"	Enums(name, modified, size)
//	@Success		200			{object}	notestore.ListResult
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	metadata, _ := strconv.ParseBool(q.Get("metadata"))
	sortBy := q.Get("sort")

	var res *notestore.ListResult
	if folder := q.Get("folder"); folder != "" {
		recursive, _ := strconv.ParseBool(q.Get("recursive"))
		res, err = h.notes.ListFolder(r.Context(), v, folder, recursive, metadata, sortBy)
	} else {
		res, err = h.notes.ListNotes(r.Context(), v, metadata, sortBy)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetNote handles GET /notes/*.
//
//	@Summary		Get a single note with content and checksum
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	notestore.NoteResult
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}
	note, err := h.notes.Retrieve(r.Context(), v, path)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	notestore.NoteResult
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Note == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("note is required"))
		return
	}
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.notes.Create(r.Context(), v, req.Note, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UpdateNote handles PUT /notes/*.
//
//	@Summary		Replace a note's content with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string				true	"Note path"
//	@Param			If-Match	header		string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		UpdateNoteRequest	true	"Updated content"
//	@Success		200			{object}	notestore.NoteResult
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Standard ETag format carries surrounding quotes.
	if ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`); ifMatch != "" {
		current, getErr := h.notes.Retrieve(r.Context(), v, path)
		if getErr != nil {
			writeError(w, getErr)
			return
		}
		if current.Checksum != ifMatch {
			writeError(w, apperr.ErrConflict)
			return
		}
	}

	res, err := h.notes.Replace(r.Context(), v, path, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteNote handles DELETE /notes/*.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			path	path	string	true	"Note path"
//	@Success		204		"Note deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.notes.Delete(r.Context(), v, path); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNote handles POST /notes/move.
//
//	@Summary		Move or rename a note, rewriting links by default
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveNoteRequest	true	"Move request"
//	@Success		200		{object}	notestore.MoveResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/move [post]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req MoveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.OldNote == "" || req.NewNote == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("old_note and new_note are required"))
		return
	}
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}
	updateLinks := true
	if req.UpdateLinks != nil {
		updateLinks = *req.UpdateLinks
	}
	res, err := h.notes.Move(r.Context(), v, req.OldNote, req.NewNote, updateLinks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Search handles GET /search.
//
//	@Summary		Search note contents for a substring
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			vault	query		string	false	"Vault name"
//	@Success		200		{object}	notestore.ContentSearchResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.notes.SearchContent(r.Context(), v, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SearchTags handles GET /search/tags.
//
//	@Summary		Find notes by frontmatter tags
//	@Tags			search
//	@Produce		json
//	@Param			tags	query		string	true	"Comma-separated tags"
//	@Param			all		query		bool	false	"Require every tag to match"
//	@Param			metadata	query	bool	false	"Include modified time and size"
//	@Success		200		{object}	notestore.ListResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/tags [get]
func (h *Handler) SearchTags(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tags")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'tags' is required"))
		return
	}
	v, err := h.requestVault(r)
	if err != nil {
		writeError(w, err)
		return
	}
	matchAll, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	metadata, _ := strconv.ParseBool(r.URL.Query().Get("metadata"))
	res, err := h.notes.SearchByTags(r.Context(), v, strings.Split(raw, ","), matchAll, metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Vaults handles GET /vaults.
//
//	@Summary		List the configured vaults
//	@Tags			vaults
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Security		BearerAuth
//	@Router			/vaults [get]
func (h *Handler) Vaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"vaults":  h.registry.All(),
		"default": h.registry.DefaultName(),
	})
}
