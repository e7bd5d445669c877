// Package notestore implements the note operations of the server: whole-note
// CRUD, heading-scoped section edits, frontmatter manipulation, and vault
// search. Every operation is a synchronous read-modify-write against disk;
// the filesystem is the sole store and nothing is cached between calls.
package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
	"github.com/nbaradar/obsidian-mcp-server/internal/checksum"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// Service executes note operations against resolved vaults.
type Service struct {
	log *slog.Logger
}

// New creates a note service. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{log: logger}
}

// NoteResult is the payload returned by whole-note operations.
type NoteResult struct {
	Vault    string `json:"vault"`
	Note     string `json:"note"`
	Path     string `json:"path"`
	Status   string `json:"status,omitempty"`
	Content  string `json:"content,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}

// MoveResult is the payload returned by Move.
type MoveResult struct {
	Vault        string `json:"vault"`
	OldPath      string `json:"old_path"`
	NewPath      string `json:"new_path"`
	LinksUpdated int    `json:"links_updated"`
	Status       string `json:"status"`
}

// Create writes a new note, creating missing parent directories. It fails if
// the target already exists.
func (s *Service) Create(_ context.Context, v vault.Vault, title, content string) (*NoteResult, error) {
	if err := v.EnsureReady(); err != nil {
		return nil, err
	}
	abs, err := vault.ResolveNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	if _, err := os.Stat(abs); err == nil {
		return nil, fmt.Errorf("%w: %q in vault %q", apperr.ErrNoteAlreadyExists, name, v.Name)
	}
	if err := writeFile(abs, []byte(content)); err != nil {
		return nil, err
	}
	s.log.Info("note created", slog.String("vault", v.Name), slog.String("note", name))
	return &NoteResult{Vault: v.Name, Note: name, Path: abs, Status: "created"}, nil
}

// Retrieve returns the raw content of a note together with its checksum.
func (s *Service) Retrieve(_ context.Context, v vault.Vault, title string) (*NoteResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	return &NoteResult{
		Vault:    v.Name,
		Note:     vault.DisplayName(v, abs),
		Path:     abs,
		Content:  text,
		Checksum: checksum.Sum([]byte(text)),
	}, nil
}

// Replace overwrites the entire content of an existing note.
func (s *Service) Replace(_ context.Context, v vault.Vault, title, content string) (*NoteResult, error) {
	abs, _, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	if err := writeFile(abs, []byte(content)); err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	s.log.Info("note replaced", slog.String("vault", v.Name), slog.String("note", name))
	return &NoteResult{Vault: v.Name, Note: name, Path: abs, Status: "replaced"}, nil
}

// Append adds content to the end of a note, inserting a single newline
// between the segments when neither side provides one.
func (s *Service) Append(_ context.Context, v vault.Vault, title, content string) (*NoteResult, error) {
	abs, existing, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	if err := writeFile(abs, []byte(combineWithNewline(existing, content))); err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	s.log.Info("note appended", slog.String("vault", v.Name), slog.String("note", name))
	return &NoteResult{Vault: v.Name, Note: name, Path: abs, Status: "appended"}, nil
}

// Prepend inserts content before the current note body.
func (s *Service) Prepend(_ context.Context, v vault.Vault, title, content string) (*NoteResult, error) {
	abs, existing, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	if err := writeFile(abs, []byte(combineWithNewline(content, existing))); err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	s.log.Info("note prepended", slog.String("vault", v.Name), slog.String("note", name))
	return &NoteResult{Vault: v.Name, Note: name, Path: abs, Status: "prepended"}, nil
}

// Delete removes a note from the vault.
func (s *Service) Delete(_ context.Context, v vault.Vault, title string) (*NoteResult, error) {
	abs, _, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	if err := os.Remove(abs); err != nil {
		return nil, fmt.Errorf("delete %q: %w", name, err)
	}
	s.log.Info("note deleted", slog.String("vault", v.Name), slog.String("note", name))
	return &NoteResult{Vault: v.Name, Note: name, Path: abs, Status: "deleted"}, nil
}

// Move renames a note, optionally rewriting wikilinks and markdown links in
// every other note of the vault to point at the new name. It fails if a note
// already exists at the destination.
func (s *Service) Move(_ context.Context, v vault.Vault, oldTitle, newTitle string, updateLinks bool) (*MoveResult, error) {
	if err := v.EnsureReady(); err != nil {
		return nil, err
	}
	oldAbs, err := vault.ResolveNote(v, oldTitle)
	if err != nil {
		return nil, err
	}
	newAbs, err := vault.ResolveNote(v, newTitle)
	if err != nil {
		return nil, err
	}
	oldName := vault.DisplayName(v, oldAbs)
	newName := vault.DisplayName(v, newAbs)

	if !isFile(oldAbs) {
		return nil, fmt.Errorf("%w: %q in vault %q", apperr.ErrNoteNotFound, oldName, v.Name)
	}

	if oldAbs == newAbs {
		linksUpdated := 0
		if updateLinks {
			linksUpdated = s.rewriteBacklinks(v, oldName, newName)
		}
		return &MoveResult{Vault: v.Name, OldPath: oldName, NewPath: newName, LinksUpdated: linksUpdated, Status: "moved"}, nil
	}

	if _, err := os.Stat(newAbs); err == nil {
		return nil, fmt.Errorf("%w: %q in vault %q", apperr.ErrNoteAlreadyExists, newName, v.Name)
	}
	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return nil, fmt.Errorf("move %q: %w", oldName, err)
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return nil, fmt.Errorf("move %q: %w", oldName, err)
	}

	linksUpdated := 0
	if updateLinks {
		linksUpdated = s.rewriteBacklinks(v, oldName, newName)
	}
	s.log.Info("note moved",
		slog.String("vault", v.Name),
		slog.String("from", oldName),
		slog.String("to", newName),
		slog.Int("links_updated", linksUpdated))
	return &MoveResult{Vault: v.Name, OldPath: oldName, NewPath: newName, LinksUpdated: linksUpdated, Status: "moved"}, nil
}

// rewriteBacklinks updates [[wikilink]] and [label](markdown-link) references
// across the vault, preserving aliases and .md extensions. Unreadable or
// unwritable files are skipped with a warning; the scan never fails.
func (s *Service) rewriteBacklinks(v vault.Vault, oldName, newName string) int {
	wikilink := regexp.MustCompile(`\[\[` + regexp.QuoteMeta(oldName) + `(\|[^\]]+)?\]\]`)
	mdlink := regexp.MustCompile(`\[([^\]]+)\]\(` + regexp.QuoteMeta(oldName) + `(\.md)?\)`)

	updated := 0
	err := filepath.WalkDir(v.Root, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			s.log.Warn("backlink scan: read failed", slog.String("path", p), slog.String("error", readErr.Error()))
			return nil
		}
		content := string(data)
		rewritten := wikilink.ReplaceAllString(content, "[["+newName+"$1]]")
		rewritten = mdlink.ReplaceAllString(rewritten, "[$1]("+newName+"$2)")
		if rewritten == content {
			return nil
		}
		if writeErr := writeFile(p, []byte(rewritten)); writeErr != nil {
			s.log.Warn("backlink scan: write failed", slog.String("path", p), slog.String("error", writeErr.Error()))
			return nil
		}
		updated++
		return nil
	})
	if err != nil {
		s.log.Warn("backlink scan: walk failed", slog.String("vault", v.Name), slog.String("error", err.Error()))
	}
	return updated
}

// readNote resolves a title and reads the note, enforcing existence and
// UTF-8 encoding.
func (s *Service) readNote(v vault.Vault, title string) (abs, text string, err error) {
	if err := v.EnsureReady(); err != nil {
		return "", "", err
	}
	abs, err = vault.ResolveNote(v, title)
	if err != nil {
		return "", "", err
	}
	name := vault.DisplayName(v, abs)
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("%w: %q in vault %q", apperr.ErrNoteNotFound, name, v.Name)
		}
		return "", "", fmt.Errorf("read %q: %w", name, err)
	}
	if !utf8.Valid(data) {
		return "", "", fmt.Errorf("%w: %q", apperr.ErrNotUTF8, name)
	}
	return abs, string(data), nil
}

// writeFile atomically replaces the file at abs: temp file, fsync, rename.
// Missing parent directories are created.
func writeFile(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".note-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	success = true
	return nil
}

// combineWithNewline joins two text segments with at most one newline
// between them.
func combineWithNewline(left, right string) string {
	if left == "" {
		return right
	}
	if right == "" {
		return left
	}
	if !strings.HasSuffix(left, "\n") && !strings.HasPrefix(right, "\n") {
		return left + "\n" + right
	}
	return left + right
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
