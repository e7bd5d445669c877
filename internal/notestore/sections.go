package notestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nbaradar/obsidian-mcp-server/internal/markdown"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// SectionResult is the payload returned by heading-scoped edits.
type SectionResult struct {
	Vault   string `json:"vault"`
	Note    string `json:"note"`
	Path    string `json:"path"`
	Heading string `json:"heading"`
	Status  string `json:"status"`
}

// InsertAfterHeading inserts content immediately below a heading line,
// before any existing section body.
func (s *Service) InsertAfterHeading(_ context.Context, v vault.Vault, title, heading, content string) (*SectionResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	h, _, _, err := markdown.LocateHeading(text, heading)
	if err != nil {
		return nil, fmt.Errorf("%w in note %q", err, name)
	}
	updated := markdown.InsertAfterHeading(text, h, content)
	if updated != text {
		if err := writeFile(abs, []byte(updated)); err != nil {
			return nil, err
		}
	}
	s.log.Info("section insert", slog.String("vault", v.Name), slog.String("note", name), slog.String("heading", h.Title))
	return &SectionResult{Vault: v.Name, Note: name, Path: abs, Heading: h.Title, Status: "inserted_after_heading"}, nil
}

// AppendToSection adds content at the end of a heading's section, before the
// next heading of any level.
func (s *Service) AppendToSection(_ context.Context, v vault.Vault, title, heading, content string) (*SectionResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	h, idx, headings, err := markdown.LocateHeading(text, heading)
	if err != nil {
		return nil, fmt.Errorf("%w in note %q", err, name)
	}
	// Whitespace-only content is a no-op; leave the file untouched.
	updated := markdown.AppendToSection(text, headings, idx, content)
	if updated != text {
		if err := writeFile(abs, []byte(updated)); err != nil {
			return nil, err
		}
	}
	s.log.Info("section append", slog.String("vault", v.Name), slog.String("note", name), slog.String("heading", h.Title))
	return &SectionResult{Vault: v.Name, Note: name, Path: abs, Heading: h.Title, Status: "section_appended"}, nil
}

// ReplaceSection replaces the body of a heading's section, keeping the
// heading line and any nested subsections' share of the body boundary rules.
func (s *Service) ReplaceSection(_ context.Context, v vault.Vault, title, heading, content string) (*SectionResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	h, idx, headings, err := markdown.LocateHeading(text, heading)
	if err != nil {
		return nil, fmt.Errorf("%w in note %q", err, name)
	}
	updated := markdown.ReplaceSection(text, headings, idx, content)
	if err := writeFile(abs, []byte(updated)); err != nil {
		return nil, err
	}
	s.log.Info("section replace", slog.String("vault", v.Name), slog.String("note", name), slog.String("heading", h.Title))
	return &SectionResult{Vault: v.Name, Note: name, Path: abs, Heading: h.Title, Status: "section_replaced"}, nil
}

// DeleteSection removes a heading together with its body and any nested
// deeper headings, then collapses leftover blank runs.
func (s *Service) DeleteSection(_ context.Context, v vault.Vault, title, heading string) (*SectionResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	h, idx, headings, err := markdown.LocateHeading(text, heading)
	if err != nil {
		return nil, fmt.Errorf("%w in note %q", err, name)
	}
	updated := markdown.DeleteSection(text, headings, idx)
	if err := writeFile(abs, []byte(updated)); err != nil {
		return nil, err
	}
	s.log.Info("section delete", slog.String("vault", v.Name), slog.String("note", name), slog.String("heading", h.Title))
	return &SectionResult{Vault: v.Name, Note: name, Path: abs, Heading: h.Title, Status: "section_deleted"}, nil
}
