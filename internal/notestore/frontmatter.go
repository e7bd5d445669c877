package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/nbaradar/obsidian-mcp-server/internal/frontmatter"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// ReadFrontmatterResult is the payload returned by ReadFrontmatter.
type ReadFrontmatterResult struct {
	Vault          string         `json:"vault"`
	Note           string         `json:"note"`
	Path           string         `json:"path"`
	Frontmatter    map[string]any `json:"frontmatter"`
	HasFrontmatter bool           `json:"has_frontmatter"`
	Status         string         `json:"status"`
}

// UpdateFrontmatterResult is the payload returned by UpdateFrontmatter.
type UpdateFrontmatterResult struct {
	Vault         string   `json:"vault"`
	Note          string   `json:"note"`
	Path          string   `json:"path"`
	FieldsUpdated []string `json:"fields_updated"`
	Status        string   `json:"status"`
}

// ReplaceFrontmatterResult is the payload returned by ReplaceFrontmatter.
type ReplaceFrontmatterResult struct {
	Vault          string `json:"vault"`
	Note           string `json:"note"`
	Path           string `json:"path"`
	HadFrontmatter bool   `json:"had_frontmatter"`
	Status         string `json:"status"`
}

// DeleteFrontmatterResult is the payload returned by DeleteFrontmatter.
type DeleteFrontmatterResult struct {
	Vault         string   `json:"vault"`
	Note          string   `json:"note"`
	Path          string   `json:"path"`
	RemovedFields []string `json:"removed_fields,omitempty"`
	Status        string   `json:"status"`
}

// ReadFrontmatter parses and returns a note's frontmatter block. A note
// without a block yields an empty map, not an error.
func (s *Service) ReadFrontmatter(_ context.Context, v vault.Vault, title string) (*ReadFrontmatterResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	meta, _, hadBlock, err := frontmatter.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: note %q", err, name)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return &ReadFrontmatterResult{
		Vault:          v.Name,
		Note:           name,
		Path:           abs,
		Frontmatter:    meta,
		HasFrontmatter: hadBlock,
		Status:         "read",
	}, nil
}

// UpdateFrontmatter deep-merges updates into a note's existing frontmatter.
// Nested maps merge recursively; lists and scalars replace wholesale. When
// the merge produces no change the note is left untouched and the status is
// "unchanged".
func (s *Service) UpdateFrontmatter(_ context.Context, v vault.Vault, title string, updates map[string]any) (*UpdateFrontmatterResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	clean, err := frontmatter.Sanitize(updates)
	if err != nil {
		return nil, err
	}
	current, body, _, err := frontmatter.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: note %q", err, name)
	}
	if current == nil {
		current = map[string]any{}
	}
	merged := frontmatter.DeepMerge(current, clean)
	if reflect.DeepEqual(merged, current) {
		return &UpdateFrontmatterResult{
			Vault:         v.Name,
			Note:          name,
			Path:          abs,
			FieldsUpdated: []string{},
			Status:        "unchanged",
		}, nil
	}
	merged, err = frontmatter.Sanitize(merged)
	if err != nil {
		return nil, err
	}
	updated, err := frontmatter.Serialize(merged, body)
	if err != nil {
		return nil, err
	}
	if err := writeFile(abs, []byte(updated)); err != nil {
		return nil, err
	}
	fields := sortedKeys(clean)
	s.log.Info("frontmatter updated", slog.String("vault", v.Name), slog.String("note", name), slog.Any("fields", fields))
	return &UpdateFrontmatterResult{
		Vault:         v.Name,
		Note:          name,
		Path:          abs,
		FieldsUpdated: fields,
		Status:        "updated",
	}, nil
}

// ReplaceFrontmatter swaps the entire frontmatter block for the given
// metadata, leaving the body untouched. An empty map removes the block.
func (s *Service) ReplaceFrontmatter(_ context.Context, v vault.Vault, title string, meta map[string]any) (*ReplaceFrontmatterResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	clean, err := frontmatter.Sanitize(meta)
	if err != nil {
		return nil, err
	}
	_, body, hadBlock, err := frontmatter.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: note %q", err, name)
	}
	updated, err := frontmatter.Serialize(clean, body)
	if err != nil {
		return nil, err
	}
	if err := writeFile(abs, []byte(updated)); err != nil {
		return nil, err
	}
	s.log.Info("frontmatter replaced", slog.String("vault", v.Name), slog.String("note", name))
	return &ReplaceFrontmatterResult{
		Vault:          v.Name,
		Note:           name,
		Path:           abs,
		HadFrontmatter: hadBlock,
		Status:         "replaced",
	}, nil
}

// DeleteFrontmatter strips the frontmatter block from a note. A note with no
// block is left untouched and reported as "no_frontmatter".
func (s *Service) DeleteFrontmatter(_ context.Context, v vault.Vault, title string) (*DeleteFrontmatterResult, error) {
	abs, text, err := s.readNote(v, title)
	if err != nil {
		return nil, err
	}
	name := vault.DisplayName(v, abs)
	meta, body, hadBlock, err := frontmatter.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: note %q", err, name)
	}
	if !hadBlock {
		return &DeleteFrontmatterResult{Vault: v.Name, Note: name, Path: abs, Status: "no_frontmatter"}, nil
	}
	if err := writeFile(abs, []byte(body)); err != nil {
		return nil, err
	}
	removed := sortedKeys(meta)
	s.log.Info("frontmatter deleted", slog.String("vault", v.Name), slog.String("note", name), slog.Any("fields", removed))
	return &DeleteFrontmatterResult{
		Vault:         v.Name,
		Note:          name,
		Path:          abs,
		RemovedFields: removed,
		Status:        "deleted",
	}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
