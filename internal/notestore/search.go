package notestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
	"github.com/nbaradar/obsidian-mcp-server/internal/frontmatter"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

const (
	snippetRadius  = 100
	maxSnippets    = 3
	maxContentHits = 10
)

// NoteEntry describes one note in a listing or search result. Modified and
// Size are populated only when metadata was requested; Tags only by tag
// search.
type NoteEntry struct {
	Path     string   `json:"path"`
	Modified string   `json:"modified,omitempty"`
	Size     int64    `json:"size,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// ListResult is the payload returned by listing and name/tag searches.
type ListResult struct {
	Vault  string      `json:"vault"`
	Folder string      `json:"folder,omitempty"`
	Query  string      `json:"query,omitempty"`
	Tags   []string    `json:"tags,omitempty"`
	Count  int         `json:"count"`
	Notes  []NoteEntry `json:"notes"`
}

// ContentMatch is one matching note in a content search, with up to three
// context snippets around the earliest occurrences.
type ContentMatch struct {
	Path       string   `json:"path"`
	MatchCount int      `json:"match_count"`
	Snippets   []string `json:"snippets"`
}

// ContentSearchResult is the payload returned by SearchContent.
type ContentSearchResult struct {
	Vault   string         `json:"vault"`
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Matches []ContentMatch `json:"matches"`
}

// ListNotes returns every markdown note in the vault.
func (s *Service) ListNotes(_ context.Context, v vault.Vault, includeMetadata bool, sortBy string) (*ListResult, error) {
	if err := v.EnsureReady(); err != nil {
		return nil, err
	}
	paths, err := listMarkdown(v.Root, true)
	if err != nil {
		return nil, err
	}
	entries := s.entriesFor(v, paths, includeMetadata)
	if err := sortEntries(entries, sortBy); err != nil {
		return nil, err
	}
	return &ListResult{Vault: v.Name, Count: len(entries), Notes: entries}, nil
}

// SearchNotes returns notes whose path contains the query,
// case-insensitively.
func (s *Service) SearchNotes(_ context.Context, v vault.Vault, query string, includeMetadata bool, sortBy string) (*ListResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if err := v.EnsureReady(); err != nil {
		return nil, err
	}
	paths, err := listMarkdown(v.Root, true)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matched := paths[:0:0]
	for _, p := range paths {
		if strings.Contains(strings.ToLower(vault.DisplayName(v, p)), needle) {
			matched = append(matched, p)
		}
	}
	entries := s.entriesFor(v, matched, includeMetadata)
	if err := sortEntries(entries, sortBy); err != nil {
		return nil, err
	}
	return &ListResult{Vault: v.Name, Query: query, Count: len(entries), Notes: entries}, nil
}

// SearchContent scans every note for a case-insensitive substring and
// returns the ten notes with the most occurrences, each with up to three
// context snippets. The scan reads files one at a time; nothing is indexed.
func (s *Service) SearchContent(_ context.Context, v vault.Vault, query string) (*ContentSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if err := v.EnsureReady(); err != nil {
		return nil, err
	}
	paths, err := listMarkdown(v.Root, true)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)

	var matches []ContentMatch
	for _, p := range paths {
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			s.log.Warn("content search: read failed", slog.String("path", p), slog.String("error", readErr.Error()))
			continue
		}
		text := string(data)
		positions := findAll(strings.ToLower(text), needle)
		if len(positions) == 0 {
			continue
		}
		snippets := make([]string, 0, maxSnippets)
		for _, pos := range positions {
			if len(snippets) == maxSnippets {
				break
			}
			snippets = append(snippets, snippet(text, pos, len(needle)))
		}
		matches = append(matches, ContentMatch{
			Path:       vault.DisplayName(v, p),
			MatchCount: len(positions),
			Snippets:   snippets,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].MatchCount > matches[j].MatchCount })
	total := len(matches)
	if len(matches) > maxContentHits {
		matches = matches[:maxContentHits]
	}
	return &ContentSearchResult{Vault: v.Name, Query: query, Count: total, Matches: matches}, nil
}

// SearchByTags returns notes whose frontmatter tags match the query tags.
// With matchAll every query tag must be present, otherwise any one suffices.
// Comparison is case-insensitive and a leading '#' on a query tag is
// ignored. Notes that do not start with a frontmatter delimiter are skipped
// without being parsed.
func (s *Service) SearchByTags(_ context.Context, v vault.Vault, tags []string, matchAll, includeMetadata bool) (*ListResult, error) {
	want := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t != "" {
			want = append(want, t)
		}
	}
	if len(want) == 0 {
		return nil, fmt.Errorf("at least one tag is required")
	}
	if err := v.EnsureReady(); err != nil {
		return nil, err
	}
	paths, err := listMarkdown(v.Root, true)
	if err != nil {
		return nil, err
	}

	var matched []string
	noteTags := map[string][]string{}
	for _, p := range paths {
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			s.log.Warn("tag search: read failed", slog.String("path", p), slog.String("error", readErr.Error()))
			continue
		}
		if !strings.HasPrefix(strings.TrimLeft(string(data), " \t\r\n"), "---") {
			continue
		}
		meta, _, _, parseErr := frontmatter.Parse(string(data))
		if parseErr != nil {
			s.log.Warn("tag search: frontmatter parse failed", slog.String("path", p), slog.String("error", parseErr.Error()))
			continue
		}
		found, ok := frontmatter.Tags(meta)
		if !ok {
			continue
		}
		have := map[string]bool{}
		for _, t := range found {
			have[strings.ToLower(t)] = true
		}
		hit := matchAll
		for _, t := range want {
			if matchAll {
				hit = hit && have[t]
			} else {
				hit = hit || have[t]
			}
		}
		if hit {
			matched = append(matched, p)
			noteTags[p] = found
		}
	}

	entries := s.entriesFor(v, matched, includeMetadata)
	for i, p := range matched {
		entries[i].Tags = noteTags[p]
	}
	if err := sortEntries(entries, ""); err != nil {
		return nil, err
	}
	return &ListResult{Vault: v.Name, Tags: want, Count: len(entries), Notes: entries}, nil
}

// ListFolder lists the markdown notes in one folder of the vault,
// optionally descending into subfolders.
func (s *Service) ListFolder(_ context.Context, v vault.Vault, folder string, recursive, includeMetadata bool, sortBy string) (*ListResult, error) {
	if err := v.EnsureReady(); err != nil {
		return nil, err
	}
	dir, err := vault.ResolveFolder(v, folder)
	if err != nil {
		return nil, err
	}
	info, statErr := os.Stat(dir)
	if statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q in vault %q", apperr.ErrFolderNotFound, folder, v.Name)
	}
	paths, err := listMarkdown(dir, recursive)
	if err != nil {
		return nil, err
	}
	entries := s.entriesFor(v, paths, includeMetadata)
	if err := sortEntries(entries, sortBy); err != nil {
		return nil, err
	}
	return &ListResult{Vault: v.Name, Folder: folder, Count: len(entries), Notes: entries}, nil
}

// listMarkdown collects the absolute paths of .md files under dir, sorted.
func listMarkdown(dir string, recursive bool) ([]string, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(dir, func(p string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".md") {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", dir, err)
		}
	} else {
		dirents, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", dir, err)
		}
		for _, d := range dirents {
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".md") {
				paths = append(paths, filepath.Join(dir, d.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Service) entriesFor(v vault.Vault, paths []string, includeMetadata bool) []NoteEntry {
	entries := make([]NoteEntry, 0, len(paths))
	for _, p := range paths {
		entry := NoteEntry{Path: vault.DisplayName(v, p)}
		if includeMetadata {
			if info, err := os.Stat(p); err == nil {
				entry.Modified = info.ModTime().UTC().Format(time.RFC3339)
				entry.Size = info.Size()
			} else {
				s.log.Warn("stat failed", slog.String("path", p), slog.String("error", err.Error()))
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// sortEntries orders a result set. Name sorts ascending; modified and size
// sort newest and largest first. An empty sortBy means name.
func sortEntries(entries []NoteEntry, sortBy string) error {
	switch sortBy {
	case "", "name":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	case "modified":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Modified > entries[j].Modified })
	case "size":
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Size > entries[j].Size })
	default:
		return fmt.Errorf("unsupported sort %q: use name, modified, or size", sortBy)
	}
	return nil
}

// findAll returns the byte offsets of non-overlapping occurrences of needle.
func findAll(haystack, needle string) []int {
	var positions []int
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return positions
		}
		positions = append(positions, from+i)
		from += i + len(needle)
	}
}

// snippet extracts up to snippetRadius bytes of context on each side of a
// match, trimmed to rune boundaries, with ellipses marking truncation.
func snippet(text string, pos, matchLen int) string {
	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	end := pos + matchLen + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	for end > start && end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	out := strings.ReplaceAll(text[start:end], "\n", " ")
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out += "..."
	}
	return out
}
