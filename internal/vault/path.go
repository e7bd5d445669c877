package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
)

// ResolveNote validates a user-supplied note identifier and resolves it to an
// absolute path inside the vault.
//
// Identifiers are forward-slash separated, case-sensitive, and may carry an
// optional .md suffix (stripped before the canonical one is appended). The
// resolved path must stay inside the vault root after symlink resolution.
func ResolveNote(v Vault, identifier string) (string, error) {
	cleaned := strings.TrimSpace(identifier)
	if cleaned == "" {
		return "", fmt.Errorf("%w: note title cannot be empty", apperr.ErrInvalidIdentifier)
	}
	if strings.HasPrefix(cleaned, "/") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %q must be a relative path within the vault", apperr.ErrInvalidIdentifier, identifier)
	}

	if strings.HasSuffix(strings.ToLower(cleaned), ".md") {
		cleaned = cleaned[:len(cleaned)-3]
	}

	var segments []string
	for _, seg := range strings.Split(cleaned, "/") {
		if seg == "" {
			continue
		}
		if seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q cannot contain '.' or '..' segments", apperr.ErrInvalidIdentifier, identifier)
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: note title cannot be empty", apperr.ErrInvalidIdentifier)
	}
	segments[len(segments)-1] += ".md"

	abs := filepath.Join(v.Root, filepath.Join(segments...))
	if err := ensureInside(v, abs); err != nil {
		return "", fmt.Errorf("%w: %q escapes vault %q", apperr.ErrInvalidIdentifier, identifier, v.Name)
	}
	return abs, nil
}

// ResolveFolder validates a vault-relative folder path the same way note
// paths are resolved. An empty path resolves to the vault root.
func ResolveFolder(v Vault, folder string) (string, error) {
	cleaned := strings.TrimSpace(folder)
	if cleaned == "" || cleaned == "." {
		return v.Root, nil
	}
	if strings.HasPrefix(cleaned, "/") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %q must be relative to the vault root", apperr.ErrInvalidFolderPath, folder)
	}

	abs := filepath.Join(v.Root, filepath.FromSlash(cleaned))
	if err := ensureInside(v, abs); err != nil {
		return "", fmt.Errorf("%w: %q escapes vault %q", apperr.ErrInvalidFolderPath, folder, v.Name)
	}
	return abs, nil
}

// DisplayName converts an absolute note path back into the user-facing
// identifier: vault-relative, forward slashes, no .md suffix.
func DisplayName(v Vault, abs string) string {
	rel, err := filepath.Rel(v.Root, abs)
	if err != nil {
		rel = abs
	}
	rel = strings.TrimSuffix(rel, ".md")
	return filepath.ToSlash(rel)
}

// ensureInside rejects paths outside the vault root. The check is performed
// lexically and again after resolving symlinks on the deepest existing
// ancestor, so a symlinked subdirectory cannot smuggle writes out of the
// sandbox.
func ensureInside(v Vault, abs string) error {
	root, err := filepath.Abs(v.Root)
	if err != nil {
		return err
	}
	if !within(root, abs) {
		return fmt.Errorf("path escapes vault root")
	}

	resolvedRoot := resolveExisting(root)
	resolved := resolveExisting(abs)
	if !within(resolvedRoot, resolved) {
		return fmt.Errorf("path escapes vault root")
	}
	return nil
}

func within(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(os.PathSeparator))
}

// resolveExisting resolves symlinks in the deepest existing ancestor of p and
// re-joins the non-existent remainder.
func resolveExisting(p string) string {
	remainder := ""
	cur := p
	for {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, remainder)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return p
		}
		remainder = filepath.Join(filepath.Base(cur), remainder)
		cur = parent
	}
}
