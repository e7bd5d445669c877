// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// TempVault returns a vault backed by a fresh temporary directory.
func TempVault(t *testing.T, name string) vault.Vault {
	t.Helper()
	return vault.Vault{Name: name, Root: t.TempDir(), Exists: true}
}

// Registry builds a registry over temporary directories, one per name. The
// first name becomes the default vault.
func Registry(t *testing.T, names ...string) *vault.Registry {
	t.Helper()
	if len(names) == 0 {
		t.Fatal("Registry needs at least one vault name")
	}
	entries := make(map[string]vault.Entry, len(names))
	for _, name := range names {
		entries[name] = vault.Entry{Path: t.TempDir()}
	}
	reg, err := vault.NewRegistry(entries, names[0])
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

// WriteNote writes a note file under the vault root, creating parent
// directories, and returns its absolute path.
func WriteNote(t *testing.T, v vault.Vault, rel, content string) string {
	t.Helper()
	abs := filepath.Join(v.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return abs
}

// ReadNote reads a note file under the vault root.
func ReadNote(t *testing.T, v vault.Vault, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(v.Root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}
