// Package vault models the configured note vaults and maps user-supplied
// note identifiers to sandboxed filesystem locations.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
)

// Vault is a sandboxed root directory containing markdown notes.
type Vault struct {
	Name        string `json:"name"`
	Root        string `json:"path"` // absolute path to the vault directory
	Description string `json:"description,omitempty"`
	Exists      bool   `json:"exists"`
}

// Entry is the configuration shape of a single vault.
type Entry struct {
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
}

// Registry holds the named vaults loaded at startup. It is immutable for the
// process lifetime.
type Registry struct {
	vaults      map[string]Vault
	defaultName string
}

// NewRegistry builds a registry from configuration entries. Vault paths are
// made absolute (with ~ expansion); the default name must be present.
func NewRegistry(entries map[string]Entry, defaultName string) (*Registry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("vault: configuration must include at least one vault")
	}

	vaults := make(map[string]Vault, len(entries))
	for name, e := range entries {
		if strings.TrimSpace(e.Path) == "" {
			return nil, fmt.Errorf("vault: %q is missing a path", name)
		}
		root, err := expandPath(e.Path)
		if err != nil {
			return nil, fmt.Errorf("vault: resolve %q: %w", name, err)
		}
		info, statErr := os.Stat(root)
		vaults[name] = Vault{
			Name:        name,
			Root:        root,
			Description: strings.TrimSpace(e.Description),
			Exists:      statErr == nil && info.IsDir(),
		}
	}

	if _, ok := vaults[defaultName]; !ok {
		return nil, fmt.Errorf("vault: default %q is not a configured vault", defaultName)
	}
	return &Registry{vaults: vaults, defaultName: defaultName}, nil
}

// Get returns the vault with the given name.
func (r *Registry) Get(name string) (Vault, error) {
	v, ok := r.vaults[name]
	if !ok {
		return Vault{}, fmt.Errorf("%w: %q (known vaults: %s)",
			apperr.ErrVaultNotFound, name, strings.Join(r.Names(), ", "))
	}
	return v, nil
}

// Default returns the configured default vault.
func (r *Registry) Default() Vault {
	return r.vaults[r.defaultName]
}

// DefaultName returns the configured default vault name.
func (r *Registry) DefaultName() string {
	return r.defaultName
}

// Names returns all vault names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.vaults))
	for name := range r.vaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all vaults sorted by name.
func (r *Registry) All() []Vault {
	out := make([]Vault, 0, len(r.vaults))
	for _, name := range r.Names() {
		out = append(out, r.vaults[name])
	}
	return out
}

// EnsureReady verifies the vault directory is accessible.
func (v Vault) EnsureReady() error {
	info, err := os.Stat(v.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: vault %q is not accessible at %s", apperr.ErrVaultNotFound, v.Name, v.Root)
	}
	return nil
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}
