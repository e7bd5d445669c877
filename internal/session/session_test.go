package session

import (
	"errors"
	"testing"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	reg, err := vault.NewRegistry(map[string]vault.Entry{
		"personal": {Path: t.TempDir()},
		"work":     {Path: t.TempDir()},
	}, "personal")
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(reg)
}

func TestActive_DefaultFallback(t *testing.T) {
	s := testStore(t)
	if v := s.Active("nobody"); v.Name != "personal" {
		t.Errorf("Active = %q, want default", v.Name)
	}
}

func TestSetActive(t *testing.T) {
	s := testStore(t)
	v, err := s.SetActive("sess-1", "work")
	if err != nil || v.Name != "work" {
		t.Fatalf("SetActive = %+v, %v", v, err)
	}
	if got := s.Active("sess-1"); got.Name != "work" {
		t.Errorf("Active = %q", got.Name)
	}
	// Other sessions are unaffected.
	if got := s.Active("sess-2"); got.Name != "personal" {
		t.Errorf("other session Active = %q", got.Name)
	}
}

func TestSetActive_UnknownVault(t *testing.T) {
	s := testStore(t)
	if _, err := s.SetActive("sess-1", "nope"); !errors.Is(err, apperr.ErrVaultNotFound) {
		t.Errorf("err = %v, want ErrVaultNotFound", err)
	}
}

func TestResolve(t *testing.T) {
	s := testStore(t)
	_, _ = s.SetActive("sess-1", "work")

	if v, err := s.Resolve("personal", "sess-1"); err != nil || v.Name != "personal" {
		t.Errorf("explicit Resolve = %+v, %v", v, err)
	}
	if v, err := s.Resolve("", "sess-1"); err != nil || v.Name != "work" {
		t.Errorf("session Resolve = %+v, %v", v, err)
	}
	if _, err := s.Resolve("ghost", "sess-1"); !errors.Is(err, apperr.ErrVaultNotFound) {
		t.Errorf("unknown explicit = %v", err)
	}
}
