package notestore

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
	"github.com/nbaradar/obsidian-mcp-server/internal/testutil"
)

func newService() *Service {
	return New(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestCreateAndRetrieve(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()

	res, err := svc.Create(ctx, v, "Projects/Roadmap", "# Roadmap\n")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Status != "created" {
		t.Errorf("status = %q, want created", res.Status)
	}
	if res.Note != "Projects/Roadmap" {
		t.Errorf("note = %q, want Projects/Roadmap", res.Note)
	}

	got, err := svc.Retrieve(ctx, v, "Projects/Roadmap")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got.Content != "# Roadmap\n" {
		t.Errorf("content = %q", got.Content)
	}
	if got.Checksum == "" {
		t.Error("checksum missing")
	}
}

func TestCreateExisting(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()

	testutil.WriteNote(t, v, "Note.md", "old")
	_, err := svc.Create(ctx, v, "Note", "new")
	if !errors.Is(err, apperr.ErrNoteAlreadyExists) {
		t.Fatalf("err = %v, want ErrNoteAlreadyExists", err)
	}
	if got := testutil.ReadNote(t, v, "Note.md"); got != "old" {
		t.Errorf("existing note was modified: %q", got)
	}
}

func TestRetrieveMissing(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")

	_, err := svc.Retrieve(context.Background(), v, "Nope")
	if !errors.Is(err, apperr.ErrNoteNotFound) {
		t.Fatalf("err = %v, want ErrNoteNotFound", err)
	}
}

func TestRetrieveNonUTF8(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	if err := os.WriteFile(filepath.Join(v.Root, "Bin.md"), []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Retrieve(context.Background(), v, "Bin")
	if !errors.Is(err, apperr.ErrNotUTF8) {
		t.Fatalf("err = %v, want ErrNotUTF8", err)
	}
}

func TestReplace(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", "old body")

	res, err := svc.Replace(ctx, v, "Note", "new body")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if res.Status != "replaced" {
		t.Errorf("status = %q", res.Status)
	}
	if got := testutil.ReadNote(t, v, "Note.md"); got != "new body" {
		t.Errorf("content = %q", got)
	}

	if _, err := svc.Replace(ctx, v, "Missing", "x"); !errors.Is(err, apperr.ErrNoteNotFound) {
		t.Fatalf("replace missing: err = %v, want ErrNoteNotFound", err)
	}
}

func TestAppendPrepend(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()

	tests := []struct {
		name     string
		existing string
		content  string
		prepend  bool
		want     string
	}{
		{"append adds separator", "line one", "line two", false, "line one\nline two"},
		{"append keeps existing newline", "line one\n", "line two", false, "line one\nline two"},
		{"append to empty", "", "line two", false, "line two"},
		{"prepend adds separator", "body", "header", true, "header\nbody"},
		{"prepend with trailing newline", "body", "header\n", true, "header\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.WriteNote(t, v, "Note.md", tt.existing)
			var err error
			if tt.prepend {
				_, err = svc.Prepend(ctx, v, "Note", tt.content)
			} else {
				_, err = svc.Append(ctx, v, "Note", tt.content)
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := testutil.ReadNote(t, v, "Note.md"); got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", "x")

	res, err := svc.Delete(ctx, v, "Note")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if res.Status != "deleted" {
		t.Errorf("status = %q", res.Status)
	}
	if _, err := os.Stat(filepath.Join(v.Root, "Note.md")); !os.IsNotExist(err) {
		t.Error("note still exists")
	}

	if _, err := svc.Delete(ctx, v, "Note"); !errors.Is(err, apperr.ErrNoteNotFound) {
		t.Fatalf("double delete: err = %v, want ErrNoteNotFound", err)
	}
}

func TestMoveRewritesBacklinks(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()

	testutil.WriteNote(t, v, "Old Name.md", "content")
	testutil.WriteNote(t, v, "Linker.md",
		"See [[Old Name]] and [[Old Name|alias]].\nAlso [here](Old Name.md) and [there](Old Name).\n")
	testutil.WriteNote(t, v, "Unrelated.md", "Mentions Old Name in prose only.\n")

	res, err := svc.Move(ctx, v, "Old Name", "Archive/New Name", true)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.Status != "moved" {
		t.Errorf("status = %q", res.Status)
	}
	if res.LinksUpdated != 1 {
		t.Errorf("links_updated = %d, want 1", res.LinksUpdated)
	}
	if res.NewPath != "Archive/New Name" {
		t.Errorf("new_path = %q", res.NewPath)
	}

	got := testutil.ReadNote(t, v, "Linker.md")
	want := "See [[Archive/New Name]] and [[Archive/New Name|alias]].\nAlso [here](Archive/New Name.md) and [there](Archive/New Name).\n"
	if got != want {
		t.Errorf("linker = %q, want %q", got, want)
	}
	if got := testutil.ReadNote(t, v, "Unrelated.md"); got != "Mentions Old Name in prose only.\n" {
		t.Errorf("prose mention rewritten: %q", got)
	}
	if got := testutil.ReadNote(t, v, "Archive/New Name.md"); got != "content" {
		t.Errorf("moved content = %q", got)
	}
}

func TestMoveWithoutLinkUpdate(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()

	testutil.WriteNote(t, v, "A.md", "x")
	testutil.WriteNote(t, v, "Linker.md", "[[A]]")

	res, err := svc.Move(ctx, v, "A", "B", false)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if res.LinksUpdated != 0 {
		t.Errorf("links_updated = %d, want 0", res.LinksUpdated)
	}
	if got := testutil.ReadNote(t, v, "Linker.md"); got != "[[A]]" {
		t.Errorf("linker = %q", got)
	}
}

func TestMoveCollision(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()

	testutil.WriteNote(t, v, "A.md", "a")
	testutil.WriteNote(t, v, "B.md", "b")

	if _, err := svc.Move(ctx, v, "A", "B", false); !errors.Is(err, apperr.ErrNoteAlreadyExists) {
		t.Fatalf("err = %v, want ErrNoteAlreadyExists", err)
	}
	if got := testutil.ReadNote(t, v, "B.md"); got != "b" {
		t.Errorf("destination clobbered: %q", got)
	}
}

func TestMoveMissingSource(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")

	if _, err := svc.Move(context.Background(), v, "Ghost", "New", false); !errors.Is(err, apperr.ErrNoteNotFound) {
		t.Fatalf("err = %v, want ErrNoteNotFound", err)
	}
}

func TestCombineWithNewline(t *testing.T) {
	tests := []struct {
		left, right, want string
	}{
		{"a", "b", "a\nb"},
		{"a\n", "b", "a\nb"},
		{"a", "\nb", "a\nb"},
		{"", "b", "b"},
		{"a", "", "a"},
	}
	for _, tt := range tests {
		if got := combineWithNewline(tt.left, tt.right); got != tt.want {
			t.Errorf("combineWithNewline(%q, %q) = %q, want %q", tt.left, tt.right, got, tt.want)
		}
	}
}
