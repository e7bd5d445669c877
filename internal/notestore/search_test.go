package notestore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
	"github.com/nbaradar/obsidian-mcp-server/internal/testutil"
)

func TestListNotes(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "B.md", "b")
	testutil.WriteNote(t, v, "Sub/A.md", "a")
	testutil.WriteNote(t, v, "ignore.txt", "not markdown")

	res, err := svc.ListNotes(ctx, v, false, "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("count = %d, want 2", res.Count)
	}
	if res.Notes[0].Path != "B" || res.Notes[1].Path != "Sub/A" {
		t.Errorf("paths = %q, %q", res.Notes[0].Path, res.Notes[1].Path)
	}
	if res.Notes[0].Modified != "" {
		t.Error("metadata populated without being requested")
	}
}

func TestListNotesWithMetadata(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	testutil.WriteNote(t, v, "A.md", "some content")

	res, err := svc.ListNotes(context.Background(), v, true, "modified")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if res.Notes[0].Modified == "" {
		t.Error("modified missing")
	}
	if res.Notes[0].Size != int64(len("some content")) {
		t.Errorf("size = %d", res.Notes[0].Size)
	}
}

func TestListNotesBadSort(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")

	if _, err := svc.ListNotes(context.Background(), v, false, "flavor"); err == nil {
		t.Fatal("expected error for unsupported sort")
	}
}

func TestSearchNotesByTitle(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Meeting Notes.md", "x")
	testutil.WriteNote(t, v, "Projects/meeting-prep.md", "x")
	testutil.WriteNote(t, v, "Groceries.md", "x")

	res, err := svc.SearchNotes(ctx, v, "MEETING", false, "")
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("count = %d, want 2", res.Count)
	}
	if res.Notes[0].Path != "Meeting Notes" || res.Notes[1].Path != "Projects/meeting-prep" {
		t.Errorf("paths = %q, %q", res.Notes[0].Path, res.Notes[1].Path)
	}

	if _, err := svc.SearchNotes(ctx, v, "   ", false, ""); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchContent(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "One.md", "alpha beta alpha\ngamma Alpha\n")
	testutil.WriteNote(t, v, "Two.md", "only one alpha here\n")
	testutil.WriteNote(t, v, "Three.md", "nothing relevant\n")

	res, err := svc.SearchContent(ctx, v, "alpha")
	if err != nil {
		t.Fatalf("SearchContent: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("count = %d, want 2", res.Count)
	}
	if res.Matches[0].Path != "One" || res.Matches[0].MatchCount != 3 {
		t.Errorf("top match = %q (%d)", res.Matches[0].Path, res.Matches[0].MatchCount)
	}
	if res.Matches[1].Path != "Two" || res.Matches[1].MatchCount != 1 {
		t.Errorf("second match = %q (%d)", res.Matches[1].Path, res.Matches[1].MatchCount)
	}
	if len(res.Matches[0].Snippets) != 3 {
		t.Errorf("snippets = %d, want 3", len(res.Matches[0].Snippets))
	}
	for _, s := range res.Matches[0].Snippets {
		if strings.Contains(s, "\n") {
			t.Errorf("snippet contains newline: %q", s)
		}
	}
}

func TestSearchContentSnippetTruncation(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	long := strings.Repeat("x", 300) + " needle " + strings.Repeat("y", 300)
	testutil.WriteNote(t, v, "Long.md", long)

	res, err := svc.SearchContent(context.Background(), v, "needle")
	if err != nil {
		t.Fatalf("SearchContent: %v", err)
	}
	snip := res.Matches[0].Snippets[0]
	if !strings.HasPrefix(snip, "...") || !strings.HasSuffix(snip, "...") {
		t.Errorf("snippet not marked truncated: %q", snip)
	}
	if !strings.Contains(snip, "needle") {
		t.Errorf("snippet missing match: %q", snip)
	}
}

func TestSearchContentCapsResults(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	for i := 0; i < 15; i++ {
		testutil.WriteNote(t, v, string(rune('a'+i))+".md", "needle\n")
	}

	res, err := svc.SearchContent(context.Background(), v, "needle")
	if err != nil {
		t.Fatalf("SearchContent: %v", err)
	}
	if res.Count != 15 {
		t.Errorf("count = %d, want 15", res.Count)
	}
	if len(res.Matches) != 10 {
		t.Errorf("matches = %d, want 10", len(res.Matches))
	}
}

func TestSearchByTags(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "A.md", "---\ntags:\n  - work\n  - urgent\n---\nbody\n")
	testutil.WriteNote(t, v, "B.md", "---\ntags: work\n---\nbody\n")
	testutil.WriteNote(t, v, "C.md", "---\ntags:\n  - home\n---\nbody\n")
	testutil.WriteNote(t, v, "D.md", "no frontmatter, mentions work\n")

	anyMatch, err := svc.SearchByTags(ctx, v, []string{"#Work"}, false, false)
	if err != nil {
		t.Fatalf("SearchByTags: %v", err)
	}
	if anyMatch.Count != 2 {
		t.Fatalf("any count = %d, want 2", anyMatch.Count)
	}
	if anyMatch.Notes[0].Path != "A" || anyMatch.Notes[1].Path != "B" {
		t.Errorf("paths = %q, %q", anyMatch.Notes[0].Path, anyMatch.Notes[1].Path)
	}
	if len(anyMatch.Notes[0].Tags) != 2 {
		t.Errorf("tags = %v", anyMatch.Notes[0].Tags)
	}

	all, err := svc.SearchByTags(ctx, v, []string{"work", "urgent"}, true, false)
	if err != nil {
		t.Fatalf("SearchByTags: %v", err)
	}
	if all.Count != 1 || all.Notes[0].Path != "A" {
		t.Errorf("all match = %+v", all.Notes)
	}

	if _, err := svc.SearchByTags(ctx, v, []string{" # "}, false, false); err == nil {
		t.Fatal("expected error for empty tag list")
	}
}

func TestListFolder(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Projects/A.md", "a")
	testutil.WriteNote(t, v, "Projects/Deep/B.md", "b")
	testutil.WriteNote(t, v, "Top.md", "t")

	flat, err := svc.ListFolder(ctx, v, "Projects", false, false, "")
	if err != nil {
		t.Fatalf("ListFolder: %v", err)
	}
	if flat.Count != 1 || flat.Notes[0].Path != "Projects/A" {
		t.Errorf("flat = %+v", flat.Notes)
	}

	deep, err := svc.ListFolder(ctx, v, "Projects", true, false, "")
	if err != nil {
		t.Fatalf("ListFolder recursive: %v", err)
	}
	if deep.Count != 2 {
		t.Errorf("deep count = %d, want 2", deep.Count)
	}

	if _, err := svc.ListFolder(ctx, v, "Nope", false, false, ""); !errors.Is(err, apperr.ErrFolderNotFound) {
		t.Fatalf("err = %v, want ErrFolderNotFound", err)
	}
}
