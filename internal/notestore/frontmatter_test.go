package notestore

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
	"github.com/nbaradar/obsidian-mcp-server/internal/testutil"
)

const metaNote = "---\nstatus: draft\ntitle: Hello\n---\n# Hello\nBody.\n"

func TestReadFrontmatter(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", metaNote)

	res, err := svc.ReadFrontmatter(ctx, v, "Note")
	if err != nil {
		t.Fatalf("ReadFrontmatter: %v", err)
	}
	if !res.HasFrontmatter {
		t.Error("has_frontmatter = false")
	}
	if res.Status != "read" {
		t.Errorf("status = %q", res.Status)
	}
	want := map[string]any{"status": "draft", "title": "Hello"}
	if !reflect.DeepEqual(res.Frontmatter, want) {
		t.Errorf("frontmatter = %#v, want %#v", res.Frontmatter, want)
	}
}

func TestReadFrontmatterAbsent(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	testutil.WriteNote(t, v, "Plain.md", "# Plain\nNo block here.\n")

	res, err := svc.ReadFrontmatter(context.Background(), v, "Plain")
	if err != nil {
		t.Fatalf("ReadFrontmatter: %v", err)
	}
	if res.HasFrontmatter {
		t.Error("has_frontmatter = true for plain note")
	}
	if len(res.Frontmatter) != 0 {
		t.Errorf("frontmatter = %#v, want empty", res.Frontmatter)
	}
}

func TestUpdateFrontmatterMergesAndPreservesBody(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", metaNote)

	res, err := svc.UpdateFrontmatter(ctx, v, "Note", map[string]any{"status": "published"})
	if err != nil {
		t.Fatalf("UpdateFrontmatter: %v", err)
	}
	if res.Status != "updated" {
		t.Errorf("status = %q", res.Status)
	}
	if !reflect.DeepEqual(res.FieldsUpdated, []string{"status"}) {
		t.Errorf("fields_updated = %v", res.FieldsUpdated)
	}

	got := testutil.ReadNote(t, v, "Note.md")
	if !strings.HasSuffix(got, "---\n# Hello\nBody.\n") {
		t.Errorf("body not preserved: %q", got)
	}
	read, err := svc.ReadFrontmatter(ctx, v, "Note")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"status": "published", "title": "Hello"}
	if !reflect.DeepEqual(read.Frontmatter, want) {
		t.Errorf("frontmatter = %#v, want %#v", read.Frontmatter, want)
	}
}

func TestUpdateFrontmatterNoChange(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", metaNote)

	res, err := svc.UpdateFrontmatter(ctx, v, "Note", map[string]any{"status": "draft"})
	if err != nil {
		t.Fatalf("UpdateFrontmatter: %v", err)
	}
	if res.Status != "unchanged" {
		t.Errorf("status = %q, want unchanged", res.Status)
	}
	if len(res.FieldsUpdated) != 0 {
		t.Errorf("fields_updated = %v, want empty", res.FieldsUpdated)
	}
	if got := testutil.ReadNote(t, v, "Note.md"); got != metaNote {
		t.Errorf("note rewritten on no-op update: %q", got)
	}
}

func TestUpdateFrontmatterIdempotentWithJSONNumbers(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", metaNote)

	// Tool transports decode every number as float64.
	payload := map[string]any{"count": float64(5)}

	res, err := svc.UpdateFrontmatter(ctx, v, "Note", payload)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if res.Status != "updated" {
		t.Errorf("first status = %q, want updated", res.Status)
	}
	first := testutil.ReadNote(t, v, "Note.md")
	if !strings.Contains(first, "count: 5\n") {
		t.Errorf("count not written as an integer: %q", first)
	}

	res, err = svc.UpdateFrontmatter(ctx, v, "Note", payload)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if res.Status != "unchanged" {
		t.Errorf("second status = %q, want unchanged", res.Status)
	}
	if got := testutil.ReadNote(t, v, "Note.md"); got != first {
		t.Errorf("note rewritten on repeat update: %q", got)
	}
}

func TestUpdateFrontmatterRejectsUnsupportedValue(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	testutil.WriteNote(t, v, "Note.md", metaNote)

	_, err := svc.UpdateFrontmatter(context.Background(), v, "Note", map[string]any{"bad": func() {}})
	if !errors.Is(err, apperr.ErrUnsupportedFieldType) {
		t.Fatalf("err = %v, want ErrUnsupportedFieldType", err)
	}
	if got := testutil.ReadNote(t, v, "Note.md"); got != metaNote {
		t.Error("note modified despite rejected update")
	}
}

func TestReplaceFrontmatter(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", metaNote)

	res, err := svc.ReplaceFrontmatter(ctx, v, "Note", map[string]any{"owner": "nader"})
	if err != nil {
		t.Fatalf("ReplaceFrontmatter: %v", err)
	}
	if !res.HadFrontmatter {
		t.Error("had_frontmatter = false")
	}
	if res.Status != "replaced" {
		t.Errorf("status = %q", res.Status)
	}
	read, err := svc.ReadFrontmatter(ctx, v, "Note")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"owner": "nader"}
	if !reflect.DeepEqual(read.Frontmatter, want) {
		t.Errorf("frontmatter = %#v, want %#v", read.Frontmatter, want)
	}
}

func TestDeleteFrontmatter(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	ctx := context.Background()
	testutil.WriteNote(t, v, "Note.md", metaNote)

	res, err := svc.DeleteFrontmatter(ctx, v, "Note")
	if err != nil {
		t.Fatalf("DeleteFrontmatter: %v", err)
	}
	if res.Status != "deleted" {
		t.Errorf("status = %q", res.Status)
	}
	if !reflect.DeepEqual(res.RemovedFields, []string{"status", "title"}) {
		t.Errorf("removed_fields = %v", res.RemovedFields)
	}
	if got := testutil.ReadNote(t, v, "Note.md"); got != "# Hello\nBody.\n" {
		t.Errorf("content = %q", got)
	}
}

func TestDeleteFrontmatterAbsent(t *testing.T) {
	svc := newService()
	v := testutil.TempVault(t, "main")
	testutil.WriteNote(t, v, "Plain.md", "# Plain\n")

	res, err := svc.DeleteFrontmatter(context.Background(), v, "Plain")
	if err != nil {
		t.Fatalf("DeleteFrontmatter: %v", err)
	}
	if res.Status != "no_frontmatter" {
		t.Errorf("status = %q, want no_frontmatter", res.Status)
	}
	if got := testutil.ReadNote(t, v, "Plain.md"); got != "# Plain\n" {
		t.Errorf("content = %q", got)
	}
}
