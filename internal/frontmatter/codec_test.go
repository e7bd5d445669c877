package frontmatter

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
)

func TestParse_BlockAndBody(t *testing.T) {
	raw := "---\ntitle: Hello\ntags:\n    - go\n    - notes\n---\n# Hello\nBody text.\n"
	meta, body, hadBlock, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !hadBlock {
		t.Error("hadBlock = false, want true")
	}
	if meta["title"] != "Hello" {
		t.Errorf("title = %v", meta["title"])
	}
	if body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParse_NoBlock(t *testing.T) {
	raw := "# Just a note\ntext\n"
	meta, body, hadBlock, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if hadBlock {
		t.Error("hadBlock = true, want false")
	}
	if len(meta) != 0 {
		t.Errorf("meta = %v, want empty", meta)
	}
	if body != raw {
		t.Errorf("body = %q", body)
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	raw := "---\n: bad: yaml: {{{\n---\nBody\n"
	_, _, _, err := Parse(raw)
	if !errors.Is(err, apperr.ErrFrontmatterParse) {
		t.Errorf("err = %v, want ErrFrontmatterParse", err)
	}
}

func TestParse_DashesNotADelimiter(t *testing.T) {
	raw := "--- not frontmatter\ntext\n"
	_, body, hadBlock, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if hadBlock || body != raw {
		t.Errorf("hadBlock = %v, body = %q", hadBlock, body)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	raw := "---\ntags:\n    - go\n    - notes\ntitle: Hello\n---\n# Hello\nBody.\n"
	meta, body, _, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := Serialize(meta, body)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if out != raw {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", out, raw)
	}
}

func TestSerialize_EmptyMetadataOmitsBlock(t *testing.T) {
	out, err := Serialize(map[string]any{}, "just body\n")
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if out != "just body\n" {
		t.Errorf("out = %q", out)
	}
	if strings.Contains(out, "---") {
		t.Error("empty block was written")
	}
}

func TestSanitize_Scalars(t *testing.T) {
	in := map[string]any{
		"s": "text",
		"i": 42,
		"f": 1.5,
		"b": true,
		"n": nil,
	}
	out, err := Sanitize(in)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("out = %v", out)
	}
}

func TestSanitize_IntegralFloatsBecomeInts(t *testing.T) {
	out, err := Sanitize(map[string]any{
		"count": float64(5),
		"ratio": 2.5,
		"big":   float64(1 << 40),
		"deep":  map[string]any{"n": float64(0)},
		"list":  []any{float64(3), 3.25},
	})
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	want := map[string]any{
		"count": 5,
		"ratio": 2.5,
		"big":   1 << 40,
		"deep":  map[string]any{"n": 0},
		"list":  []any{3, 3.25},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestSanitize_DatesToISO(t *testing.T) {
	date := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2025, 1, 20, 14, 30, 0, 0, time.UTC)
	out, err := Sanitize(map[string]any{"created": date, "updated": stamp})
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if out["created"] != "2025-01-20" {
		t.Errorf("created = %v", out["created"])
	}
	if out["updated"] != "2025-01-20T14:30:00Z" {
		t.Errorf("updated = %v", out["updated"])
	}
}

func TestSanitize_PureFunction(t *testing.T) {
	in := map[string]any{"when": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	if _, err := Sanitize(in); err != nil {
		t.Fatal(err)
	}
	if _, ok := in["when"].(time.Time); !ok {
		t.Error("Sanitize mutated its input")
	}
}

func TestSanitize_UnsupportedTypePath(t *testing.T) {
	in := map[string]any{
		"project": map[string]any{
			"tags": []any{"a", "b", make(chan int)},
		},
	}
	_, err := Sanitize(in)
	if !errors.Is(err, apperr.ErrUnsupportedFieldType) {
		t.Fatalf("err = %v, want ErrUnsupportedFieldType", err)
	}
	if !strings.Contains(err.Error(), "project.tags[2]") {
		t.Errorf("error should name the field path, got %q", err.Error())
	}
}

func TestSanitize_EmptyNestedKey(t *testing.T) {
	_, err := Sanitize(map[string]any{"a": map[string]any{"  ": 1}})
	if !errors.Is(err, apperr.ErrUnsupportedFieldType) {
		t.Errorf("err = %v, want ErrUnsupportedFieldType", err)
	}
}

func TestSanitize_SizeCap(t *testing.T) {
	in := map[string]any{"blob": strings.Repeat("x", MaxBytes+1)}
	_, err := Sanitize(in)
	if !errors.Is(err, apperr.ErrFrontmatterTooLarge) {
		t.Errorf("err = %v, want ErrFrontmatterTooLarge", err)
	}
}

func TestDeepMerge_NestedMaps(t *testing.T) {
	base := map[string]any{
		"project": map[string]any{"status": "planned", "owner": "alice"},
	}
	updates := map[string]any{
		"project": map[string]any{"status": "active"},
	}
	merged := DeepMerge(base, updates)

	project := merged["project"].(map[string]any)
	if project["status"] != "active" || project["owner"] != "alice" {
		t.Errorf("project = %v", project)
	}
	// Base stays untouched.
	if base["project"].(map[string]any)["status"] != "planned" {
		t.Error("DeepMerge mutated base")
	}
}

func TestDeepMerge_ListsReplaceWholesale(t *testing.T) {
	base := map[string]any{"tags": []any{"a", "b"}}
	updates := map[string]any{"tags": []any{"c"}}
	merged := DeepMerge(base, updates)
	if !reflect.DeepEqual(merged["tags"], []any{"c"}) {
		t.Errorf("tags = %v", merged["tags"])
	}
}

func TestTags_StringOrList(t *testing.T) {
	if tags, ok := Tags(map[string]any{"tags": "solo"}); !ok || !reflect.DeepEqual(tags, []string{"solo"}) {
		t.Errorf("string tags = %v, %v", tags, ok)
	}
	if tags, ok := Tags(map[string]any{"tags": []any{"a", " b "}}); !ok || !reflect.DeepEqual(tags, []string{"a", "b"}) {
		t.Errorf("list tags = %v, %v", tags, ok)
	}
	if _, ok := Tags(map[string]any{"tags": 7}); ok {
		t.Error("numeric tags should not be usable")
	}
	if _, ok := Tags(map[string]any{}); ok {
		t.Error("absent tags should not be usable")
	}
}
