// Package frontmatter parses, validates, merges, and re-serializes the YAML
// frontmatter block of a markdown note.
//
// Metadata values are restricted to YAML-safe scalars, lists, and nested
// string-keyed maps; dates are coerced to ISO-8601 strings. The serialized
// block is capped at MaxBytes to bound downstream processing.
package frontmatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	adrg "github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/nbaradar/obsidian-mcp-server/internal/apperr"
)

// MaxBytes caps the serialized size of a frontmatter block.
const MaxBytes = 10 * 1024

// Parse extracts the frontmatter metadata and body from raw markdown text.
// hadBlock reports whether a block was actually present and stripped, which
// is distinct from a parse failure (malformed YAML).
func Parse(raw string) (meta map[string]any, body string, hadBlock bool, err error) {
	if raw == "" {
		return map[string]any{}, "", false, nil
	}

	rest, err := adrg.Parse(strings.NewReader(raw), &meta)
	if err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", apperr.ErrFrontmatterParse, err)
	}
	body = string(rest)
	if meta == nil {
		meta = map[string]any{}
	}
	hadBlock = strings.HasPrefix(strings.TrimSpace(raw), "---") && body != raw
	return meta, body, hadBlock, nil
}

// Serialize emits metadata and body back into raw markdown. Empty metadata
// returns the body unchanged; an empty delimiter pair is never written.
func Serialize(meta map[string]any, body string) (string, error) {
	if len(meta) == 0 {
		return body, nil
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("%w: cannot serialize to YAML: %v", apperr.ErrFrontmatterParse, err)
	}
	return "---\n" + string(data) + "---\n" + body, nil
}

// Sanitize validates metadata for re-serialization and returns a fresh,
// coerced copy; the input is never mutated. Scalars pass through, timestamps
// become ISO-8601 strings, lists and nested maps are sanitized recursively.
// Any other type fails with the offending field path.
func Sanitize(meta map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(meta))
	for key, value := range meta {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: keys must be non-empty strings", apperr.ErrUnsupportedFieldType)
		}
		sv, err := sanitizeValue(value, key)
		if err != nil {
			return nil, err
		}
		out[key] = sv
	}

	dumped, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot serialize to YAML: %v", apperr.ErrFrontmatterParse, err)
	}
	if len(dumped) > MaxBytes {
		return nil, fmt.Errorf("%w: exceeds maximum size of %dKB", apperr.ErrFrontmatterTooLarge, MaxBytes/1024)
	}
	return out, nil
}

func sanitizeValue(value any, path string) (any, error) {
	switch v := value.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32:
		return v, nil
	case float64:
		// JSON transports decode every number as float64, but YAML re-reads
		// integral values as int. Coerce here so that re-applying the same
		// payload compares equal to what the file already holds.
		if v == math.Trunc(v) && math.Abs(v) <= 1<<53 {
			return int(v), nil
		}
		return v, nil
	case time.Time:
		return formatTime(v), nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			sv, err := sanitizeValue(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = sv
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("%w: key %q under %q must be a non-empty string", apperr.ErrUnsupportedFieldType, key, path)
			}
			sv, err := sanitizeValue(item, path+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = sv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: field %q uses unsupported type %T", apperr.ErrUnsupportedFieldType, path, value)
	}
}

// formatTime mirrors ISO-8601 coercion: a bare date (midnight UTC) keeps the
// date-only form, anything else is RFC 3339.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// DeepMerge merges updates into base recursively: map values merge, anything
// else (lists included) replaces wholesale. Neither input is mutated.
func DeepMerge(base, updates map[string]any) map[string]any {
	merged := copyMap(base)
	for key, value := range updates {
		bm, baseIsMap := merged[key].(map[string]any)
		um, updIsMap := value.(map[string]any)
		if baseIsMap && updIsMap {
			merged[key] = DeepMerge(bm, um)
			continue
		}
		merged[key] = copyValue(value)
	}
	return merged
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return val
	}
}

// Tags normalizes the "tags" field, which may be a bare string or a list,
// into a slice of strings. ok is false when the field is absent or has an
// unusable shape.
func Tags(meta map[string]any) (tags []string, ok bool) {
	raw, present := meta["tags"]
	if !present {
		return nil, false
	}
	switch v := raw.(type) {
	case string:
		return []string{strings.TrimSpace(v)}, true
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = strings.TrimSpace(item)
		}
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strings.TrimSpace(fmt.Sprint(item)))
		}
		return out, true
	default:
		return nil, false
	}
}
