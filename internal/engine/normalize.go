package engine

// normalize.go reduces raw record and draft values to comparable forms.
// Normalization is pure: the same input always yields the same output, and
// nothing here touches the network or the working set.
//
// Comparable forms per input kind:
//
//	boolean                  -> bool (string comparison against "true")
//	tags                     -> []string (trimmed, deduped, sorted, blanks dropped)
//	number, city/neighborhood refs -> int64 or nil (empty normalizes to nil)
//	everything else          -> string or nil (trimmed, "" normalizes to nil)

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tastemap/console/internal/schema"
)

// Normalize coerces a raw value to the comparable form for its column.
// A malformed numeric value is a *FieldError naming the column; the diff
// engine propagates it without completing.
func Normalize(col schema.Column, raw any) (any, error) {
	switch {
	case col.Kind == schema.InputBool:
		return asString(raw) == "true", nil

	case col.Kind == schema.InputTags:
		return normalizeTags(raw), nil

	case col.Kind.Numeric():
		s := strings.TrimSpace(asString(raw))
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &FieldError{Field: col.Key, Message: "invalid number"}
		}
		return n, nil

	default:
		s := strings.TrimSpace(asString(raw))
		if s == "" {
			return nil, nil
		}
		return s, nil
	}
}

// Equal reports whether two normalized values compare equal for the column.
func Equal(col schema.Column, a, b any) bool {
	if col.Kind == schema.InputTags {
		as, _ := a.([]string)
		bs, _ := b.([]string)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return true
	}
	return a == b
}

// normalizeTags reduces any tag-ish value to a deduplicated, sorted list of
// non-empty trimmed strings. Comparison is order-insensitive, and blank
// entries never count: nil and [] and ", ," all normalize to an empty list.
func normalizeTags(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case nil:
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			parts = append(parts, asString(item))
		}
	default:
		parts = strings.Split(asString(raw), ",")
	}

	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}

	sort.Strings(out)
	return out
}

// asString renders a raw JSON or draft value as a string.
// Integral floats (the usual JSON number decoding) render without a
// fractional part so ids survive the round trip.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, asString(item))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
