package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Raw is an unvalidated JSON object from the catalog API. The API omits
// fields freely and mixes numeric representations, so every accessor is
// total: a missing, null, or mistyped path yields the zero value rather
// than an error.
type Raw map[string]any

// Str returns the string at key, or "" when absent or not a string.
func (r Raw) Str(key string) string {
	if r == nil {
		return ""
	}
	s, _ := r[key].(string)
	return s
}

// Bool returns the boolean at key, or false when absent or not a bool.
func (r Raw) Bool(key string) bool {
	if r == nil {
		return false
	}
	b, _ := r[key].(bool)
	return b
}

// Has reports whether key is present with a non-null value.
func (r Raw) Has(key string) bool {
	if r == nil {
		return false
	}
	v, ok := r[key]
	return ok && v != nil
}

// Float returns the numeric value at key. The second result is false
// when the key is absent, null, or holds something no numeric reading
// applies to. Numbers arrive as float64 from encoding/json, but the API
// occasionally quotes them, so string forms are accepted too.
func (r Raw) Float(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	return asFloat(r[key])
}

// FloatOr returns the numeric value at key or def when unreadable.
func (r Raw) FloatOr(key string, def float64) float64 {
	if v, ok := r.Float(key); ok {
		return v
	}
	return def
}

// Int returns the value at key truncated to int, or 0.
func (r Raw) Int(key string) int {
	v, ok := r.Float(key)
	if !ok {
		return 0
	}
	return int(v)
}

// Map returns the nested object at key, or nil.
func (r Raw) Map(key string) Raw {
	if r == nil {
		return nil
	}
	switch v := r[key].(type) {
	case map[string]any:
		return Raw(v)
	case Raw:
		return v
	default:
		return nil
	}
}

// Slice returns the array at key, or nil.
func (r Raw) Slice(key string) []any {
	if r == nil {
		return nil
	}
	s, _ := r[key].([]any)
	return s
}

// Maps returns the array at key keeping only its object elements.
func (r Raw) Maps(key string) []Raw {
	items := r.Slice(key)
	if len(items) == 0 {
		return nil
	}
	out := make([]Raw, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, Raw(v))
		case Raw:
			out = append(out, v)
		}
	}
	return out
}

// Stringify renders the scalar at key as text: strings pass through,
// numbers print without a trailing ".0", booleans as "true"/"false".
// Absent, null, and composite values render as "".
func (r Raw) Stringify(key string) string {
	if r == nil {
		return ""
	}
	return Stringify(r[key])
}

// Stringify renders a decoded JSON scalar as text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return FormatNumber(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// FormatNumber prints a JSON number compactly: integral values without a
// fractional part, everything else with the shortest exact form.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
