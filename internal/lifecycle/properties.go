package lifecycle

import (
	"fmt"
	"strconv"
)

// Properties is a read accessor over ResourceProperties.
// CloudFormation delivers every scalar as a string but tests and local
// events may use numbers or booleans, so String formats whatever it finds.
type Properties map[string]any

// Has reports whether key is present with a non-empty value.
func (p Properties) Has(key string) bool {
	return p.String(key) != "" || len(p.List(key)) > 0
}

// String returns the scalar value of key, or "".
func (p Properties) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// First returns the value of the first key that is set.
func (p Properties) First(keys ...string) string {
	for _, k := range keys {
		if v := p.String(k); v != "" {
			return v
		}
	}
	return ""
}

// Default returns the value of key, or fallback when it is unset.
func (p Properties) Default(key, fallback string) string {
	if v := p.String(key); v != "" {
		return v
	}
	return fallback
}

// List returns the string items of a list value.
func (p Properties) List(key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		if s, ok := p[key].([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Maps returns the object items of a list value, such as Tags.
func (p Properties) Maps(key string) []map[string]any {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Require fails with a ValidationError naming the first missing key.
func (p Properties) Require(keys ...string) error {
	for _, k := range keys {
		if !p.Has(k) {
			return &ValidationError{Property: k}
		}
	}
	return nil
}

// RequireOneOf returns the value of the first alias that is set, or a
// ValidationError naming the preferred alias.
func (p Properties) RequireOneOf(aliases ...string) (string, error) {
	if v := p.First(aliases...); v != "" {
		return v, nil
	}
	return "", &ValidationError{Property: aliases[0]}
}

// Group checks an all-or-nothing property group. It reports whether the
// group is present and fails when only part of it is.
func (p Properties) Group(keys ...string) (bool, error) {
	present := 0
	var missing string
	for _, k := range keys {
		if p.Has(k) {
			present++
		} else if missing == "" {
			missing = k
		}
	}
	switch present {
	case 0:
		return false, nil
	case len(keys):
		return true, nil
	default:
		return false, &ValidationError{
			Property: missing,
			Message:  "is required when any of the dependent resource properties is set",
		}
	}
}
