package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted next to the form, such as a CSRF
// token for the sync endpoint.
type HiddenField struct {
	Name  string
	Value string
}

func hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying token under name.
func CSRFToken(name, token string) HiddenField {
	return hidden(name, token)
}

// VersionField constructs a hidden field used for optimistic locking of the
// record that owns the specifications.
func VersionField(name string, version any) HiddenField {
	return hidden(name, version)
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders fields by name for deterministic rendering.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	merged := MergeHiddenFields(fields)
	if len(merged) == 0 {
		return nil
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: merged[name]})
	}
	return result
}
