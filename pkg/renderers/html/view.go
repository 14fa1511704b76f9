package html

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-theme"

	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/render"
)

func buildView(containerID string, described form.DescribedForm, opts render.RenderOptions) map[string]any {
	sections := make([]map[string]any, 0, len(described.Groups))
	for _, section := range described.Groups {
		fields := make([]map[string]any, 0, len(section.Fields))
		for _, field := range section.Fields {
			label := plainText(field.Label)
			if label == "" {
				label = field.Key
			}
			fields = append(fields, map[string]any{
				"id":    containerID + "-" + field.ID,
				"key":   field.Key,
				"label": label,
				"value": field.Value,
			})
		}
		sections = append(sections, map[string]any{
			"index":    section.Index,
			"body_id":  containerID + "-group-" + strconv.Itoa(section.Index),
			"name":     plainText(section.Name),
			"summary":  section.Summary,
			"expanded": section.Expanded,
			"fields":   fields,
		})
	}

	view := map[string]any{
		"container_id": containerID,
		"state":        string(described.State),
		"notice":       described.Notice,
		"sections":     sections,
		"raw_visible":  described.RawFieldVisible,
		"category_id":  strings.TrimSpace(opts.CategoryID),
	}

	if persisted := opts.PersistedField; persisted != nil {
		id := strings.TrimSpace(persisted.ID)
		if id == "" {
			id = render.DefaultPersistedFieldID
		}
		name := strings.TrimSpace(persisted.Name)
		if name == "" {
			name = strings.TrimPrefix(id, "id_")
		}
		view["persisted"] = map[string]any{
			"id":    id,
			"name":  name,
			"value": persisted.Value,
		}
	}

	if hidden := render.SortedHiddenFields(opts.HiddenFields); len(hidden) > 0 {
		inputs := make([]map[string]any, 0, len(hidden))
		for _, field := range hidden {
			inputs = append(inputs, map[string]any{"name": field.Name, "value": field.Value})
		}
		view["hidden"] = inputs
	}

	applyTheme(view, opts.Theme)
	return view
}

func applyTheme(view map[string]any, cfg *theme.RendererConfig) {
	if cfg == nil {
		return
	}
	view["theme"] = cssToken(cfg.Theme)
	view["variant"] = cssToken(cfg.Variant)
	view["style"] = inlineVars(cfg.CSSVars)
	if cfg.AssetURL != nil {
		view["stylesheet"] = cfg.AssetURL(StylesheetName)
	}
}

func inlineVars(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if strings.HasPrefix(key, "--") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(vars[key]))
		b.WriteString(";")
	}
	return b.String()
}

// cssToken keeps only characters valid in a class name suffix.
func cssToken(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, value)
}
